package clock

import (
	"testing"
	"time"
)

func TestFakeUnsynced(t *testing.T) {
	f := NewFake(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	f.Synced = false

	if _, ok := f.WallClock(); ok {
		t.Error("expected WallClock to be unavailable")
	}
}

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f := NewFake(start)

	f.Advance(90 * time.Second)

	if f.MonotonicMillis() != 90000 {
		t.Errorf("MonotonicMillis: got %d, want 90000", f.MonotonicMillis())
	}
	if f.EpochSeconds() != start.Unix()+90 {
		t.Errorf("EpochSeconds: got %d, want %d", f.EpochSeconds(), start.Unix()+90)
	}
	w, ok := f.WallClock()
	if !ok || !w.Equal(start.Add(90*time.Second)) {
		t.Errorf("WallClock: got (%v, %v)", w, ok)
	}
}

func TestFakeSetHour(t *testing.T) {
	f := NewFake(time.Date(2026, 6, 1, 10, 15, 0, 0, time.UTC))
	f.SetHour(20)
	w, _ := f.WallClock()
	if w.Hour() != 20 || w.Minute() != 15 {
		t.Errorf("SetHour: got %v", w)
	}
}

func TestFakeAdvanceSeparately(t *testing.T) {
	f := NewFake(time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC))
	epoch := f.EpochSeconds()

	f.AdvanceMillis(25000)
	if f.EpochSeconds() != epoch {
		t.Error("AdvanceMillis should not move the epoch")
	}
	f.AdvanceEpoch(3600)
	if f.MonotonicMillis() != 25000 {
		t.Error("AdvanceEpoch should not move the monotonic counter")
	}
	if f.EpochSeconds() != epoch+3600 {
		t.Errorf("EpochSeconds: got %d, want %d", f.EpochSeconds(), epoch+3600)
	}
}

func TestRealRejectsImplausibleYear(t *testing.T) {
	boot := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	now := boot.Add(2 * time.Second)
	r := &Real{boot: boot, now: func() time.Time { return now }, sync: func() bool { return true }}

	if _, ok := r.WallClock(); ok {
		t.Error("expected 1970 wall clock to be rejected")
	}
	if r.EpochSeconds() != 0 {
		t.Errorf("EpochSeconds: got %d, want 0", r.EpochSeconds())
	}
	if r.MonotonicMillis() != 2000 {
		t.Errorf("MonotonicMillis: got %d, want 2000", r.MonotonicMillis())
	}
}

func TestRealRequireSync(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	synced := false
	r := &Real{
		RequireSync: true,
		boot:        now,
		now:         func() time.Time { return now },
		sync:        func() bool { return synced },
	}

	if _, ok := r.WallClock(); ok {
		t.Error("expected wall clock unavailable before kernel sync")
	}
	if r.EpochSeconds() != 0 {
		t.Error("expected epoch 0 before kernel sync")
	}

	synced = true
	if _, ok := r.WallClock(); !ok {
		t.Error("expected wall clock available after kernel sync")
	}
	if r.EpochSeconds() != now.Unix() {
		t.Errorf("EpochSeconds: got %d, want %d", r.EpochSeconds(), now.Unix())
	}

	r.RequireSync = false
	synced = false
	if _, ok := r.WallClock(); !ok {
		t.Error("expected wall clock available when sync is not required")
	}
}

func TestNewRealStartsMonotonicNearZero(t *testing.T) {
	r := NewReal(false)
	if ms := r.MonotonicMillis(); ms > 1000 {
		t.Errorf("MonotonicMillis right after NewReal: got %d", ms)
	}
}
