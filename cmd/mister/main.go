// Command mister runs a garden misting relay on a time-of-day schedule and
// reports its activity over MQTT and HTTP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/sweeney/garden-mister/internal/clock"
	"github.com/sweeney/garden-mister/internal/command"
	"github.com/sweeney/garden-mister/internal/config"
	"github.com/sweeney/garden-mister/internal/gpio"
	"github.com/sweeney/garden-mister/internal/logic"
	"github.com/sweeney/garden-mister/internal/mqtt"
	"github.com/sweeney/garden-mister/internal/scheduler"
	"github.com/sweeney/garden-mister/internal/status"
	"github.com/sweeney/garden-mister/internal/store"
	"github.com/sweeney/garden-mister/internal/web"
)

// options holds the parsed command line.
type options struct {
	poll        time.Duration
	broker      string
	heartbeat   time.Duration
	pin         int
	dbPath      string
	httpAddr    string
	stdin       bool
	configPath  string
	requireSync bool
	printState  bool
}

func main() {
	var o options
	flag.DurationVar(&o.poll, "poll", 100*time.Millisecond, "Scheduler polling interval")
	flag.StringVar(&o.broker, "broker", "tcp://192.168.1.200:1883", "MQTT broker address")
	flag.DurationVar(&o.heartbeat, "heartbeat", 15*time.Minute, "Heartbeat interval (0 to disable)")
	flag.IntVar(&o.pin, "pin", gpio.DefaultPinRelay, "BCM pin number for the mister relay")
	flag.StringVar(&o.dbPath, "db", "/var/lib/mister/state.db", "SQLite state file (empty to run without persistence)")
	flag.StringVar(&o.httpAddr, "http", ":80", "HTTP status address (empty to disable)")
	flag.BoolVar(&o.stdin, "stdin", false, "Accept commands on standard input")
	flag.StringVar(&o.configPath, "config", "", "YAML file with misting policy overrides")
	flag.BoolVar(&o.requireSync, "require-sync", true, "Treat the wall clock as invalid until the kernel reports NTP sync")
	flag.BoolVar(&o.printState, "print-state", false, "Print persisted state and exit")

	flag.Parse()

	if err := run(o); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(o options) error {
	cfg, err := config.Load(afero.NewOsFs(), o.configPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg, o.poll); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	clk := clock.NewReal(o.requireSync)

	var st store.Store
	if o.dbPath != "" {
		db, err := store.OpenSQLite(o.dbPath)
		if err != nil {
			return fmt.Errorf("open state: %w", err)
		}
		defer db.Close()
		st = db
	}

	if o.printState {
		for _, line := range stateLines(cfg, clk, st) {
			fmt.Println(line)
		}
		return nil
	}

	relay, err := gpio.NewRealRelay(o.pin)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer relay.Close()

	sched := scheduler.New(cfg, clk, relay, st, scheduler.StdLogger{})
	sched.LoadState()

	publisher := mqtt.NewRealPublisher(o.broker, clientID())
	defer publisher.Close()

	tracker := status.NewTracker(time.Now(), status.ConfigFrom(status.Config{
		PollMs:      o.poll.Milliseconds(),
		HeartbeatMs: o.heartbeat.Milliseconds(),
		Broker:      o.broker,
		HTTPPort:    o.httpAddr,
		RelayPin:    o.pin,
	}, cfg))
	tracker.Update(sched.Status())
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	queue := command.NewQueue(16)
	done := make(chan struct{})
	defer close(done)

	go command.Forward(publisher.Commands(), "mqtt", queue, done)
	if o.stdin {
		go command.ReadLines(os.Stdin, "console", queue, done)
	}

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker, queue)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", o.httpAddr)
	}

	log.Printf("started: poll=%v broker=%s heartbeat=%v pin=%d mist=%v every %v window=%02d:00-%02d:00",
		o.poll, o.broker, o.heartbeat, o.pin, cfg.MistDuration, cfg.MistInterval, cfg.WindowStart, cfg.WindowEnd)

	ticker := time.NewTicker(o.poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(sched, publisher, publisher, tracker, queue, o.heartbeat, time.Now, ticker.C, sigCh)
}

// publishQueue bounds the MQTT messages waiting behind a slow broker.
const publishQueue = 64

// runLoop is the only goroutine that touches sched. It polls on every tick,
// executes queued commands between polls and returns after a signal.
func runLoop(sched *scheduler.Scheduler, broker mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, requests <-chan command.Request, heartbeat time.Duration, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	// A slow broker must not delay the next poll while the relay is on.
	publisher := mqtt.NewAsync(broker, publishQueue)
	defer publisher.Close()

	hb := logic.NewHeartbeat(now())
	var counts logic.EventCounts

	record := func(events []logic.Event) {
		for _, e := range events {
			counts.Add(e)
		}
		publishEvents(publisher, events)
		if tracker != nil {
			tracker.Record(events)
			tracker.Update(sched.Status())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			sched.Shutdown()

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if tracker != nil {
				record(nil)
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case req := <-requests:
			res, lines, err := command.Run(sched, req.Line)
			if err != nil {
				log.Printf("%s command rejected: %v", req.Source, err)
				req.Respond(command.Response{Err: err})
				continue
			}
			for _, line := range lines {
				log.Printf("%s: %s", req.Source, line)
			}
			record(res.Events)
			req.Respond(command.Response{Lines: lines})

		case <-tick:
			t := now()
			record(sched.Update())

			if hbData := hb.Check(t, heartbeat, counts); hbData != nil {
				log.Printf("heartbeat: uptime=%v state=%s starts=%d stops=%d failsafes=%d jumps=%d",
					hbData.Uptime, sched.State(), hbData.Counts.MistStarts, hbData.Counts.MistStops,
					hbData.Counts.FailsafeTrips, hbData.Counts.TimeJumps)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

func publishEvents(publisher mqtt.Publisher, events []logic.Event) {
	for _, event := range events {
		log.Printf("event: %s (relay=%s state=%s)", event.Type, relayString(event.RelayOn), event.State)
		if err := publisher.Publish(event); err != nil {
			log.Printf("publish error: %v", err)
		}
	}
}

// stateLines reports persisted history without touching the relay.
func stateLines(cfg logic.Config, src clock.Source, st store.Store) []string {
	sched := scheduler.New(cfg, src, nil, st, nil)
	sched.LoadState()
	return command.FormatStatus(sched.Status())
}

func clientID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "garden-mister"
	}
	return "garden-mister-" + strings.ToLower(host)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func relayString(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
