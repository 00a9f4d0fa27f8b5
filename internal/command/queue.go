package command

import (
	"context"
	"errors"
)

// ErrBusy is returned when the poll loop does not pick up a request in time.
var ErrBusy = errors.New("command queue busy")

// Request is a command line waiting to be executed by the poll loop.
type Request struct {
	Line   string
	Source string // "console", "mqtt", "http"
	// Reply receives the outcome. It may be nil for fire-and-forget sources
	// and must be buffered so the poll loop never blocks on it.
	Reply chan Response
}

// Response is the outcome of a Request.
type Response struct {
	Lines []string
	Err   error
}

// Respond delivers resp if the request wants a reply.
func (r Request) Respond(resp Response) {
	if r.Reply == nil {
		return
	}
	select {
	case r.Reply <- resp:
	default:
	}
}

// Queue carries requests from input goroutines to the poll loop.
type Queue chan Request

// NewQueue creates a queue holding up to size pending requests.
func NewQueue(size int) Queue {
	return make(Queue, size)
}

// Submit enqueues line and waits for the poll loop to execute it.
func (q Queue) Submit(ctx context.Context, source, line string) (Response, error) {
	req := Request{Line: line, Source: source, Reply: make(chan Response, 1)}
	select {
	case q <- req:
	case <-ctx.Done():
		return Response{}, ErrBusy
	}
	select {
	case resp := <-req.Reply:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	}
}

// Forward turns raw lines from in into fire-and-forget requests until in is
// closed or done is closed.
func Forward(in <-chan string, source string, out chan<- Request, done <-chan struct{}) {
	for {
		select {
		case line, ok := <-in:
			if !ok {
				return
			}
			select {
			case out <- Request{Line: line, Source: source}:
			case <-done:
				return
			}
		case <-done:
			return
		}
	}
}
