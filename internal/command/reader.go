package command

import (
	"bufio"
	"io"
	"log"
)

// ReadLines turns every line from r into a fire-and-forget request until r
// is exhausted or done is closed. It is meant to run on its own goroutine.
func ReadLines(r io.Reader, source string, out chan<- Request, done <-chan struct{}) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		select {
		case out <- Request{Line: sc.Text(), Source: source}:
		case <-done:
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.Printf("%s input error: %v", source, err)
	}
}
