package testjson

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

const maxLineSize = 1024 * 1024

// ErrUnknownAction is returned by Decode for a JSON object whose Action is
// not one test2json emits.
var ErrUnknownAction = errors.New("unknown test2json action")

// Decode parses one line of go test -json output.
func Decode(line []byte) (TestEvent, error) {
	var e TestEvent
	if err := json.Unmarshal(line, &e); err != nil {
		return TestEvent{}, fmt.Errorf("decoding test event: %w", err)
	}
	if !IsValidAction(e.Action) {
		return TestEvent{}, fmt.Errorf("%w: %q", ErrUnknownAction, e.Action)
	}
	return e, nil
}

// line is a scanned line or the scanner's terminal error.
type line struct {
	data []byte
	err  error
}

// lines scans r on its own goroutine. The channel is closed at EOF, after a
// scan error, or once ctx is done.
func lines(ctx context.Context, r io.Reader) <-chan line {
	out := make(chan line)
	go func() {
		defer close(out)
		send := func(l line) bool {
			select {
			case out <- l:
				return true
			case <-ctx.Done():
				return false
			}
		}
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		for scanner.Scan() {
			if len(scanner.Bytes()) == 0 {
				continue
			}
			// The scanner reuses its buffer.
			if !send(line{data: append([]byte(nil), scanner.Bytes()...)}) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			send(line{err: err})
		}
	}()
	return out
}

// Stream decodes go test -json events from r and calls fn for each one, in
// order. Lines that do not decode are counted and skipped. Stream returns at
// EOF, on the first fn error, or when ctx is cancelled; the count of skipped
// lines is returned in every case.
//
// On cancellation Stream closes r if it is an io.Closer so the scanner
// goroutine can exit. Callers passing a wrapper such as *bufio.Reader must
// close the underlying reader themselves.
func Stream(ctx context.Context, r io.Reader, fn ProcessFunc) (int, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	src := lines(ctx, r)
	var malformed int
	for {
		select {
		case <-ctx.Done():
			if c, ok := r.(io.Closer); ok {
				_ = c.Close()
			}
			return malformed, ctx.Err()
		case l, ok := <-src:
			if !ok {
				// Closed at EOF, or because ctx ended mid-send.
				return malformed, ctx.Err()
			}
			if l.err != nil {
				return malformed, fmt.Errorf("scanning test output: %w", l.err)
			}
			event, err := Decode(l.data)
			if err != nil {
				malformed++
				continue
			}
			if err := ctx.Err(); err != nil {
				return malformed, err
			}
			if err := fn(event); err != nil {
				return malformed, err
			}
		}
	}
}
