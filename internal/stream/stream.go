// Package stream implements the notification channel: a server-to-client
// event stream that reports progress, completion, cancellation, and errors
// for one job. Subscribe returns only after the channel is open, which lets
// callers enforce the two-phase protocol structurally: Subscribe first, send
// the triggering request second, so no event can be emitted before anyone is
// listening.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Well-known message statuses.
const (
	StatusProgress  = "progress"
	StatusComplete  = "complete"
	StatusCancelled = "cancelled"
	StatusError     = "error"
)

// Message is one notification-channel payload. The panel sends one JSON
// object per event; fields beyond Status are operation-specific. Progress
// carries bytes transferred for uploads and a percentage for archive and
// extract jobs.
type Message struct {
	Status         string  `json:"status"`
	Progress       float64 `json:"progress"`
	FilesProcessed *int    `json:"filesProcessed,omitempty"`
	TotalFiles     *int    `json:"totalFiles,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// Terminal reports whether the message ends the job.
func (m Message) Terminal() bool {
	switch m.Status {
	case StatusComplete, StatusCancelled, StatusError:
		return true
	}
	return false
}

// Channel is an open notification channel for a single job id. Messages are
// delivered in the order the server emits them. The channel is closed either
// by the server ending the stream, by a transport error, or by Close.
type Channel struct {
	msgs   chan Message
	cancel context.CancelFunc

	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

// Subscribe opens the notification channel at url. It returns once the
// server has accepted the stream (HTTP 200), so a successful return is the
// "open" signal of the two-phase handshake. Events are read on a background
// goroutine until the stream ends or ctx is cancelled.
func Subscribe(ctx context.Context, hc *http.Client, url string) (*Channel, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create channel request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := hc.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("open channel: server returned %d %s",
			resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	c := &Channel{
		msgs:   make(chan Message, 16),
		cancel: cancel,
	}
	go c.read(ctx, resp.Body)
	return c, nil
}

// Messages returns the stream of notification events. The channel is closed
// when the stream ends; check Err afterwards to distinguish a transport
// failure from an orderly end.
func (c *Channel) Messages() <-chan Message {
	return c.msgs
}

// Err reports the transport error that ended the stream, if any. Valid once
// Messages has been closed.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Close tears down the channel. Safe to call multiple times and concurrently
// with message delivery.
func (c *Channel) Close() {
	c.closeOnce.Do(c.cancel)
}

func (c *Channel) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// read consumes text/event-stream frames: "data:" lines carry the JSON
// payload, a blank line dispatches the pending event, ":" lines are
// keep-alive comments.
func (c *Channel) read(ctx context.Context, body io.ReadCloser) {
	defer close(c.msgs)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data string
	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			if data != "" {
				c.dispatch(ctx, data)
				data = ""
			}
			continue
		}
		if strings.HasPrefix(line, ":") {
			continue
		}
		if strings.HasPrefix(line, "data:") {
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}

	// A frame without a trailing blank line still counts when the server
	// closes the stream right after its last event.
	if data != "" {
		c.dispatch(ctx, data)
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		c.setErr(fmt.Errorf("notification channel: %w", err))
	}
}

func (c *Channel) dispatch(ctx context.Context, data string) {
	var msg Message
	if err := json.Unmarshal([]byte(data), &msg); err != nil {
		// Malformed frames are dropped rather than killing the stream.
		return
	}
	// Archive progress events omit the status field and carry only the
	// percentage.
	if msg.Status == "" {
		msg.Status = StatusProgress
	}

	select {
	case c.msgs <- msg:
	case <-ctx.Done():
	}
}
