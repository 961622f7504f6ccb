package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/craftdeck/craftdeck/internal/fsmodel"
)

// ErrSuperseded is returned when a search was cancelled because a newer
// search was issued on the same Searcher. It is an expected outcome, logged
// for diagnostics but never surfaced to the user as a failure.
var ErrSuperseded = errors.New("search superseded by a newer query")

// Searcher serializes content searches for one logical search box: at most
// one request is in flight at a time, and issuing a new search cancels the
// previous one before any caller-visible state can be updated. Results from
// a superseded search are discarded regardless of network completion order.
type Searcher struct {
	c *Client

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// NewSearcher creates a Searcher bound to this client.
func (c *Client) NewSearcher() *Searcher {
	return &Searcher{c: c}
}

// Search runs a content search. filenameOnly restricts matching to entry
// names. Returns ErrSuperseded when a newer Search call took over.
func (s *Searcher) Search(ctx context.Context, query string, filenameOnly bool) ([]fsmodel.Entry, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	mine := s.gen
	sctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	entries, err := s.c.search(sctx, query, filenameOnly)

	s.mu.Lock()
	superseded := mine != s.gen
	if !superseded {
		s.cancel = nil
	}
	s.mu.Unlock()

	if superseded || errors.Is(err, context.Canceled) {
		s.c.log.Debug().Str("query", query).Msg("search superseded, result discarded")
		return nil, ErrSuperseded
	}
	return entries, err
}

func (c *Client) search(ctx context.Context, query string, filenameOnly bool) ([]fsmodel.Entry, error) {
	q := url.Values{
		"q":             {query},
		"filename_only": {strconv.FormatBool(filenameOnly)},
	}
	resp, err := c.do(ctx, http.MethodGet, c.fsURL("search?"+q.Encode()), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.apiError("search", resp)
	}

	var wire []fsmodel.WireEntry
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	entries := make([]fsmodel.Entry, 0, len(wire))
	for _, w := range wire {
		entries = append(entries, fsmodel.EntryFromWire(w))
	}
	return entries, nil
}
