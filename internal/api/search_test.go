package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSearchReturnsEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/server/s1/fs/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "level.dat" || q.Get("filename_only") != "true" {
			t.Errorf("query = %v", q)
		}
		io.WriteString(w, `[{"name":"level.dat","path":"\\world/level.dat","size":2048,"directory":false}]`)
	}))
	defer srv.Close()

	s := newTestClient(t, srv.URL, "s1").NewSearcher()
	entries, err := s.Search(context.Background(), "level.dat", true)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Path != "world/level.dat" {
		t.Errorf("Path = %q, want leading separator stripped", entries[0].Path)
	}
	if entries[0].TypeLabel == "" {
		t.Error("TypeLabel not computed")
	}
}

// A search issued while an earlier one is still in flight supersedes it: the
// earlier call reports ErrSuperseded no matter which response arrives first.
func TestSearchSupersession(t *testing.T) {
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("q") {
		case "first":
			close(firstStarted)
			select {
			case <-releaseFirst:
			case <-r.Context().Done():
			}
			io.WriteString(w, `[{"name":"stale.txt","path":"stale.txt","directory":false}]`)
		case "second":
			io.WriteString(w, `[{"name":"fresh.txt","path":"fresh.txt","directory":false}]`)
		}
	}))
	defer srv.Close()

	s := newTestClient(t, srv.URL, "s1").NewSearcher()

	firstErr := make(chan error, 1)
	go func() {
		_, err := s.Search(context.Background(), "first", false)
		firstErr <- err
	}()
	<-firstStarted

	entries, err := s.Search(context.Background(), "second", false)
	if err != nil {
		t.Fatalf("second Search: %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "fresh.txt" {
		t.Errorf("second results = %v", entries)
	}

	close(releaseFirst)
	select {
	case err := <-firstErr:
		if !errors.Is(err, ErrSuperseded) {
			t.Errorf("first Search = %v, want ErrSuperseded", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("first Search never returned")
	}
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"query too short"}`)
	}))
	defer srv.Close()

	s := newTestClient(t, srv.URL, "s1").NewSearcher()
	_, err := s.Search(context.Background(), "x", false)
	if err == nil || errors.Is(err, ErrSuperseded) {
		t.Fatalf("Search = %v, want server error", err)
	}
}
