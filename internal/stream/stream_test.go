package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func sseHandler(events []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for _, e := range events {
			fmt.Fprintf(w, "data: %s\n\n", e)
			flusher.Flush()
		}
	}
}

func TestSubscribeDeliversMessagesInOrder(t *testing.T) {
	srv := httptest.NewServer(sseHandler([]string{
		`{"status":"progress","progress":25}`,
		`{"status":"progress","progress":50}`,
		`{"status":"complete"}`,
	}))
	defer srv.Close()

	ch, err := Subscribe(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer ch.Close()

	var got []Message
	for msg := range ch.Messages() {
		got = append(got, msg)
	}
	if err := ch.Err(); err != nil {
		t.Fatalf("Err() = %v, want nil", err)
	}

	want := []float64{25, 50}
	if len(got) != 3 {
		t.Fatalf("received %d messages, want 3", len(got))
	}
	for i, p := range want {
		if got[i].Status != StatusProgress || got[i].Progress != p {
			t.Errorf("message %d = %+v, want progress %v", i, got[i], p)
		}
	}
	if got[2].Status != StatusComplete || !got[2].Terminal() {
		t.Errorf("final message = %+v, want terminal complete", got[2])
	}
}

func TestSubscribeDefaultsBareProgressFrames(t *testing.T) {
	// Archive status streams send {"progress": N} without a status field.
	srv := httptest.NewServer(sseHandler([]string{`{"progress":40}`}))
	defer srv.Close()

	ch, err := Subscribe(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer ch.Close()

	msg, ok := <-ch.Messages()
	if !ok {
		t.Fatal("channel closed before delivering message")
	}
	if msg.Status != StatusProgress || msg.Progress != 40 {
		t.Errorf("message = %+v, want defaulted progress 40", msg)
	}
}

func TestSubscribeRejectsNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such job", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := Subscribe(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatal("Subscribe should fail on non-200 response")
	}
}

func TestSubscribeReturnsOnlyAfterServerAccepts(t *testing.T) {
	accepted := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(accepted)
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ch, err := Subscribe(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer ch.Close()

	select {
	case <-accepted:
	default:
		t.Error("Subscribe returned before the server accepted the stream")
	}
}

func TestCloseEndsStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	ch, err := Subscribe(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	ch.Close()
	ch.Close() // idempotent

	select {
	case _, ok := <-ch.Messages():
		if ok {
			t.Error("unexpected message after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Messages not closed after Close")
	}
	// Close is a local teardown, not a transport failure.
	if err := ch.Err(); err != nil {
		t.Errorf("Err() after Close = %v, want nil", err)
	}
}
