package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe("u1")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublish_OnlyOwnerReceives(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	mine := b.Subscribe("u1")
	defer b.Unsubscribe(mine)
	theirs := b.Subscribe("u2")
	defer b.Unsubscribe(theirs)

	b.Publish(Event{Type: EntryCreated, OwnerID: "u1", Data: map[string]string{"id": "e1"}})

	select {
	case msg := <-mine:
		s := string(msg)
		if !strings.Contains(s, "event: entry.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"e1"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	select {
	case msg := <-theirs:
		t.Errorf("other owner received %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublish_WithoutOwnerDropped(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe("")
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: PhotoAdded, Data: map[string]string{"key": "x"}})
	select {
	case msg := <-ch:
		t.Errorf("ownerless event delivered: %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHeartbeat(t *testing.T) {
	b := NewBroker(20 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe("u1")
	defer b.Unsubscribe(ch)

	select {
	case msg := <-ch:
		if string(msg) != ": ping\n\n" {
			t.Errorf("heartbeat = %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("no heartbeat")
	}
}

// syncRecorder guards the body so the test can read it while Stream writes.
type syncRecorder struct {
	*httptest.ResponseRecorder
	mu sync.Mutex
}

func (r *syncRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ResponseRecorder.Write(p)
}

func (r *syncRecorder) body() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Body.String()
}

func TestStream(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := &syncRecorder{ResponseRecorder: httptest.NewRecorder()}

	done := make(chan struct{})
	go func() {
		b.Stream(w, req, "u1")
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: MessageCreated, OwnerID: "u1", Data: map[string]string{"tangent_id": "t1"}})
	b.Publish(Event{Type: MessageCreated, OwnerID: "u2", Data: map[string]string{"tangent_id": "t2"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.body()
	if !strings.Contains(body, `"tangent_id":"t1"`) {
		t.Errorf("handler output missing event: %q", body)
	}
	if strings.Contains(body, `"tangent_id":"t2"`) {
		t.Errorf("handler leaked another owner's event: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Minute)
	defer b.Close()
	ch := b.Subscribe("u1")
	defer b.Unsubscribe(ch)

	// Buffer holds 64; the rest must be dropped without blocking.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", OwnerID: "u1", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(time.Minute)
	ch := b.Subscribe("u1")
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}
	b.Publish(Event{Type: EntryCreated, OwnerID: "u1"})
}
