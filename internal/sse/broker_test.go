package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jly61/knowledge-and-blog/internal/auth"
)

func drain(ch chan []byte) []string {
	var out []string
	for {
		select {
		case msg := <-ch:
			out = append(out, string(msg))
		default:
			return out
		}
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
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
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	mine := b.Subscribe("u1")
	theirs := b.Subscribe("u2")
	defer b.Unsubscribe(mine)
	defer b.Unsubscribe(theirs)

	b.PublishChange("u1", "note.created", "n1", "Hello")

	select {
	case msg := <-mine:
		s := string(msg)
		if !strings.Contains(s, "event: note.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"note_id":"n1"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}

	time.Sleep(50 * time.Millisecond)
	if got := drain(theirs); len(got) != 0 {
		t.Errorf("other owner received %v", got)
	}
}

func TestPublishChange_GraphThrottlePerOwner(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	u1 := b.Subscribe("u1")
	u2 := b.Subscribe("u2")
	defer b.Unsubscribe(u1)
	defer b.Unsubscribe(u2)

	b.PublishChange("u1", "note.created", "a", "")
	b.PublishChange("u1", "note.updated", "b", "")
	b.PublishChange("u2", "note.updated", "c", "")

	time.Sleep(50 * time.Millisecond)
	count := func(msgs []string) (notes, graphs int) {
		for _, m := range msgs {
			if strings.Contains(m, "graph.updated") {
				graphs++
			} else {
				notes++
			}
		}
		return
	}

	if n, g := count(drain(u1)); n != 2 || g != 1 {
		t.Errorf("u1: notes=%d graphs=%d, want 2 and 1", n, g)
	}
	if n, g := count(drain(u2)); n != 1 || g != 1 {
		t.Errorf("u2: notes=%d graphs=%d, want 1 and 1", n, g)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	ctx, cancel := context.WithCancel(auth.WithUser(context.Background(), "u1"))
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish("u1", Event{Type: "note.updated", Data: NoteChange{NoteID: "x"}})
	time.Sleep(50 * time.Millisecond)

	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: note.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestSSEHandler_RequiresUser(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()

	w := httptest.NewRecorder()
	b.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe("u1")
	defer b.Unsubscribe(ch)

	for i := 0; i < 70; i++ {
		b.Publish("u1", Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
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

	b.Publish("u1", Event{Type: "note.updated"})
	b.PublishChange("u1", "note.updated", "x", "")
}
