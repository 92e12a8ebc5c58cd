package notifier

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-escrow-service/internal/domain"
)

func TestWebhookPublisherPostsEvents(t *testing.T) {
	var (
		mu    sync.Mutex
		types []string
		keys  []string
		body  string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		types = append(types, r.Header.Get(headerEventType))
		keys = append(keys, r.Header.Get(headerEventKey))
		body = string(b)
		mu.Unlock()
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pub := NewWebhookPublisher(srv.URL, time.Second)
	defer pub.Close()

	err := pub.Publish(context.Background(),
		domain.Message{Key: []byte("e1"), Value: []byte(`{"escrow_id":"e1"}`), Type: domain.EventEscrowCreated},
		domain.Message{Key: []byte("e1"), Value: []byte(`{"escrow_id":"e1","status":"released"}`), Type: domain.EventEscrowReleased},
	)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(types) != 2 || types[0] != domain.EventEscrowCreated || types[1] != domain.EventEscrowReleased {
		t.Errorf("event types = %v", types)
	}
	if keys[1] != "e1" {
		t.Errorf("key = %q, want e1", keys[1])
	}
	if !strings.Contains(body, `"released"`) {
		t.Errorf("last body = %s", body)
	}
}

func TestWebhookPublisherNon2xx(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	pub := NewWebhookPublisher(srv.URL, time.Second)
	err := pub.Publish(context.Background(),
		domain.Message{Value: []byte(`{}`), Type: "a"},
		domain.Message{Value: []byte(`{}`), Type: "b"},
	)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("err = %v, want status 502", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
