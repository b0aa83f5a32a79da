package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestManager_SubscribesPerProgram(t *testing.T) {
	subscribed := make(chan subscribeRequest, 4)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req subscribeRequest
			if json.Unmarshal(msg, &req) == nil && req.Method == "logsSubscribe" {
				subscribed <- req
			}
		}
	}))
	defer server.Close()

	m, err := New(Config{
		Endpoint: wsURL(server),
		Programs: []string{"ProgA", "ProgB"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, func([]byte) {}) }()

	var mentions []string
	for i := 0; i < 2; i++ {
		select {
		case req := <-subscribed:
			filter, ok := req.Params[0].(map[string]interface{})
			if !ok {
				t.Fatalf("unexpected filter param type %T", req.Params[0])
			}
			raw := filter["mentions"].([]interface{})
			mentions = append(mentions, raw[0].(string))
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for subscribe request")
		}
	}

	if mentions[0] != "ProgA" || mentions[1] != "ProgB" {
		t.Errorf("unexpected mentions order: %v", mentions)
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestManager_ForwardsRawPayloads(t *testing.T) {
	payload := `{"method":"logsNotification","params":{"result":{"value":{"signature":"sig1","logs":["Program log: Instruction: MintTo"],"err":null}}}}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Consume the subscribe request, then push one notification.
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		if err := conn.WriteMessage(websocket.TextMessage, []byte(payload)); err != nil {
			return
		}
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	m, err := New(Config{
		Endpoint: wsURL(server),
		Programs: []string{"ProgA"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	received := make(chan []byte, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go m.Run(ctx, func(msg []byte) {
		select {
		case received <- msg:
		default:
		}
	})

	select {
	case msg := <-received:
		if string(msg) != payload {
			t.Errorf("payload altered in transit:\n got %s\nwant %s", msg, payload)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for forwarded payload")
	}
}

func TestManager_ExhaustedAfterMaxAttempts(t *testing.T) {
	var attempts atomic.Int32

	// Plain HTTP handler: every dial fails the websocket handshake.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	m, err := New(Config{
		Endpoint:             wsURL(server),
		Programs:             []string{"ProgA"},
		MaxReconnectAttempts: 3,
		ReconnectInterval:    10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = m.Run(context.Background(), func([]byte) {})
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}

	if got := attempts.Load(); got != 3 {
		t.Errorf("expected exactly 3 connection attempts, got %d", got)
	}
}

func TestManager_ReconnectsAfterDrop(t *testing.T) {
	var connections atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		n := connections.Add(1)
		if n == 1 {
			// Drop the first connection right after the subscribe.
			conn.ReadMessage()
			conn.Close()
			return
		}

		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	m, err := New(Config{
		Endpoint:          wsURL(server),
		Programs:          []string{"ProgA"},
		ReconnectInterval: 10 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	states := make(chan State, 32)
	m.onStateChange = func(s State) {
		select {
		case states <- s:
		default:
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx, func([]byte) {})

	// Wait for the second connection to be established.
	deadline := time.After(3 * time.Second)
	subscribedCount := 0
	for subscribedCount < 2 {
		select {
		case s := <-states:
			if s == Subscribed {
				subscribedCount++
			}
		case <-deadline:
			t.Fatalf("timeout: saw %d subscriptions, want 2", subscribedCount)
		}
	}

	if connections.Load() < 2 {
		t.Errorf("expected at least 2 connections, got %d", connections.Load())
	}
	if m.Attempts() != 0 {
		t.Errorf("attempt counter should reset after reconnect, got %d", m.Attempts())
	}
}

func TestManager_StopsPromptlyOnCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	m, err := New(Config{
		Endpoint: wsURL(server),
		Programs: []string{"ProgA"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Run(ctx, func([]byte) {}) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return promptly after cancel")
	}
}

func TestManager_RequiresConfig(t *testing.T) {
	if _, err := New(Config{Programs: []string{"ProgA"}}); err == nil {
		t.Error("expected error for missing endpoint")
	}
	if _, err := New(Config{Endpoint: "ws://localhost"}); err == nil {
		t.Error("expected error for missing programs")
	}
}
