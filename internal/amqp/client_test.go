package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 16 * time.Second},
		{5, 30 * time.Second},
		{10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("attempt_%d", tt.attempt), func(t *testing.T) {
			if got := exponentialBackoff(tt.attempt); got != tt.expected {
				t.Errorf("exponentialBackoff(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"EOF", errors.New("unexpected EOF"), true},
		{"broken pipe", errors.New("broken pipe"), true},
		{"closed delivery channel", errors.New("message channel closed"), true},
		{"validation error", errors.New("invalid input"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isConnectionError(tt.err); got != tt.expected {
				t.Errorf("isConnectionError(%v) = %v, want %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestClient_CircuitBreaker(t *testing.T) {
	client := &Client{exchangeName: "wallet", queueName: "exports"}

	if client.isCircuitOpen() {
		t.Fatal("circuit breaker should be closed initially")
	}

	for i := 0; i < maxFailures; i++ {
		client.recordFailure()
	}
	if !client.isCircuitOpen() {
		t.Fatal("circuit breaker should open after max failures")
	}

	client.lastFailure = time.Now().Add(-openTimeout - time.Second)
	if client.isCircuitOpen() {
		t.Fatal("circuit should become half-open after the timeout")
	}
	if atomic.LoadInt32(&client.state) != StateHalfOpen {
		t.Fatal("state should be StateHalfOpen")
	}

	client.recordFailure()
	if atomic.LoadInt32(&client.state) != StateOpen {
		t.Fatal("a failure while half-open reopens the circuit")
	}

	client.recordSuccess()
	if client.isCircuitOpen() || atomic.LoadInt64(&client.failureCount) != 0 {
		t.Fatal("success should close the circuit and reset failures")
	}
}

func TestClient_PublishAccountChanged_Guards(t *testing.T) {
	client := &Client{exchangeName: "wallet", queueName: "exports"}

	atomic.StoreInt32(&client.state, StateOpen)
	client.lastFailure = time.Now()
	err := client.PublishAccountChanged(context.Background(), "acc-1", 1, "expense")
	if err == nil || !strings.Contains(err.Error(), "circuit breaker is open") {
		t.Fatalf("expected circuit breaker error, got %v", err)
	}

	client.recordSuccess()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := client.PublishAccountChanged(ctx, "acc-1", 1, "expense"); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAccountChangedMessage_JSON(t *testing.T) {
	msg := NewAccountChangedMessage("acc-1", 7, "merge")
	if msg.Timestamp.IsZero() || time.Since(msg.Timestamp) > time.Second {
		t.Fatalf("timestamp should be recent: %v", msg.Timestamp)
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	parsed, err := AccountChangedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("AccountChangedMessageFromJSON() error = %v", err)
	}
	if parsed.AccountID != "acc-1" || parsed.Version != 7 || parsed.Operation != "merge" || !parsed.Timestamp.Equal(msg.Timestamp) {
		t.Fatalf("parsed = %+v, want %+v", parsed, msg)
	}
}

func TestAccountChangedMessage_Invalid(t *testing.T) {
	for _, body := range []string{`{"account_id": 5}`, `{"version": 1}`, `not json`} {
		if _, err := AccountChangedMessageFromJSON([]byte(body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}
