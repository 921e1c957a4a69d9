package bus

import (
	"testing"
	"time"
)

func TestMemoryBusPubSub(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	defer b.Close()

	sub, err := b.Subscribe("lifecycle.stopped")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if err := b.Publish("lifecycle.stopped", []byte("core/net")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case msg := <-sub.Messages():
		if msg.Subject != "lifecycle.stopped" {
			t.Errorf("Subject = %q, want lifecycle.stopped", msg.Subject)
		}
		if string(msg.Data) != "core/net" {
			t.Errorf("Data = %q, want core/net", msg.Data)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
}

func TestMemoryBusFanOut(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	defer b.Close()

	sub1, _ := b.Subscribe("lifecycle.destroyed")
	sub2, _ := b.Subscribe("lifecycle.destroyed")

	if err := b.Publish("lifecycle.destroyed", []byte("core")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for i, sub := range []Subscription{sub1, sub2} {
		select {
		case msg := <-sub.Messages():
			if string(msg.Data) != "core" {
				t.Errorf("sub%d Data = %q, want core", i+1, msg.Data)
			}
		case <-time.After(time.Second):
			t.Fatalf("sub%d timed out", i+1)
		}
	}
}

func TestMemoryBusSubjectIsolation(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	defer b.Close()

	sub, _ := b.Subscribe("lifecycle.stopped")
	b.Publish("lifecycle.destroyed", []byte("x"))

	select {
	case msg := <-sub.Messages():
		t.Fatalf("unexpected message on other subject: %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryBusUnsubscribe(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	defer b.Close()

	sub, _ := b.Subscribe("lifecycle.stopped")
	if err := sub.Unsubscribe(); err != nil {
		t.Fatalf("Unsubscribe failed: %v", err)
	}

	// Channel should be closed
	if _, ok := <-sub.Messages(); ok {
		t.Error("expected closed channel after unsubscribe")
	}

	// Publishing after unsubscribe should not panic
	if err := b.Publish("lifecycle.stopped", []byte("x")); err != nil {
		t.Fatalf("Publish after unsubscribe failed: %v", err)
	}

	// Double unsubscribe is a no-op
	if err := sub.Unsubscribe(); err != nil {
		t.Fatalf("second Unsubscribe failed: %v", err)
	}
}

func TestMemoryBusClose(t *testing.T) {
	b := NewMemoryBus(DefaultConfig())
	sub, _ := b.Subscribe("lifecycle.stopped")

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, ok := <-sub.Messages(); ok {
		t.Error("expected closed subscriber channel after bus close")
	}

	if err := b.Publish("lifecycle.stopped", []byte("x")); err != ErrClosed {
		t.Errorf("Publish after close = %v, want ErrClosed", err)
	}
	if _, err := b.Subscribe("lifecycle.stopped"); err != ErrClosed {
		t.Errorf("Subscribe after close = %v, want ErrClosed", err)
	}

	// Idempotent close
	if err := b.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestValidateSubject(t *testing.T) {
	tests := []struct {
		subject string
		wantErr bool
	}{
		{"lifecycle.stopped", false},
		{"a", false},
		{"", true},
		{"has space", true},
		{"has\ttab", true},
	}
	for _, tt := range tests {
		err := ValidateSubject(tt.subject)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSubject(%q) = %v, wantErr %v", tt.subject, err, tt.wantErr)
		}
	}
}
