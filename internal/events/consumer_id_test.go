package events

import (
	"strings"
	"testing"
)

func TestNewConsumerID(t *testing.T) {
	id := NewConsumerID()

	if id == "" {
		t.Fatal("expected non-empty consumer ID")
	}
	if strings.Count(id, "-") < 2 {
		t.Fatalf("expected host-pid-nonce shape, got %q", id)
	}
}

func TestNewConsumerID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		id := NewConsumerID()
		if seen[id] {
			t.Fatalf("duplicate consumer ID %q", id)
		}
		seen[id] = true
	}
}
