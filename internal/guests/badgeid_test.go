package guests

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewBadgeID(t *testing.T) {
	eventID := uuid.MustParse("e4f9a2b1-6d3c-4e8f-9a1b-2c3d4e5f6a7b")
	at := time.UnixMilli(1700000000000)

	got := NewBadgeID(eventID, at)
	want := "e4f9a2b1-1700000000000"
	if got != want {
		t.Fatalf("NewBadgeID = %q, want %q", got, want)
	}
}

func TestNewBadgeIDOrdering(t *testing.T) {
	eventID := uuid.New()
	first := NewBadgeID(eventID, time.UnixMilli(1700000000000))
	second := NewBadgeID(eventID, time.UnixMilli(1700000000001))
	if !(first < second) {
		t.Fatalf("want badge ids ordered by registration time, got %q then %q", first, second)
	}
	if !strings.HasPrefix(second, eventID.String()[:8]+"-") {
		t.Fatalf("badge id %q missing event prefix", second)
	}
}
