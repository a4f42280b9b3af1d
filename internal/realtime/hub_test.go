package realtime

import (
	"encoding/json"
	"testing"

	"go.uber.org/zap"
)

type capturePublisher struct {
	published []string
}

func (p *capturePublisher) PublishEventFeed(eventID, eventType string, payload []byte) error {
	p.published = append(p.published, eventID+"/"+eventType)
	return nil
}

func newTestClient(eventID, id string) *Client {
	return &Client{ID: id, EventID: eventID, send: make(chan WSMessage, 8)}
}

func TestHubBroadcastToEvent(t *testing.T) {
	pub := &capturePublisher{}
	hub := NewHub(zap.NewNop(), pub, nil)

	a := newTestClient("evt-1", "a")
	b := newTestClient("evt-1", "b")
	other := newTestClient("evt-2", "c")
	hub.Register(a)
	hub.Register(b)
	hub.Register(other)

	hub.BroadcastToEvent("evt-1", "guest_checked_in", map[string]string{"badge_id": "x-1"})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			if msg.Event != "guest_checked_in" {
				t.Fatalf("event = %q", msg.Event)
			}
			var body map[string]string
			if err := json.Unmarshal(msg.Data, &body); err != nil {
				t.Fatal(err)
			}
			if body["badge_id"] != "x-1" {
				t.Fatalf("payload = %v", body)
			}
		default:
			t.Fatalf("client %s received nothing", c.ID)
		}
	}
	select {
	case <-other.send:
		t.Fatal("client in another room received the message")
	default:
	}

	if len(pub.published) != 1 || pub.published[0] != "evt-1/guest_checked_in" {
		t.Fatalf("published = %v", pub.published)
	}
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	c := newTestClient("evt-1", "a")
	hub.Register(c)
	if got := hub.RoomCount("evt-1"); got != 1 {
		t.Fatalf("RoomCount = %d, want 1", got)
	}

	hub.Unregister(c)
	if got := hub.RoomCount("evt-1"); got != 0 {
		t.Fatalf("RoomCount = %d, want 0", got)
	}

	hub.BroadcastToEvent("evt-1", "badge_printed", map[string]string{"badge_id": "x-1"})
	select {
	case <-c.send:
		t.Fatal("unregistered client received a message")
	default:
	}
}
