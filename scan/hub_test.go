package scan

import (
	"encoding/json"
	"testing"
	"time"

	"entrada/models"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// create fake client watching one event room
	client := &Client{
		Send: make(chan []byte, 10),
		Room: "ev1",
	}

	hub.register <- client

	ev := models.ClaimEvent{EventID: "ev1", AttendeeID: "r1", Privilege: "lunch"}
	data, _ := json.Marshal(ev)
	hub.Broadcast("ev1", data)

	select {
	case got := <-client.Send:
		if string(got) != string(data) {
			t.Fatalf("expected %s, got %s", data, got)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for message")
	}

	// messages for other rooms must not arrive
	hub.Broadcast("ev2", data)
	select {
	case got := <-client.Send:
		t.Fatalf("received message for wrong room: %s", got)
	case <-time.After(100 * time.Millisecond):
	}

	hub.unregister <- client
}
