package scan

import (
	"context"
	"encoding/json"
	"log"

	"entrada/models"
	"entrada/mq"
)

// StartFeedWorker pipes claim events from the Redis channel into the
// hub. Returns when ctx is cancelled.
func StartFeedWorker(ctx context.Context, hub *Hub) {
	log.Println("scan: feed worker listening for claim events")

	for payload := range mq.Subscribe(ctx) {
		var ev models.ClaimEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			log.Printf("scan: bad claim event payload: %v", err)
			continue
		}
		hub.Broadcast(ev.EventID, []byte(payload))
	}
}
