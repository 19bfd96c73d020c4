package mq

import (
	"context"
	"encoding/json"
	"log"

	"entrada/models"
	"entrada/rdx"
)

// ClaimChannel is the Redis pub/sub channel carrying claim events for
// the live check-in feed.
const ClaimChannel = "claim-events"

// EmitClaim publishes a claim event. Best-effort: a publish failure is
// logged and never surfaced to the scan path.
func EmitClaim(ctx context.Context, ev models.ClaimEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("mq: failed to marshal claim event: %v", err)
		return
	}

	if err := rdx.Conn.Publish(ctx, ClaimChannel, data).Err(); err != nil {
		log.Printf("mq: failed to publish claim event: %v", err)
	}
}

// Subscribe returns a channel of raw claim-event payloads. The caller
// owns draining it; closing ctx ends the stream.
func Subscribe(ctx context.Context) <-chan string {
	sub := rdx.Conn.Subscribe(ctx, ClaimChannel)
	out := make(chan string)

	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				out <- msg.Payload
			}
		}
	}()

	return out
}
