package access

import (
	"context"
	"log"
	"time"

	"entrada/db"

	"go.mongodb.org/mongo-driver/bson"
)

// Sweeper removes expired grant entries on a fixed schedule. It only
// ever removes entries, so it is safe to run concurrently with staff
// logins and assignments.
type Sweeper struct {
	Interval time.Duration
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewSweeper(interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{Interval: interval}
}

// Start launches the sweep loop. One sweep runs immediately so a
// restart never extends an expired credential's life by a full
// interval.
func (s *Sweeper) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)

		s.sweep(ctx)

		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep(ctx)
			}
		}
	}()
}

// Stop halts the loop and waits for any in-flight sweep to finish.
func (s *Sweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	sctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	res, err := db.AccessGrantsCollection.UpdateMany(sctx,
		bson.M{},
		bson.M{"$pull": bson.M{"entries": ExpiredEntryFilter(time.Now().UTC())}},
	)
	if err != nil {
		log.Printf("access: sweep failed: %v", err)
		return
	}
	if res.ModifiedCount > 0 {
		log.Printf("access: sweep purged expired entries from %d grant documents", res.ModifiedCount)
	}
}

// ExpiredEntryFilter matches grant entries whose expiry has passed.
func ExpiredEntryFilter(now time.Time) bson.M {
	return bson.M{"expiry": bson.M{"$lt": now}}
}
