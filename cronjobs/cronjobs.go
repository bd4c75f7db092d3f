package cronjobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"go-siren/audio"
	"go-siren/chain"
)

const refreshTimeout = 30 * time.Second

// refreshSignalCache pulls the full signal set from the registry into the
// in-memory cache that serves proximity alerts.
func refreshSignalCache(queries *chain.Queries, cache *audio.SignalCache) {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	signals, err := queries.GetAllSignals(ctx)
	if err != nil {
		log.Printf("Error refreshing signal cache: %v", err)
		return
	}
	cache.Set(signals)
	log.Printf("Signal cache refreshed: %d signals", len(signals))
}

func InitCronJobs(queries *chain.Queries, cache *audio.SignalCache) {
	log.Println("\nStarting Cron Jobs -------------------------------------------------------")
	c := cron.New()

	// Warm the cache so the first audio summary does not come up empty.
	go refreshSignalCache(queries, cache)

	// Signal cache: refresh every 2 minutes
	_, err := c.AddFunc("*/2 * * * *", func() {
		log.Println("\nCronJob: Signal Cache Refresh Running")
		refreshSignalCache(queries, cache)
	})
	if err != nil {
		log.Println("Error scheduling Signal Cache Refresh", err)
	}

	c.Start()
}
