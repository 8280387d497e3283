package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/plandy-app/flandy/internal/plandy"
	"github.com/plandy-app/flandy/internal/state"
)

const (
	defaultPollInterval = 30 * time.Second
	maxBackoff          = 5 * time.Minute
)

// StartPoller launches a background goroutine that refreshes the store at a
// fixed cadence. It returns immediately. Consecutive failures stretch the
// interval exponentially up to maxBackoff so an offline backend is not
// hammered; the first success snaps back to the base interval.
func StartPoller(ctx context.Context, store *state.Store, client *plandy.Client, interval time.Duration) {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	go func() {
		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			refresh(ctx, store, client)
			wait := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			timer.Reset(wait)
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		}
	}()
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff. Zero failures means the base interval.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	wait := base
	for i := 0; i < failures; i++ {
		wait *= 2
		if wait >= maxBackoff {
			return maxBackoff
		}
	}
	return wait
}

func refresh(ctx context.Context, store *state.Store, client *plandy.Client) {
	healthy := client.Health(ctx)
	if !store.Session().Authenticated() {
		store.Update(nil, nil, nil, healthy, nil)
		return
	}

	tasks, err := client.ListTasks(ctx, plandy.TaskFilter{})
	if err != nil {
		if errors.Is(err, plandy.ErrSessionExpired) {
			store.ClearSession()
			log.Printf("session expired, signing out")
			return
		}
		store.Update(nil, nil, nil, healthy, err)
		log.Printf("task poll failed: %v", err)
		return
	}
	today, err := client.ScheduleByDate(ctx, time.Now().Format("2006-01-02"))
	if err != nil {
		store.Update(nil, nil, nil, healthy, err)
		log.Printf("schedule poll failed: %v", err)
		return
	}
	scores, err := client.ListWorkLifeScores(ctx)
	if err != nil {
		store.Update(nil, nil, nil, healthy, err)
		log.Printf("worklife poll failed: %v", err)
		return
	}
	store.Update(tasks, today, scores, healthy, nil)
}
