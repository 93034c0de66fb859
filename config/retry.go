package config

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// connectWithRetry calls connect until it succeeds or ctx is done. what names
// the dependency in the logs.
func connectWithRetry(ctx context.Context, what string, fields logrus.Fields, connect func(context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := connect(ctx)
		entry := GetLogger().WithFields(fields).WithFields(logrus.Fields{"dependency": what, "attempt": attempt})
		if err == nil {
			entry.Info("connected to " + what)
			return nil
		}
		sleep := backoff(attempt)
		entry.WithField("retry_in", sleep.String()).Warn("failed to connect " + what + ": " + err.Error())
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}
	}
}

// backoff doubles from 2s and is capped at 30s.
func backoff(attempt int) time.Duration {
	return min(time.Second*time.Duration(1<<min(attempt, 5)), 30*time.Second)
}
