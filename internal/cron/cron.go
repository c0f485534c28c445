// Package cron schedules periodic background work. The only built-in
// consumer is the WeCom channel, which registers a proactive access-token
// refresh so the first relay after a quiet period does not pay the token
// round trip.
package cron

import "context"

// Job is a periodic task.
type Job interface {
	// Name identifies the job in logs and must be unique per scheduler.
	Name() string

	// Schedule returns a 5-field cron expression, e.g. "*/30 * * * *".
	Schedule() string

	// Run executes one tick. Long runs should honor ctx cancellation.
	Run(ctx context.Context) error
}
