// Package job runs background tasks such as form notifications and
// scheduled news publishing.
//
// Tasks are registered once and executed by a Queue. Two queues exist:
//
//   - Manager persists jobs in PostgreSQL through river, with retries,
//     unique jobs and periodic schedules.
//   - Inline runs tasks in goroutines of the current process and drives
//     schedules with robfig/cron. Sites without a database use it.
//
// A task is any type with Name and Handle methods; Func and Every adapt
// plain functions:
//
//	q, err := job.NewInline(
//		job.WithTask[Notify](job.Func("forms:notify", sendNotification)),
//		job.WithScheduledTask(job.Every("news:publish", "*/5 * * * *", publishDue)),
//	)
//	...
//	err = q.Enqueue(ctx, "forms:notify", Notify{ID: id}, job.MaxAttempts(3))
//
// Schedules use five-field cron expressions or descriptors such as @hourly.
package job
