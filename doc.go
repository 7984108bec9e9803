// Package tally is the Composition Root for the tally application.
//
// tally reads short freeform notes ("Rent EUR900 every month 01/07") and
// derives a structured fact from each: quantity, amount and currency, due date
// and recurrence rule. The facts drive a scheduler that regenerates recurring
// notes as their due dates lapse and reminds about notes due today.
//
// Features:
//
//   - **Fact extraction**: ordered, independent rules; arithmetic amounts (`USD=(500+200)/12`).
//   - **Tag synthesis**: tags in use are re-applied to new notes that mention them.
//   - **Recurrence projection**: idempotent per series, safe across restarts.
//   - **Reminders**: at most once per note per day, with snooze and mark-done responses.
//   - **Pluggable storage**: filesystem, SQLite, PostgreSQL or memory via `core.Store`.
//
// Usage:
//
//	svc, err := tally.New(".tally", tally.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	note, err := svc.Create(ctx, "Pay rent EUR1200 every month 01/07")
//
//	daemon := tally.NewDaemon(svc, tally.WithReminderHour(8))
//	err = daemon.Start(ctx)
package tally
