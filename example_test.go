package tally_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/core"
	"github.com/aretw0/tally/pkg/schedule"
)

// Example_basic creates a note and shows the facts derived from its text.
func Example_basic() {
	tmpDir, err := os.MkdirTemp("", "tally-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)
	svc, err := tally.New(tmpDir,
		tally.WithClock(core.ClockFunc(func() time.Time { return now })),
		tally.WithLocation(time.UTC),
	)
	if err != nil {
		log.Fatal(err)
	}

	note, err := svc.Create(context.Background(), "Q2 gym pass EUR=(90+30)/2 every month 01/07")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(*note.Quantity, *note.Amount, note.CurrencyCode)
	fmt.Println(note.DueDate.Format(), note.Recurrence)
	// Output:
	// 2 60 EUR
	// 01/07/2024 monthly
}

// ExampleNewScheduler shows a reminder being emitted for a note due today.
func ExampleNewScheduler() {
	now := time.Date(2024, time.April, 15, 9, 0, 0, 0, time.UTC)
	opts := []tally.Option{
		tally.WithAdapter(tally.AdapterMemory),
		tally.WithClock(core.ClockFunc(func() time.Time { return now })),
		tally.WithLocation(time.UTC),
		tally.WithNotifier(schedule.NotifierFunc(func(ctx context.Context, n schedule.Notification) error {
			fmt.Println(n.Tag, n.Body)
			return nil
		})),
	}

	svc, err := tally.New("", opts...)
	if err != nil {
		log.Fatal(err)
	}
	ctx := context.Background()
	if _, err := svc.Create(ctx, "Renew passport 15/04"); err != nil {
		log.Fatal(err)
	}

	scheduler := tally.NewScheduler(svc, opts...)
	if _, err := scheduler.Scan(ctx); err != nil {
		log.Fatal(err)
	}
	// Second scan on the same day stays silent.
	if _, err := scheduler.Scan(ctx); err != nil {
		log.Fatal(err)
	}
	// Output:
	// tally-reminder-1 Reminder: "Renew passport 15/04"
}
