package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/schedule"
	"github.com/spf13/cobra"
)

var checkJSON bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Project recurring notes and raise today's reminders once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var extra []tally.Option
		if checkJSON {
			extra = append(extra, tally.WithNotifier(schedule.NewWriterNotifier(os.Stdout)))
		} else {
			extra = append(extra, tally.WithNotifier(schedule.NotifierFunc(printNotification)))
		}
		svc, opts, err := openService(extra...)
		if err != nil {
			return err
		}
		report, err := tally.NewScheduler(svc, opts...).Scan(context.Background())
		if err != nil {
			return err
		}
		if !checkJSON {
			fmt.Printf("%d projected, %d reminded\n", report.Projected, report.Notified)
		}
		return nil
	},
}

var respondCmd = &cobra.Command{
	Use:   "respond <id> mark-done",
	Short: "Answer a reminder",
	Long: `Answer a reminder. Snoozing needs a running daemon; send
{"type":"ACTION","noteId":N,"action":"snooze-15"} to "tally remind" instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[:1])
		if err != nil {
			return err
		}
		if args[1] != schedule.ActionMarkDone {
			return fmt.Errorf("%w: %s (only %s works outside the daemon)",
				schedule.ErrUnknownAction, args[1], schedule.ActionMarkDone)
		}
		svc, opts, err := openService()
		if err != nil {
			return err
		}
		if err := tally.NewScheduler(svc, opts...).Respond(context.Background(), ids[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Note %d done\n", ids[0])
		return nil
	},
}

func printNotification(_ context.Context, n schedule.Notification) error {
	_, err := fmt.Printf("%s  %s\n", n.Title, n.Body)
	return err
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(respondCmd)
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print notifications as JSON lines")
}
