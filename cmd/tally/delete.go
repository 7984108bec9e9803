package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Move notes to the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIDs(args, func(ctx context.Context, svc idOps, ids []int) error {
			return svc.SoftDelete(ctx, ids...)
		}, "Deleted")
	},
}

var recoverCmd = &cobra.Command{
	Use:   "recover <id>...",
	Short: "Restore notes from the trash",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withIDs(args, func(ctx context.Context, svc idOps, ids []int) error {
			return svc.Recover(ctx, ids...)
		}, "Recovered")
	},
}

var purgeYes bool

var purgeCmd = &cobra.Command{
	Use:   "purge <id>...",
	Short: "Delete notes permanently",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !purgeYes {
			return fmt.Errorf("purge cannot be undone; pass --yes to confirm")
		}
		return withIDs(args, func(ctx context.Context, svc idOps, ids []int) error {
			return svc.Purge(ctx, ids...)
		}, "Purged")
	},
}

type idOps interface {
	SoftDelete(ctx context.Context, ids ...int) error
	Recover(ctx context.Context, ids ...int) error
	Purge(ctx context.Context, ids ...int) error
}

func withIDs(args []string, fn func(context.Context, idOps, []int) error, verb string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	svc, _, err := openService()
	if err != nil {
		return err
	}
	if err := fn(context.Background(), svc, ids); err != nil {
		return err
	}
	fmt.Printf("%s %d note(s)\n", verb, len(ids))
	return nil
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(recoverCmd)
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().BoolVar(&purgeYes, "yes", false, "Confirm permanent deletion")
}
