package main

import (
	"os"

	"github.com/aretw0/introspection"
	"github.com/aretw0/tally"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the store, the note service and the scheduler",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, opts, err := openService()
		if err != nil {
			return err
		}
		components := []any{svc.Store(), svc, tally.NewScheduler(svc, opts...)}

		out := map[string]any{}
		for _, c := range components {
			if i, ok := c.(interface {
				introspection.Introspectable
				introspection.Component
			}); ok {
				out[i.ComponentType()] = i.State()
			}
		}
		return printJSON(os.Stdout, out)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
