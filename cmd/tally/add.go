package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var addJSON bool

var addCmd = &cobra.Command{
	Use:   "add <content>...",
	Short: "Create a note",
	Long: `Create a note. Facts are read from the text and tags already in use
are applied when the note mentions them.`,
	Example: `  tally add "Pay rent EUR1200 every month 01/07"
  tally add Q3 printer paper USD=3*4.5`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		note, err := svc.Create(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		if addJSON {
			return printJSON(os.Stdout, view(note))
		}
		fmt.Printf("Created note %d\n", note.ID)
		return printTable(os.Stdout, noteSlice(note))
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().BoolVar(&addJSON, "json", false, "Output in JSON format")
}
