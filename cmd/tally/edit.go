package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/tally/pkg/core"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit <id> <content>...",
	Short: "Replace the content of a note",
	Long:  `Replace the content of a note. Every fact is derived again from the new text.`,
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[:1])
		if err != nil {
			return err
		}
		svc, _, err := openService()
		if err != nil {
			return err
		}
		note, err := svc.UpdateContent(context.Background(), ids[0], strings.Join(args[1:], " "))
		if err != nil {
			return err
		}
		fmt.Printf("Updated note %d\n", note.ID)
		return printTable(os.Stdout, noteSlice(note))
	},
}

var setIDCmd = &cobra.Command{
	Use:   "set-id <id> <new-id>",
	Short: "Change the id of a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		svc, _, err := openService()
		if err != nil {
			return err
		}
		if err := svc.SetID(context.Background(), ids[0], ids[1]); err != nil {
			return err
		}
		fmt.Printf("Note %d is now %d\n", ids[0], ids[1])
		return nil
	},
}

func noteSlice(n core.Note) []core.Note {
	return []core.Note{n}
}

func init() {
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(setIDCmd)
}
