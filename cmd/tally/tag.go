package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <id> <tag>",
	Short: "Add a tag to a note",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[:1])
		if err != nil {
			return err
		}
		svc, _, err := openService()
		if err != nil {
			return err
		}
		n, err := svc.AddTag(context.Background(), ids[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Note %d tags: %v\n", n.ID, n.Tags)
		return nil
	},
}

var tagRmCmd = &cobra.Command{
	Use:     "rm <id> <tag>",
	Aliases: []string{"remove"},
	Short:   "Remove a tag from a note",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args[:1])
		if err != nil {
			return err
		}
		svc, _, err := openService()
		if err != nil {
			return err
		}
		n, err := svc.RemoveTag(context.Background(), ids[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Note %d tags: %v\n", n.ID, n.Tags)
		return nil
	},
}

var tagListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Show tags in use with their note counts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := openService()
		if err != nil {
			return err
		}
		counts, err := svc.TagCounts(context.Background())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, c := range counts {
			fmt.Fprintf(tw, "%s\t%d\n", c.Tag, c.Count)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagAddCmd, tagRmCmd, tagListCmd)
}
