package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/tally/pkg/notes"
	"github.com/spf13/cobra"
)

var (
	listJSON    bool
	filterTag   string
	listSearch  string
	listDeleted bool
	listTrash   bool
	listSort    string
	listDesc    bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := listFilter()
		if err != nil {
			return err
		}
		svc, _, err := openService()
		if err != nil {
			return err
		}
		list, err := svc.List(context.Background(), filter)
		if err != nil {
			return err
		}

		if listJSON {
			views := make([]noteView, len(list))
			for i, n := range list {
				views[i] = view(n)
			}
			return printJSON(os.Stdout, views)
		}
		return printTable(os.Stdout, list)
	},
}

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one note",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		svc, _, err := openService()
		if err != nil {
			return err
		}
		n, err := svc.Get(context.Background(), ids[0])
		if err != nil {
			return err
		}
		if showJSON {
			return printJSON(os.Stdout, view(n))
		}

		v := view(n)
		fmt.Printf("ID:         %d\n", v.ID)
		fmt.Printf("Content:    %s\n", v.Content)
		fmt.Printf("Tags:       %v\n", v.Tags)
		fmt.Printf("Created:    %s\n", v.Created)
		fmt.Printf("Deleted:    %v\n", v.Deleted)
		fmt.Printf("Quantity:   %s\n", qty(v.Qty))
		fmt.Printf("Amount:     %s\n", amount(v.Amount, v.Currency))
		fmt.Printf("Due:        %s\n", v.Due)
		fmt.Printf("Recurrence: %s\n", v.Recurrence)
		if v.Origin != 0 {
			fmt.Printf("Series:     %d\n", v.Origin)
		}
		return nil
	},
}

func listFilter() (notes.Filter, error) {
	key, ok := notes.ParseSortKey(listSort)
	if !ok {
		return notes.Filter{}, fmt.Errorf("invalid sort key %q (id, created, content, due)", listSort)
	}
	return notes.Filter{
		Tag:            filterTag,
		Search:         listSearch,
		IncludeDeleted: listDeleted,
		OnlyDeleted:    listTrash,
		Sort:           key,
		Desc:           listDesc,
	}, nil
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterTag, "tag", "", "Filter notes by tag")
	cmd.Flags().StringVarP(&listSearch, "search", "s", "", "Filter by content or id")
	cmd.Flags().BoolVar(&listDeleted, "all", false, "Include deleted notes")
	cmd.Flags().BoolVar(&listTrash, "trash", false, "Only deleted notes")
	cmd.Flags().StringVar(&listSort, "sort", "id", "Sort by id, created, content or due")
	cmd.Flags().BoolVar(&listDesc, "desc", false, "Sort in descending order")
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	addFilterFlags(listCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
}
