package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/tally/pkg/notes"
	"github.com/spf13/cobra"
)

var (
	importMode   string
	importFormat string
	exportFormat string
	exportOut    string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import notes from a JSON or YAML export",
	Long: `Import notes from a JSON or YAML export. Use "-" to read stdin.
Older exports without fact fields have their facts derived from the content.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode := notes.ImportMode(importMode)
		if mode != notes.ImportMerge && mode != notes.ImportReplace {
			return fmt.Errorf("invalid import mode %q (merge, replace)", importMode)
		}
		name := importFormat
		if name == "" {
			name = filepath.Ext(args[0])
		}
		format, err := notes.ParseFormat(name)
		if err != nil {
			return err
		}

		var r io.Reader = os.Stdin
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			r = f
		}

		svc, _, err := openService()
		if err != nil {
			return err
		}
		report, err := svc.Import(context.Background(), r, format, mode)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d note(s): %d reassigned, %d derived\n",
			report.Imported, report.Reassigned, report.Derived)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every note as JSON, CSV or YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		name := exportFormat
		if name == "" && exportOut != "" {
			name = filepath.Ext(exportOut)
		}
		format, err := notes.ParseFormat(name)
		if err != nil {
			return err
		}
		svc, _, err := openService()
		if err != nil {
			return err
		}

		if exportOut == "" {
			return svc.Export(context.Background(), os.Stdout, format)
		}
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		if err := svc.Export(context.Background(), f, format); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Exported to %s\n", exportOut)
		return nil
	},
}

var renumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Renumber notes from 1 in the current list order",
	Long: `Renumber notes from 1. Notes matching the filter flags come first, in
the order list would show them; the rest follow in id order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := listFilter()
		if err != nil {
			return err
		}
		svc, _, err := openService()
		if err != nil {
			return err
		}
		if err := svc.Renumber(context.Background(), filter); err != nil {
			return err
		}
		fmt.Println("Notes renumbered")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(renumberCmd)

	importCmd.Flags().StringVar(&importMode, "mode", string(notes.ImportMerge), "merge or replace")
	importCmd.Flags().StringVar(&importFormat, "format", "", "json or yaml (default: from the file extension)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "json, csv or yaml (default: json, or the -o extension)")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "Output file (default: stdout)")
	addFilterFlags(renumberCmd)
}
