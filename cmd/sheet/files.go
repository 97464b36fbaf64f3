package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.alis.build/alog"

	"github.com/vogtb/go-spreadsheet/packages/export"
	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
	"github.com/vogtb/go-spreadsheet/packages/store"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

// resolveFormat returns the explicit format, or the one implied by the file
// extension.
func resolveFormat(format, path string) (string, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch strings.ToLower(format) {
	case formatCSV:
		return formatCSV, nil
	case formatXLSX:
		return formatXLSX, nil
	}
	return "", fmt.Errorf("unsupported format %q (want csv or xlsx)", format)
}

// withOutput calls write with the file at path, or with stdout when path is
// empty.
func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) exportCmd() *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a stored sheet as CSV (display values) or XLSX",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, err := resolveFormat(format, out)
			if err != nil {
				return err
			}
			s, err := store.Load(ctx, a.store, args[0])
			if err != nil {
				return err
			}
			err = withOutput(cmd, out, func(w io.Writer) error {
				if kind == formatCSV {
					return export.WriteCSV(w, s)
				}
				wb := spreadsheet.NewWorkbook()
				if err := wb.Add(s); err != nil {
					return err
				}
				return export.WriteXLSX(ctx, w, wb)
			})
			if err != nil {
				return err
			}
			alog.Infof(ctx, "exported sheet %s as %s", args[0], kind)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx (default from --out extension)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func (a *app) importCmd() *cobra.Command {
	var format, name string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a CSV or XLSX file as stored sheets and print their ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			path := args[0]
			kind, err := resolveFormat(format, path)
			if err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			wb := spreadsheet.NewWorkbook()
			switch kind {
			case formatCSV:
				if name == "" {
					name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
				}
				s, err := export.ReadCSV(f, name)
				if err != nil {
					return err
				}
				if err := wb.Add(s); err != nil {
					return err
				}
			case formatXLSX:
				if wb, err = export.ReadXLSX(ctx, f); err != nil {
					return err
				}
			}
			return a.saveWorkbook(ctx, cmd.OutOrStdout(), wb)
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx (default from file extension)")
	cmd.Flags().StringVar(&name, "name", "", "Sheet name for CSV imports (default file name)")
	return cmd
}

func (a *app) saveWorkbook(ctx context.Context, out io.Writer, wb *spreadsheet.Workbook) error {
	ids, err := store.SaveWorkbook(ctx, a.store, wb)
	if err != nil {
		return err
	}
	for i, id := range ids {
		fmt.Fprintf(out, "%s\t%s\n", id, wb.Sheets()[i].Name())
	}
	return nil
}

func (a *app) workbookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workbook",
		Short: "Export or import several sheets as workbook JSON",
	}

	var out string
	exportCmd := &cobra.Command{
		Use:   "export <id>...",
		Short: "Write the given sheets, in order, as workbook JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wb, err := store.LoadWorkbook(cmd.Context(), a.store, args)
			if err != nil {
				return err
			}
			return withOutput(cmd, out, func(w io.Writer) error {
				return store.ExportWorkbook(w, wb)
			})
		},
	}
	exportCmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")

	importCmd := &cobra.Command{
		Use:   "import <workbook.json>",
		Short: "Store every sheet of a workbook JSON file and print their ids",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			wb, err := store.ImportWorkbook(f)
			if err != nil {
				return err
			}
			return a.saveWorkbook(cmd.Context(), cmd.OutOrStdout(), wb)
		},
	}

	cmd.AddCommand(exportCmd, importCmd)
	return cmd
}
