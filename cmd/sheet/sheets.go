package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.alis.build/alog"

	"github.com/vogtb/go-spreadsheet/packages/script"
	"github.com/vogtb/go-spreadsheet/packages/spreadsheet"
	"github.com/vogtb/go-spreadsheet/packages/store"
)

func (a *app) newCmd() *cobra.Command {
	var (
		name       string
		rows, cols int
	)
	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create an empty sheet and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				name = a.cfg.SheetName
			}
			if rows == 0 {
				rows = a.cfg.Rows
			}
			if cols == 0 {
				cols = a.cfg.Cols
			}
			doc, err := store.Save(cmd.Context(), a.store, spreadsheet.NewSheet(name, rows, cols))
			if err != nil {
				return err
			}
			alog.Infof(cmd.Context(), "created sheet %s (%q, %dx%d)", doc.ID, doc.Name, doc.Rows, doc.Cols)
			fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Sheet name (default from config)")
	cmd.Flags().IntVar(&rows, "rows", 0, "Row count (default from config)")
	cmd.Flags().IntVar(&cols, "cols", 0, "Column count (default from config)")
	return cmd
}

func (a *app) applyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <id> <script.yaml>",
		Short: "Apply a YAML command script to a stored sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()
			records, err := script.Decode(f)
			if err != nil {
				return err
			}

			s, err := store.Load(ctx, a.store, args[0])
			if err != nil {
				return err
			}
			report, err := script.Run(ctx, s, records)
			if err != nil {
				return err
			}
			if _, err := store.Save(ctx, a.store, s); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, o := range report.Outcomes {
				if o.Err != nil {
					fmt.Fprintf(out, "%d\t%s\terror: %v\n", i+1, o.Record.Type, o.Err)
					continue
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n", i+1, o.Record.Type, o.Result.Message)
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d commands rejected", report.Failed, len(report.Outcomes))
			}
			return nil
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <cell> <value>",
		Short: "Set one cell; an empty value clears it",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, args[0], spreadsheet.SetValue{Cell: args[1], Value: args[2]})
		},
	}
}

func (a *app) calcCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calc <id> <range> [SUM|AVERAGE|COUNT]",
		Short: "Aggregate a range without changing the sheet",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Load(cmd.Context(), a.store, args[0])
			if err != nil {
				return err
			}
			calc := spreadsheet.Calculate{Range: args[1]}
			if len(args) == 3 {
				calc.Formula = args[2]
			}
			res, err := spreadsheet.Execute(s, calc)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

// execute runs one mutating command against a stored sheet and saves it.
func (a *app) execute(cmd *cobra.Command, id string, c spreadsheet.Command) error {
	ctx := cmd.Context()
	s, err := store.Load(ctx, a.store, id)
	if err != nil {
		return err
	}
	res, err := spreadsheet.Execute(s, c)
	if err != nil {
		alog.Warnf(ctx, "%s rejected: %v", c.Kind(), err)
		return err
	}
	if _, err := store.Save(ctx, a.store, s); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Message)
	return nil
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print every non-empty cell with its content and display value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Load(cmd.Context(), a.store, args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "# %s (%dx%d)\n", s.Name(), s.Rows(), s.Cols())
			for at, cell := range s.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", at.Label(), cell.Content(), cell.Display)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# cells: %d, distinct formulas: %d\n", s.Len(), s.FormulaCount())
			return nil
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored sheets by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, d := range docs {
				fmt.Fprintf(tw, "%s\t%s\t%d cells\t%s\n", d.ID, d.Name, len(d.Cells), d.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a stored sheet",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.Rename(cmd.Context(), a.store, args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %q\n", doc.ID, doc.Name)
			return nil
		},
	}
}

func (a *app) duplicateCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "duplicate <id>",
		Short: "Store a copy of a sheet and print the new id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := store.Duplicate(cmd.Context(), a.store, args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", `Name of the copy (default "<name> (Copy)")`)
	return cmd
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			alog.Infof(cmd.Context(), "deleted sheet %s", args[0])
			return nil
		},
	}
}
