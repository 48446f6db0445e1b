package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"evaluation-console/internal/app"
	"evaluation-console/internal/config"
	"evaluation-console/internal/report"
	"github.com/spf13/cobra"
)

type resultsOptions struct {
	evaluation string
	student    string
	filter     string
	sort       string
	dir        string
	xlsx       string
	archived   bool
	noColor    bool
}

// NewResultsCmd prints the ranked results of an evaluation or a student.
func NewResultsCmd(configPath *string) *cobra.Command {
	opts := &resultsOptions{}
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Print ranked results of an evaluation or a student",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runResults(ctx, cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.evaluation, "evaluation", "", "evaluation matricule")
	cmd.Flags().StringVar(&opts.student, "student", "", "student id")
	cmd.Flags().StringVarP(&opts.filter, "q", "q", "", "filter on name or student id")
	cmd.Flags().StringVar(&opts.sort, "sort", "rank", "sort field: rank, name or score")
	cmd.Flags().StringVar(&opts.dir, "dir", "asc", "sort direction: asc or desc")
	cmd.Flags().StringVar(&opts.xlsx, "xlsx", "", "also write the table to this .xlsx file")
	cmd.Flags().BoolVar(&opts.archived, "archived", false, "read the last archived snapshot instead of the backend")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colors")
	return cmd
}

func runResults(ctx context.Context, cfg config.Config, opts *resultsOptions, out io.Writer) error {
	kind, subject := app.ResultsByEvaluation, opts.evaluation
	if subject == "" {
		kind, subject = app.ResultsByStudent, opts.student
	}
	if subject == "" {
		return fmt.Errorf("one of --evaluation or --student is required")
	}
	sortState, err := app.ParseSortState(opts.sort, opts.dir)
	if err != nil {
		return err
	}

	c, err := buildConsole(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	var page *app.ResultsPage
	if opts.archived {
		page, err = c.results.OpenArchived(ctx, kind, subject)
	} else {
		page, err = c.results.Open(ctx, kind, subject)
	}
	if err != nil {
		return err
	}
	page.SetFilter(opts.filter)
	page.SetSort(sortState)
	rendered, err := page.Render()
	if err != nil {
		return err
	}

	if err := report.PrintTable(out, rendered, !opts.noColor); err != nil {
		return err
	}
	if opts.xlsx == "" {
		return nil
	}
	f, err := os.Create(opts.xlsx)
	if err != nil {
		return err
	}
	if err := report.WriteXLSX(f, rendered); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
