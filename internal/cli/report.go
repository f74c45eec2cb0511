package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"quiz-assessment-service/internal/analytics"
	"quiz-assessment-service/internal/app"
	"quiz-assessment-service/internal/config"
	"quiz-assessment-service/internal/report"
)

type reportOptions struct {
	format string
	out    string
	userID string
}

// NewReportCmd computes analytics offline and writes them as JSON or XLSX.
func NewReportCmd(configPath *string) *cobra.Command {
	opts := reportOptions{}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the analytics overview",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			return runReport(cmd.Context(), cfg, opts, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&opts.format, "format", "json", "output format: json or xlsx")
	cmd.Flags().StringVar(&opts.out, "out", "", "output file (required for xlsx; stdout for json when empty)")
	cmd.Flags().StringVar(&opts.userID, "user", "", "also include this user's report")
	return cmd
}

type reportDocument struct {
	Overview analytics.Overview    `json:"overview"`
	User     *analytics.UserReport `json:"user,omitempty"`
}

func runReport(ctx context.Context, cfg config.Config, opts reportOptions, stdout io.Writer) error {
	logger := newLogger(cfg, os.Stderr)
	store, closeStore, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	service := app.NewAnalyticsService(store, store, store, logger)
	doc := reportDocument{}
	if doc.Overview, err = service.Overview(ctx); err != nil {
		return err
	}
	if opts.userID != "" {
		userReport, err := service.UserReport(ctx, opts.userID)
		if err != nil {
			return err
		}
		doc.User = &userReport
	}

	switch opts.format {
	case "json":
		return writeJSONReport(doc, opts.out, stdout)
	case "xlsx":
		if opts.out == "" {
			return fmt.Errorf("--out is required for xlsx")
		}
		return writeWorkbook(doc, opts.userID, opts.out)
	default:
		return fmt.Errorf("unknown report format %q", opts.format)
	}
}

func writeJSONReport(doc reportDocument, path string, stdout io.Writer) error {
	out := stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func writeWorkbook(doc reportDocument, userID, path string) error {
	wb, err := report.NewWorkbook()
	if err != nil {
		return err
	}
	defer wb.Close()
	wb.AddOverview(doc.Overview)
	if doc.User != nil {
		wb.AddUser(userID, *doc.User)
	}
	return wb.SaveAs(path)
}
