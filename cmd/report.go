package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/marginly/marginly/internal/app"
	"github.com/marginly/marginly/internal/database"
	"github.com/marginly/marginly/pkg/report"
	"github.com/spf13/cobra"
)

var (
	flagProjectId int
	flagFormat    string
	flagGroupBy   string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print financial reports",
}

var financialsCmd = &cobra.Command{
	Use:   "financials",
	Short: "Financial summary of one project",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withReports(cmd.Context(), func(service report.Service, renderer report.Renderer) error {
			financials, err := service.Financials(cmd.Context(), flagProjectId)
			if err != nil {
				return err
			}
			if flagFormat == "csv" {
				return writeRendered(cmd.OutOrStdout(), func() (string, error) { return renderer.RenderFinancials(financials) })
			}
			return writeJSON(cmd.OutOrStdout(), report.NewFinancialsDTO(financials))
		})
	},
}

var profitabilityCmd = &cobra.Command{
	Use:   "profitability",
	Short: "Revenue, cost and margin of every project or client",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withReports(cmd.Context(), func(service report.Service, renderer report.Renderer) error {
			rows, err := service.Profitability(cmd.Context(), flagGroupBy)
			if err != nil {
				return err
			}
			if flagFormat == "csv" {
				return writeRendered(cmd.OutOrStdout(), func() (string, error) { return renderer.RenderProfitability(rows) })
			}
			return writeJSON(cmd.OutOrStdout(), report.NewProfitabilityDTOs(rows))
		})
	},
}

func init() {
	reportCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "json", "Output format: json or csv")
	financialsCmd.Flags().IntVarP(&flagProjectId, "project", "p", 0, "Project ID")
	_ = financialsCmd.MarkFlagRequired("project")
	profitabilityCmd.Flags().StringVar(&flagGroupBy, "group-by", report.GroupByProject, "Group rows by project or client")

	reportCmd.AddCommand(financialsCmd, profitabilityCmd)
	rootCmd.AddCommand(reportCmd)
}

func withReports(ctx context.Context, fn func(service report.Service, renderer report.Renderer) error) error {
	if flagFormat != "json" && flagFormat != "csv" {
		return fmt.Errorf("unknown format %q, expected json or csv", flagFormat)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	deps := app.BuildDependencies(db, cfg)
	return fn(deps.ReportService, deps.ReportRenderer)
}

func writeRendered(w io.Writer, render func() (string, error)) error {
	body, err := render()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, body)
	return err
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
