package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/multiplica-sam/sam/internal/ui/client"
	"github.com/multiplica-sam/sam/internal/ui/dashboard"
	"github.com/multiplica-sam/sam/internal/ui/report"
	"github.com/multiplica-sam/sam/internal/ui/types"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func idArg(args []string) (int, error) {
	id, err := types.ParseID(args[0])
	if err != nil {
		return 0, fmt.Errorf("id must be a positive integer: %w", err)
	}
	return id, nil
}

func newLocalitiesCmd(opts *options) *cobra.Command {
	var cards bool

	cmd := &cobra.Command{
		Use:   "localities",
		Short: "List the localities (GET /localidades)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, api, err := opts.apiClient(cmd)
			if err != nil {
				return err
			}
			rows, err := api.Localities(ctx)
			if err != nil {
				return err
			}
			if cards {
				return printJSON(cmd.OutOrStdout(), types.NewLocalityCards(rows))
			}
			return printJSON(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().BoolVar(&cards, "cards", false, "print the dashboard card view of each locality")
	return cmd
}

func newLocalityCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "locality <id_igreja>",
		Short: "Show a locality with its students and statistics (GET /localidade/{id})",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			ctx, api, err := opts.apiClient(cmd)
			if err != nil {
				return err
			}
			detail, err := api.Locality(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), detail)
		},
	}
}

func newStudentCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "student <id_aluno>",
		Short: "Show a student with its history (GET /aluno/{id})",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			ctx, api, err := opts.apiClient(cmd)
			if err != nil {
				return err
			}
			student, err := api.Student(ctx, id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), student)
		},
	}
}

func newStudentsCmd(opts *options) *cobra.Command {
	var churchID int

	cmd := &cobra.Command{
		Use:   "students",
		Short: "List student summaries, optionally for one church (GET /resumo-alunos)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, api, err := opts.apiClient(cmd)
			if err != nil {
				return err
			}
			students, err := api.StudentSummaries(ctx, churchID)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), students)
		},
	}
	cmd.Flags().IntVar(&churchID, "church", 0, "only students of this id_igreja")
	return cmd
}

func newLogsCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the latest scraping runs (GET /logs-scraping)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive")
			}
			ctx, api, err := opts.apiClient(cmd)
			if err != nil {
				return err
			}
			logs, err := api.ScrapingLogs(ctx, limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), logs)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", client.DefaultLogLimit, "number of runs")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the general statistics as displayed by the dashboard (GET /estatisticas/geral)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, api, err := opts.apiClient(cmd)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dashboard.LoadStats(ctx, api))
		},
	}
}

func newHealthCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the SAM api is reachable (GET /health)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, api, err := opts.apiClient(cmd)
			if err != nil {
				return err
			}
			health, err := api.Health(ctx)
			if err != nil {
				return fmt.Errorf("SAM api offline: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), health)
		},
	}
}

func newPDFCmd(opts *options) *cobra.Command {
	var (
		code   string
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "pdf <id_igreja>",
		Short: "Download the PDF report of a locality (GET /pdf/localidade/{id})",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := idArg(args)
			if err != nil {
				return err
			}
			ctx, api, err := opts.apiClient(cmd)
			if err != nil {
				return err
			}
			if code == "" {
				code = lookupCode(ctx, api, id)
			}

			status := cmd.ErrOrStderr()
			button := report.NewButton(report.DefaultResetDelay, func(s report.State) {
				if s != report.Idle {
					fmt.Fprintln(status, s.Label())
				}
			})

			var path string
			err = button.Run(ctx, func(ctx context.Context) error {
				rep, err := api.LocalityReport(ctx, id, code)
				if err != nil {
					return err
				}
				path, err = report.Save(outDir, rep)
				return err
			})
			if err != nil {
				return fmt.Errorf("%s: %w", client.UserMessage(err), err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "code", "", "locality code used in the file name (looked up when empty)")
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory the report is written to")
	return cmd
}

// lookupCode finds the locality code of churchID, falling back to the id itself
func lookupCode(ctx context.Context, api *client.Client, churchID int) string {
	rows, err := api.Localities(ctx)
	if err == nil {
		for _, row := range rows {
			if row.ChurchID == churchID {
				return row.Code
			}
		}
	}
	return strconv.Itoa(churchID)
}
