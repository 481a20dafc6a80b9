package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"studylife-go/internal/config"
	"studylife-go/internal/service"
	"studylife-go/pkg/llm"
	"studylife-go/pkg/log"
	"studylife-go/pkg/storage"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	summaryCmd := &cobra.Command{Use: "summary", Short: "Generate summaries"}

	var userID uint
	var date string
	for _, kind := range []string{service.SummaryDaily, service.SummaryMonthly} {
		kind := kind
		cmd := &cobra.Command{
			Use:   kind,
			Short: fmt.Sprintf("Generate the %s summary for one user", kind),
			RunE: func(cmd *cobra.Command, args []string) error {
				ref, err := parseRefDate(date, time.Now())
				if err != nil {
					return err
				}
				svc, err := newSummaryService(cmd.Context())
				if err != nil {
					return err
				}
				return runSummary(cmd.Context(), svc, kind, userID, ref, cmd.OutOrStdout())
			},
		}
		cmd.Flags().UintVarP(&userID, "user", "u", 0, "User ID (required)")
		cmd.Flags().StringVarP(&date, "date", "d", "", "Reference date YYYY-MM-DD (defaults to today)")
		_ = cmd.MarkFlagRequired("user")
		summaryCmd.AddCommand(cmd)
	}
	rootCmd.AddCommand(summaryCmd)
}

func parseRefDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
	}
	return t, nil
}

func newSummaryService(ctx context.Context) (service.SummaryService, error) {
	cfg := config.Conf
	db, err := openDB()
	if err != nil {
		return nil, err
	}
	var archiver service.SummaryArchiver
	if cfg.MinIO.Enabled {
		archive, err := storage.NewArchive(ctx, cfg.MinIO)
		if err != nil {
			log.Warnf("MinIO 不可用，总结不会归档: %v", err)
		} else {
			archiver = archive
		}
	}
	return service.NewSummaryService(db, llm.NewClient(cfg.AIService), archiver, time.Now), nil
}

func runSummary(ctx context.Context, svc service.SummaryService, kind string, userID uint, ref time.Time, w io.Writer) error {
	if userID == 0 {
		return fmt.Errorf("--user required")
	}
	result, err := svc.Generate(ctx, kind, userID, ref)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
