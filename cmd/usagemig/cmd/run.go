package cmd

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/snikjou/usagemig/internal/config"
	"github.com/snikjou/usagemig/internal/logger"
	"github.com/snikjou/usagemig/internal/migrate"
	"github.com/snikjou/usagemig/internal/output"
	"github.com/snikjou/usagemig/internal/store"
	"github.com/snikjou/usagemig/internal/store/dynamodb"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// runFlags are the flags shared by migrate, revert, and strip.
type runFlags struct {
	execute bool
	yes     bool
	limit   int
}

func addRunFlags(cmd *cobra.Command, flags *runFlags) {
	addRunFlagsWithLimit(cmd, flags, 0)
}

func addRunFlagsWithLimit(cmd *cobra.Command, flags *runFlags, defaultLimit int) {
	cmd.Flags().BoolVar(&flags.execute, "execute", false, "Apply changes instead of previewing them")
	cmd.Flags().BoolVar(&flags.yes, "yes", false, "Skip the confirmation prompt")
	cmd.Flags().IntVar(&flags.limit, "limit", defaultLimit, "Stop after discovering this many documents (0 means no limit)")
}

// runMigration drives one run end to end: load config, connect, discover,
// then either preview or mutate.
func runMigration(cmd *cobra.Command, direction migrate.Direction, flags runFlags) error {
	cfg, err := config.Load()
	if err != nil {
		output.Error("failed to load configuration: %v", err)
		return err
	}

	if direction != migrate.Strip && flags.execute {
		if err := cfg.RequireRunID(); err != nil {
			output.Error(err.Error())
			return err
		}
	}

	if !debug {
		logger.Initialize(cfg.Environment(), cfg.GetLogLevel())
	}
	log := logger.WithRun(slog.Default(), uuid.NewString(), direction.String())

	container, err := dynamodb.Connect(cmd.Context(), dynamodb.Options{
		Table:           cfg.Table,
		Index:           cfg.Index,
		Region:          cfg.Region,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
	}, log)
	if err != nil {
		output.Error("failed to connect to document store: %v", err)
		return err
	}

	migration := &migrate.Migration{
		DocType:   cfg.DocType,
		Role:      cfg.DocRole,
		RunID:     cfg.RunID,
		Direction: direction,
	}
	runner := migrate.NewRunner(container, migration, migrate.Options{
		BatchSize:     cfg.BatchSize,
		Concurrency:   cfg.Concurrency,
		SpotCheckSize: cfg.SpotCheckSize,
		Discovery: migrate.DiscoveryOptions{
			PageSize:      cfg.PageSize,
			MinPageSize:   cfg.MinPageSize,
			SkipOversized: cfg.SkipOversized,
			MaxDocuments:  flags.limit,
		},
	}, log)

	printPlan(cfg, direction, flags)

	if !flags.execute {
		return runPreview(cmd, runner)
	}

	if !flags.yes {
		if !output.Confirm(fmt.Sprintf("Apply the %s patch to table %q?", direction, cfg.Table)) {
			output.Warning("aborted, no documents were changed")
			return nil
		}
	}

	res, err := runner.Execute(cmd.Context())
	if err != nil {
		output.Error("run failed: %v", err)
		return err
	}

	// Per-document failures and verification mismatches end in the
	// summary, not a nonzero exit; only connection and discovery errors
	// fail the process. Unchanged documents are picked up by a rerun.
	return reportResult(res)
}

func reportResult(res *migrate.Result) error {
	printSummary(res)

	if res.Errors > 0 {
		output.Warning("%d documents failed to update; rerun to retry them", res.Errors)
	}
	return nil
}

func runPreview(cmd *cobra.Command, runner *migrate.Runner) error {
	res, preview, err := runner.DryRun(cmd.Context())
	if err != nil {
		output.Error("discovery failed: %v", err)
		return err
	}

	printSummary(res)

	if len(preview) > 0 {
		output.Info("first %d of %d pending documents:", len(preview), res.Pending)
		for _, doc := range preview {
			output.KeyValue(doc.ID(), describeDocument(doc))
		}
	}

	output.Blank()
	output.Info("dry run only; rerun with --execute to apply changes")
	return nil
}

func printPlan(cfg *config.Config, direction migrate.Direction, flags runFlags) {
	output.Header("Usage migration")
	output.KeyValue("Direction", direction.String())
	output.KeyValue("Table", cfg.Table)
	output.KeyValue("Document type", cfg.DocType)
	if direction != migrate.Strip {
		output.KeyValue("Role", cfg.DocRole)
		output.KeyValue("Run ID", cfg.RunID)
	}
	if flags.limit > 0 {
		output.KeyValue("Limit", strconv.Itoa(flags.limit))
	}
	mode := "dry run"
	if flags.execute {
		mode = "execute"
	}
	output.KeyValue("Mode", mode)
	output.Blank()
}

func printSummary(res *migrate.Result) {
	output.KeyValue("Discovered", strconv.Itoa(res.Discovered))
	output.KeyValue("Pending", strconv.Itoa(res.Pending))
	output.KeyValue("Updated", strconv.Itoa(res.Updated))
	output.KeyValue("Already done", strconv.Itoa(res.Skipped))
	output.KeyValue("Errors", strconv.Itoa(res.Errors))

	if res.SpotCheck == nil {
		return
	}

	output.Blank()
	if res.SpotCheck.Passed() {
		output.Success("spot check passed on %d documents", res.SpotCheck.Checked)
		return
	}

	output.Warning("spot check found problems (checked %d, fetch errors %d)",
		res.SpotCheck.Checked, res.SpotCheck.FetchErrors)
	for _, mm := range res.SpotCheck.Mismatches {
		output.Error("document %s field %s: expected %v, got %v", mm.DocumentID, mm.Field, mm.Before, mm.After)
	}
}

func describeDocument(doc store.Document) string {
	role := doc.GetString("role")
	if role == "" {
		role = "unknown role"
	}
	if updatedBy := doc.GetString("updatedBy"); updatedBy != "" {
		return fmt.Sprintf("%s, last updated by %s", role, updatedBy)
	}
	return role
}
