package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sorobanhub/registry/internal/cli"
	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/report"
)

func auditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Run and inspect security audits",
	}

	cmd.AddCommand(auditCreateCmd())
	cmd.AddCommand(auditShowCmd())
	cmd.AddCommand(auditSetCmd())
	cmd.AddCommand(auditExportCmd())
	return cmd
}

func auditCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <contract-id>",
		Short: "Start a new security audit for a contract",
		Long: `Create an audit with the full checklist in pending state. If a source
file is supplied, pattern-based checks are evaluated against it and their
verdicts are recorded automatically.`,
		Args: cobra.ExactArgs(1),
		RunE: runAuditCreate,
	}

	cmd.Flags().String("auditor", "", "auditor name (required)")
	cmd.Flags().String("source", "", "path to the contract source to scan")
	_ = cmd.MarkFlagRequired("auditor")
	return cmd
}

func runAuditCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, store, err := initAuditService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	auditor, _ := cmd.Flags().GetString("auditor")
	sourcePath, _ := cmd.Flags().GetString("source")

	var sourceCode *string
	if sourcePath != "" {
		data, err := os.ReadFile(sourcePath) //nolint:gosec // Path supplied by the operator
		if err != nil {
			return fmt.Errorf("failed to read source file: %w", err)
		}
		src := string(data)
		sourceCode = &src
	}

	resp, err := svc.CreateAudit(ctx, args[0], auditor, sourceCode)
	if err != nil {
		return fmt.Errorf("failed to create audit: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Created audit %s", resp.Audit.ID))) //nolint:forbidigo // User-facing output
	fmt.Printf("Checks: %d  Auto-detected: %d  Score: %s\n",                       //nolint:forbidigo // User-facing output
		len(resp.Checks), resp.AutoDetectedCount,
		cli.RenderScore(resp.Audit.OverallScore, report.Badge(resp.Audit.OverallScore)))
	return nil
}

func auditShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <audit-id>",
		Short: "Show an audit with per-category scores",
		Args:  cobra.ExactArgs(1),
		RunE:  runAuditShow,
	}
}

func runAuditShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, store, err := initAuditService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	resp, err := svc.GetAudit(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to load audit: %w", err)
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Audit %s", resp.Audit.ID)))              //nolint:forbidigo // User-facing output
	fmt.Printf("Contract: %s\n", resp.Audit.ContractID)                               //nolint:forbidigo // User-facing output
	fmt.Printf("Auditor:  %s\n", resp.Audit.Auditor)                                  //nolint:forbidigo // User-facing output
	fmt.Printf("Date:     %s\n", resp.Audit.AuditDate.Format("2006-01-02 15:04 UTC")) //nolint:forbidigo // User-facing output
	fmt.Printf("Score:    %s\n\n",                                                    //nolint:forbidigo // User-facing output
		cli.RenderScore(resp.Audit.OverallScore, report.Badge(resp.Audit.OverallScore)))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Score"),
		cli.HeaderStyle.Render("Passed"),
		cli.HeaderStyle.Render("Critical/High failed")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 22),
		strings.Repeat("─", 6),
		strings.Repeat("─", 6),
		strings.Repeat("─", 20)); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, cs := range resp.CategoryScores {
		if _, err := fmt.Fprintf(w, "%s\t%.1f\t%d/%d\t%d/%d\n",
			cs.Category,
			cs.Score, cs.Passed, cs.Total,
			cs.FailedCritical, cs.FailedHigh); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}

func auditSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <audit-id> <check-id> <status>",
		Short: "Record a manual verdict for one check",
		Long:  `Set a check to passed, failed, pending, or not_applicable.`,
		Args:  cobra.ExactArgs(3),
		RunE:  runAuditSet,
	}

	cmd.Flags().String("notes", "", "auditor notes for this verdict")
	return cmd
}

func runAuditSet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	status, err := model.ParseCheckStatus(args[2])
	if err != nil {
		return err
	}

	var notes *string
	if n, _ := cmd.Flags().GetString("notes"); n != "" {
		notes = &n
	}

	svc, store, err := initAuditService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	check, err := svc.UpdateCheck(ctx, args[0], args[1], status, notes)
	if err != nil {
		return fmt.Errorf("failed to update check: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("%s is now %s", check.ID, cli.RenderStatus(check.Status)))) //nolint:forbidigo // User-facing output
	return nil
}

func auditExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <audit-id>",
		Short: "Export an audit as a markdown report",
		Args:  cobra.ExactArgs(1),
		RunE:  runAuditExport,
	}

	cmd.Flags().StringP("output", "o", "", "write the report to a file instead of stdout")
	cmd.Flags().Bool("failures-only", false, "only include failed checks")
	cmd.Flags().Bool("no-descriptions", false, "omit check descriptions")
	return cmd
}

func runAuditExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	svc, store, err := initAuditService(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	failuresOnly, _ := cmd.Flags().GetBool("failures-only")
	noDescriptions, _ := cmd.Flags().GetBool("no-descriptions")

	doc, err := svc.ExportAudit(ctx, args[0], model.ExportOptions{
		IncludeDescriptions: !noDescriptions,
		FailuresOnly:        failuresOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to export audit: %w", err)
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := os.WriteFile(output, []byte(doc), 0o600); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Println(cli.FormatSuccess("Report written to " + output)) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Print(doc) //nolint:forbidigo // User-facing output
	return nil
}
