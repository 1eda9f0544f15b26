package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sorobanhub/registry/internal/catalog"
	"github.com/sorobanhub/registry/internal/cli"
	"github.com/sorobanhub/registry/internal/model"
)

func checklistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checklist",
		Short: "Show the security checklist catalog",
		Long: `Display every checklist item the audit engine evaluates, grouped
by category, with severity and detection method.`,
		RunE: runChecklist,
	}

	cmd.Flags().String("category", "", "only show items in this category")
	return cmd
}

func runChecklist(cmd *cobra.Command, _ []string) error {
	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("failed to load checklist catalog: %w", err)
	}

	filter, _ := cmd.Flags().GetString("category")

	fmt.Println(cli.FormatTitle("Security Checklist")) //nolint:forbidigo // User-facing output
	fmt.Println()                                      //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Category"),
		cli.HeaderStyle.Render("Severity"),
		cli.HeaderStyle.Render("Detection"),
		cli.HeaderStyle.Render("Title")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 16),
		strings.Repeat("─", 18),
		strings.Repeat("─", 8),
		strings.Repeat("─", 14),
		strings.Repeat("─", 30)); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	shown := 0
	for _, category := range model.Categories {
		if filter != "" && string(category) != filter {
			continue
		}
		for _, item := range cat.ByCategory(category) {
			if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				item.ID,
				category.DisplayName(),
				cli.RenderSeverity(item.Severity),
				item.Detection.Type,
				item.Title); err != nil {
				return fmt.Errorf("failed to write row: %w", err)
			}
			shown++
		}
	}

	if shown == 0 {
		fmt.Println(cli.InfoStyle.Render("No checklist items match that category.")) //nolint:forbidigo // User-facing output
	}

	return nil
}
