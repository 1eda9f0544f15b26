package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sorobanhub/registry/internal/cli"
	"github.com/sorobanhub/registry/internal/model"
	"github.com/sorobanhub/registry/internal/service"
)

func contractsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contracts",
		Short: "Manage registered contracts",
	}

	cmd.AddCommand(contractsAddCmd())
	cmd.AddCommand(contractsListCmd())
	return cmd
}

func contractsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <address> <name>",
		Short: "Register a contract",
		Args:  cobra.ExactArgs(2),
		RunE:  runContractsAdd,
	}

	cmd.Flags().String("network", "testnet", "deployment network (mainnet, testnet, futurenet)")
	cmd.Flags().String("publisher", "", "publisher name")
	cmd.Flags().String("description", "", "contract description")
	return cmd
}

func runContractsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	network, _ := cmd.Flags().GetString("network")
	publisher, _ := cmd.Flags().GetString("publisher")
	description, _ := cmd.Flags().GetString("description")

	contract := model.Contract{
		ID:          uuid.NewString(),
		Address:     args[0],
		Name:        args[1],
		Description: description,
		Publisher:   publisher,
		Network:     model.Network(network),
		CreatedAt:   time.Now().UTC(),
	}
	if err := contract.Validate(); err != nil {
		return err
	}

	if err := store.SaveContract(ctx, &contract); err != nil {
		return fmt.Errorf("failed to save contract: %w", err)
	}

	fmt.Println(cli.FormatSuccess(fmt.Sprintf("Registered %s (%s)", contract.Name, contract.ID))) //nolint:forbidigo // User-facing output
	return nil
}

func contractsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered contracts",
		RunE:  runContractsList,
	}

	cmd.Flags().String("network", "", "filter by network")
	cmd.Flags().String("query", "", "filter by name or address substring")
	cmd.Flags().Int64("page", 1, "page number")
	cmd.Flags().Int64("page-size", 20, "contracts per page")
	return cmd
}

func runContractsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("failed to close storage", "error", closeErr)
		}
	}()

	network, _ := cmd.Flags().GetString("network")
	query, _ := cmd.Flags().GetString("query")
	page, _ := cmd.Flags().GetInt64("page")
	pageSize, _ := cmd.Flags().GetInt64("page-size")

	contracts, total, err := store.ListContracts(ctx, service.ContractFilter{
		Query:    query,
		Network:  model.Network(network),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return fmt.Errorf("failed to list contracts: %w", err)
	}

	if len(contracts) == 0 {
		fmt.Println(cli.InfoStyle.Render("No contracts found. Use 'registry contracts add' to register one.")) //nolint:forbidigo // User-facing output
		return nil
	}

	fmt.Println(cli.FormatTitle(fmt.Sprintf("Contracts (%d total)", total))) //nolint:forbidigo // User-facing output
	fmt.Println()                                                           //nolint:forbidigo // User-facing output

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil {
			slog.Error("failed to flush table writer", "error", flushErr)
		}
	}()

	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Name"),
		cli.HeaderStyle.Render("Network"),
		cli.HeaderStyle.Render("Address"),
		cli.HeaderStyle.Render("Registered")); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("─", 36),
		strings.Repeat("─", 20),
		strings.Repeat("─", 9),
		strings.Repeat("─", 20),
		strings.Repeat("─", 10)); err != nil {
		return fmt.Errorf("failed to write separator: %w", err)
	}

	for _, contract := range contracts {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			contract.ID,
			contract.Name,
			contract.Network,
			contract.Address,
			contract.CreatedAt.Format("2006-01-02")); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return nil
}
