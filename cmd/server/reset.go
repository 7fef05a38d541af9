package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"invoice-backend/internal/db"
	"invoice-backend/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/spf13/cobra"
)

// resetTables are cleared child first
var resetTables = []string{"invoice_items", "invoices", "accounts"}

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every account and invoice (development only)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.IsProduction() {
			return errors.New("reset is disabled in production")
		}

		if !resetYes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout()) {
			fmt.Fprintln(cmd.OutOrStdout(), "Reset cancelled.")
			return nil
		}

		pool, err := db.Connect(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		tx, err := pool.Begin(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(context.Background())

		if err := truncateAll(cmd.Context(), tx); err != nil {
			return err
		}
		if err := tx.Commit(cmd.Context()); err != nil {
			return fmt.Errorf("failed to commit reset: %w", err)
		}

		log := logger.WithComponent("reset")
		log.Warn().Strs("tables", resetTables).Msg("database reset")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(resetCmd)
}

func confirm(in io.Reader, out io.Writer) bool {
	fmt.Fprintln(out, "WARNING: this deletes ALL accounts and invoices.")
	fmt.Fprint(out, "Type 'yes' to confirm: ")

	answer, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(answer) == "yes"
}

func truncateAll(ctx context.Context, tx pgx.Tx) error {
	for _, table := range resetTables {
		if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+pgx.Identifier{table}.Sanitize()+" CASCADE"); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
