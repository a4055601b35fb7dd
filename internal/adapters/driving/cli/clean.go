package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Cancel or clean all export requests on the counter",
	Long: `Lists every export request known for the configured counter and
tears each one down: processed requests have their prepared data
cleaned, pending requests are canceled. Requests that fail to clean
are logged and skipped.`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, _ []string) error {
	if err := setupExporter(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := exporter.Clean(ctx); err != nil {
		return fmt.Errorf("clean failed: %w", err)
	}

	cmd.Println("All export requests cleaned.")
	return nil
}
