package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/halcyon-labs/logfetch-cli/internal/core/domain"
)

var (
	exportSource   string
	exportDateFrom string
	exportDateTo   string
	exportFields   []string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a log slice and download it",
	Long: `Submits an export request, waits for the service to process it and
downloads the resulting parts into a single document.

The document is written to --out, or to stdout when --out is "-".
Interrupting the command cancels the remote request best-effort.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportSource, "source", "visits", "log source: visits or hits")
	exportCmd.Flags().StringVar(&exportDateFrom, "date-from", "", "first day of the range (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportDateTo, "date-to", "", "last day of the range (YYYY-MM-DD)")
	exportCmd.Flags().StringSliceVar(&exportFields, "fields", nil, "comma-separated list of fields to export")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "-", "output file, \"-\" for stdout")

	_ = exportCmd.MarkFlagRequired("date-from")
	_ = exportCmd.MarkFlagRequired("date-to")
	_ = exportCmd.MarkFlagRequired("fields")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	if err := setupExporter(); err != nil {
		return err
	}

	spec, err := parseExportSpec()
	if err != nil {
		return err
	}

	// Ctrl-C aborts polling and outstanding downloads; the
	// orchestrator cancels the remote request on its way out.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := exporter.Export(ctx, spec)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if err := writeDocument(doc); err != nil {
		return err
	}

	stats := exporter.Stats()
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d part(s), %d byte(s)\n",
		stats.Parts, stats.BytesLoaded)
	return nil
}

// parseExportSpec builds the domain spec from the command flags.
func parseExportSpec() (domain.ExportSpec, error) {
	source, err := domain.ParseSource(exportSource)
	if err != nil {
		return domain.ExportSpec{}, err
	}

	from, err := time.Parse(domain.DateLayout, exportDateFrom)
	if err != nil {
		return domain.ExportSpec{}, fmt.Errorf("invalid --date-from: %w", err)
	}
	to, err := time.Parse(domain.DateLayout, exportDateTo)
	if err != nil {
		return domain.ExportSpec{}, fmt.Errorf("invalid --date-to: %w", err)
	}

	fields := make([]string, 0, len(exportFields))
	for _, f := range exportFields {
		if f = strings.TrimSpace(f); f != "" {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return domain.ExportSpec{}, errors.New("at least one field is required")
	}

	return domain.ExportSpec{
		Source:   source,
		DateFrom: from,
		DateTo:   to,
		Fields:   fields,
	}, nil
}

// writeDocument streams the document to the configured destination.
func writeDocument(doc *domain.LogDocument) error {
	if exportOut == "-" {
		_, err := os.Stdout.ReadFrom(doc.Reader())
		return err
	}

	f, err := os.Create(exportOut)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if _, err := f.ReadFrom(doc.Reader()); err != nil {
		f.Close()
		return fmt.Errorf("write output file: %w", err)
	}
	return f.Close()
}
