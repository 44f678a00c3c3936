package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/intact-bridges/internal/duckdb"
	"github.com/inodb/intact-bridges/internal/output"
	"github.com/inodb/intact-bridges/internal/uniprot"
)

func newBatchCmd() *cobra.Command {
	var (
		input  string
		format string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Retrieve the proteins of a list of accessions",
		Long: `Retrieve the proteins of every accession in a file, one per line.

Accessions that cannot be resolved are reported on stderr and do not stop the
batch. With --store the retrieved proteins are saved to a DuckDB database.`,
		Example: `  intact-bridges batch -i accessions.txt
  intact-bridges batch -i accessions.txt --workers 4 --store proteins.duckdb
  cat accessions.txt | intact-bridges batch -i -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("%w: --input is required", errUsage)
			}
			return runBatch(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), input, format)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "File with one accession per line ('-' for stdin)")
	cmd.Flags().StringVarP(&format, "format", "f", "tab", "Output format: tab, fasta")
	cmd.Flags().Int("workers", 1, "Number of parallel retrieval workers")
	cmd.Flags().String("store", "", "DuckDB database to store the proteins in")
	_ = viper.BindPFlag("batch.workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("store.path", cmd.Flags().Lookup("store"))

	return cmd
}

func runBatch(ctx context.Context, out, errOut io.Writer, input, format string) error {
	f, err := openInput(input)
	if err != nil {
		return err
	}
	acs, err := readAccessions(f)
	f.Close()
	if err != nil {
		return err
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	started := time.Now()
	workers := viper.GetInt("batch.workers")
	var results map[string][]*uniprot.Protein
	if workers > 1 {
		results, err = s.svc.RetrieveBatchParallel(ctx, acs, workers)
	} else {
		results, err = s.svc.RetrieveBatch(ctx, acs)
	}
	if err != nil {
		return fmt.Errorf("batch retrieval: %w", err)
	}

	var proteins []*uniprot.Protein
	for _, ac := range acs {
		proteins = append(proteins, results[ac]...)
	}
	s.logger.Info("batch retrieved",
		zap.Int("accessions", len(acs)),
		zap.Int("resolved", len(results)),
		zap.Duration("elapsed", time.Since(started)))

	if err := writeProteins(out, format, proteins); err != nil {
		return err
	}
	if path := viper.GetString("store.path"); path != "" {
		if err := storeProteins(path, s.origin, started, len(acs), proteins); err != nil {
			return err
		}
	}
	return output.WriteReports(errOut, s.svc.Reports())
}

// storeProteins saves one batch run to the DuckDB database at path.
func storeProteins(path, origin string, started time.Time, accessions int, proteins []*uniprot.Protein) error {
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runID := uuid.New()
	if err := store.WriteRun(runID, origin, started, accessions); err != nil {
		return err
	}
	if err := store.WriteProteins(runID, proteins); err != nil {
		return fmt.Errorf("store proteins: %w", err)
	}
	return nil
}
