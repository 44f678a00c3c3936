package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/intact-bridges/internal/output"
	"github.com/inodb/intact-bridges/internal/uniprot"
	"github.com/inodb/intact-bridges/internal/uniprot/xref"
	"github.com/inodb/intact-bridges/internal/uniprotkb"
)

// session is a started RemoteService with the logger it reports to.
type session struct {
	svc    *uniprot.RemoteService
	origin string
	logger *zap.Logger
}

// openSession builds the entry service from the configuration and starts it.
func openSession(ctx context.Context) (*session, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}

	var (
		backend uniprot.EntryService
		origin  string
	)
	if dir := viper.GetString("uniprot.offline_dir"); dir != "" {
		d := uniprotkb.NewDirService(dir, viper.GetString("uniprot.varsplic_fasta"))
		d.SetLogger(logger)
		backend, origin = d, "dir:"+dir
	} else {
		c := uniprotkb.NewClient(uniprotkb.Config{
			BaseURL:   viper.GetString("uniprot.base_url"),
			Timeout:   viper.GetDuration("uniprot.timeout"),
			RateLimit: viper.GetInt("uniprot.rate_limit"),
			PageSize:  viper.GetInt("uniprot.page_size"),
		})
		c.SetLogger(logger)
		backend, origin = c, viper.GetString("uniprot.base_url")
	}

	svc := uniprot.NewRemoteService(backend)
	svc.SetLogger(logger)
	svc.SetMaxDepth(viper.GetInt("resolve.max_depth"))
	if dbs := databases(viper.GetStringSlice("xref.databases")); len(dbs) > 0 {
		svc.SetSelector(xref.NewDatabaseFilter("config", dbs...))
	}

	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start entry service: %w", err)
	}
	return &session{svc: svc, origin: origin, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.svc.Close(); err != nil {
		s.logger.Warn("closing entry service", zap.Error(err))
	}
	_ = s.logger.Sync()
}

// databases flattens comma separated values, as set from the environment.
func databases(values []string) []string {
	var out []string
	for _, v := range values {
		for _, db := range strings.Split(v, ",") {
			if db = strings.TrimSpace(db); db != "" {
				out = append(out, db)
			}
		}
	}
	return out
}

// proteinWriter is implemented by the tab and FASTA writers.
type proteinWriter interface {
	Write(p *uniprot.Protein) error
	Flush() error
}

func newProteinWriter(w io.Writer, format string) (proteinWriter, error) {
	switch format {
	case "tab":
		tw := output.NewTabWriter(w)
		if err := tw.WriteHeader(); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
		return tw, nil
	case "fasta":
		return output.NewFASTAWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", errUsage, format)
	}
}

func writeProteins(w io.Writer, format string, proteins []*uniprot.Protein) error {
	pw, err := newProteinWriter(w, format)
	if err != nil {
		return err
	}
	for _, p := range proteins {
		if err := pw.Write(p); err != nil {
			return fmt.Errorf("writing %s: %w", p.AC, err)
		}
	}
	return pw.Flush()
}

func newRetrieveCmd() *cobra.Command {
	var (
		format        string
		noTranscripts bool
	)

	cmd := &cobra.Command{
		Use:   "retrieve <accession>...",
		Short: "Retrieve proteins by UniProt accession",
		Example: `  intact-bridges retrieve P12345
  intact-bridges retrieve -f fasta P12345-2 P12345-PRO_0000012345
  intact-bridges retrieve --no-transcripts Q9Y6K9`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRetrieve(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args, format, !noTranscripts)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "tab", "Output format: tab, fasta")
	cmd.Flags().BoolVar(&noTranscripts, "no-transcripts", false, "Skip splice variants and feature chains")

	return cmd
}

func runRetrieve(ctx context.Context, out, errOut io.Writer, acs []string, format string, transcripts bool) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	var proteins []*uniprot.Protein
	for _, ac := range acs {
		found, err := s.svc.RetrieveProteins(ctx, ac, transcripts)
		if err != nil {
			return fmt.Errorf("retrieve %s: %w", ac, err)
		}
		proteins = append(proteins, found...)
	}

	if err := writeProteins(out, format, proteins); err != nil {
		return err
	}
	return output.WriteReports(errOut, s.svc.Reports())
}

func newTranscriptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transcripts <identifier>",
		Short: "Retrieve a splice variant or feature chain by identifier",
		Example: `  intact-bridges transcripts P12345-2
  intact-bridges transcripts P12345-PRO_0000012345`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranscripts(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
		},
	}
}

func runTranscripts(ctx context.Context, out, errOut io.Writer, ac string) error {
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	transcripts, err := s.svc.RetrieveProteinTranscripts(ctx, ac)
	if err != nil {
		return fmt.Errorf("retrieve transcripts of %s: %w", ac, err)
	}

	w := bufio.NewWriter(out)
	fmt.Fprintln(w, "#AC\tType\tMaster_AC\tLength\tSequence")
	for _, t := range transcripts {
		kind := output.KindSpliceVariant
		if _, ok := t.(*uniprot.FeatureChain); ok {
			kind = output.KindFeatureChain
		}
		seq := t.Sequence()
		if seq == "" {
			seq = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", t.PrimaryAC(), kind, t.Master(), len(t.Sequence()), seq)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return output.WriteReports(errOut, s.svc.Reports())
}

// readAccessions reads one accession per line. Blank lines and lines
// starting with '#' are skipped.
func readAccessions(r io.Reader) ([]string, error) {
	var acs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		acs = append(acs, strings.Fields(line)[0])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading accessions: %w", err)
	}
	return acs, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}
