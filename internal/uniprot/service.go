package uniprot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/intact-bridges/internal/uniprot/xref"
)

// RemoteService retrieves proteins from a UniProtKB entry service without
// keeping any of them in memory between calls.
type RemoteService struct {
	service  EntryService
	locator  *Locator
	resolver *Resolver
	builder  *Builder
	reports  reportLog
	logger   *zap.Logger
}

// NewRemoteService wires a locator, resolver and builder over service.
func NewRemoteService(service EntryService) *RemoteService {
	locator := NewLocator(service)
	resolver := NewResolver(locator)
	return &RemoteService{
		service:  service,
		locator:  locator,
		resolver: resolver,
		builder:  NewBuilder(resolver),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger on the service and its components.
func (s *RemoteService) SetLogger(logger *zap.Logger) {
	s.logger = logger
	s.locator.SetLogger(logger)
	s.resolver.SetLogger(logger)
	s.builder.SetLogger(logger)
}

// SetSelector sets the cross-reference database filter.
func (s *RemoteService) SetSelector(sel xref.Selector) {
	s.builder.SetSelector(sel)
}

// SetMaxDepth bounds recursive external isoform resolution.
func (s *RemoteService) SetMaxDepth(depth int) {
	s.resolver.SetMaxDepth(depth)
}

// Start opens the underlying entry service.
func (s *RemoteService) Start(ctx context.Context) error {
	return s.service.Start(ctx)
}

// Close releases the underlying entry service.
func (s *RemoteService) Close() error {
	return s.service.Close()
}

// Reports returns a copy of the diagnostics recorded so far, by identifier.
func (s *RemoteService) Reports() map[string][]Report {
	return s.reports.snapshot()
}

// ClearReports discards recorded diagnostics.
func (s *RemoteService) ClearReports() {
	s.reports.clear()
}

func (s *RemoteService) addReport(id string, kind ReportKind, msg string) {
	s.reports.add(Report{Kind: kind, Identifier: id, Message: msg})
}

// collect records the non-fatal reports raised while resolving res.
func (s *RemoteService) collect(res *Resolution) {
	for _, r := range res.Reports() {
		s.reports.add(r)
	}
}

// locate runs the locator and records a report when nothing usable came back.
func (s *RemoteService) locate(ctx context.Context, ac, what string) []*Entry {
	entries, err := s.locator.Locate(ctx, ac)
	if err != nil {
		s.addReport(ac, ReportServiceUnavailable, err.Error())
		return entries
	}
	if len(entries) == 0 {
		s.addReport(ac, ReportNotFound, fmt.Sprintf("could not find %s: %s", what, ac))
	}
	return entries
}

// Retrieve returns the proteins matching ac, with splice variants and feature chains.
func (s *RemoteService) Retrieve(ctx context.Context, ac string) ([]*Protein, error) {
	return s.RetrieveProteins(ctx, ac, true)
}

// RetrieveProteins returns the proteins matching ac. An accession may match
// several entries. Entries violating sequence invariants fail the call.
func (s *RemoteService) RetrieveProteins(ctx context.Context, ac string, transcripts bool) ([]*Protein, error) {
	s.logger.Debug("retrieving from uniprot", zap.String("ac", ac))

	res := NewResolution()
	defer s.collect(res)
	proteins := []*Protein{}
	for _, e := range s.locate(ctx, ac, "protein") {
		p, err := s.builder.Build(ctx, e, transcripts, res)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", e.PrimaryAccession, err)
		}
		proteins = append(proteins, p)
	}
	return proteins, nil
}

// RetrieveAny returns the proteins and transcripts matching ac.
func (s *RemoteService) RetrieveAny(ctx context.Context, ac string) ([]ProteinLike, error) {
	proteins, err := s.Retrieve(ctx, ac)
	if err != nil {
		return nil, err
	}
	transcripts, err := s.RetrieveProteinTranscripts(ctx, ac)
	if err != nil {
		return nil, err
	}

	out := make([]ProteinLike, 0, len(proteins)+len(transcripts))
	for _, p := range proteins {
		out = append(out, p)
	}
	for _, t := range transcripts {
		out = append(out, t)
	}
	return out, nil
}

// RetrieveProteinTranscripts returns the splice variants and feature chains
// identified by ac.
func (s *RemoteService) RetrieveProteinTranscripts(ctx context.Context, ac string) ([]Transcript, error) {
	s.logger.Debug("retrieving protein transcripts from uniprot", zap.String("ac", ac))

	variants, err := s.RetrieveSpliceVariants(ctx, ac)
	if err != nil {
		return nil, err
	}
	chains, err := s.RetrieveFeatureChains(ctx, ac)
	if err != nil {
		return nil, err
	}

	out := make([]Transcript, 0, len(variants)+len(chains))
	for _, v := range variants {
		out = append(out, v)
	}
	for _, c := range chains {
		out = append(out, c)
	}
	return out, nil
}

// RetrieveSpliceVariants returns the splice variant identified by ac from
// every matching entry, once per primary accession.
func (s *RemoteService) RetrieveSpliceVariants(ctx context.Context, ac string) ([]*SpliceVariant, error) {
	res := NewResolution()
	defer s.collect(res)
	seen := make(map[string]bool)
	variants := []*SpliceVariant{}

	for _, e := range s.locate(ctx, ac, "splice variants") {
		p, err := s.builder.Build(ctx, e, true, res)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", e.PrimaryAccession, err)
		}
		sv := findSpliceVariant(p, ac)
		if sv == nil || seen[sv.AC] {
			continue
		}
		seen[sv.AC] = true
		sv.MasterAC = p.AC
		variants = append(variants, sv)
	}
	return variants, nil
}

// RetrieveFeatureChains returns the feature chain identified by ac from every
// matching entry.
func (s *RemoteService) RetrieveFeatureChains(ctx context.Context, ac string) ([]*FeatureChain, error) {
	res := NewResolution()
	defer s.collect(res)
	chains := []*FeatureChain{}

	for _, e := range s.locate(ctx, ac, "feature chains") {
		p, err := s.builder.Build(ctx, e, true, res)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", e.PrimaryAccession, err)
		}
		if fc := findFeatureChain(p, ac); fc != nil {
			fc.MasterAC = p.AC
			chains = append(chains, fc)
		}
	}
	return chains, nil
}

func findSpliceVariant(p *Protein, ac string) *SpliceVariant {
	for _, sv := range p.SpliceVariants {
		if strings.EqualFold(sv.AC, ac) {
			return sv
		}
		for _, sec := range sv.SecondaryACs {
			if strings.EqualFold(sec, ac) {
				return sv
			}
		}
	}
	return nil
}

func findFeatureChain(p *Protein, id string) *FeatureChain {
	token := ChainToken(id)
	for _, fc := range p.FeatureChains {
		if strings.EqualFold(fc.ID, id) || strings.EqualFold(ChainToken(fc.ID), token) {
			return fc
		}
	}
	return nil
}

// RetrieveBatch retrieves every accession in turn. Per-accession failures
// are recorded as reports and never abort the batch; the accession is then
// absent from the result.
func (s *RemoteService) RetrieveBatch(ctx context.Context, acs []string) (map[string][]*Protein, error) {
	if len(acs) == 0 {
		return nil, ErrEmptyAccessionList
	}

	results := make(map[string][]*Protein, len(acs))
	for _, ac := range acs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		proteins, err := s.retrieveItem(ctx, ac)
		if err != nil {
			continue
		}
		results[ac] = proteins
	}
	return results, nil
}

// retrieveItem retrieves one batch item, recording any failure as a report.
func (s *RemoteService) retrieveItem(ctx context.Context, ac string) ([]*Protein, error) {
	proteins, err := s.Retrieve(ctx, ac)
	if err != nil {
		s.logger.Warn("failed to retrieve protein", zap.String("ac", ac), zap.Error(err))
		s.addReport(ac, kindOf(err), err.Error())
		return nil, err
	}
	if len(proteins) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ac)
	}
	return proteins, nil
}

// IsNotFound reports whether err means the identifier matched nothing.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
