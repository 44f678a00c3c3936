package uniprot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/inodb/intact-bridges/internal/uniprot/xref"
)

// Release version prefixes per UniProtKB section.
const (
	SwissProtPrefix = "SP_"
	TrEMBLPrefix    = "TrEMBL_"
)

// hugeDatabase tags cross-references synthesized from KIAA gene names.
const hugeDatabase = "HUGE"

// chainPasses lists the feature categories turned into feature chains.
var chainPasses = []struct {
	feature FeatureType
	chain   ChainType
}{
	{FeatureTypeChain, ChainTypeChain},
	{FeatureTypePeptide, ChainTypePeptide},
	{FeatureTypeProPeptide, ChainTypeProPeptide},
}

// Builder maps UniProtKB entries onto Protein records.
type Builder struct {
	resolver *Resolver
	selector xref.Selector
	xrefs    xref.Builder
	logger   *zap.Logger
}

// NewBuilder creates a builder. resolver is used for splice variants.
func NewBuilder(resolver *Resolver) *Builder {
	return &Builder{
		resolver: resolver,
		xrefs:    xref.NewBuilder(),
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger.
func (b *Builder) SetLogger(logger *zap.Logger) {
	b.logger = logger
}

// SetSelector sets the cross-reference database filter. nil keeps every database.
func (b *Builder) SetSelector(s xref.Selector) {
	b.selector = s
}

// Selector returns the cross-reference database filter.
func (b *Builder) Selector() xref.Selector {
	return b.selector
}

// SetCrossReferenceBuilder replaces the raw cross-reference converter.
func (b *Builder) SetCrossReferenceBuilder(xb xref.Builder) {
	b.xrefs = xb
}

// Build maps e onto a Protein. With transcripts false, splice variants and
// feature chains are skipped, so no external entry is fetched.
func (b *Builder) Build(ctx context.Context, e *Entry, transcripts bool, res *Resolution) (*Protein, error) {
	organism, err := buildOrganism(e)
	if err != nil {
		return nil, err
	}

	p := NewProtein(e.ID, e.PrimaryAccession, organism, description(e))
	p.SecondaryACs = append(p.SecondaryACs, e.SecondaryAccessions...)
	p.ReleaseVersion = b.releaseVersion(e)
	p.LastAnnotationUpdate = e.Audit.LastAnnotationUpdate
	p.LastSequenceUpdate = e.Audit.LastSequenceUpdate

	switch e.Type {
	case EntryTypeSwissProt:
		p.Source = ProteinTypeSwissProt
	case EntryTypeTrEMBL:
		p.Source = ProteinTypeTrEMBL
	case EntryTypeUnknown:
		p.Source = ProteinTypeUnknown
	default:
		return nil, fmt.Errorf("%w: only Swiss-Prot, TrEMBL and unknown entries are supported: %q (%s)",
			ErrUnsupportedEntryType, e.Type, e.PrimaryAccession)
	}

	for _, g := range e.Genes {
		if g.Name != "" {
			p.Genes = append(p.Genes, g.Name)
		}
		p.Synonyms = append(p.Synonyms, g.Synonyms...)
		p.ORFs = append(p.ORFs, g.ORFNames...)
		p.Locuses = append(p.Locuses, g.LocusNames...)
	}
	for _, name := range e.AlternativeNames {
		p.Synonyms = append(p.Synonyms, name.FullNames...)
	}

	p.Functions = append(p.Functions, e.Functions...)
	p.Functions = append(p.Functions, e.Diseases...)
	p.Keywords = append(p.Keywords, e.Keywords...)

	b.addCrossReferences(e, p)

	p.SetSequence(e.Sequence)
	if e.SequenceCRC64 != "" && !strings.EqualFold(e.SequenceCRC64, p.CRC64()) {
		b.logger.Warn("sequence checksum differs from the one reported by uniprot",
			zap.String("ac", p.AC),
			zap.String("reported", e.SequenceCRC64),
			zap.String("computed", p.CRC64()))
	}

	if !transcripts {
		return p, nil
	}

	variants, err := b.resolver.Resolve(ctx, e, organism, res)
	if err != nil {
		return nil, fmt.Errorf("splice variants of %s: %w", p.AC, err)
	}
	for _, sv := range variants {
		sv.MasterAC = p.AC
	}
	p.SpliceVariants = variants

	for _, pass := range chainPasses {
		for _, f := range e.FeaturesOf(pass.feature) {
			fc, err := NewFeatureChain(p.AC+"-"+f.ID, pass.chain, p.Sequence(), f.Start, f.End, organism)
			if err != nil {
				return nil, err
			}
			fc.Description = f.Description
			fc.MasterAC = p.AC
			p.FeatureChains = append(p.FeatureChains, fc)
		}
	}

	return p, nil
}

// buildOrganism requires a scientific name and a taxonomy id. The common name
// and synonym are also recorded as parent names.
func buildOrganism(e *Entry) (*Organism, error) {
	if e.Organism.ScientificName == "" {
		return nil, fmt.Errorf("%w: entry %s has no organism name", ErrInconsistentData, e.PrimaryAccession)
	}
	if len(e.TaxonomyIDs) == 0 {
		return nil, fmt.Errorf("%w: entry %s has no taxonomy id", ErrInconsistentData, e.PrimaryAccession)
	}
	taxID, err := strconv.Atoi(strings.TrimSpace(e.TaxonomyIDs[0]))
	if err != nil {
		return nil, fmt.Errorf("%w: entry %s taxonomy id %q: %v",
			ErrInconsistentData, e.PrimaryAccession, e.TaxonomyIDs[0], err)
	}

	o := &Organism{
		TaxID:          taxID,
		ScientificName: e.Organism.ScientificName,
		CommonName:     e.Organism.CommonName,
	}
	if e.Organism.CommonName != "" {
		o.Parents = append(o.Parents, e.Organism.CommonName)
	}
	if e.Organism.Synonym != "" {
		o.Parents = append(o.Parents, e.Organism.Synonym)
	}
	return o, nil
}

// description returns the first full recommended name, or "".
func description(e *Entry) string {
	if e.RecommendedName == nil || len(e.RecommendedName.FullNames) == 0 {
		return ""
	}
	return e.RecommendedName.FullNames[0]
}

func (b *Builder) releaseVersion(e *Entry) string {
	version := strconv.Itoa(e.Audit.EntryVersion)
	switch e.Type {
	case EntryTypeSwissProt:
		return SwissProtPrefix + version
	case EntryTypeTrEMBL:
		return TrEMBLPrefix + version
	default:
		b.logger.Warn("unexpected entry type", zap.String("ac", e.PrimaryAccession), zap.String("type", string(e.Type)))
		return version
	}
}

func (b *Builder) addCrossReferences(e *Entry, p *Protein) {
	for _, raw := range e.CrossReferences {
		if b.selector != nil && !b.selector.IsSelected(raw.Database) {
			b.logger.Debug("filtered out database",
				zap.String("selector", xref.SelectorName(b.selector)),
				zap.String("database", raw.Database))
			continue
		}
		for _, x := range b.xrefs.Build(raw) {
			if x.AC == "" {
				b.logger.Error("no AC could be found for xref",
					zap.String("ac", p.AC),
					zap.String("database", x.Database))
				continue
			}
			p.CrossReferences = append(p.CrossReferences, CrossReference{
				AC:          x.AC,
				Database:    x.Database,
				Description: x.Description,
			})
		}
	}

	// KIAA gene names are HUGE references, only added on explicit request.
	if b.selector == nil || !(b.selector.IsSelected(hugeDatabase) || b.selector.IsSelected("KIAA")) {
		return
	}
	for _, g := range e.Genes {
		names := append([]string{g.Name}, g.Synonyms...)
		for _, name := range names {
			if strings.HasPrefix(name, "KIAA") {
				p.CrossReferences = append(p.CrossReferences, CrossReference{AC: name, Database: hugeDatabase})
			}
		}
	}
}
