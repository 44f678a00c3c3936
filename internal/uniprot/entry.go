package uniprot

import (
	"context"
	"time"

	"github.com/inodb/intact-bridges/internal/uniprot/xref"
)

// EntryType is the UniProtKB section reported by the entry service.
type EntryType string

const (
	EntryTypeSwissProt EntryType = "Swiss-Prot"
	EntryTypeTrEMBL    EntryType = "TrEMBL"
	EntryTypeUnknown   EntryType = "Unknown"
)

// FeatureType names the sequence feature categories used by the resolver.
type FeatureType string

const (
	FeatureTypeChain      FeatureType = "Chain"
	FeatureTypePeptide    FeatureType = "Peptide"
	FeatureTypeProPeptide FeatureType = "Propeptide"
)

// IsoformStatus is the sequence status of an isoform declaration.
type IsoformStatus string

const (
	IsoformDisplayed    IsoformStatus = "Displayed"
	IsoformDescribed    IsoformStatus = "Described"
	IsoformNotDescribed IsoformStatus = "Not described"
	IsoformExternal     IsoformStatus = "External"
)

// EntryOrganism is the organism block of an entry.
type EntryOrganism struct {
	ScientificName string
	CommonName     string
	Synonym        string
}

// Gene holds the names of one gene line.
type Gene struct {
	Name       string
	Synonyms   []string
	ORFNames   []string
	LocusNames []string
}

// ProteinName holds the full and short names of a name block.
type ProteinName struct {
	FullNames  []string
	ShortNames []string
}

// Feature is a sequence feature annotation.
type Feature struct {
	Type        FeatureType
	ID          string
	Description string
	Start       int // UnknownPosition when UniProt does not know the boundary
	End         int
}

// Isoform is one isoform of an alternative products comment.
type Isoform struct {
	Name     string
	IDs      []string // raw declared ids, each possibly comma-joined
	Status   IsoformStatus
	Synonyms []string
	Note     []string // evidenced note texts
}

// AlternativeProducts is one alternative products comment block.
type AlternativeProducts struct {
	Isoforms []Isoform
}

// Audit carries the entry versioning metadata.
type Audit struct {
	EntryVersion         int
	LastAnnotationUpdate time.Time
	LastSequenceUpdate   time.Time
}

// SplicedSequenceFunc fetches the sequence of a named isoform of an entry.
type SplicedSequenceFunc func(ctx context.Context, e *Entry, isoformName string) (string, error)

// Entry is a read-only UniProtKB entry as returned by an EntryService.
type Entry struct {
	ID                  string
	PrimaryAccession    string
	SecondaryAccessions []string
	Type                EntryType
	Organism            EntryOrganism
	TaxonomyIDs         []string
	RecommendedName     *ProteinName
	AlternativeNames    []ProteinName
	Genes               []Gene
	Functions           []string
	Diseases            []string
	AlternativeProducts []AlternativeProducts
	Keywords            []string
	CrossReferences     []xref.Raw
	Sequence            string
	SequenceCRC64       string
	Features            []Feature
	Audit               Audit

	// SplicedSequences holds precomputed isoform sequences keyed by isoform name.
	SplicedSequences map[string]string
	// SplicedSequenceFetcher is consulted when SplicedSequences has no entry.
	SplicedSequenceFetcher SplicedSequenceFunc
}

// FeaturesOf returns the features of the given type in entry order.
func (e *Entry) FeaturesOf(t FeatureType) []Feature {
	var out []Feature
	for _, f := range e.Features {
		if f.Type == t {
			out = append(out, f)
		}
	}
	return out
}

// SplicedSequence returns the sequence of the named isoform, or "" if the
// entry does not describe it.
func (e *Entry) SplicedSequence(ctx context.Context, isoformName string) (string, error) {
	if seq, ok := e.SplicedSequences[isoformName]; ok {
		return seq, nil
	}
	if e.SplicedSequenceFetcher == nil {
		return "", nil
	}
	return e.SplicedSequenceFetcher(ctx, e, isoformName)
}

// Isoform returns the isoform declaration with the given name.
func (e *Entry) Isoform(name string) (Isoform, bool) {
	for _, ap := range e.AlternativeProducts {
		for _, iso := range ap.Isoforms {
			if iso.Name == name {
				return iso, true
			}
		}
	}
	return Isoform{}, false
}
