// Package uniprot resolves UniProtKB entries into IntAct protein records,
// including splice variants and processed feature chains.
package uniprot

import (
	"fmt"
	"time"
)

// ProteinType classifies the UniProtKB section a protein comes from.
type ProteinType int

const (
	ProteinTypeUnknown ProteinType = iota
	ProteinTypeSwissProt
	ProteinTypeTrEMBL
)

func (t ProteinType) String() string {
	switch t {
	case ProteinTypeSwissProt:
		return "SWISSPROT"
	case ProteinTypeTrEMBL:
		return "TREMBL"
	default:
		return "UNKNOWN"
	}
}

// Organism is shared by a protein and every chain and variant derived from it.
type Organism struct {
	TaxID          int
	ScientificName string
	CommonName     string
	Parents        []string
}

// CrossReference links a protein to a record in another database.
type CrossReference struct {
	AC          string
	Database    string
	Description string
}

// Protein is a UniProtKB entry translated into the IntAct model.
type Protein struct {
	ID                   string // UniProt entry name, e.g. CDC2_HUMAN
	AC                   string // primary accession
	Organism             *Organism
	Description          string
	SecondaryACs         []string
	ReleaseVersion       string
	LastAnnotationUpdate time.Time
	LastSequenceUpdate   time.Time
	Source               ProteinType
	Genes                []string
	ORFs                 []string
	Locuses              []string
	Synonyms             []string
	Functions            []string
	Keywords             []string
	CrossReferences      []CrossReference
	FeatureChains        []*FeatureChain
	SpliceVariants       []*SpliceVariant

	sequence string
	crc64    string
}

// NewProtein creates a protein with its mandatory fields.
func NewProtein(id, ac string, organism *Organism, description string) *Protein {
	return &Protein{
		ID:          id,
		AC:          ac,
		Organism:    organism,
		Description: description,
	}
}

// SetSequence sets the amino acid sequence. Length and checksum are derived from it.
func (p *Protein) SetSequence(seq string) {
	p.sequence = seq
	p.crc64 = CRC64(seq)
}

// Sequence returns the amino acid sequence.
func (p *Protein) Sequence() string { return p.sequence }

// SequenceLength returns the length of the amino acid sequence.
func (p *Protein) SequenceLength() int { return len(p.sequence) }

// CRC64 returns the UniProt CRC64 checksum of the sequence.
func (p *Protein) CRC64() string { return p.crc64 }

// PrimaryAC implements ProteinLike.
func (p *Protein) PrimaryAC() string { return p.AC }

// ChainType records which feature category a chain was derived from.
type ChainType int

const (
	ChainTypeChain ChainType = iota
	ChainTypePeptide
	ChainTypeProPeptide
)

func (t ChainType) String() string {
	switch t {
	case ChainTypePeptide:
		return "peptide"
	case ChainTypeProPeptide:
		return "propeptide"
	default:
		return "chain"
	}
}

// UnknownPosition marks a feature boundary UniProt does not know.
const UnknownPosition = -1

// FeatureChain is a processed sub-region of a protein (chain, peptide or pro-peptide).
type FeatureChain struct {
	ID          string // <parent accession>-<feature id>
	Type        ChainType
	Description string
	Start       int // 1-based, UnknownPosition if unknown
	End         int // 1-based inclusive, UnknownPosition if unknown
	Organism    *Organism
	MasterAC    string // accession of the owning protein, set by the caller

	sequence string
}

// NewFeatureChain validates the boundaries against the parent sequence and
// extracts the chain sub-sequence. Either boundary set to UnknownPosition
// leaves the sub-sequence empty.
func NewFeatureChain(id string, typ ChainType, parentSeq string, start, end int, organism *Organism) (*FeatureChain, error) {
	if start > 0 && end > 0 && end < start {
		return nil, fmt.Errorf("%w: unexpected %s boundaries of %s: [%d, %d]",
			ErrInconsistentData, typ, id, start, end)
	}
	if end > len(parentSeq) {
		return nil, fmt.Errorf("%w: sequence (length %d) does not cover %s %s: [%d, %d]",
			ErrInconsistentData, len(parentSeq), typ, id, start, end)
	}

	fc := &FeatureChain{
		ID:       id,
		Type:     typ,
		Start:    start,
		End:      end,
		Organism: organism,
	}
	if start > 0 && end > 0 {
		fc.sequence = parentSeq[start-1 : end]
	}
	return fc, nil
}

// Sequence returns the chain sub-sequence, or "" if a boundary is unknown.
func (fc *FeatureChain) Sequence() string { return fc.sequence }

// PrimaryAC implements ProteinLike.
func (fc *FeatureChain) PrimaryAC() string { return fc.ID }

// Master implements Transcript.
func (fc *FeatureChain) Master() string { return fc.MasterAC }

// SpliceVariant is an isoform declared in an alternative products comment.
type SpliceVariant struct {
	AC           string // <parent accession>-<suffix>
	Organism     *Organism
	SecondaryACs []string
	Synonyms     []string
	Note         string
	MasterAC     string // accession of the owning protein, set by the caller

	sequence string
}

// NewSpliceVariant creates a splice variant. seq is "" when unresolved.
func NewSpliceVariant(ac string, organism *Organism, seq string) *SpliceVariant {
	return &SpliceVariant{AC: ac, Organism: organism, sequence: seq}
}

// Sequence returns the isoform sequence, or "" if it could not be resolved.
func (sv *SpliceVariant) Sequence() string { return sv.sequence }

// PrimaryAC implements ProteinLike.
func (sv *SpliceVariant) PrimaryAC() string { return sv.AC }

// Master implements Transcript.
func (sv *SpliceVariant) Master() string { return sv.MasterAC }

// ProteinLike is implemented by proteins, splice variants and feature chains.
type ProteinLike interface {
	PrimaryAC() string
	Sequence() string
}

// Transcript is implemented by splice variants and feature chains.
type Transcript interface {
	ProteinLike
	Master() string
}
