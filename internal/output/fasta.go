package output

import (
	"bufio"
	"io"

	"github.com/inodb/intact-bridges/internal/fasta"
	"github.com/inodb/intact-bridges/internal/uniprot"
)

// FASTAWriter writes protein, splice variant and feature chain sequences.
// Records without a sequence are skipped.
type FASTAWriter struct {
	w *bufio.Writer
}

// NewFASTAWriter creates a new FASTA writer.
func NewFASTAWriter(w io.Writer) *FASTAWriter {
	return &FASTAWriter{w: bufio.NewWriter(w)}
}

// Write writes p followed by its splice variants and feature chains.
func (fw *FASTAWriter) Write(p *uniprot.Protein) error {
	rec := fasta.Record{
		Section:     section(p.Source),
		Accession:   p.AC,
		EntryName:   p.ID,
		Description: p.Description,
		Sequence:    p.Sequence(),
	}
	if p.Organism != nil {
		rec.TaxID = p.Organism.TaxID
	}
	if len(p.Genes) > 0 {
		rec.Gene = p.Genes[0]
	}
	if err := fw.write(rec); err != nil {
		return err
	}

	for _, sv := range p.SpliceVariants {
		r := rec
		r.Accession = sv.AC
		r.Description = "Isoform of " + p.AC
		r.Sequence = sv.Sequence()
		if err := fw.write(r); err != nil {
			return err
		}
	}
	for _, fc := range p.FeatureChains {
		r := rec
		r.Accession = fc.ID
		r.Description = fc.Description
		r.Sequence = fc.Sequence()
		if err := fw.write(r); err != nil {
			return err
		}
	}
	return nil
}

func (fw *FASTAWriter) write(rec fasta.Record) error {
	if rec.Sequence == "" {
		return nil
	}
	return fasta.Write(fw.w, rec)
}

// Flush flushes any buffered data to the underlying writer.
func (fw *FASTAWriter) Flush() error {
	return fw.w.Flush()
}

func section(t uniprot.ProteinType) string {
	switch t {
	case uniprot.ProteinTypeSwissProt:
		return "sp"
	case uniprot.ProteinTypeTrEMBL:
		return "tr"
	default:
		return ""
	}
}
