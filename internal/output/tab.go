// Package output provides protein output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/intact-bridges/internal/uniprot"
)

// Record kinds written in the Type column.
const (
	KindProtein       = "protein"
	KindSpliceVariant = "splice_variant"
	KindFeatureChain  = "feature_chain"
)

// TabWriter writes proteins and their transcripts in tab-delimited format,
// one row per protein, splice variant or feature chain.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#AC",
			"Type",
			"Master_AC",
			"ID",
			"Source",
			"Release",
			"Tax_ID",
			"Organism",
			"Genes",
			"Description",
			"Start",
			"End",
			"Length",
			"CRC64",
			"Xrefs",
			"Note",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes p followed by its splice variants and feature chains.
func (tw *TabWriter) Write(p *uniprot.Protein) error {
	taxID, organism := "-", "-"
	if p.Organism != nil {
		taxID = strconv.Itoa(p.Organism.TaxID)
		organism = p.Organism.ScientificName
	}

	if err := tw.writeRow(
		p.AC,
		KindProtein,
		"-",
		p.ID,
		p.Source.String(),
		p.ReleaseVersion,
		taxID,
		organism,
		strings.Join(p.Genes, ","),
		p.Description,
		"-",
		"-",
		strconv.Itoa(p.SequenceLength()),
		p.CRC64(),
		strconv.Itoa(len(p.CrossReferences)),
		"-",
	); err != nil {
		return err
	}

	for _, sv := range p.SpliceVariants {
		if err := tw.writeRow(
			sv.AC, KindSpliceVariant, sv.Master(), "-", "-", "-", taxID, organism,
			"-", strings.Join(sv.Synonyms, ","), "-", "-",
			strconv.Itoa(len(sv.Sequence())), uniprot.CRC64(sv.Sequence()), "-", sv.Note,
		); err != nil {
			return err
		}
	}

	for _, fc := range p.FeatureChains {
		if err := tw.writeRow(
			fc.ID, KindFeatureChain, fc.Master(), "-", fc.Type.String(), "-", taxID, organism,
			"-", fc.Description, position(fc.Start), position(fc.End),
			strconv.Itoa(len(fc.Sequence())), uniprot.CRC64(fc.Sequence()), "-", "-",
		); err != nil {
			return err
		}
	}
	return nil
}

// writeRow writes values, replacing empty ones with "-". Tabs and newlines
// inside values are flattened to spaces.
func (tw *TabWriter) writeRow(values ...string) error {
	for i, v := range values {
		if v == "" {
			values[i] = "-"
			continue
		}
		values[i] = strings.NewReplacer("\t", " ", "\n", " ").Replace(v)
	}
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

func position(p int) string {
	if p == uniprot.UnknownPosition {
		return "?"
	}
	return strconv.Itoa(p)
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}
