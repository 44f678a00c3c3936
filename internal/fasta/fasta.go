// Package fasta reads and writes UniProtKB protein FASTA files, including the
// varsplic isoform file.
package fasta

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Record is one FASTA sequence.
// UniProtKB headers look like:
// >sp|P12345-2|CDK1_HUMAN Isoform 2 of Cyclin-dependent kinase 1 OS=Homo sapiens OX=9606 GN=CDK1
type Record struct {
	Section     string // "sp" or "tr", empty for non UniProt headers
	Accession   string
	EntryName   string
	Description string
	TaxID       int
	Gene        string
	Sequence    string
}

// IsoformName returns the isoform name of a varsplic description such as
// "Isoform 2 of Cyclin-dependent kinase 1", or "".
func (r Record) IsoformName() string {
	rest, ok := strings.CutPrefix(r.Description, "Isoform ")
	if !ok {
		return ""
	}
	name, _, ok := strings.Cut(rest, " of ")
	if !ok {
		return ""
	}
	return name
}

// Loader loads protein sequences from a FASTA file, indexed by accession.
type Loader struct {
	path    string
	records map[string]Record
	order   []string
}

// NewLoader creates a new FASTA loader.
func NewLoader(path string) *Loader {
	return &Loader{
		path:    path,
		records: make(map[string]Record),
	}
}

// Load parses the FASTA file. Files ending in .gz are decompressed.
func (l *Loader) Load() error {
	f, err := os.Open(l.path)
	if err != nil {
		return fmt.Errorf("open FASTA file: %w", err)
	}
	defer f.Close()

	var reader io.Reader = f

	if strings.HasSuffix(l.path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("open gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	return l.Parse(reader)
}

// Parse adds the records read from r.
func (l *Loader) Parse(r io.Reader) error {
	return Scan(r, func(rec Record) error {
		if _, ok := l.records[rec.Accession]; !ok {
			l.order = append(l.order, rec.Accession)
		}
		l.records[rec.Accession] = rec
		return nil
	})
}

// Get returns the record with the given accession.
func (l *Loader) Get(accession string) (Record, bool) {
	rec, ok := l.records[strings.ToUpper(accession)]
	return rec, ok
}

// Sequence returns the sequence with the given accession, or "".
func (l *Loader) Sequence(accession string) string {
	return l.records[strings.ToUpper(accession)].Sequence
}

// Records returns the records in file order.
func (l *Loader) Records() []Record {
	out := make([]Record, 0, len(l.order))
	for _, ac := range l.order {
		out = append(out, l.records[ac])
	}
	return out
}

// Len returns the number of loaded sequences.
func (l *Loader) Len() int {
	return len(l.records)
}

// Scan calls fn for every record of r in order. Records without a sequence
// are skipped.
func Scan(r io.Reader, fn func(Record) error) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var (
		current Record
		seq     strings.Builder
		inEntry bool
	)
	flush := func() error {
		if !inEntry || seq.Len() == 0 {
			return nil
		}
		current.Sequence = seq.String()
		return fn(current)
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if err := flush(); err != nil {
				return err
			}
			current = ParseHeader(line)
			seq.Reset()
			inEntry = true
			continue
		}
		seq.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan FASTA: %w", err)
	}
	return flush()
}

// ParseHeader parses a FASTA header line. Non UniProt headers use the first
// word as accession and the rest as description.
func ParseHeader(header string) Record {
	header = strings.TrimPrefix(strings.TrimSpace(header), ">")

	id, desc, _ := strings.Cut(header, " ")
	var rec Record

	parts := strings.Split(id, "|")
	if len(parts) == 3 && (parts[0] == "sp" || parts[0] == "tr") {
		rec.Section = parts[0]
		rec.Accession = strings.ToUpper(parts[1])
		rec.EntryName = parts[2]
	} else {
		rec.Accession = strings.ToUpper(id)
	}

	rec.Description, rec.TaxID, rec.Gene = splitDescription(desc)
	return rec
}

// splitDescription separates the free text from the trailing KEY=value fields.
func splitDescription(desc string) (text string, taxID int, gene string) {
	text = " " + desc
	for _, key := range []string{"OS", "OX", "GN", "PE", "SV"} {
		if i := strings.Index(text, " "+key+"="); i != -1 {
			text = text[:i]
		}
	}
	taxID, _ = strconv.Atoi(field(" "+desc, "OX"))
	gene = field(" "+desc, "GN")
	return strings.TrimSpace(text), taxID, gene
}

// field returns the value of key in " KEY=value " header fields.
func field(desc, key string) string {
	i := strings.Index(desc, " "+key+"=")
	if i == -1 {
		return ""
	}
	v := desc[i+len(key)+2:]
	if j := strings.IndexByte(v, ' '); j != -1 {
		v = v[:j]
	}
	return v
}

// LineWidth is the number of residues per sequence line written by Write.
const LineWidth = 60

// Write writes rec in UniProtKB layout.
func Write(w io.Writer, rec Record) error {
	if _, err := io.WriteString(w, ">"+Header(rec)+"\n"); err != nil {
		return err
	}
	seq := rec.Sequence
	for len(seq) > 0 {
		n := min(LineWidth, len(seq))
		if _, err := io.WriteString(w, seq[:n]+"\n"); err != nil {
			return err
		}
		seq = seq[n:]
	}
	return nil
}

// Header formats the header line of rec, without the leading '>'.
func Header(rec Record) string {
	var b strings.Builder
	if rec.Section != "" {
		b.WriteString(rec.Section + "|" + rec.Accession + "|" + rec.EntryName)
	} else {
		b.WriteString(rec.Accession)
	}
	if rec.Description != "" {
		b.WriteString(" " + rec.Description)
	}
	if rec.TaxID != 0 {
		b.WriteString(" OX=" + strconv.Itoa(rec.TaxID))
	}
	if rec.Gene != "" {
		b.WriteString(" GN=" + rec.Gene)
	}
	return b.String()
}
