package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/intact-bridges/internal/uniprot"
)

// listSeparator joins multi-valued columns.
const listSeparator = ";"

// ProteinRecord is one stored protein row.
type ProteinRecord struct {
	RunID                uuid.UUID
	AC                   string
	ID                   string
	Source               string
	TaxID                int64
	Organism             string
	Description          string
	ReleaseVersion       string
	LastAnnotationUpdate time.Time
	LastSequenceUpdate   time.Time
	Genes                []string
	Synonyms             []string
	Sequence             string
	SequenceLength       int64
	CRC64                string
}

// IsoformRecord is one stored splice variant row.
type IsoformRecord struct {
	MasterAC     string
	AC           string
	SecondaryACs []string
	Synonyms     []string
	Note         string
	Sequence     string
}

// ChainRecord is one stored feature chain row.
type ChainRecord struct {
	MasterAC    string
	ID          string
	Type        string
	Description string
	Start       int64
	End         int64
	Sequence    string
}

// XrefRecord is one stored cross-reference row.
type XrefRecord struct {
	AC          string
	Database    string
	XrefAC      string
	Description string
}

// WriteRun records a retrieval run. origin names the entry service used.
func (s *Store) WriteRun(runID uuid.UUID, origin string, startedAt time.Time, accessions int) error {
	_, err := s.db.Exec(`INSERT INTO runs VALUES (?, ?, ?, ?)`,
		runID.String(), origin, startedAt, int64(accessions))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// WriteProteins batch-inserts proteins with their cross-references, splice
// variants and feature chains using the Appender API. Proteins are
// deduplicated by accession within the run.
func (s *Store) WriteProteins(runID uuid.UUID, proteins []*uniprot.Protein) error {
	if len(proteins) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(proteins))
	deduped := make([]*uniprot.Protein, 0, len(proteins))
	for _, p := range proteins {
		if !seen[p.AC] {
			seen[p.AC] = true
			deduped = append(deduped, p)
		}
	}

	run := runID.String()
	var (
		proteinRows [][]driver.Value
		xrefRows    [][]driver.Value
		isoformRows [][]driver.Value
		chainRows   [][]driver.Value
	)
	for _, p := range deduped {
		var taxID int64
		var organism string
		if p.Organism != nil {
			taxID = int64(p.Organism.TaxID)
			organism = p.Organism.ScientificName
		}
		proteinRows = append(proteinRows, []driver.Value{
			run, p.AC, p.ID, p.Source.String(), taxID, organism, p.Description,
			p.ReleaseVersion, p.LastAnnotationUpdate, p.LastSequenceUpdate,
			joinList(p.Genes), joinList(p.Synonyms),
			p.Sequence(), int64(p.SequenceLength()), p.CRC64(),
		})
		for _, x := range p.CrossReferences {
			xrefRows = append(xrefRows, []driver.Value{run, p.AC, x.Database, x.AC, x.Description})
		}
		for _, sv := range p.SpliceVariants {
			isoformRows = append(isoformRows, []driver.Value{
				run, p.AC, sv.AC, joinList(sv.SecondaryACs), joinList(sv.Synonyms), sv.Note, sv.Sequence(),
			})
		}
		for _, fc := range p.FeatureChains {
			chainRows = append(chainRows, []driver.Value{
				run, p.AC, fc.ID, fc.Type.String(), fc.Description, int64(fc.Start), int64(fc.End), fc.Sequence(),
			})
		}
	}

	for _, t := range []struct {
		table string
		rows  [][]driver.Value
	}{
		{"proteins", proteinRows},
		{"protein_xrefs", xrefRows},
		{"protein_isoforms", isoformRows},
		{"protein_chains", chainRows},
	} {
		if err := s.appendRows(t.table, t.rows); err != nil {
			return err
		}
	}
	return nil
}

// appendRows writes rows to table through a DuckDB appender.
func (s *Store) appendRows(table string, rows [][]driver.Value) error {
	if len(rows) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create %s appender: %w", table, err)
	}
	defer appender.Close()

	for _, row := range rows {
		if err := appender.AppendRow(row...); err != nil {
			return fmt.Errorf("append %s row: %w", table, err)
		}
	}

	return appender.Flush()
}

// ClearProteins removes all stored proteins and runs.
func (s *Store) ClearProteins() error {
	for _, table := range []string{"proteins", "protein_xrefs", "protein_isoforms", "protein_chains", "runs"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

const proteinColumns = `run_id, ac, id, source, tax_id, organism, description,
		release_version, last_annotation_update, last_sequence_update,
		genes, synonyms, sequence, sequence_length, crc64`

// LookupProtein returns every stored row of the protein with accession ac,
// oldest run first.
func (s *Store) LookupProtein(ac string) ([]ProteinRecord, error) {
	rows, err := s.db.Query(`SELECT `+proteinColumns+`
		FROM proteins p
		LEFT JOIN runs r USING (run_id)
		WHERE p.ac=?
		ORDER BY r.started_at`, ac)
	if err != nil {
		return nil, fmt.Errorf("query protein: %w", err)
	}
	defer rows.Close()

	return scanProteins(rows)
}

// SearchByGene returns the stored proteins carrying gene name gene.
func (s *Store) SearchByGene(gene string) ([]ProteinRecord, error) {
	rows, err := s.db.Query(`SELECT `+proteinColumns+`
		FROM proteins
		WHERE list_contains(string_split(genes, ?), ?)
		ORDER BY ac`, listSeparator, gene)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanProteins(rows)
}

// Isoforms returns the stored splice variants of the protein masterAC.
func (s *Store) Isoforms(runID uuid.UUID, masterAC string) ([]IsoformRecord, error) {
	rows, err := s.db.Query(`SELECT master_ac, ac, secondary_acs, synonyms, note, sequence
		FROM protein_isoforms
		WHERE run_id=? AND master_ac=?
		ORDER BY ac`, runID.String(), masterAC)
	if err != nil {
		return nil, fmt.Errorf("query isoforms: %w", err)
	}
	defer rows.Close()

	var out []IsoformRecord
	for rows.Next() {
		var r IsoformRecord
		var secondary, synonyms string
		if err := rows.Scan(&r.MasterAC, &r.AC, &secondary, &synonyms, &r.Note, &r.Sequence); err != nil {
			return nil, fmt.Errorf("scan isoform: %w", err)
		}
		r.SecondaryACs = splitList(secondary)
		r.Synonyms = splitList(synonyms)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate isoforms: %w", err)
	}
	return out, nil
}

// Chains returns the stored feature chains of the protein masterAC.
func (s *Store) Chains(runID uuid.UUID, masterAC string) ([]ChainRecord, error) {
	rows, err := s.db.Query(`SELECT master_ac, id, chain_type, description, start_pos, end_pos, sequence
		FROM protein_chains
		WHERE run_id=? AND master_ac=?
		ORDER BY id`, runID.String(), masterAC)
	if err != nil {
		return nil, fmt.Errorf("query chains: %w", err)
	}
	defer rows.Close()

	var out []ChainRecord
	for rows.Next() {
		var r ChainRecord
		if err := rows.Scan(&r.MasterAC, &r.ID, &r.Type, &r.Description, &r.Start, &r.End, &r.Sequence); err != nil {
			return nil, fmt.Errorf("scan chain: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chains: %w", err)
	}
	return out, nil
}

// CrossReferences returns the stored cross-references of the protein ac.
func (s *Store) CrossReferences(runID uuid.UUID, ac string) ([]XrefRecord, error) {
	rows, err := s.db.Query(`SELECT ac, db_name, xref_ac, description
		FROM protein_xrefs
		WHERE run_id=? AND ac=?`, runID.String(), ac)
	if err != nil {
		return nil, fmt.Errorf("query xrefs: %w", err)
	}
	defer rows.Close()

	var out []XrefRecord
	for rows.Next() {
		var r XrefRecord
		if err := rows.Scan(&r.AC, &r.Database, &r.XrefAC, &r.Description); err != nil {
			return nil, fmt.Errorf("scan xref: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate xrefs: %w", err)
	}
	return out, nil
}

// scanProteins scans rows into ProteinRecord slices.
func scanProteins(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]ProteinRecord, error) {
	var out []ProteinRecord
	for rows.Next() {
		var r ProteinRecord
		var runID, genes, synonyms string
		if err := rows.Scan(
			&runID, &r.AC, &r.ID, &r.Source, &r.TaxID, &r.Organism, &r.Description,
			&r.ReleaseVersion, &r.LastAnnotationUpdate, &r.LastSequenceUpdate,
			&genes, &synonyms, &r.Sequence, &r.SequenceLength, &r.CRC64,
		); err != nil {
			return nil, fmt.Errorf("scan protein: %w", err)
		}
		id, err := uuid.Parse(runID)
		if err != nil {
			return nil, fmt.Errorf("parse run id %q: %w", runID, err)
		}
		r.RunID = id
		r.Genes = splitList(genes)
		r.Synonyms = splitList(synonyms)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate proteins: %w", err)
	}
	return out, nil
}

func joinList(values []string) string {
	return strings.Join(values, listSeparator)
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, listSeparator)
}
