package xref

import "strings"

// Builder turns one raw cross-reference into zero or more converted ones.
type Builder interface {
	Build(r Raw) []Converted
}

// Shape identifies a known raw cross-reference layout.
type Shape int

const (
	ShapePlain Shape = iota
	ShapeEnsembl
	ShapeRefSeq
	ShapeEMBL
	ShapeGO
	ShapeInterPro
	ShapePDB
)

// shapes maps lower-cased database names to their record layout.
// Databases not listed are converted with ShapePlain.
var shapes = map[string]Shape{
	"ensembl":         ShapeEnsembl,
	"ensemblbacteria": ShapeEnsembl,
	"ensemblfungi":    ShapeEnsembl,
	"ensemblmetazoa":  ShapeEnsembl,
	"ensemblplants":   ShapeEnsembl,
	"ensemblprotists": ShapeEnsembl,
	"wormbase":        ShapeEnsembl,
	"refseq":          ShapeRefSeq,
	"embl":            ShapeEMBL,
	"go":              ShapeGO,
	"interpro":        ShapeInterPro,
	"pfam":            ShapeInterPro,
	"prosite":         ShapeInterPro,
	"smart":           ShapeInterPro,
	"hgnc":            ShapeInterPro,
	"mgi":             ShapeInterPro,
	"rgd":             ShapeInterPro,
	"zfin":            ShapeInterPro,
	"dictybase":       ShapeInterPro,
	"pdb":             ShapePDB,
}

// ShapeOf returns the record layout used for database db.
func ShapeOf(db string) Shape {
	if s, ok := shapes[strings.ToLower(db)]; ok {
		return s
	}
	return ShapePlain
}

// ShapeBuilder dispatches on the database name to an explicit conversion
// function per known record layout.
type ShapeBuilder struct{}

// NewBuilder returns the default cross-reference builder.
func NewBuilder() ShapeBuilder {
	return ShapeBuilder{}
}

// Build converts r. References without an identifier convert to an entry with
// an empty AC so that the caller can report and drop them.
func (ShapeBuilder) Build(r Raw) []Converted {
	switch ShapeOf(r.Database) {
	case ShapeEnsembl:
		return buildEnsembl(r)
	case ShapeRefSeq:
		return buildRefSeq(r)
	case ShapeEMBL:
		return buildEMBL(r)
	case ShapeGO:
		return buildGO(r)
	case ShapeInterPro:
		return buildDescribed(r, "EntryName", "GeneName", "Description", "Name")
	case ShapePDB:
		return buildPDB(r)
	default:
		return []Converted{{AC: r.ID, Database: r.Database}}
	}
}

// buildEnsembl fans one transcript reference out into transcript, protein and
// gene identifiers.
func buildEnsembl(r Raw) []Converted {
	out := []Converted{{AC: r.ID, Database: r.Database}}
	for _, key := range []string{"ProteinId", "GeneId"} {
		if v := r.Property(key); v != "" && v != "-" {
			out = append(out, Converted{AC: v, Database: r.Database})
		}
	}
	return out
}

// buildRefSeq emits the protein id plus the linked nucleotide sequence id.
func buildRefSeq(r Raw) []Converted {
	out := []Converted{{AC: r.ID, Database: r.Database}}
	if v := r.Property("NucleotideSequenceId"); v != "" && v != "-" {
		out = append(out, Converted{AC: v, Database: r.Database})
	}
	return out
}

// buildEMBL emits the nucleotide id plus the protein id when known.
func buildEMBL(r Raw) []Converted {
	out := []Converted{{AC: r.ID, Database: r.Database, Description: r.Property("MoleculeType")}}
	if v := r.Property("ProteinId"); v != "" && v != "-" {
		out = append(out, Converted{AC: v, Database: r.Database})
	}
	return out
}

// buildGO keeps the term label, e.g. "C:cytoplasm", as description.
func buildGO(r Raw) []Converted {
	return []Converted{{AC: r.ID, Database: r.Database, Description: r.Property("GoTerm")}}
}

func buildPDB(r Raw) []Converted {
	desc := r.Property("Method")
	if res := r.Property("Resolution"); res != "" && res != "-" {
		desc = strings.TrimSpace(desc + " " + res)
	}
	return []Converted{{AC: r.ID, Database: r.Database, Description: desc}}
}

// buildDescribed uses the first non-empty property among keys as description.
func buildDescribed(r Raw, keys ...string) []Converted {
	var desc string
	for _, k := range keys {
		if v := r.Property(k); v != "" && v != "-" {
			desc = v
			break
		}
	}
	return []Converted{{AC: r.ID, Database: r.Database, Description: desc}}
}
