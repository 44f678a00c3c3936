// Package uniprotkb implements uniprot.EntryService on top of the UniProtKB
// REST API and on top of local JSON entry dumps.
package uniprotkb

import (
	"strconv"
	"strings"
	"time"

	"github.com/inodb/intact-bridges/internal/uniprot"
	"github.com/inodb/intact-bridges/internal/uniprot/xref"
)

// Entry type labels used by the UniProtKB JSON format.
const (
	reviewedType   = "UniProtKB reviewed (Swiss-Prot)"
	unreviewedType = "UniProtKB unreviewed (TrEMBL)"
)

// searchResult is the body of a /uniprotkb/search response.
type searchResult struct {
	Results []restEntry `json:"results"`
}

type value struct {
	Value string `json:"value"`
}

func values(vs []value) []string {
	if len(vs) == 0 {
		return nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v.Value != "" {
			out = append(out, v.Value)
		}
	}
	return out
}

type restName struct {
	FullName   *value  `json:"fullName"`
	ShortNames []value `json:"shortNames"`
}

func (n restName) toName() uniprot.ProteinName {
	var pn uniprot.ProteinName
	if n.FullName != nil && n.FullName.Value != "" {
		pn.FullNames = []string{n.FullName.Value}
	}
	pn.ShortNames = values(n.ShortNames)
	return pn
}

type restPosition struct {
	Value    *int   `json:"value"`
	Modifier string `json:"modifier"`
}

func (p restPosition) position() int {
	if p.Value == nil || p.Modifier == "UNKNOWN" {
		return uniprot.UnknownPosition
	}
	return *p.Value
}

type restIsoform struct {
	Name                  value    `json:"name"`
	IsoformIDs            []string `json:"isoformIds"`
	IsoformSequenceStatus string   `json:"isoformSequenceStatus"`
	Synonyms              []value  `json:"synonyms"`
	Note                  *struct {
		Texts []value `json:"texts"`
	} `json:"note"`
}

type restComment struct {
	CommentType string  `json:"commentType"`
	Texts       []value `json:"texts"`
	Disease     *struct {
		DiseaseID   string `json:"diseaseId"`
		Description string `json:"description"`
	} `json:"disease"`
	Isoforms []restIsoform `json:"isoforms"`
}

// restEntry mirrors the subset of the UniProtKB JSON entry format we map.
type restEntry struct {
	EntryType           string   `json:"entryType"`
	PrimaryAccession    string   `json:"primaryAccession"`
	SecondaryAccessions []string `json:"secondaryAccessions"`
	UniProtKBID         string   `json:"uniProtkbId"`
	EntryAudit          struct {
		LastAnnotationUpdateDate string `json:"lastAnnotationUpdateDate"`
		LastSequenceUpdateDate   string `json:"lastSequenceUpdateDate"`
		EntryVersion             int    `json:"entryVersion"`
	} `json:"entryAudit"`
	Organism *struct {
		ScientificName string   `json:"scientificName"`
		CommonName     string   `json:"commonName"`
		TaxonID        int      `json:"taxonId"`
		Synonyms       []string `json:"synonyms"`
	} `json:"organism"`
	ProteinDescription struct {
		RecommendedName  *restName  `json:"recommendedName"`
		AlternativeNames []restName `json:"alternativeNames"`
		SubmissionNames  []restName `json:"submissionNames"`
	} `json:"proteinDescription"`
	Genes []struct {
		GeneName          *value  `json:"geneName"`
		Synonyms          []value `json:"synonyms"`
		OrfNames          []value `json:"orfNames"`
		OrderedLocusNames []value `json:"orderedLocusNames"`
	} `json:"genes"`
	Comments []restComment `json:"comments"`
	Features []struct {
		Type     string `json:"type"`
		Location struct {
			Start restPosition `json:"start"`
			End   restPosition `json:"end"`
		} `json:"location"`
		Description string `json:"description"`
		FeatureID   string `json:"featureId"`
	} `json:"features"`
	Keywords []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"keywords"`
	CrossReferences []struct {
		Database   string `json:"database"`
		ID         string `json:"id"`
		IsoformID  string `json:"isoformId"`
		Properties []struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		} `json:"properties"`
	} `json:"uniProtKBCrossReferences"`
	Sequence struct {
		Value  string `json:"value"`
		Length int    `json:"length"`
		CRC64  string `json:"crc64"`
	} `json:"sequence"`
}

func entryType(raw string) uniprot.EntryType {
	switch raw {
	case reviewedType, string(uniprot.EntryTypeSwissProt):
		return uniprot.EntryTypeSwissProt
	case unreviewedType, string(uniprot.EntryTypeTrEMBL):
		return uniprot.EntryTypeTrEMBL
	case "":
		return uniprot.EntryTypeUnknown
	default:
		return uniprot.EntryType(raw)
	}
}

func parseDate(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// toEntry converts the JSON representation into a uniprot.Entry.
func (re *restEntry) toEntry() *uniprot.Entry {
	e := &uniprot.Entry{
		ID:                  re.UniProtKBID,
		PrimaryAccession:    re.PrimaryAccession,
		SecondaryAccessions: re.SecondaryAccessions,
		Type:                entryType(re.EntryType),
		Sequence:            re.Sequence.Value,
		SequenceCRC64:       re.Sequence.CRC64,
		Audit: uniprot.Audit{
			EntryVersion:         re.EntryAudit.EntryVersion,
			LastAnnotationUpdate: parseDate(re.EntryAudit.LastAnnotationUpdateDate),
			LastSequenceUpdate:   parseDate(re.EntryAudit.LastSequenceUpdateDate),
		},
	}

	if o := re.Organism; o != nil {
		e.Organism = uniprot.EntryOrganism{ScientificName: o.ScientificName, CommonName: o.CommonName}
		if len(o.Synonyms) > 0 {
			e.Organism.Synonym = o.Synonyms[0]
		}
		if o.TaxonID > 0 {
			e.TaxonomyIDs = []string{strconv.Itoa(o.TaxonID)}
		}
	}

	// TrEMBL entries carry submission names instead of a recommended name.
	pd := re.ProteinDescription
	switch {
	case pd.RecommendedName != nil:
		n := pd.RecommendedName.toName()
		e.RecommendedName = &n
	case len(pd.SubmissionNames) > 0:
		n := pd.SubmissionNames[0].toName()
		e.RecommendedName = &n
	}
	for _, alt := range pd.AlternativeNames {
		e.AlternativeNames = append(e.AlternativeNames, alt.toName())
	}

	for _, g := range re.Genes {
		gene := uniprot.Gene{
			Synonyms:   values(g.Synonyms),
			ORFNames:   values(g.OrfNames),
			LocusNames: values(g.OrderedLocusNames),
		}
		if g.GeneName != nil {
			gene.Name = g.GeneName.Value
		}
		e.Genes = append(e.Genes, gene)
	}

	for _, c := range re.Comments {
		switch c.CommentType {
		case "FUNCTION":
			e.Functions = append(e.Functions, values(c.Texts)...)
		case "DISEASE":
			if c.Disease != nil && c.Disease.Description != "" {
				e.Diseases = append(e.Diseases, c.Disease.Description)
			}
			e.Diseases = append(e.Diseases, values(c.Texts)...)
		case "ALTERNATIVE PRODUCTS":
			e.AlternativeProducts = append(e.AlternativeProducts, alternativeProducts(c))
		}
	}

	for _, f := range re.Features {
		e.Features = append(e.Features, uniprot.Feature{
			Type:        uniprot.FeatureType(f.Type),
			ID:          f.FeatureID,
			Description: f.Description,
			Start:       f.Location.Start.position(),
			End:         f.Location.End.position(),
		})
	}

	for _, kw := range re.Keywords {
		e.Keywords = append(e.Keywords, kw.Name)
	}

	for _, x := range re.CrossReferences {
		raw := xref.Raw{Database: x.Database, ID: x.ID, IsoformID: x.IsoformID}
		for _, p := range x.Properties {
			raw.Properties = append(raw.Properties, xref.Property{Key: p.Key, Value: p.Value})
		}
		e.CrossReferences = append(e.CrossReferences, raw)
	}

	return e
}

func alternativeProducts(c restComment) uniprot.AlternativeProducts {
	var ap uniprot.AlternativeProducts
	for _, iso := range c.Isoforms {
		i := uniprot.Isoform{
			Name:     iso.Name.Value,
			IDs:      iso.IsoformIDs,
			Status:   uniprot.IsoformStatus(iso.IsoformSequenceStatus),
			Synonyms: values(iso.Synonyms),
		}
		if iso.Note != nil {
			i.Note = values(iso.Note.Texts)
		}
		ap.Isoforms = append(ap.Isoforms, i)
	}
	return ap
}

// declaresIsoform reports whether e declares an isoform with the given id.
func declaresIsoform(e *uniprot.Entry, id string) bool {
	for _, ap := range e.AlternativeProducts {
		for _, iso := range ap.Isoforms {
			for _, declared := range iso.IDs {
				for _, d := range strings.Split(declared, ",") {
					if strings.EqualFold(strings.TrimSpace(d), id) {
						return true
					}
				}
			}
		}
	}
	return false
}

// isoformID returns the first id of the named isoform of e.
func isoformID(e *uniprot.Entry, name string) (string, uniprot.IsoformStatus, bool) {
	iso, ok := e.Isoform(name)
	if !ok || len(iso.IDs) == 0 {
		return "", "", false
	}
	id, _, _ := strings.Cut(iso.IDs[0], ",")
	return strings.TrimSpace(id), iso.Status, true
}
