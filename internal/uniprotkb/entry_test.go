package uniprotkb

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/intact-bridges/internal/uniprot"
)

func loadFixture(t *testing.T) *uniprot.Entry {
	t.Helper()
	data, err := os.ReadFile("testdata/P12345.json")
	require.NoError(t, err)

	var re restEntry
	require.NoError(t, json.Unmarshal(data, &re))
	return re.toEntry()
}

func TestToEntry(t *testing.T) {
	e := loadFixture(t)

	assert.Equal(t, "TEST_HUMAN", e.ID)
	assert.Equal(t, "P12345", e.PrimaryAccession)
	assert.Equal(t, []string{"Q11111"}, e.SecondaryAccessions)
	assert.Equal(t, uniprot.EntryTypeSwissProt, e.Type)
	assert.Equal(t, []string{"9606"}, e.TaxonomyIDs)
	assert.Equal(t, "Human", e.Organism.CommonName)
	assert.Equal(t, 42, e.Audit.EntryVersion)
	assert.Equal(t, time.Date(2024, 1, 24, 0, 0, 0, 0, time.UTC), e.Audit.LastAnnotationUpdate)

	require.NotNil(t, e.RecommendedName)
	assert.Equal(t, []string{"Test protein kinase"}, e.RecommendedName.FullNames)
	assert.Equal(t, []string{"TPK"}, e.RecommendedName.ShortNames)
	require.Len(t, e.AlternativeNames, 1)

	require.Len(t, e.Genes, 1)
	assert.Equal(t, "TPK1", e.Genes[0].Name)
	assert.Equal(t, []string{"KIAA0123"}, e.Genes[0].Synonyms)
	assert.Equal(t, []string{"ORF7"}, e.Genes[0].ORFNames)

	assert.Equal(t, []string{"Phosphorylates things."}, e.Functions)
	assert.Equal(t, []string{"A test disease."}, e.Diseases)
	assert.Equal(t, []string{"Kinase"}, e.Keywords)

	require.Len(t, e.AlternativeProducts, 1)
	isoforms := e.AlternativeProducts[0].Isoforms
	require.Len(t, isoforms, 2)
	assert.Equal(t, uniprot.IsoformDescribed, isoforms[1].Status)
	assert.Equal(t, []string{"Lacks the tail."}, isoforms[1].Note)

	require.Len(t, e.Features, 2)
	assert.Equal(t, uniprot.Feature{
		Type: uniprot.FeatureTypeChain, ID: "PRO_0000012345",
		Description: "Test protein kinase, mature form", Start: 2, End: 6,
	}, e.Features[0])
	assert.Equal(t, uniprot.UnknownPosition, e.Features[1].End)

	require.Len(t, e.CrossReferences, 2)
	assert.Equal(t, "P12345-1", e.CrossReferences[1].IsoformID)
	assert.Equal(t, "ENSG00000000001.2", e.CrossReferences[1].Property("GeneId"))

	assert.Equal(t, "MKTALVLLAL", e.Sequence)
}

func TestEntryType(t *testing.T) {
	assert.Equal(t, uniprot.EntryTypeSwissProt, entryType("UniProtKB reviewed (Swiss-Prot)"))
	assert.Equal(t, uniprot.EntryTypeTrEMBL, entryType("UniProtKB unreviewed (TrEMBL)"))
	assert.Equal(t, uniprot.EntryTypeUnknown, entryType(""))
	assert.Equal(t, uniprot.EntryType("Inactive"), entryType("Inactive"))
}

func TestToEntry_SubmissionName(t *testing.T) {
	var re restEntry
	require.NoError(t, json.Unmarshal([]byte(`{
		"entryType": "UniProtKB unreviewed (TrEMBL)",
		"primaryAccession": "A0A024R161",
		"proteinDescription": {"submissionNames": [{"fullName": {"value": "Submitted"}}]}
	}`), &re))

	e := re.toEntry()
	require.NotNil(t, e.RecommendedName)
	assert.Equal(t, []string{"Submitted"}, e.RecommendedName.FullNames)
	assert.Empty(t, e.TaxonomyIDs)
}

func TestDeclaresIsoform(t *testing.T) {
	e := loadFixture(t)
	assert.True(t, declaresIsoform(e, "P12345-2"))
	assert.True(t, declaresIsoform(e, "p12345-1"))
	assert.False(t, declaresIsoform(e, "P12345-3"))

	id, status, ok := isoformID(e, "2")
	require.True(t, ok)
	assert.Equal(t, "P12345-2", id)
	assert.Equal(t, uniprot.IsoformDescribed, status)

	_, _, ok = isoformID(e, "9")
	assert.False(t, ok)
}
