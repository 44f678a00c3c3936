package uniprot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// newTestService serves P12345 with one chain and two isoforms.
func newTestService(t *testing.T) (*RemoteService, *fakeService) {
	t.Helper()
	svc := newFakeService()

	e := humanEntry("P12345", "MKTALVLLAL")
	e.SecondaryAccessions = []string{"Q11111"}
	e.Features = []Feature{{Type: FeatureTypeChain, ID: "PRO_0000012345", Start: 2, End: 6}}
	e.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "1", IDs: []string{"P12345-1"}, Status: IsoformDisplayed},
		{Name: "2", IDs: []string{"P12345-2", "P12345-9"}, Status: IsoformDescribed},
	}}}
	e.SplicedSequences = map[string]string{"1": "MKTALVLLAL", "2": "MKTA"}
	svc.add(e)
	svc.add(humanEntry("P22222", "MSTNPKPQRK"))

	s := NewRemoteService(svc)
	s.SetLogger(zaptest.NewLogger(t))
	return s, svc
}

func TestRemoteService_Lifecycle(t *testing.T) {
	s, svc := newTestService(t)
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Close())
	assert.True(t, svc.started)
	assert.True(t, svc.closed)
}

func TestRemoteService_Retrieve(t *testing.T) {
	s, _ := newTestService(t)

	proteins, err := s.Retrieve(context.Background(), "P12345")
	require.NoError(t, err)
	require.Len(t, proteins, 1)

	p := proteins[0]
	assert.Equal(t, "MKTALVLLAL", p.Sequence())
	require.Len(t, p.FeatureChains, 1)
	assert.Equal(t, "KTALV", p.FeatureChains[0].Sequence())
	require.Len(t, p.SpliceVariants, 2)
	assert.Equal(t, "P12345", p.SpliceVariants[1].Master())
	assert.Empty(t, s.Reports())

	// Secondary accessions and case are accepted.
	proteins, err = s.Retrieve(context.Background(), " q11111 ")
	require.NoError(t, err)
	require.Len(t, proteins, 1)
	assert.Equal(t, "P12345", proteins[0].AC)
}

func TestRemoteService_RetrieveWithoutTranscripts(t *testing.T) {
	s, _ := newTestService(t)

	proteins, err := s.RetrieveProteins(context.Background(), "P12345", false)
	require.NoError(t, err)
	require.Len(t, proteins, 1)
	assert.Empty(t, proteins[0].SpliceVariants)
	assert.Empty(t, proteins[0].FeatureChains)
}

func TestRemoteService_NotFound(t *testing.T) {
	s, _ := newTestService(t)

	proteins, err := s.Retrieve(context.Background(), "P99999")
	require.NoError(t, err)
	assert.NotNil(t, proteins)
	assert.Empty(t, proteins)

	reports := s.Reports()
	require.Len(t, reports["P99999"], 1)
	assert.Equal(t, ReportNotFound, reports["P99999"][0].Kind)
	assert.Equal(t, "could not find protein: P99999", reports["P99999"][0].Message)

	s.ClearReports()
	assert.Empty(t, s.Reports())
}

func TestRemoteService_ServiceFailure(t *testing.T) {
	s, svc := newTestService(t)
	svc.failing["P12345"] = true

	proteins, err := s.Retrieve(context.Background(), "P12345")
	require.NoError(t, err)
	assert.Empty(t, proteins)

	reports := s.Reports()["P12345"]
	require.Len(t, reports, 1)
	assert.Equal(t, ReportServiceUnavailable, reports[0].Kind)
	assert.Contains(t, reports[0].Message, "backend down")
}

func TestRemoteService_RetrieveSpliceVariants(t *testing.T) {
	s, _ := newTestService(t)

	variants, err := s.RetrieveSpliceVariants(context.Background(), "P12345-2")
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "P12345-2", variants[0].AC)
	assert.Equal(t, "MKTA", variants[0].Sequence())
	assert.Equal(t, "P12345", variants[0].Master())

	// Secondary isoform ids resolve to the same variant.
	variants, err = s.RetrieveSpliceVariants(context.Background(), "P12345-9")
	require.NoError(t, err)
	require.Len(t, variants, 1)
	assert.Equal(t, "P12345-2", variants[0].AC)

	variants, err = s.RetrieveSpliceVariants(context.Background(), "P12345-7")
	require.NoError(t, err)
	assert.Empty(t, variants)
	require.Len(t, s.Reports()["P12345-7"], 1)
	assert.Equal(t, "could not find splice variants: P12345-7", s.Reports()["P12345-7"][0].Message)
}

func TestRemoteService_RetrieveFeatureChains(t *testing.T) {
	s, _ := newTestService(t)

	chains, err := s.RetrieveFeatureChains(context.Background(), "P12345-PRO_0000012345")
	require.NoError(t, err)
	require.Len(t, chains, 1)
	assert.Equal(t, "KTALV", chains[0].Sequence())
	assert.Equal(t, "P12345", chains[0].Master())
}

func TestRemoteService_RetrieveProteinTranscripts(t *testing.T) {
	s, _ := newTestService(t)

	transcripts, err := s.RetrieveProteinTranscripts(context.Background(), "P12345-2")
	require.NoError(t, err)
	require.Len(t, transcripts, 1)
	assert.Equal(t, "P12345-2", transcripts[0].PrimaryAC())

	transcripts, err = s.RetrieveProteinTranscripts(context.Background(), "P12345-PRO_0000012345")
	require.NoError(t, err)
	require.Len(t, transcripts, 1)
	assert.Equal(t, "KTALV", transcripts[0].Sequence())
}

func TestRemoteService_RetrieveAny(t *testing.T) {
	s, _ := newTestService(t)

	all, err := s.RetrieveAny(context.Background(), "P12345-2")
	require.NoError(t, err)
	// P12345-2 locates P12345 as a protein and as the owner of the isoform.
	require.Len(t, all, 2)
	assert.Equal(t, "P12345", all[0].PrimaryAC())
	assert.Equal(t, "P12345-2", all[1].PrimaryAC())
}

func TestRemoteService_RetrieveBatch(t *testing.T) {
	s, svc := newTestService(t)

	broken := humanEntry("P33333", "MK")
	broken.Features = []Feature{{Type: FeatureTypeChain, ID: "PRO_1", Start: 1, End: 50}}
	svc.add(broken)

	results, err := s.RetrieveBatch(context.Background(), []string{"P12345", "P33333", "P22222"})
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Contains(t, results, "P12345")
	assert.Contains(t, results, "P22222")
	assert.NotContains(t, results, "P33333")

	reports := s.Reports()
	require.Len(t, reports, 1)
	require.Len(t, reports["P33333"], 1)
	assert.Equal(t, ReportDataConsistency, reports["P33333"][0].Kind)
}

func TestRemoteService_RetrieveBatchNotFound(t *testing.T) {
	s, _ := newTestService(t)

	results, err := s.RetrieveBatch(context.Background(), []string{"P12345", "P99999"})
	require.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, []string{"P99999"}, SortedIdentifiers(s.Reports()))
}

func TestRemoteService_RetrieveBatchEmpty(t *testing.T) {
	s, _ := newTestService(t)

	_, err := s.RetrieveBatch(context.Background(), nil)
	require.ErrorIs(t, err, ErrEmptyAccessionList)
}

func TestRemoteService_BatchCancelled(t *testing.T) {
	s, _ := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := s.RetrieveBatch(ctx, []string{"P12345"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestRemoteService_AmbiguousExternalIsReported(t *testing.T) {
	svc := newFakeService()
	e := humanEntry("P55555", "MKTALV")
	e.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "3", IDs: []string{"Q99999-2"}, Status: IsoformExternal},
	}}}
	svc.add(e)
	svc.add(humanEntry("Q99999", "MAAAAAAA"))
	svc.add(humanEntry("Q99999", "MCCC"))

	s := NewRemoteService(svc)
	s.SetLogger(zaptest.NewLogger(t))

	proteins, err := s.Retrieve(context.Background(), "P55555")
	require.NoError(t, err)
	require.Len(t, proteins, 1)
	require.Len(t, proteins[0].SpliceVariants, 1)
	assert.Equal(t, "", proteins[0].SpliceVariants[0].Sequence())

	reports := s.Reports()["Q99999-2"]
	require.Len(t, reports, 1)
	assert.Equal(t, ReportAmbiguous, reports[0].Kind)
	assert.Contains(t, reports[0].Message, ErrAmbiguousEntry.Error())

	// Splice variant lookups record the same diagnostic.
	s.ClearReports()
	_, err = s.RetrieveSpliceVariants(context.Background(), "P55555")
	require.NoError(t, err)
	assert.Len(t, s.Reports()["Q99999-2"], 1)
}
