package uniprot

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testOrganism = &Organism{TaxID: 9606, ScientificName: "Homo sapiens"}

func resolve(t *testing.T, svc *fakeService, e *Entry, res *Resolution) []*SpliceVariant {
	t.Helper()
	variants, err := NewResolver(NewLocator(svc)).Resolve(context.Background(), e, testOrganism, res)
	require.NoError(t, err)
	return variants
}

func TestResolve_DescribedIsoforms(t *testing.T) {
	e := humanEntry("P12345", "MKTALVLLAL")
	e.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "1", IDs: []string{"P12345-1"}, Status: IsoformDisplayed},
		{
			Name:     "2",
			IDs:      []string{"P12345-2, P12345-3"},
			Status:   IsoformDescribed,
			Synonyms: []string{"Short"},
			Note:     []string{"Lacks exon 2.", "Minor form."},
		},
	}}}
	e.SplicedSequences = map[string]string{"1": "MKTALVLLAL", "2": "MKTAL"}

	variants := resolve(t, newFakeService(), e, NewResolution())
	require.Len(t, variants, 2)

	assert.Equal(t, "P12345-1", variants[0].AC)
	assert.Equal(t, "MKTALVLLAL", variants[0].Sequence())
	assert.Empty(t, variants[0].SecondaryACs)

	sv := variants[1]
	assert.Equal(t, "P12345-2", sv.AC)
	assert.Equal(t, "MKTAL", sv.Sequence())
	assert.Equal(t, []string{"P12345-3"}, sv.SecondaryACs)
	assert.Equal(t, []string{"Short"}, sv.Synonyms)
	assert.Equal(t, "Lacks exon 2. Minor form.", sv.Note)
	assert.Same(t, testOrganism, sv.Organism)
}

func TestResolve_AcrossCommentBlocks(t *testing.T) {
	e := humanEntry("P12345", "MK")
	e.AlternativeProducts = []AlternativeProducts{
		{Isoforms: []Isoform{{Name: "1", IDs: []string{"P12345-1"}, Status: IsoformDisplayed}}},
		{Isoforms: []Isoform{{Name: "2", IDs: []string{"P12345-2"}, Status: IsoformNotDescribed}}},
	}

	variants := resolve(t, newFakeService(), e, NewResolution())
	require.Len(t, variants, 2)
	assert.Equal(t, "", variants[1].Sequence())
}

// externalScenario builds an entry whose isoform lives in Q99999. Q99999 does
// not know the isoform by name but declares it under its own name.
func externalScenario() (*fakeService, *Entry) {
	svc := newFakeService()

	q := humanEntry("Q99999", "MAAAAAAA")
	q.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "A", IDs: []string{"Q99999-1"}, Status: IsoformDisplayed},
		{Name: "B", IDs: []string{"Q99999-2"}, Status: IsoformDescribed},
	}}}
	q.SplicedSequences = map[string]string{"A": "MAAAAAAA", "B": "MAAV"}
	svc.add(q)

	e := humanEntry("P12345", "MKTALV")
	e.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "3", IDs: []string{"Q99999-2"}, Status: IsoformExternal},
	}}}
	return svc, e
}

func TestResolve_ExternalRecursive(t *testing.T) {
	svc, e := externalScenario()

	res := NewResolution()
	variants := resolve(t, svc, e, res)
	require.Len(t, variants, 1)
	assert.Equal(t, "Q99999-2", variants[0].AC)
	assert.Equal(t, "MAAV", variants[0].Sequence())
	assert.Equal(t, 1, svc.count("Q99999"))

	seq, ok := res.Sequence("Q99999-2")
	assert.True(t, ok)
	assert.Equal(t, "MAAV", seq)
}

func TestResolve_ExternalByName(t *testing.T) {
	svc := newFakeService()
	q := humanEntry("Q99999", "MAAAAAAA")
	q.SplicedSequences = map[string]string{"3": "MQQ"}
	svc.add(q)

	e := humanEntry("P12345", "MKTALV")
	e.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "3", IDs: []string{"Q99999-4"}, Status: IsoformExternal},
	}}}

	variants := resolve(t, svc, e, NewResolution())
	require.Len(t, variants, 1)
	assert.Equal(t, "MQQ", variants[0].Sequence())
}

func TestResolve_CacheHit(t *testing.T) {
	svc, e := externalScenario()
	e.AlternativeProducts = append(e.AlternativeProducts, AlternativeProducts{Isoforms: []Isoform{
		{Name: "3", IDs: []string{"Q99999-2"}, Status: IsoformExternal},
	}})

	res := NewResolution()
	variants := resolve(t, svc, e, res)
	require.Len(t, variants, 2)
	assert.Equal(t, "MAAV", variants[1].Sequence())
	assert.Equal(t, 1, svc.count("Q99999"))

	// A second build with the same resolution reuses the cache.
	resolve(t, svc, e, res)
	assert.Equal(t, 1, svc.count("Q99999"))

	// A fresh resolution queries again.
	resolve(t, svc, e, NewResolution())
	assert.Equal(t, 2, svc.count("Q99999"))
}

func TestResolve_AmbiguousExternal(t *testing.T) {
	svc, e := externalScenario()
	svc.add(humanEntry("Q99999", "MCCC"))

	res := NewResolution()
	variants := resolve(t, svc, e, res)
	require.Len(t, variants, 1)
	assert.Equal(t, "", variants[0].Sequence())

	require.Len(t, res.Reports(), 1)
	r := res.Reports()[0]
	assert.Equal(t, ReportAmbiguous, r.Kind)
	assert.Equal(t, "Q99999-2", r.Identifier)
	assert.Contains(t, r.Message, "2 entries for Q99999")
}

func TestResolve_ExternalNotFoundOrFailing(t *testing.T) {
	_, e := externalScenario()

	variants := resolve(t, newFakeService(), e, NewResolution())
	require.Len(t, variants, 1)
	assert.Equal(t, "", variants[0].Sequence())

	svc, e := externalScenario()
	svc.failing["Q99999"] = true
	variants = resolve(t, svc, e, NewResolution())
	require.Len(t, variants, 1)
	assert.Equal(t, "", variants[0].Sequence())
}

func TestResolve_Cycle(t *testing.T) {
	svc := newFakeService()

	a := humanEntry("P11111", "MA")
	a.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "X", IDs: []string{"Q22222-2"}, Status: IsoformExternal},
	}}}
	b := humanEntry("Q22222", "MB")
	b.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "Y", IDs: []string{"P11111-5"}, Status: IsoformExternal},
	}}}
	svc.add(a)
	svc.add(b)

	res := NewResolution()
	variants := resolve(t, svc, a, res)
	require.Len(t, variants, 1)
	assert.Equal(t, "", variants[0].Sequence())
	assert.Equal(t, 1, svc.count("Q22222"))
	assert.Equal(t, 1, svc.count("P11111"))

	// The isoform abandoned on the cycle is left uncached.
	_, ok := res.Sequence("P11111-5")
	assert.False(t, ok)
	_, ok = res.Sequence("Q22222-2")
	assert.True(t, ok)
}

func TestResolve_MaxDepth(t *testing.T) {
	chain := func() (*fakeService, *Entry) {
		svc := newFakeService()
		a := humanEntry("P11111", "MA")
		a.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
			{Name: "X", IDs: []string{"Q22222-2"}, Status: IsoformExternal},
		}}}
		b := humanEntry("Q22222", "MB")
		b.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
			{Name: "Y", IDs: []string{"Q33333-2"}, Status: IsoformExternal},
		}}}
		svc.add(b)
		svc.add(humanEntry("Q33333", "MC"))
		return svc, a
	}

	svc, a := chain()
	resolve(t, svc, a, NewResolution())
	assert.Equal(t, 1, svc.count("Q33333"))

	svc, a = chain()
	r := NewResolver(NewLocator(svc))
	r.SetMaxDepth(1)
	_, err := r.Resolve(context.Background(), a, testOrganism, NewResolution())
	require.NoError(t, err)
	assert.Equal(t, 1, svc.count("Q22222"))
	assert.Equal(t, 0, svc.count("Q33333"))
}

func TestResolve_MalformedExternalID(t *testing.T) {
	e := humanEntry("P12345", "MK")
	e.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "2", IDs: []string{"Q99999"}, Status: IsoformExternal},
	}}}

	_, err := NewResolver(NewLocator(newFakeService())).Resolve(context.Background(), e, testOrganism, NewResolution())
	require.ErrorIs(t, err, ErrMalformedIsoformID)
}

func TestResolve_MaxDepthLeavesIsoformUncached(t *testing.T) {
	svc := newFakeService()
	a := humanEntry("P11111", "MA")
	a.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "X", IDs: []string{"Q22222-2"}, Status: IsoformExternal},
		{Name: "Z", IDs: []string{"Q33333-2"}, Status: IsoformExternal},
	}}}
	b := humanEntry("Q22222", "MB")
	b.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
		{Name: "Y", IDs: []string{"Q33333-2"}, Status: IsoformExternal},
	}}}
	c := humanEntry("Q33333", "MCCCC")
	c.SplicedSequences = map[string]string{"Z": "MCZ"}
	svc.add(b)
	svc.add(c)

	r := NewResolver(NewLocator(svc))
	r.SetMaxDepth(1)
	res := NewResolution()
	variants, err := r.Resolve(context.Background(), a, testOrganism, res)
	require.NoError(t, err)
	require.Len(t, variants, 2)

	// Q33333-2 is out of reach below Q22222 but resolves directly from P11111.
	assert.Equal(t, "", variants[0].Sequence())
	assert.Equal(t, "Q33333-2", variants[1].AC)
	assert.Equal(t, "MCZ", variants[1].Sequence())
	assert.Equal(t, 1, svc.count("Q33333"))
}

func TestResolve_MalformedDescribedID(t *testing.T) {
	for _, status := range []IsoformStatus{IsoformDescribed, IsoformDisplayed, IsoformNotDescribed} {
		t.Run(string(status), func(t *testing.T) {
			e := humanEntry("P12345", "MK")
			e.AlternativeProducts = []AlternativeProducts{{Isoforms: []Isoform{
				{Name: "1", IDs: []string{"P12345"}, Status: status},
			}}}
			e.SplicedSequences = map[string]string{"1": "MK"}

			_, err := NewResolver(NewLocator(newFakeService())).Resolve(context.Background(), e, testOrganism, NewResolution())
			require.ErrorIs(t, err, ErrMalformedIsoformID)
		})
	}
}
