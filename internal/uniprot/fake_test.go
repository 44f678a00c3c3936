package uniprot

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var errBackend = errors.New("backend down")

// fakeService serves entries from memory and counts queries per identifier.
type fakeService struct {
	mu         sync.Mutex
	byAC       map[string][]*Entry
	byID       map[string][]*Entry
	byFeature  map[string][]*Entry
	failing    map[string]bool
	calls      map[string]int
	started    bool
	closed     bool
	startError error
}

func newFakeService() *fakeService {
	return &fakeService{
		byAC:      make(map[string][]*Entry),
		byID:      make(map[string][]*Entry),
		byFeature: make(map[string][]*Entry),
		failing:   make(map[string]bool),
		calls:     make(map[string]int),
	}
}

func (f *fakeService) add(e *Entry) {
	f.byAC[e.PrimaryAccession] = append(f.byAC[e.PrimaryAccession], e)
	for _, sec := range e.SecondaryAccessions {
		f.byAC[sec] = append(f.byAC[sec], e)
	}
	for _, ap := range e.AlternativeProducts {
		for _, iso := range ap.Isoforms {
			for _, id := range isoformIDs(iso.IDs) {
				f.byID[id] = append(f.byID[id], e)
			}
		}
	}
	for _, ft := range e.Features {
		f.byFeature[strings.ToUpper(ft.ID)] = append(f.byFeature[strings.ToUpper(ft.ID)], e)
	}
}

func (f *fakeService) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

func (f *fakeService) record(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if f.failing[id] {
		return errBackend
	}
	return nil
}

func (f *fakeService) QueryByIdentifier(_ context.Context, id string) ([]*Entry, error) {
	if err := f.record(id); err != nil {
		return nil, err
	}
	return f.byID[id], nil
}

func (f *fakeService) QueryByAccession(_ context.Context, ac string) ([]*Entry, error) {
	if err := f.record(ac); err != nil {
		return nil, err
	}
	return f.byAC[ac], nil
}

func (f *fakeService) QueryByFeature(_ context.Context, queries ...FeatureQuery) ([]*Entry, error) {
	var out []*Entry
	seen := make(map[*Entry]bool)
	for _, q := range queries {
		if err := f.record(q.Token); err != nil {
			return nil, err
		}
		for _, e := range f.byFeature[q.Token] {
			for _, ft := range e.FeaturesOf(q.Type) {
				if strings.EqualFold(ft.ID, q.Token) && !seen[e] {
					seen[e] = true
					out = append(out, e)
				}
			}
		}
	}
	return out, nil
}

func (f *fakeService) Start(context.Context) error {
	f.started = true
	return f.startError
}

func (f *fakeService) Close() error {
	f.closed = true
	return nil
}

// humanEntry returns a minimal valid Swiss-Prot entry.
func humanEntry(ac, seq string) *Entry {
	return &Entry{
		ID:               ac + "_HUMAN",
		PrimaryAccession: ac,
		Type:             EntryTypeSwissProt,
		Organism:         EntryOrganism{ScientificName: "Homo sapiens", CommonName: "Human"},
		TaxonomyIDs:      []string{"9606"},
		RecommendedName:  &ProteinName{FullNames: []string{"Protein " + ac}},
		Sequence:         seq,
		Audit:            Audit{EntryVersion: 3},
	}
}
