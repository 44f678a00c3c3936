package uniprotkb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/intact-bridges/internal/fasta"
	"github.com/inodb/intact-bridges/internal/uniprot"
)

// DirService serves entries from UniProtKB JSON files in a directory, for
// offline runs and tests. Each file holds one entry or a search result.
// Isoform sequences come from an optional varsplic FASTA file.
type DirService struct {
	dir      string
	varsplic string
	logger   *zap.Logger

	mu        sync.RWMutex
	byAC      map[string][]*uniprot.Entry
	byFeature map[string][]*uniprot.Entry
	isoforms  *fasta.Loader
}

// NewDirService creates a service over the JSON files of dir. varsplic may be "".
func NewDirService(dir, varsplic string) *DirService {
	return &DirService{
		dir:      dir,
		varsplic: varsplic,
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger.
func (s *DirService) SetLogger(logger *zap.Logger) {
	s.logger = logger
}

// Start loads every JSON file of the directory.
func (s *DirService) Start(context.Context) error {
	files, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return fmt.Errorf("glob json files: %w", err)
	}
	if _, err := os.Stat(s.dir); err != nil {
		return fmt.Errorf("entry directory: %w", err)
	}

	isoforms := fasta.NewLoader(s.varsplic)
	if s.varsplic != "" {
		if err := isoforms.Load(); err != nil {
			return fmt.Errorf("load varsplic: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byAC = make(map[string][]*uniprot.Entry)
	s.byFeature = make(map[string][]*uniprot.Entry)
	s.isoforms = isoforms

	for _, f := range files {
		if err := s.loadJSONFile(f); err != nil {
			return fmt.Errorf("load json file %s: %w", f, err)
		}
	}

	s.logger.Info("loaded uniprot entries",
		zap.String("dir", s.dir),
		zap.Int("files", len(files)),
		zap.Int("isoforms", isoforms.Len()))
	return nil
}

// Close drops the loaded entries.
func (s *DirService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byAC = nil
	s.byFeature = nil
	s.isoforms = nil
	return nil
}

func (s *DirService) loadJSONFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw []restEntry
	if bytes.Contains(data, []byte(`"results"`)) {
		var page searchResult
		if err := json.Unmarshal(data, &page); err != nil {
			return err
		}
		raw = page.Results
	} else {
		var one restEntry
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		raw = []restEntry{one}
	}

	for i := range raw {
		s.add(raw[i].toEntry())
	}
	return nil
}

// add indexes e. Callers hold the write lock.
func (s *DirService) add(e *uniprot.Entry) {
	e.SplicedSequenceFetcher = s.splicedSequence

	keys := append([]string{e.PrimaryAccession}, e.SecondaryAccessions...)
	for _, k := range keys {
		k = strings.ToUpper(k)
		s.byAC[k] = append(s.byAC[k], e)
	}
	for _, f := range e.Features {
		if f.ID != "" {
			k := strings.ToUpper(f.ID)
			s.byFeature[k] = append(s.byFeature[k], e)
		}
	}
}

// QueryByAccession returns the entries with ac as primary or secondary accession.
func (s *DirService) QueryByAccession(_ context.Context, ac string) ([]*uniprot.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.byAC == nil {
		return nil, fmt.Errorf("entry directory %s not started", s.dir)
	}
	return s.byAC[strings.ToUpper(ac)], nil
}

// QueryByIdentifier returns the entries declaring the isoform id.
func (s *DirService) QueryByIdentifier(ctx context.Context, id string) ([]*uniprot.Entry, error) {
	parent, err := uniprot.ParentAccession(id)
	if err != nil {
		return nil, err
	}
	entries, err := s.QueryByAccession(ctx, parent)
	if err != nil {
		return nil, err
	}
	var out []*uniprot.Entry
	for _, e := range entries {
		if declaresIsoform(e, id) {
			out = append(out, e)
		}
	}
	return out, nil
}

// QueryByFeature returns the entries carrying any of the queried features.
func (s *DirService) QueryByFeature(_ context.Context, queries ...uniprot.FeatureQuery) ([]*uniprot.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.byFeature == nil {
		return nil, fmt.Errorf("entry directory %s not started", s.dir)
	}

	var out []*uniprot.Entry
	seen := make(map[*uniprot.Entry]bool)
	for _, q := range queries {
		for _, e := range s.byFeature[strings.ToUpper(q.Token)] {
			if seen[e] {
				continue
			}
			for _, f := range e.FeaturesOf(q.Type) {
				if strings.EqualFold(f.ID, q.Token) {
					seen[e] = true
					out = append(out, e)
					break
				}
			}
		}
	}
	return out, nil
}

func (s *DirService) splicedSequence(_ context.Context, e *uniprot.Entry, name string) (string, error) {
	id, status, ok := isoformID(e, name)
	if !ok {
		return "", nil
	}
	if status == uniprot.IsoformDisplayed {
		return e.Sequence, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.isoforms == nil {
		return "", nil
	}
	return s.isoforms.Sequence(id), nil
}
