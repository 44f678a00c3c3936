// Package ontology gives access to locally stored OBO ontologies.
package ontology

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// LocalOntology indexes the terms of one ontology file. Loader creation
// is delegated to a TermBuilder.
type LocalOntology struct {
	builder TermBuilder
	logger  *zap.Logger

	mu       sync.RWMutex
	terms    map[string]*Term
	children map[string][]string
}

// NewLocalOntology creates an empty ontology using builder for loading.
func NewLocalOntology(builder TermBuilder) (*LocalOntology, error) {
	if builder == nil {
		return nil, errors.New("term builder must be non nil")
	}
	return &LocalOntology{
		builder:  builder,
		logger:   zap.NewNop(),
		terms:    make(map[string]*Term),
		children: make(map[string][]string),
	}, nil
}

// SetLogger sets the logger.
func (o *LocalOntology) SetLogger(l *zap.Logger) {
	o.logger = l
}

// Load reads file from dir and replaces the indexed terms.
func (o *LocalOntology) Load(dir, file string) error {
	loader, err := o.builder.NewOBOLoader(dir)
	if err != nil {
		return fmt.Errorf("create loader: %w", err)
	}
	terms, err := loader.Load(file)
	if err != nil {
		return fmt.Errorf("load %s: %w", file, err)
	}

	byID := make(map[string]*Term, len(terms))
	children := make(map[string][]string)
	for _, t := range terms {
		if _, dup := byID[t.ID]; dup {
			o.logger.Warn("duplicate ontology term", zap.String("id", t.ID))
		}
		byID[t.ID] = t
	}
	for _, t := range byID {
		for _, parent := range t.Parents {
			children[parent] = append(children[parent], t.ID)
		}
	}
	for _, ids := range children {
		sort.Strings(ids)
	}

	o.mu.Lock()
	o.terms = byID
	o.children = children
	o.mu.Unlock()

	o.logger.Info("loaded ontology",
		zap.String("file", file),
		zap.Int("terms", len(byID)))
	return nil
}

// Term returns the term with the given id.
func (o *LocalOntology) Term(id string) (*Term, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	t, ok := o.terms[id]
	return t, ok
}

// Parents returns the direct is_a parents of id that are part of the
// ontology.
func (o *LocalOntology) Parents(id string) []*Term {
	o.mu.RLock()
	defer o.mu.RUnlock()
	t, ok := o.terms[id]
	if !ok {
		return nil
	}
	return o.lookup(t.Parents)
}

// Children returns the terms declaring id as a direct parent, ordered by id.
func (o *LocalOntology) Children(id string) []*Term {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.lookup(o.children[id])
}

// IsObsolete reports whether id is a known obsolete term.
func (o *LocalOntology) IsObsolete(id string) bool {
	t, ok := o.Term(id)
	return ok && t.Obsolete
}

// Len returns the number of indexed terms.
func (o *LocalOntology) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.terms)
}

func (o *LocalOntology) lookup(ids []string) []*Term {
	var out []*Term
	for _, id := range ids {
		if t, ok := o.terms[id]; ok {
			out = append(out, t)
		}
	}
	return out
}
