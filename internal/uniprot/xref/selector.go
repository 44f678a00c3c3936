package xref

import (
	"sort"
	"strings"
)

// Selector decides whether cross-references of a database are kept.
type Selector interface {
	IsSelected(database string) bool
}

// DatabaseFilter selects a fixed, case-insensitive set of databases.
type DatabaseFilter struct {
	name string
	dbs  map[string]bool
}

// NewDatabaseFilter creates a filter that selects only the given databases.
func NewDatabaseFilter(name string, databases ...string) *DatabaseFilter {
	f := &DatabaseFilter{name: name, dbs: make(map[string]bool, len(databases))}
	for _, db := range databases {
		db = strings.TrimSpace(db)
		if db != "" {
			f.dbs[strings.ToLower(db)] = true
		}
	}
	return f
}

// IntactDatabases are the databases IntAct keeps on imported proteins.
var IntactDatabases = []string{
	"GO", "InterPro", "PDB", "FlyBase", "SGD", "HUGE", "Ensembl", "RefSeq",
	"Reactome", "dictyBase", "WormBase", "ChEBI", "IPI", "UniProtKB",
}

// NewIntactFilter returns the filter used when importing proteins into IntAct.
func NewIntactFilter() *DatabaseFilter {
	return NewDatabaseFilter("intact", IntactDatabases...)
}

// IsSelected reports whether database is part of the filter.
func (f *DatabaseFilter) IsSelected(database string) bool {
	return f.dbs[strings.ToLower(database)]
}

// Name identifies the filter in logs.
func (f *DatabaseFilter) Name() string {
	return f.name
}

// Databases returns the selected database names, lower-cased and sorted.
func (f *DatabaseFilter) Databases() []string {
	out := make([]string, 0, len(f.dbs))
	for db := range f.dbs {
		out = append(out, db)
	}
	sort.Strings(out)
	return out
}

// SelectorName returns a printable name for s.
func SelectorName(s Selector) string {
	if n, ok := s.(interface{ Name() string }); ok {
		return n.Name()
	}
	return "selector"
}
