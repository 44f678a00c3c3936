package uniprot

import (
	"errors"
	"sort"
	"sync"
)

var (
	// ErrNotFound means an identifier matched no entry.
	ErrNotFound = errors.New("not found")
	// ErrServiceUnavailable wraps failures of the entry service.
	ErrServiceUnavailable = errors.New("uniprot service unavailable")
	// ErrInconsistentData means an entry violates a sequence or feature invariant.
	ErrInconsistentData = errors.New("inconsistent uniprot data")
	// ErrUnsupportedEntryType means the entry is neither Swiss-Prot, TrEMBL nor unknown.
	ErrUnsupportedEntryType = errors.New("unsupported entry type")
	// ErrMalformedIsoformID means an isoform id has no parent accession prefix.
	ErrMalformedIsoformID = errors.New("not a splice variant accession")
	// ErrAmbiguousEntry means several entries matched where one was expected.
	ErrAmbiguousEntry = errors.New("ambiguous uniprot entry")
	// ErrEmptyAccessionList is returned by batch retrieval without accessions.
	ErrEmptyAccessionList = errors.New("you must give a non empty list of UniProt ACs")
)

// ReportKind categorises a non-fatal retrieval problem.
type ReportKind int

const (
	ReportNotFound ReportKind = iota
	ReportServiceUnavailable
	ReportDataConsistency
	ReportAmbiguous
)

func (k ReportKind) String() string {
	switch k {
	case ReportServiceUnavailable:
		return "service-unavailable"
	case ReportDataConsistency:
		return "data-consistency"
	case ReportAmbiguous:
		return "ambiguous"
	default:
		return "not-found"
	}
}

// Report is a diagnostic recorded against an identifier.
type Report struct {
	Kind       ReportKind
	Identifier string
	Message    string
}

// kindOf maps an error to the report kind it should be recorded as.
func kindOf(err error) ReportKind {
	switch {
	case errors.Is(err, ErrServiceUnavailable):
		return ReportServiceUnavailable
	case errors.Is(err, ErrAmbiguousEntry):
		return ReportAmbiguous
	case errors.Is(err, ErrNotFound):
		return ReportNotFound
	default:
		return ReportDataConsistency
	}
}

// reportLog accumulates reports per identifier. Safe for concurrent use.
type reportLog struct {
	mu      sync.Mutex
	reports map[string][]Report
}

func (l *reportLog) add(r Report) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reports == nil {
		l.reports = make(map[string][]Report)
	}
	l.reports[r.Identifier] = append(l.reports[r.Identifier], r)
}

func (l *reportLog) snapshot() map[string][]Report {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string][]Report, len(l.reports))
	for id, rs := range l.reports {
		out[id] = append([]Report(nil), rs...)
	}
	return out
}

func (l *reportLog) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.reports = nil
}

// SortedIdentifiers returns the identifiers of reports in lexical order.
func SortedIdentifiers(reports map[string][]Report) []string {
	ids := make([]string, 0, len(reports))
	for id := range reports {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
