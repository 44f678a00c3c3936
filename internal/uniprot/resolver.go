package uniprot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxDepth bounds how many external entries are followed recursively
// while resolving one isoform.
const DefaultMaxDepth = 8

// Resolution carries the state of one top-level retrieval: the isoform
// sequence cache, the set of entries currently being expanded and the
// non-fatal reports raised while resolving. Isoforms abandoned because of
// the depth limit or an expansion cycle are not cached, so another route
// within the same retrieval may still resolve them.
// It must not be shared between concurrent retrievals.
type Resolution struct {
	sequences map[string]string
	expanding map[string]bool
	depth     int
	reports   []Report
}

// NewResolution creates an empty resolution context.
func NewResolution() *Resolution {
	return &Resolution{
		sequences: make(map[string]string),
		expanding: make(map[string]bool),
	}
}

// Sequence returns the cached sequence of an isoform. A cached "" means the
// isoform was resolved without a sequence.
func (r *Resolution) Sequence(ac string) (string, bool) {
	seq, ok := r.sequences[ac]
	return seq, ok
}

// Len returns the number of cached isoforms.
func (r *Resolution) Len() int {
	return len(r.sequences)
}

// Reports returns the non-fatal reports raised so far.
func (r *Resolution) Reports() []Report {
	return r.reports
}

func (r *Resolution) addReport(kind ReportKind, id, msg string) {
	r.reports = append(r.reports, Report{Kind: kind, Identifier: id, Message: msg})
}

// Resolver derives splice variants from alternative products comments,
// following isoforms whose sequence lives in another entry.
type Resolver struct {
	locator  *Locator
	maxDepth int
	logger   *zap.Logger
}

// NewResolver creates a resolver that locates external entries with locator.
func NewResolver(locator *Locator) *Resolver {
	return &Resolver{
		locator:  locator,
		maxDepth: DefaultMaxDepth,
		logger:   zap.NewNop(),
	}
}

// SetLogger sets the logger.
func (r *Resolver) SetLogger(logger *zap.Logger) {
	r.logger = logger
}

// SetMaxDepth sets the maximum number of nested external entries followed.
func (r *Resolver) SetMaxDepth(depth int) {
	if depth > 0 {
		r.maxDepth = depth
	}
}

// Resolve returns the splice variants of every isoform declared by e, across
// all alternative products comments. Organism is shared by all variants.
func (r *Resolver) Resolve(ctx context.Context, e *Entry, organism *Organism, res *Resolution) ([]*SpliceVariant, error) {
	r.logger.Debug("finding splice variants", zap.String("ac", e.PrimaryAccession))

	res.expanding[e.PrimaryAccession] = true
	defer delete(res.expanding, e.PrimaryAccession)

	var variants []*SpliceVariant
	for _, ap := range e.AlternativeProducts {
		for _, iso := range ap.Isoforms {
			ids := isoformIDs(iso.IDs)
			if len(ids) == 0 {
				r.logger.Warn("isoform without id",
					zap.String("ac", e.PrimaryAccession),
					zap.String("isoform", iso.Name))
				continue
			}
			svID := ids[0]

			seq, ok := res.Sequence(svID)
			if !ok {
				parent, err := ParentAccession(svID)
				if err != nil {
					return nil, err
				}
				var settled bool
				seq, settled, err = r.isoformSequence(ctx, e, iso, svID, parent, organism, res)
				if err != nil {
					return nil, err
				}
				if settled {
					res.sequences[svID] = seq
				}
			}

			sv := NewSpliceVariant(svID, organism, seq)
			sv.SecondaryACs = append(sv.SecondaryACs, ids[1:]...)
			sv.Synonyms = append(sv.Synonyms, iso.Synonyms...)
			sv.Note = strings.Join(iso.Note, " ")
			variants = append(variants, sv)
		}
	}

	r.logger.Debug("found splice variants",
		zap.String("ac", e.PrimaryAccession),
		zap.Int("count", len(variants)))
	return variants, nil
}

// isoformIDs splits declared ids, some of which arrive comma-joined.
func isoformIDs(declared []string) []string {
	var ids []string
	for _, d := range declared {
		for _, id := range strings.Split(d, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// isoformSequence resolves the sequence of one isoform. settled is false
// when resolution was abandoned and the result must not be cached.
func (r *Resolver) isoformSequence(ctx context.Context, e *Entry, iso Isoform, svID, parent string, organism *Organism, res *Resolution) (seq string, settled bool, err error) {
	switch iso.Status {
	case IsoformNotDescribed, IsoformDescribed, IsoformDisplayed:
		seq, err = r.splicedSequence(ctx, e, iso.Name)
		return seq, true, err
	case IsoformExternal:
		return r.externalSequence(ctx, e, iso, svID, parent, organism, res)
	default:
		r.logger.Warn("unknown isoform sequence status",
			zap.String("isoform", svID),
			zap.String("status", string(iso.Status)))
		return "", true, nil
	}
}

// splicedSequence fetches an isoform sequence from e. Fetch failures leave
// the sequence unresolved unless the context is done.
func (r *Resolver) splicedSequence(ctx context.Context, e *Entry, name string) (string, error) {
	seq, err := e.SplicedSequence(ctx, name)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		r.logger.Warn("could not fetch spliced sequence",
			zap.String("ac", e.PrimaryAccession),
			zap.String("isoform", name),
			zap.Error(err))
		return "", nil
	}
	return seq, nil
}

// externalSequence resolves an isoform whose sequence is held by the parent
// entry named in the isoform id prefix. Exactly one entry is expected; if it
// does not carry the sequence under the isoform name, its own splice variants
// are resolved and the one with the same accession supplies the sequence.
func (r *Resolver) externalSequence(ctx context.Context, e *Entry, iso Isoform, svID, parent string, organism *Organism, res *Resolution) (string, bool, error) {
	log := r.logger.With(
		zap.String("ac", e.PrimaryAccession),
		zap.String("isoform", iso.Name),
		zap.String("external", parent))
	log.Warn("alternative sequence has to be calculated from an external entry")

	if res.depth >= r.maxDepth {
		log.Warn("maximum external resolution depth reached", zap.Int("depth", res.depth))
		return "", false, nil
	}

	entries, err := r.locator.Locate(ctx, parent)
	if err != nil {
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		log.Warn("could not load external entry", zap.Error(err))
		return "", true, nil
	}
	switch {
	case len(entries) == 0:
		log.Warn("external entry not found")
		return "", true, nil
	case len(entries) > 1:
		log.Error("expected only one entry while loading external sequence",
			zap.Int("found", len(entries)))
		found := make([]string, len(entries))
		for i, extra := range entries {
			found[i] = extra.PrimaryAccession
			if i > 0 {
				log.Error("unexpected external entry", zap.String("found", extra.ID))
			}
		}
		res.addReport(ReportAmbiguous, svID, fmt.Sprintf("%v: %d entries for %s (%s) while resolving isoform of %s",
			ErrAmbiguousEntry, len(entries), parent, strings.Join(found, ", "), e.PrimaryAccession))
		return "", true, nil
	}

	ext := entries[0]
	seq, err := r.splicedSequence(ctx, ext, iso.Name)
	if err != nil || seq != "" {
		return seq, true, err
	}

	if res.expanding[ext.PrimaryAccession] {
		log.Debug("external entry already being expanded", zap.String("entry", ext.PrimaryAccession))
		return "", false, nil
	}

	res.depth++
	variants, err := r.Resolve(ctx, ext, organism, res)
	res.depth--
	if err != nil {
		return "", false, err
	}
	for _, v := range variants {
		if v.AC == svID {
			return v.Sequence(), true, nil
		}
	}
	return "", true, nil
}
