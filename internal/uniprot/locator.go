package uniprot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// FeatureQuery matches entries carrying a feature of Type with id Token.
type FeatureQuery struct {
	Type  FeatureType
	Token string
}

// EntryService is the remote UniProtKB query backend.
type EntryService interface {
	// QueryByIdentifier returns the entries matching id exactly (isoform ids).
	QueryByIdentifier(ctx context.Context, id string) ([]*Entry, error)
	// QueryByAccession returns the entries whose primary or secondary
	// accession is ac.
	QueryByAccession(ctx context.Context, ac string) ([]*Entry, error)
	// QueryByFeature returns the entries matching any of the queries.
	QueryByFeature(ctx context.Context, queries ...FeatureQuery) ([]*Entry, error)
	Start(ctx context.Context) error
	Close() error
}

// Locator classifies identifiers and issues the matching entry query.
type Locator struct {
	service EntryService
	logger  *zap.Logger
}

// NewLocator creates a locator over service.
func NewLocator(service EntryService) *Locator {
	return &Locator{service: service, logger: zap.NewNop()}
}

// SetLogger sets the logger for query tracing.
func (l *Locator) SetLogger(logger *zap.Logger) {
	l.logger = logger
}

// Locate returns the entries matching id. The result is never nil. Service
// failures are returned wrapped in ErrServiceUnavailable.
func (l *Locator) Locate(ctx context.Context, id string) ([]*Entry, error) {
	ac := strings.ToUpper(strings.TrimSpace(id))

	kind := Classify(ac)

	var (
		entries []*Entry
		err     error
	)
	switch kind {
	case KindSpliceVariant:
		entries, err = l.service.QueryByIdentifier(ctx, ac)
	case KindFeatureChain:
		token := ChainToken(ac)
		entries, err = l.service.QueryByFeature(ctx,
			FeatureQuery{Type: FeatureTypeChain, Token: token},
			FeatureQuery{Type: FeatureTypePeptide, Token: token},
			FeatureQuery{Type: FeatureTypeProPeptide, Token: token},
		)
	default:
		entries, err = l.service.QueryByAccession(ctx, ac)
	}

	if err != nil {
		l.logger.Warn("uniprot query failed", zap.String("id", ac), zap.Error(err))
		return []*Entry{}, fmt.Errorf("%w: query %s: %w", ErrServiceUnavailable, ac, err)
	}
	if entries == nil {
		entries = []*Entry{}
	}
	l.logger.Debug("located uniprot entries",
		zap.String("id", ac),
		zap.Stringer("kind", kind),
		zap.Int("entries", len(entries)))
	return entries, nil
}
