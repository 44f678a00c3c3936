package uniprot

import (
	"fmt"
	"regexp"
	"strings"
)

// IdentifierKind is the classification of an identifier handed to the locator.
type IdentifierKind int

const (
	KindAccession IdentifierKind = iota
	KindSpliceVariant
	KindFeatureChain
)

func (k IdentifierKind) String() string {
	switch k {
	case KindSpliceVariant:
		return "splice-variant"
	case KindFeatureChain:
		return "feature-chain"
	default:
		return "accession"
	}
}

// ChainSeparator joins a parent accession and a processed chain id,
// e.g. P12345-PRO_0000012345.
const ChainSeparator = "-PRO"

const accessionPattern = `(?:[OPQ][0-9][A-Z0-9]{3}[0-9]|[A-NR-Z][0-9](?:[A-Z][A-Z0-9]{2}[0-9]){1,2})`

var (
	accessionRe     = regexp.MustCompile(`^` + accessionPattern + `$`)
	spliceVariantRe = regexp.MustCompile(`^` + accessionPattern + `-[0-9]+$`)
	featureChainRe  = regexp.MustCompile(`^` + accessionPattern + `(?:-[0-9]+)?-PRO[_-]?[0-9A-Z_-]+$`)
)

// IsAccession reports whether id has the shape of a UniProtKB accession.
func IsAccession(id string) bool {
	return accessionRe.MatchString(strings.ToUpper(id))
}

// IsSpliceVariantID reports whether id has the shape <accession>-<number>.
func IsSpliceVariantID(id string) bool {
	return spliceVariantRe.MatchString(strings.ToUpper(id))
}

// IsFeatureChainID reports whether id has the shape <accession>-PRO<id>.
func IsFeatureChainID(id string) bool {
	return featureChainRe.MatchString(strings.ToUpper(id))
}

// Classify returns how the locator will query id. Splice variant ids take
// priority over feature chain ids; everything else is a plain accession.
func Classify(id string) IdentifierKind {
	id = strings.ToUpper(id)
	switch {
	case IsSpliceVariantID(id):
		return KindSpliceVariant
	case IsFeatureChainID(id):
		return KindFeatureChain
	default:
		return KindAccession
	}
}

// ChainToken strips the parent accession from a feature chain id, returning
// the feature id part, e.g. PRO_0000012345 for P12345-PRO_0000012345.
func ChainToken(id string) string {
	id = strings.ToUpper(id)
	if i := strings.LastIndex(id, ChainSeparator); i != -1 {
		return id[i+1:]
	}
	return id
}

// ParentAccession returns the accession prefix of an isoform id,
// e.g. P12345 for P12345-2.
func ParentAccession(isoformID string) (string, error) {
	i := strings.Index(isoformID, "-")
	if i == -1 {
		return "", fmt.Errorf("%w: %s", ErrMalformedIsoformID, isoformID)
	}
	return isoformID[:i], nil
}
