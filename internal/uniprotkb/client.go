package uniprotkb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/inodb/intact-bridges/internal/fasta"
	"github.com/inodb/intact-bridges/internal/uniprot"
)

// DefaultBaseURL is the public UniProt REST endpoint.
const DefaultBaseURL = "https://rest.uniprot.org"

// Config configures the REST client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit int // requests per second
	PageSize  int
}

// DefaultConfig returns the settings used against rest.uniprot.org.
func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Timeout:   30 * time.Second,
		RateLimit: 10,
		PageSize:  25,
	}
}

// featureFields maps feature types to their UniProtKB query fields.
var featureFields = map[uniprot.FeatureType]string{
	uniprot.FeatureTypeChain:      "ft_chain",
	uniprot.FeatureTypePeptide:    "ft_peptide",
	uniprot.FeatureTypeProPeptide: "ft_propep",
}

// errNotFound marks a 404 answer.
var errNotFound = errors.New("uniprot resource not found")

// Client queries the UniProtKB REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a REST client. Zero config fields take their defaults.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = def.RateLimit
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}

	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		pageSize: cfg.PageSize,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		logger:  zap.NewNop(),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "UniProtKB",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to))
		},
	})
	return c
}

// SetLogger sets the logger.
func (c *Client) SetLogger(logger *zap.Logger) {
	c.logger = logger
}

// Start checks that the base URL is usable.
func (c *Client) Start(context.Context) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("parse uniprot base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported uniprot base url %q", c.baseURL)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// QueryByAccession returns the entries with ac as primary or secondary accession.
func (c *Client) QueryByAccession(ctx context.Context, ac string) ([]*uniprot.Entry, error) {
	return c.search(ctx, "accession:"+ac)
}

// QueryByIdentifier returns the entries declaring the isoform id.
func (c *Client) QueryByIdentifier(ctx context.Context, id string) ([]*uniprot.Entry, error) {
	parent, err := uniprot.ParentAccession(id)
	if err != nil {
		return nil, err
	}
	entries, err := c.search(ctx, "accession:"+parent)
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
func (c *Client) QueryByFeature(ctx context.Context, queries ...uniprot.FeatureQuery) ([]*uniprot.Entry, error) {
	q, err := FeatureQueryString(queries...)
	if err != nil {
		return nil, err
	}
	return c.search(ctx, q)
}

// FeatureQueryString joins feature queries with OR.
func FeatureQueryString(queries ...uniprot.FeatureQuery) (string, error) {
	parts := make([]string, 0, len(queries))
	for _, q := range queries {
		field, ok := featureFields[q.Type]
		if !ok {
			return "", fmt.Errorf("unsupported feature type %q", q.Type)
		}
		parts = append(parts, fmt.Sprintf("(%s:%s)", field, q.Token))
	}
	return strings.Join(parts, " OR "), nil
}

// search runs query and follows pagination links.
func (c *Client) search(ctx context.Context, query string) ([]*uniprot.Entry, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("format", "json")
	params.Set("size", strconv.Itoa(c.pageSize))
	next := c.baseURL + "/uniprotkb/search?" + params.Encode()

	var entries []*uniprot.Entry
	for next != "" {
		var page searchResult
		link, err := c.getJSON(ctx, next, &page)
		if errors.Is(err, errNotFound) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		for i := range page.Results {
			e := page.Results[i].toEntry()
			e.SplicedSequenceFetcher = c.SplicedSequence
			entries = append(entries, e)
		}
		next = nextLink(link)
	}

	c.logger.Debug("uniprot search", zap.String("query", query), zap.Int("entries", len(entries)))
	return entries, nil
}

func (c *Client) getJSON(ctx context.Context, u string, v any) (string, error) {
	var link string
	err := c.get(ctx, u, "application/json", func(resp *http.Response) error {
		link = resp.Header.Get("Link")
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("decode uniprot response: %w", err)
		}
		return nil
	})
	return link, err
}

// get performs a rate limited GET through the circuit breaker.
func (c *Client) get(ctx context.Context, u, accept string, handle func(*http.Response) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait failed: %w", err)
	}

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", accept)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("uniprot request failed: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return nil, errNotFound
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("uniprot API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil, handle(resp)
	})
	return err
}

var linkRe = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// nextLink extracts the rel="next" target of a Link header.
func nextLink(header string) string {
	if m := linkRe.FindStringSubmatch(header); m != nil {
		return m[1]
	}
	return ""
}

// SplicedSequence fetches the sequence of the named isoform of e. The
// displayed isoform is the canonical sequence of the entry. Unknown
// isoforms yield "".
func (c *Client) SplicedSequence(ctx context.Context, e *uniprot.Entry, name string) (string, error) {
	id, status, ok := isoformID(e, name)
	if !ok {
		return "", nil
	}
	if status == uniprot.IsoformDisplayed {
		return e.Sequence, nil
	}
	if status == uniprot.IsoformExternal {
		return "", nil
	}

	var seq string
	err := c.get(ctx, c.baseURL+"/uniprotkb/"+url.PathEscape(id)+".fasta", "text/plain", func(resp *http.Response) error {
		return fasta.Scan(resp.Body, func(rec fasta.Record) error {
			if seq == "" {
				seq = rec.Sequence
			}
			return nil
		})
	})
	if errors.Is(err, errNotFound) {
		c.logger.Debug("isoform sequence not found", zap.String("isoform", id))
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("fetch isoform %s: %w", id, err)
	}
	return seq, nil
}
