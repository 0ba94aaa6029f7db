// Package pipeline runs fetch → decode → tally → enrich for one gender and
// substitutes the embedded fallback dataset when any live stage fails.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hazyhaar/namestat/pkg/jsonstat"
	"github.com/hazyhaar/namestat/pkg/names"
)

// ErrEmptyResult means the source answered but no name survived decoding.
var ErrEmptyResult = errors.New("no names in source response")

// FallbackWarning is shown to users when live statistics could not be used.
const FallbackWarning = "Live name statistics are unavailable right now; showing sample data."

// Result sources.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// Fetcher retrieves the raw statistics table for one gender partition.
type Fetcher interface {
	FetchNames(ctx context.Context, gender names.Gender, years []string) (*jsonstat.Dataset, error)
}

// Result is the output of one run, identical in shape for live and
// fallback data.
type Result struct {
	Gender      names.Gender         `json:"gender"`
	Years       []string             `json:"years"`
	Source      string               `json:"source"`
	Warning     string               `json:"warning,omitempty"`
	NamesByYear names.NamesByYear    `json:"namesByYear"`
	Names       []names.EnrichedName `json:"names"`
	Trend       TrendTable           `json:"trend"`
	Rankings    []Ranking            `json:"rankings"`
}

// Pipeline is safe for concurrent use: each Run owns its frequency table.
type Pipeline struct {
	fetcher  Fetcher
	ref      atomic.Pointer[names.Reference]
	fallback *Fallback
	rules    []names.Rule
	layout   jsonstat.Layout
	topN     int
	timeout  time.Duration
	logger   *slog.Logger
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLayout sets the dimension codes read by the decoder.
func WithLayout(l jsonstat.Layout) Option { return func(p *Pipeline) { p.layout = l } }

// WithTopN sets the number of trend candidates and ranking depth.
func WithTopN(n int) Option { return func(p *Pipeline) { p.topN = n } }

// WithRules replaces the classification rules.
func WithRules(rules []names.Rule) Option { return func(p *Pipeline) { p.rules = rules } }

// WithSourceTimeout bounds each fetch by d. An expired fetch is a source
// failure and falls back like any other. Zero means no bound.
func WithSourceTimeout(d time.Duration) Option { return func(p *Pipeline) { p.timeout = d } }

// WithFallback replaces the embedded fallback dataset.
func WithFallback(fb *Fallback) Option { return func(p *Pipeline) { p.fallback = fb } }

// New returns a Pipeline. A nil ref uses the embedded reference dataset.
func New(fetcher Fetcher, ref *names.Reference, logger *slog.Logger, opts ...Option) *Pipeline {
	if ref == nil {
		ref = names.DefaultReference()
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		fetcher:  fetcher,
		fallback: DefaultFallback(),
		rules:    names.DefaultRules(),
		layout:   jsonstat.DefaultLayout,
		topN:     DefaultTopN,
		logger:   logger,
	}
	p.ref.Store(ref)
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SetReference swaps the reference dataset used by subsequent runs.
func (p *Pipeline) SetReference(ref *names.Reference) {
	if ref != nil {
		p.ref.Store(ref)
	}
}

// Run produces the result for gender over years. Source, decode and empty
// result failures are absorbed here and replaced by fallback data with a
// warning; the only errors returned are an unsupported gender and the
// caller's own cancellation.
func (p *Pipeline) Run(ctx context.Context, gender names.Gender, years []string) (*Result, error) {
	return p.RunTop(ctx, gender, years, p.topN)
}

// RunTop is Run with a ranking depth of topN instead of the configured one.
func (p *Pipeline) RunTop(ctx context.Context, gender names.Gender, years []string, topN int) (*Result, error) {
	if topN <= 0 {
		topN = p.topN
	}
	if gender != names.Girl && gender != names.Boy {
		return nil, fmt.Errorf("unsupported gender %q", gender)
	}

	res := &Result{Gender: gender, Years: years, Source: SourceLive}
	byYear, err := p.live(ctx, gender, years)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("live statistics unavailable, using fallback",
			"gender", gender, "years", len(years), "error", err)
		byYear = p.fallback.NamesByYear(gender)
		res.Source = SourceFallback
		res.Warning = FallbackWarning
		res.Years = byYear.Years()
	}

	freqs := names.Tally(byYear)
	res.NamesByYear = byYear
	res.Names = names.Enrich(freqs, gender, p.ref.Load(), p.rules)

	candidates := TopNames(freqs, topN)
	if res.Source == SourceFallback {
		candidates = p.fallback.Candidates(gender)
	}
	res.Trend = BuildTrend(byYear, candidates)
	res.Rankings = Project(res.Trend, candidates, topN)

	p.logger.Info("pipeline run complete",
		"gender", gender, "source", res.Source, "names", len(res.Names), "years", len(res.Years))
	return res, nil
}

func (p *Pipeline) live(ctx context.Context, gender names.Gender, years []string) (names.NamesByYear, error) {
	if p.fetcher == nil {
		return nil, errors.New("no statistics source configured")
	}
	fetchCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	ds, err := p.fetcher.FetchNames(fetchCtx, gender, years)
	if err != nil {
		if ctx.Err() == nil && fetchCtx.Err() != nil {
			return nil, fmt.Errorf("fetch: no answer within %s: %w", p.timeout, err)
		}
		return nil, fmt.Errorf("fetch: %w", err)
	}
	byYear, err := jsonstat.Decode(ds, p.layout)
	if err != nil {
		return nil, err
	}
	if byYear.Len() == 0 {
		return nil, ErrEmptyResult
	}
	return byYear, nil
}
