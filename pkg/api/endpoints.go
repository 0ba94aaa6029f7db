package api

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hazyhaar/namestat/pkg/importer"
	"github.com/hazyhaar/namestat/pkg/kit"
	"github.com/hazyhaar/namestat/pkg/names"
	"github.com/hazyhaar/namestat/pkg/pipeline"
	"github.com/hazyhaar/namestat/pkg/store"
)

// Shared request/response types used by both HTTP and MCP transports.

// Runner produces pipeline results.
type Runner interface {
	RunTop(ctx context.Context, gender names.Gender, years []string, topN int) (*pipeline.Result, error)
}

// Importer runs and persists imports.
type Importer interface {
	ImportAll(ctx context.Context, genders []names.Gender, years []string) ([]*importer.Summary, error)
}

// Health reports storage and source state.
type Health interface {
	CountNames(ctx context.Context) (int, error)
	LastCheck(ctx context.Context) (*store.SourceCheck, error)
}

// Deps are the collaborators behind the endpoints. Importer and Health may
// be nil; the matching routes then answer 503.
type Deps struct {
	Runner   Runner
	Importer Importer
	Health   Health
	Years    []string
	TopN     int
}

// maxYears bounds the number of years a single request may ask for.
const maxYears = 50

// requestError is a caller mistake; transports report it as a bad request.
type requestError struct{ msg string }

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{msg: fmt.Sprintf(format, args...)}
}

func isRequestError(err error) bool {
	var re *requestError
	return errors.As(err, &re)
}

var errUnavailable = errors.New("not configured on this server")

type namesReq struct {
	Gender string
	Years  []string
}

type trendingReq struct {
	Gender string
	Years  []string
	Top    int
}

type importReq struct {
	Gender string   `json:"gender"`
	Years  []string `json:"years"`
}

type trendingResponse struct {
	Gender   names.Gender        `json:"gender"`
	Years    []string            `json:"years"`
	Source   string              `json:"source"`
	Warning  string              `json:"warning,omitempty"`
	Trend    pipeline.TrendTable `json:"trend"`
	Rankings []pipeline.Ranking  `json:"rankings"`
}

type importResponse struct {
	Imports []*importer.Summary `json:"imports"`
}

type healthResponse struct {
	Status    string             `json:"status"`
	Names     int                `json:"names"`
	LastCheck *store.SourceCheck `json:"last_check,omitempty"`
}

// parseGender accepts only the partitions the source publishes.
func parseGender(s string) (names.Gender, error) {
	g, err := names.ParseGender(s)
	if err != nil {
		return "", badRequest("%v", err)
	}
	if g == names.Unisex {
		return "", badRequest("gender must be girl or boy")
	}
	return g, nil
}

// parseYears validates years, substituting def when none are given.
func parseYears(years, def []string) ([]string, error) {
	var out []string
	for _, y := range years {
		y = strings.TrimSpace(y)
		if y == "" {
			continue
		}
		if n, err := strconv.Atoi(y); err != nil || n < 1800 || n > 2999 {
			return nil, badRequest("invalid year %q", y)
		}
		out = append(out, y)
	}
	if len(out) == 0 {
		out = def
	}
	if len(out) > maxYears {
		return nil, badRequest("too many years (max %d, got %d)", maxYears, len(out))
	}
	return out, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func namesEndpoint(d Deps) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*namesReq)
		g, err := parseGender(req.Gender)
		if err != nil {
			return nil, err
		}
		years, err := parseYears(req.Years, d.Years)
		if err != nil {
			return nil, err
		}
		return d.Runner.RunTop(ctx, g, years, d.TopN)
	}
}

func trendingEndpoint(d Deps) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req := request.(*trendingReq)
		g, err := parseGender(req.Gender)
		if err != nil {
			return nil, err
		}
		years, err := parseYears(req.Years, d.Years)
		if err != nil {
			return nil, err
		}
		top := req.Top
		if top < 0 || top > 100 {
			return nil, badRequest("top must be between 1 and 100")
		}
		if top == 0 {
			top = d.TopN
		}
		res, err := d.Runner.RunTop(ctx, g, years, top)
		if err != nil {
			return nil, err
		}
		return trendingResponse{
			Gender:   res.Gender,
			Years:    res.Years,
			Source:   res.Source,
			Warning:  res.Warning,
			Trend:    res.Trend,
			Rankings: res.Rankings,
		}, nil
	}
}

func importEndpoint(d Deps) kit.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		if d.Importer == nil {
			return nil, errUnavailable
		}
		req := request.(*importReq)
		genders := []names.Gender{names.Girl, names.Boy}
		if req.Gender != "" {
			g, err := parseGender(req.Gender)
			if err != nil {
				return nil, err
			}
			genders = []names.Gender{g}
		}
		years, err := parseYears(req.Years, d.Years)
		if err != nil {
			return nil, err
		}
		sums, err := d.Importer.ImportAll(ctx, genders, years)
		if err != nil {
			return nil, err
		}
		return importResponse{Imports: sums}, nil
	}
}

func healthEndpoint(d Deps) kit.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		resp := healthResponse{Status: "ok"}
		if d.Health == nil {
			return resp, nil
		}
		n, err := d.Health.CountNames(ctx)
		if err != nil {
			return nil, err
		}
		resp.Names = n
		last, err := d.Health.LastCheck(ctx)
		if err != nil {
			return nil, err
		}
		resp.LastCheck = last
		if last != nil && !last.OK() {
			resp.Status = "degraded"
		}
		return resp, nil
	}
}
