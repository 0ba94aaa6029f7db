// CLAUDE:SUMMARY Import orchestration: runs the pipeline for a gender, persists enriched names in chunks and records the run.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/namestat/pkg/names"
	"github.com/hazyhaar/namestat/pkg/pipeline"
	"github.com/hazyhaar/namestat/pkg/store"
)

// Runner produces a pipeline result for one gender.
type Runner interface {
	Run(ctx context.Context, gender names.Gender, years []string) (*pipeline.Result, error)
}

// Store persists names and run bookkeeping.
type Store interface {
	InsertNames(ctx context.Context, recs []store.NameRecord) store.InsertResult
	RecordRun(ctx context.Context, r store.Run) (string, error)
}

// Summary is what one import did. Skipped is set when the run produced
// sample data, which is never written over stored names.
type Summary struct {
	Run     store.Run          `json:"run"`
	Insert  store.InsertResult `json:"insert"`
	Skipped bool               `json:"skipped,omitempty"`
}

// Importer runs the pipeline and writes its output to the store.
type Importer struct {
	runner Runner
	store  Store
	logger *slog.Logger
}

// New creates an Importer.
func New(runner Runner, st Store, logger *slog.Logger) *Importer {
	return &Importer{runner: runner, store: st, logger: logger}
}

// Import runs the pipeline for gender over years and stores the enriched
// names. A fallback run stores nothing but is still recorded with its warning.
func (im *Importer) Import(ctx context.Context, gender names.Gender, years []string) (*Summary, error) {
	started := time.Now()
	res, err := im.runner.Run(ctx, gender, years)
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", gender, err)
	}

	skipped := res.Source == pipeline.SourceFallback
	recs := make([]store.NameRecord, len(res.Names))
	for i, n := range res.Names {
		recs[i] = store.RecordFromEnriched(n)
	}
	ins := store.InsertResult{Success: true, Errors: []string{}}
	if skipped {
		im.logger.Warn("live statistics unavailable, sample data not stored", "gender", gender)
	} else {
		ins = im.store.InsertNames(ctx, recs)
	}

	run := store.Run{
		Gender:     string(gender),
		Years:      res.Years,
		Source:     res.Source,
		Warning:    res.Warning,
		Names:      len(recs),
		Inserted:   ins.Inserted,
		Errors:     len(ins.Errors),
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	id, err := im.store.RecordRun(ctx, run)
	if err != nil {
		return nil, err
	}
	run.ID = id

	if !ins.Success {
		im.logger.Warn("import completed with errors",
			"gender", gender, "inserted", ins.Inserted, "errors", len(ins.Errors))
	}
	im.logger.Info("import complete",
		"run", id, "gender", gender, "source", res.Source, "names", len(recs), "inserted", ins.Inserted)
	return &Summary{Run: run, Insert: ins, Skipped: skipped}, nil
}

// ImportAll imports each gender in turn, stopping at the first error.
func (im *Importer) ImportAll(ctx context.Context, genders []names.Gender, years []string) ([]*Summary, error) {
	var out []*Summary
	for _, g := range genders {
		sum, err := im.Import(ctx, g, years)
		if err != nil {
			return out, err
		}
		out = append(out, sum)
	}
	return out, nil
}
