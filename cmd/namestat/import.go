// CLAUDE:SUMMARY CLI subcommands that run the pipeline once: import (persist to the store) and trending (print JSON).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/hazyhaar/namestat/pkg/importer"
	"github.com/hazyhaar/namestat/pkg/names"
	"github.com/hazyhaar/namestat/pkg/store"
)

// parseGenders turns "all" or a comma-separated list into genders.
func parseGenders(s string) ([]names.Gender, error) {
	if s == "" || s == "all" {
		return []names.Gender{names.Girl, names.Boy}, nil
	}
	var out []names.Gender
	for _, part := range strings.Split(s, ",") {
		g, err := names.ParseGender(part)
		if err != nil {
			return nil, err
		}
		if g == names.Unisex {
			return nil, fmt.Errorf("gender must be girl or boy")
		}
		out = append(out, g)
	}
	return out, nil
}

func yearsFlag(s string, def []string) []string {
	if s == "" {
		return def
	}
	return strings.Split(s, ",")
}

// runContext is cancelled on SIGINT/SIGTERM. The source timeout is applied
// by the pipeline to each fetch.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func cmdImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	gender := fs.String("gender", "all", "girl, boy or all")
	years := fs.String("years", "", "comma-separated years (default from config)")
	fs.Parse(args)

	cfg, logger := loadConfig(*cfgPath)

	genders, err := parseGenders(*gender)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p, _, err := newPipeline(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := runContext()
	defer cancel()

	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	sums, err := importer.New(p, st, logger).ImportAll(ctx, genders, yearsFlag(*years, cfg.Source.Years))
	printSummaries(os.Stdout, sums)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, s := range sums {
		if !s.Insert.Success {
			os.Exit(1)
		}
	}
}

func printSummaries(w io.Writer, sums []*importer.Summary) {
	for _, s := range sums {
		fmt.Fprintf(w, "[%s] %s: %d names, %d inserted, %d errors (run %s)\n",
			s.Run.Gender, s.Run.Source, s.Run.Names, s.Insert.Inserted, len(s.Insert.Errors), s.Run.ID)
		if s.Run.Warning != "" {
			fmt.Fprintf(w, "  warning: %s\n", s.Run.Warning)
		}
		if s.Skipped {
			fmt.Fprintf(w, "  sample data not stored\n")
		}
		for _, e := range s.Insert.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
	}
}

func cmdTrending(args []string) {
	fs := flag.NewFlagSet("trending", flag.ExitOnError)
	cfgPath := fs.String("config", "config.yaml", "path to config file")
	gender := fs.String("gender", "girl", "girl or boy")
	years := fs.String("years", "", "comma-separated years (default from config)")
	top := fs.Int("top", 0, "ranking depth (default from config)")
	fs.Parse(args)

	cfg, logger := loadConfig(*cfgPath)

	genders, err := parseGenders(*gender)
	if err != nil || len(genders) != 1 {
		fmt.Fprintf(os.Stderr, "Error: -gender must be girl or boy\n")
		os.Exit(1)
	}

	p, _, err := newPipeline(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := runContext()
	defer cancel()

	res, err := p.RunTop(ctx, genders[0], yearsFlag(*years, cfg.Source.Years), *top)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if res.Warning != "" {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", res.Warning)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(map[string]any{
		"gender":   res.Gender,
		"years":    res.Years,
		"source":   res.Source,
		"trend":    res.Trend,
		"rankings": res.Rankings,
	})
}
