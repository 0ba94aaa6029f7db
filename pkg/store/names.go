package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/namestat/pkg/names"
)

// ChunkSize is the number of records written per transaction.
const ChunkSize = 50

// NameRecord is one row handed to InsertNames.
type NameRecord struct {
	Name        string   `json:"name"`
	Gender      string   `json:"gender"`
	Origin      string   `json:"origin"`
	Meaning     string   `json:"meaning"`
	Popularity  int      `json:"popularity"`
	Length      string   `json:"length"`
	Categories  []string `json:"categories"`
	FirstLetter string   `json:"firstLetter"`
}

// RecordFromEnriched converts a pipeline result into a NameRecord.
func RecordFromEnriched(n names.EnrichedName) NameRecord {
	return NameRecord{
		Name:        n.Name,
		Gender:      string(n.Gender),
		Origin:      n.Origin,
		Meaning:     n.Meaning,
		Popularity:  n.Popularity,
		Length:      n.Length,
		Categories:  n.Categories,
		FirstLetter: n.FirstLetter,
	}
}

// InsertResult reports a batch insert. Success is true when no record or
// chunk failed.
type InsertResult struct {
	Success  bool     `json:"success"`
	Inserted int      `json:"inserted"`
	Errors   []string `json:"errors"`
}

func defaultCategories() []string {
	return names.AllCategories
}

// SeedCategories inserts the given slugs, leaving existing rows untouched.
func (s *Store) SeedCategories(ctx context.Context, slugs []string) error {
	q := s.rebind(`INSERT INTO categories (slug) VALUES (?) ON CONFLICT (slug) DO NOTHING`)
	for _, slug := range slugs {
		if _, err := s.db.ExecContext(ctx, q, slug); err != nil {
			return fmt.Errorf("seed category %s: %w", slug, err)
		}
	}
	return nil
}

// CategoryIDs returns the id of every known category slug.
func (s *Store) CategoryIDs(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, slug FROM categories`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var slug string
		if err := rows.Scan(&id, &slug); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		ids[slug] = id
	}
	return ids, rows.Err()
}

// validate returns the reasons rec cannot be stored.
func validate(rec NameRecord, categories map[string]int64) []string {
	var problems []string
	if rec.Name == "" {
		problems = append(problems, "empty name")
	}
	if !names.Gender(rec.Gender).Valid() {
		problems = append(problems, fmt.Sprintf("invalid gender %q", rec.Gender))
	}
	if !names.ValidLength(rec.Length) {
		problems = append(problems, fmt.Sprintf("invalid length %q", rec.Length))
	}
	if rec.Popularity < 1 || rec.Popularity > 100 {
		problems = append(problems, fmt.Sprintf("popularity %d out of [1,100]", rec.Popularity))
	}
	for _, c := range rec.Categories {
		if _, ok := categories[c]; !ok {
			problems = append(problems, fmt.Sprintf("unknown category %q", c))
		}
	}
	return problems
}

// InsertNames validates recs and upserts the valid ones on (name, gender) in
// chunks of ChunkSize, replacing their category links. Invalid records and
// failed chunks are reported in Errors; the rest of the batch proceeds.
func (s *Store) InsertNames(ctx context.Context, recs []NameRecord) InsertResult {
	res := InsertResult{Errors: []string{}}

	categories, err := s.CategoryIDs(ctx)
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	valid := make([]NameRecord, 0, len(recs))
	for i, rec := range recs {
		if problems := validate(rec, categories); len(problems) > 0 {
			for _, p := range problems {
				res.Errors = append(res.Errors, fmt.Sprintf("record %d (%s): %s", i, rec.Name, p))
			}
			continue
		}
		if rec.FirstLetter == "" {
			rec.FirstLetter = names.FirstLetter(rec.Name)
		}
		valid = append(valid, rec)
	}

	for start := 0; start < len(valid); start += ChunkSize {
		end := min(start+ChunkSize, len(valid))
		if err := s.insertChunk(ctx, valid[start:end], categories); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("chunk %d-%d: %v", start, end-1, err))
			continue
		}
		res.Inserted += end - start
	}

	res.Success = len(res.Errors) == 0
	return res
}

func (s *Store) insertChunk(ctx context.Context, chunk []NameRecord, categories map[string]int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	upsert, err := tx.PrepareContext(ctx, s.rebind(`
		INSERT INTO names (name, gender, origin, meaning, popularity, length, first_letter, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, gender) DO UPDATE SET
		  origin = excluded.origin,
		  meaning = excluded.meaning,
		  popularity = excluded.popularity,
		  length = excluded.length,
		  first_letter = excluded.first_letter,
		  updated_at = excluded.updated_at
		RETURNING id`))
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer upsert.Close()

	unlink, err := tx.PrepareContext(ctx, s.rebind(`DELETE FROM name_categories WHERE name_id = ?`))
	if err != nil {
		return fmt.Errorf("prepare unlink: %w", err)
	}
	defer unlink.Close()

	link, err := tx.PrepareContext(ctx, s.rebind(
		`INSERT INTO name_categories (name_id, category_id) VALUES (?, ?) ON CONFLICT DO NOTHING`))
	if err != nil {
		return fmt.Errorf("prepare link: %w", err)
	}
	defer link.Close()

	now := time.Now().Unix()
	for _, rec := range chunk {
		var id int64
		err := upsert.QueryRowContext(ctx, rec.Name, rec.Gender, rec.Origin, rec.Meaning,
			rec.Popularity, rec.Length, rec.FirstLetter, now).Scan(&id)
		if err != nil {
			return fmt.Errorf("upsert %s/%s: %w", rec.Name, rec.Gender, err)
		}
		if _, err := unlink.ExecContext(ctx, id); err != nil {
			return fmt.Errorf("unlink categories of %s: %w", rec.Name, err)
		}
		for _, c := range rec.Categories {
			if _, err := link.ExecContext(ctx, id, categories[c]); err != nil {
				return fmt.Errorf("link %s to %s: %w", rec.Name, c, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// nameCategories returns the category slugs linked to a stored name.
func (s *Store) nameCategories(ctx context.Context, name, gender string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT c.slug FROM name_categories nc
		JOIN names n ON n.id = nc.name_id
		JOIN categories c ON c.id = nc.category_id
		WHERE n.name = ? AND n.gender = ?
		ORDER BY c.slug`), name, gender)
	if err != nil {
		return nil, fmt.Errorf("name categories: %w", err)
	}
	defer rows.Close()

	var slugs []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, err
		}
		slugs = append(slugs, slug)
	}
	return slugs, rows.Err()
}

// CountNames returns the number of stored names.
func (s *Store) CountNames(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM names`).Scan(&n); err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("count names: %w", err)
	}
	return n, nil
}
