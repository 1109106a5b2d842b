/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"archive/zip"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"

	"github.com/eslsoft/lexdrill/internal/infrastructure/config"
	"github.com/eslsoft/lexdrill/internal/infrastructure/database"
)

// dbInitCmd applies the schema and optionally seeds the words table from
// an ECDICT sqlite dump.
var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Initialize the database schema and seed the word list",
	Long:  "Applies database migrations and imports words from an ECDICT sqlite dump. Note: go-sqlite3 needs CGO_ENABLED=1. Use --schema-only to migrate without seeding.",
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		batch, _ := cmd.Flags().GetInt("batch")
		schemaOnly, _ := cmd.Flags().GetBool("schema-only")
		cacheDir, _ := cmd.Flags().GetString("cache-dir")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		if err := runMigrations(cmd.Context()); err != nil {
			return err
		}
		if schemaOnly {
			return nil
		}
		return importDictionary(cmd.Context(), url, batch, cacheDir, noCache)
	},
}

const ecdictURL = "https://github.com/skywind3000/ECDICT/releases/download/1.0.28/ecdict-sqlite-28.zip"

func init() {
	rootCmd.AddCommand(dbInitCmd)
	dbInitCmd.Flags().String("url", ecdictURL, "dictionary dump download URL")
	dbInitCmd.Flags().Int("batch", 1000, "batch insert size")
	dbInitCmd.Flags().Bool("schema-only", false, "apply migrations only, skip seeding")
	dbInitCmd.Flags().String("cache-dir", "", "dictionary cache directory (default: user cache dir/lexdrill)")
	dbInitCmd.Flags().Bool("no-cache", false, "ignore local cache and re-download")
}

func runMigrations(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	pool, cleanup, err := database.NewConnection(cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer cleanup()

	mctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := database.Migrate(mctx, pool); err != nil {
		return err
	}
	log.Println("database migration complete")
	return nil
}

type dictRecord struct {
	Term        string
	Definition  sql.NullString
	Translation sql.NullString
	Tags        sql.NullString
}

func importDictionary(ctx context.Context, url string, batchSize int, cacheDirFlag string, noCache bool) error {
	start := time.Now()
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("importing dictionary: %s", url)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	tmpDir, err := os.MkdirTemp("", "lexdrill-dict-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	cacheDir, zipPath, fromCache, err := prepareCachePath(url, cacheDirFlag, noCache)
	if err != nil {
		return err
	}
	if !fromCache {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
		log.Printf("downloading dictionary to cache: %s", zipPath)
		if err := downloadFile(ctx, url, zipPath); err != nil {
			return err
		}
	} else {
		log.Printf("using cached file: %s", zipPath)
	}
	sqlitePath, err := unzipSingle(func(name string) bool {
		return strings.HasSuffix(name, ".db") || strings.HasSuffix(name, ".sqlite")
	}, zipPath, tmpDir)
	if err != nil {
		return err
	}
	log.Printf("extracted sqlite: %s", sqlitePath)

	sqldb, err := sql.Open("sqlite3", sqlitePath)
	if err != nil {
		return err
	}
	defer sqldb.Close()

	pgpool, err := pgxpool.New(ctx, cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer pgpool.Close()

	if _, err := pgpool.Exec(ctx, "SELECT 1 FROM words LIMIT 1"); err != nil {
		return fmt.Errorf("words table missing, run migrations first: %w", err)
	}

	// ECDICT stardict columns: word, phonetic, definition, translation,
	// pos, collins, oxford, tag, bnc, frq, exchange, detail, audio.
	rows, err := sqldb.QueryContext(ctx, `SELECT word, definition, translation, tag FROM stardict`)
	if err != nil {
		return err
	}
	defer rows.Close()

	batch := make([]dictRecord, 0, batchSize)
	total := 0
	for rows.Next() {
		var r dictRecord
		if err := rows.Scan(&r.Term, &r.Definition, &r.Translation, &r.Tags); err != nil {
			return err
		}
		r.Term = strings.TrimSpace(r.Term)
		if r.Term == "" || !isSingleTerm(r.Term) {
			continue
		}
		if strings.TrimSpace(r.Definition.String) == "" && strings.TrimSpace(r.Translation.String) == "" {
			continue
		}
		batch = append(batch, r)
		if len(batch) >= batchSize {
			if err := insertSeedBatch(ctx, pgpool, batch); err != nil {
				return err
			}
			total += len(batch)
			log.Printf("imported %d", total)
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		if err := insertSeedBatch(ctx, pgpool, batch); err != nil {
			return err
		}
		total += len(batch)
	}
	log.Printf("import complete: %d words in %s", total, time.Since(start))
	return nil
}

func insertSeedBatch(ctx context.Context, pool *pgxpool.Pool, records []dictRecord) error {
	b := &pgx.Batch{}
	for _, r := range records {
		tags := tagList(r.Tags)
		level := levelFromTags(tags)
		b.Queue(`INSERT INTO words (term, language, translation, definition, level, difficulty, status, tags)
			VALUES ($1, 'en', $2, $3, $4, $5, 'published', COALESCE($6, '[]'::jsonb))
			ON CONFLICT (lower(term), language) DO NOTHING`,
			r.Term,
			joinLines(r.Translation),
			joinLines(r.Definition),
			level,
			difficultyForLevel(level),
			tagsArg(tags),
		)
	}
	br := pool.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

// levelFromTags maps ECDICT exam tags to CEFR-ish levels, easiest tag
// wins so school vocabulary stays at beginner levels.
func levelFromTags(tags []string) string {
	ranked := []struct{ tag, level string }{
		{"zk", "a1"},
		{"gk", "a2"},
		{"cet4", "b1"},
		{"cet6", "b2"},
		{"ky", "c1"},
		{"toefl", "c1"},
		{"ielts", "c1"},
		{"gre", "c2"},
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[strings.ToLower(t)] = struct{}{}
	}
	for _, r := range ranked {
		if _, ok := set[r.tag]; ok {
			return r.level
		}
	}
	return "unknown"
}

func difficultyForLevel(level string) string {
	switch level {
	case "a1", "a2":
		return "easy"
	case "c1", "c2":
		return "hard"
	default:
		return "medium"
	}
}

// tagList splits the ECDICT tag field. Tags are space separated but
// sometimes mixed with commas, e.g. "cet4 cet6 ky toefl".
func tagList(ns sql.NullString) []string {
	if !ns.Valid {
		return nil
	}
	s := strings.ReplaceAll(strings.TrimSpace(ns.String), ",", " ")
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(parts))
	ordered := make([]string, 0, len(parts))
	for _, p := range parts {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		ordered = append(ordered, p)
	}
	return ordered
}

func tagsArg(tags []string) any {
	if len(tags) == 0 {
		return nil
	}
	return tags
}

func joinLines(ns sql.NullString) string {
	if !ns.Valid {
		return ""
	}
	parts := strings.Split(ns.String, "\n")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return strings.Join(res, "\n")
}

func isSingleTerm(w string) bool {
	if strings.ContainsAny(w, " \t\n") {
		return false
	}
	// Exclude obvious multi-item constructs containing commas or semicolons
	return !strings.ContainsAny(w, ",;")
}

// helpers
func downloadFile(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed: %s", resp.Status)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(f, resp.Body)
	return err
}

func unzipSingle(match func(string) bool, zipPath, dstDir string) (string, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return "", err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !match(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", err
		}
		defer rc.Close()
		outPath := filepath.Join(dstDir, filepath.Base(f.Name))
		out, err := os.Create(outPath)
		if err != nil {
			return "", err
		}
		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			return "", err
		}
		out.Close()
		return outPath, nil
	}
	return "", errors.New("no sqlite file found in zip")
}

// prepareCachePath decides cache location and returns (cacheDir, zipPath, fromCache, error)
func prepareCachePath(url, cacheDirFlag string, noCache bool) (string, string, bool, error) {
	var base string
	if cacheDirFlag != "" {
		base = cacheDirFlag
	} else {
		userCache, err := os.UserCacheDir()
		if err != nil {
			return "", "", false, fmt.Errorf("resolve user cache dir: %w", err)
		}
		base = filepath.Join(userCache, "lexdrill")
	}
	// stable filename from URL hash
	h := crc32.ChecksumIEEE([]byte(url))
	name := fmt.Sprintf("ecdict-%08x.zip", h)
	zipPath := filepath.Join(base, name)
	if !noCache {
		if st, err := os.Stat(zipPath); err == nil && st.Size() > 0 {
			return base, zipPath, true, nil
		}
	}
	return base, zipPath, false, nil
}
