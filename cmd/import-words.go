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
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eslsoft/lexdrill/internal/adapter/repository"
	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/infrastructure/config"
	"github.com/eslsoft/lexdrill/internal/infrastructure/database"
	"github.com/eslsoft/lexdrill/internal/usecase"
)

// importWordsCmd bulk-loads catalog words from a JSON or CSV file,
// upserting on the term.
var importWordsCmd = &cobra.Command{
	Use:   "import-words",
	Short: "Import catalog words from a JSON or CSV file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		if path == "" {
			return fmt.Errorf("specify a word list with --file")
		}

		words, err := readWordFile(path)
		if err != nil {
			return err
		}
		if len(words) == 0 {
			cmd.Println("no words found in file")
			return nil
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		pool, cleanup, err := database.NewConnection(cfg)
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer cleanup()

		wordRepo := repository.NewWordRepository(pool)
		progressRepo := repository.NewProgressRepository(pool)
		uc := usecase.NewWordUsecase(wordRepo, progressRepo)

		created, updated, err := uc.Import(cmd.Context(), words)
		if err != nil {
			return fmt.Errorf("import words: %w", err)
		}
		cmd.Printf("import complete: %d created, %d updated\n", created, updated)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importWordsCmd)
	importWordsCmd.Flags().StringP("file", "f", "", "word list file (.json or .csv)")
}

// wordFileEntry is the JSON file row format.
type wordFileEntry struct {
	Term        string   `json:"term"`
	Language    string   `json:"language"`
	Translation string   `json:"translation"`
	Definition  string   `json:"definition"`
	Examples    []string `json:"examples"`
	Level       string   `json:"level"`
	Difficulty  string   `json:"difficulty"`
	Status      string   `json:"status"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
}

func readWordFile(path string) ([]*entity.Word, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return readWordJSON(f)
	case ".csv":
		return readWordCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file type %q, want .json or .csv", filepath.Ext(path))
	}
}

func readWordJSON(r io.Reader) ([]*entity.Word, error) {
	var entries []wordFileEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode json word list: %w", err)
	}
	words := make([]*entity.Word, 0, len(entries))
	for _, e := range entries {
		words = append(words, &entity.Word{
			Term:        e.Term,
			Language:    entity.Language(e.Language),
			Translation: e.Translation,
			Definition:  e.Definition,
			Examples:    e.Examples,
			Level:       entity.Level(e.Level),
			Difficulty:  entity.Difficulty(e.Difficulty),
			Status:      entity.WordStatus(e.Status),
			Category:    e.Category,
			Tags:        e.Tags,
		})
	}
	return words, nil
}

// readWordCSV parses rows with a header line. Recognized columns: term,
// language, translation, definition, level, difficulty, status, category,
// tags (semicolon separated). Unknown columns are ignored.
func readWordCSV(r io.Reader) ([]*entity.Word, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := index["term"]; !ok {
		return nil, fmt.Errorf("csv word list needs a term column")
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var words []*entity.Word
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		word := &entity.Word{
			Term:        field(row, "term"),
			Language:    entity.Language(field(row, "language")),
			Translation: field(row, "translation"),
			Definition:  field(row, "definition"),
			Level:       entity.Level(field(row, "level")),
			Difficulty:  entity.Difficulty(field(row, "difficulty")),
			Status:      entity.WordStatus(field(row, "status")),
			Category:    field(row, "category"),
		}
		if tags := field(row, "tags"); tags != "" {
			for _, t := range strings.Split(tags, ";") {
				if t = strings.TrimSpace(t); t != "" {
					word.Tags = append(word.Tags, t)
				}
			}
		}
		words = append(words, word)
	}
	return words, nil
}
