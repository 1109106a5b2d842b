package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/infrastructure/database/types"
	repo "github.com/eslsoft/lexdrill/internal/repository"
	"github.com/eslsoft/lexdrill/pkg/filterexpr"
)

const wordColumns = "id, term, language, translation, definition, examples, level, difficulty, status, category, tags, times_reviewed, success_count, failure_count, created_at, updated_at"

const defaultPageSize = int32(20)

type wordRepository struct {
	pool *pgxpool.Pool
}

// NewWordRepository constructs a Postgres-backed word catalog repository.
func NewWordRepository(pool *pgxpool.Pool) repo.WordRepository {
	return &wordRepository{pool: pool}
}

// listWordsParams receives the bound filter and order inputs for List.
type listWordsParams struct {
	Term          *string
	TermPrefix    *string
	Level         *string
	Levels        []string
	Difficulty    *string
	Status        *string
	Tag           *string
	CreatedAfter  *time.Time
	CreatedBefore *time.Time

	PrimaryKey    string
	PrimaryDesc   bool
	SecondaryKey  string
	SecondaryDesc bool
}

func (r *wordRepository) Create(ctx context.Context, word *entity.Word) (*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO words (term, language, translation, definition, examples, level, difficulty, status, category, tags, times_reviewed, success_count, failure_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+wordColumns,
		word.Term, string(word.Language), word.Translation, word.Definition, types.StringList(word.Examples),
		string(word.Level), string(word.Difficulty), string(word.Status), word.Category, types.StringList(word.Tags),
		word.TimesReviewed, word.SuccessCount, word.FailureCount,
		toPgTimestamp(ptrTime(word.CreatedAt)), toPgTimestamp(ptrTime(word.UpdatedAt)),
	)
	created, err := scanWord(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateWord
		}
		return nil, fmt.Errorf("create word: %w", err)
	}
	return created, nil
}

func (r *wordRepository) Update(ctx context.Context, word *entity.Word) (*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE words
		SET term = $2, language = $3, translation = $4, definition = $5, examples = $6,
		    level = $7, difficulty = $8, status = $9, category = $10, tags = $11, updated_at = $12
		WHERE id = $1
		RETURNING `+wordColumns,
		word.ID, word.Term, string(word.Language), word.Translation, word.Definition, types.StringList(word.Examples),
		string(word.Level), string(word.Difficulty), string(word.Status), word.Category, types.StringList(word.Tags),
		toPgTimestamp(ptrTime(word.UpdatedAt)),
	)
	updated, err := scanWord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrWordNotFound
		}
		if isUniqueViolation(err) {
			return nil, entity.ErrDuplicateWord
		}
		return nil, fmt.Errorf("update word: %w", err)
	}
	return updated, nil
}

func (r *wordRepository) GetByID(ctx context.Context, id int64) (*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `SELECT `+wordColumns+` FROM words WHERE id = $1`, id)
	word, err := scanWord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrWordNotFound
		}
		return nil, fmt.Errorf("get word: %w", err)
	}
	return word, nil
}

func (r *wordRepository) Lookup(ctx context.Context, term string, language entity.Language) (*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if term == "" {
		return nil, nil
	}
	row := r.pool.QueryRow(ctx,
		`SELECT `+wordColumns+` FROM words WHERE lower(term) = lower($1) AND language = $2`,
		term, string(language),
	)
	word, err := scanWord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup word: %w", err)
	}
	return word, nil
}

func (r *wordRepository) List(ctx context.Context, query *repo.ListWordQuery) ([]*entity.Word, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	var params listWordsParams
	if err := filterexpr.Bind(query, &params, listWordsSchema); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", entity.ErrInvalidFilter, err)
	}

	conds := []string{"1 = 1"}
	var args []any
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if query.Language != entity.LanguageUnspecified {
		add("language = $%d", string(query.Language))
	}
	if query.Category != "" {
		add("category = $%d", query.Category)
	}
	if params.Term != nil {
		add("lower(term) = lower($%d)", *params.Term)
	}
	if params.TermPrefix != nil {
		add("term ILIKE $%d || '%%'", *params.TermPrefix)
	}
	if params.Level != nil {
		add("level = $%d", *params.Level)
	}
	if len(params.Levels) > 0 {
		add("level = ANY($%d)", params.Levels)
	}
	if params.Difficulty != nil {
		add("difficulty = $%d", *params.Difficulty)
	}
	if params.Status != nil {
		add("status = $%d", *params.Status)
	}
	if params.Tag != nil {
		add("tags @> jsonb_build_array($%d::text)", *params.Tag)
	}
	if params.CreatedAfter != nil {
		add("created_at >= $%d", *params.CreatedAfter)
	}
	if params.CreatedBefore != nil {
		add("created_at <= $%d", *params.CreatedBefore)
	}

	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	pageNo := query.PageNo
	if pageNo <= 0 {
		pageNo = 1
	}
	args = append(args, pageSize, (pageNo-1)*pageSize)

	sql := fmt.Sprintf(
		`SELECT %s, count(*) OVER() AS total_count FROM words WHERE %s ORDER BY %s, %s LIMIT $%d OFFSET $%d`,
		wordColumns,
		strings.Join(conds, " AND "),
		listWordsSchema.Order.Clause(params.PrimaryKey, params.PrimaryDesc),
		listWordsSchema.Order.Clause(params.SecondaryKey, params.SecondaryDesc),
		len(args)-1, len(args),
	)

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list words: %w", err)
	}
	defer rows.Close()

	var (
		words []*entity.Word
		total int64
	)
	for rows.Next() {
		word, count, err := scanWordWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list words: %w", err)
		}
		words = append(words, word)
		total = count
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list words: %w", err)
	}
	return words, total, nil
}

func (r *wordRepository) ListUnstudied(ctx context.Context, userID int64, category string, limit int32) ([]*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+wordColumns+`
		FROM words w
		WHERE w.status = $1
		  AND ($2 = '' OR w.category = $2)
		  AND NOT EXISTS (SELECT 1 FROM word_progress p WHERE p.user_id = $3 AND p.word_id = w.id)
		ORDER BY w.id
		LIMIT $4`,
		string(entity.WordStatusPublished), category, userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list unstudied words: %w", err)
	}
	defer rows.Close()

	var words []*entity.Word
	for rows.Next() {
		word, err := scanWord(rows)
		if err != nil {
			return nil, fmt.Errorf("list unstudied words: %w", err)
		}
		words = append(words, word)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list unstudied words: %w", err)
	}
	return words, nil
}

func (r *wordRepository) IncrementCounters(ctx context.Context, id int64, delta repo.WordCounterDelta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE words
		SET times_reviewed = times_reviewed + $2,
		    success_count = success_count + $3,
		    failure_count = failure_count + $4,
		    updated_at = now()
		WHERE id = $1`,
		id, delta.TimesReviewed, delta.SuccessCount, delta.FailureCount,
	)
	if err != nil {
		return fmt.Errorf("increment word counters: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrWordNotFound
	}
	return nil
}

func (r *wordRepository) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM words WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrWordNotFound
	}
	return nil
}

func scanWord(row pgx.Row) (*entity.Word, error) {
	var (
		w                                   entity.Word
		language, level, difficulty, status string
		examples, tags                      types.StringList
		createdAt, updatedAt                pgtype.Timestamptz
	)
	if err := row.Scan(
		&w.ID, &w.Term, &language, &w.Translation, &w.Definition, &examples,
		&level, &difficulty, &status, &w.Category, &tags,
		&w.TimesReviewed, &w.SuccessCount, &w.FailureCount, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}
	fillWord(&w, language, level, difficulty, status, examples, tags, createdAt, updatedAt)
	return &w, nil
}

func scanWordWithTotal(row pgx.Row) (*entity.Word, int64, error) {
	var (
		w                                   entity.Word
		language, level, difficulty, status string
		examples, tags                      types.StringList
		createdAt, updatedAt                pgtype.Timestamptz
		total                               int64
	)
	if err := row.Scan(
		&w.ID, &w.Term, &language, &w.Translation, &w.Definition, &examples,
		&level, &difficulty, &status, &w.Category, &tags,
		&w.TimesReviewed, &w.SuccessCount, &w.FailureCount, &createdAt, &updatedAt,
		&total,
	); err != nil {
		return nil, 0, err
	}
	fillWord(&w, language, level, difficulty, status, examples, tags, createdAt, updatedAt)
	return &w, total, nil
}

func fillWord(w *entity.Word, language, level, difficulty, status string, examples, tags types.StringList, createdAt, updatedAt pgtype.Timestamptz) {
	w.Language = entity.Language(language)
	w.Level = entity.Level(level)
	w.Difficulty = entity.Difficulty(difficulty)
	w.Status = entity.WordStatus(status)
	w.Examples = []string(examples)
	w.Tags = []string(tags)
	if createdAt.Valid {
		w.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		w.UpdatedAt = updatedAt.Time
	}
}
