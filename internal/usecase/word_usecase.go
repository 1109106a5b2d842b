package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/repository"
)

// WordUsecase defines catalog logic for vocabulary words. The review
// subsystem only reads; writes serve the administrative import tooling.
type WordUsecase interface {
	Create(ctx context.Context, word *entity.Word) (*entity.Word, error)
	Update(ctx context.Context, word *entity.Word) (*entity.Word, error)
	Get(ctx context.Context, id int64) (*entity.Word, error)
	Lookup(ctx context.Context, term string, language entity.Language) (*entity.Word, error)
	List(ctx context.Context, query *repository.ListWordQuery) ([]*entity.Word, int64, error)
	Import(ctx context.Context, words []*entity.Word) (created, updated int, err error)
	Delete(ctx context.Context, id int64) error
}

type wordUsecase struct {
	words    repository.WordRepository
	progress repository.ProgressRepository
	clock    func() time.Time
}

// NewWordUsecase wires the repositories with default behaviour.
func NewWordUsecase(words repository.WordRepository, progress repository.ProgressRepository) WordUsecase {
	return &wordUsecase{words: words, progress: progress, clock: time.Now}
}

func (u *wordUsecase) Create(ctx context.Context, word *entity.Word) (*entity.Word, error) {
	norm, err := u.normalize(word)
	if err != nil {
		return nil, err
	}
	return u.words.Create(ctx, norm)
}

func (u *wordUsecase) Update(ctx context.Context, word *entity.Word) (*entity.Word, error) {
	norm, err := u.normalize(word)
	if err != nil {
		return nil, err
	}
	if norm.ID <= 0 {
		return nil, entity.ErrInvalidWordID
	}
	return u.words.Update(ctx, norm)
}

func (u *wordUsecase) Get(ctx context.Context, id int64) (*entity.Word, error) {
	if id <= 0 {
		return nil, entity.ErrInvalidWordID
	}
	return u.words.GetByID(ctx, id)
}

func (u *wordUsecase) Lookup(ctx context.Context, term string, language entity.Language) (*entity.Word, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, entity.ErrInvalidWordTerm
	}
	if language == entity.LanguageUnspecified {
		language = entity.LanguageEnglish
	}
	return u.words.Lookup(ctx, term, language)
}

func (u *wordUsecase) List(ctx context.Context, query *repository.ListWordQuery) ([]*entity.Word, int64, error) {
	return u.words.List(ctx, query)
}

// Import upserts a catalog batch: existing (term, language) entries are
// updated in place, everything else is created.
func (u *wordUsecase) Import(ctx context.Context, words []*entity.Word) (int, int, error) {
	var created, updated int
	for _, word := range words {
		norm, err := u.normalize(word)
		if err != nil {
			return created, updated, err
		}
		existing, err := u.words.Lookup(ctx, norm.Term, norm.Language)
		if err != nil {
			return created, updated, err
		}
		if existing != nil {
			norm.ID = existing.ID
			norm.CreatedAt = existing.CreatedAt
			if _, err := u.words.Update(ctx, norm); err != nil {
				return created, updated, err
			}
			updated++
			continue
		}
		if _, err := u.words.Create(ctx, norm); err != nil {
			return created, updated, err
		}
		created++
	}
	return created, updated, nil
}

// Delete removes a catalog word and cascades to all progress records
// referencing it.
func (u *wordUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return entity.ErrInvalidWordID
	}
	if err := u.progress.DeleteByWord(ctx, id); err != nil {
		return err
	}
	return u.words.Delete(ctx, id)
}

func (u *wordUsecase) normalize(in *entity.Word) (*entity.Word, error) {
	if in == nil {
		return nil, entity.ErrInvalidWordTerm
	}
	out := *in
	out.Normalize(u.clock())
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}
