package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/eslsoft/lexdrill/internal/entity"
	"github.com/eslsoft/lexdrill/internal/repository"
)

type fakeWordRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.Word
	// studied maps userID -> set of word IDs with progress, for ListUnstudied.
	studied map[int64]map[int64]bool

	counterErr error
}

func newFakeWordRepo() *fakeWordRepo {
	return &fakeWordRepo{items: make(map[int64]*entity.Word), studied: make(map[int64]map[int64]bool)}
}

func (r *fakeWordRepo) Create(ctx context.Context, w *entity.Word) (*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.Language == w.Language && item.NormalizedTerm() == w.NormalizedTerm() {
			return nil, entity.ErrDuplicateWord
		}
	}
	r.seq++
	copy := cloneWord(w)
	copy.ID = r.seq
	r.items[copy.ID] = copy
	return cloneWord(copy), nil
}

func (r *fakeWordRepo) Update(ctx context.Context, w *entity.Word) (*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[w.ID]; !ok {
		return nil, entity.ErrWordNotFound
	}
	copy := cloneWord(w)
	r.items[copy.ID] = copy
	return cloneWord(copy), nil
}

func (r *fakeWordRepo) GetByID(ctx context.Context, id int64) (*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, entity.ErrWordNotFound
	}
	return cloneWord(item), nil
}

func (r *fakeWordRepo) Lookup(ctx context.Context, term string, language entity.Language) (*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(term))
	for _, item := range r.items {
		if item.Language == language && item.NormalizedTerm() == needle {
			return cloneWord(item), nil
		}
	}
	return nil, nil
}

func (r *fakeWordRepo) List(ctx context.Context, query *repository.ListWordQuery) ([]*entity.Word, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Word
	for _, item := range r.items {
		out = append(out, cloneWord(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeWordRepo) ListUnstudied(ctx context.Context, userID int64, category string, limit int32) ([]*entity.Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Word
	for _, item := range r.items {
		if item.Status != entity.WordStatusPublished {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		if r.studied[userID][item.ID] {
			continue
		}
		out = append(out, cloneWord(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeWordRepo) IncrementCounters(ctx context.Context, id int64, delta repository.WordCounterDelta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counterErr != nil {
		return r.counterErr
	}
	item, ok := r.items[id]
	if !ok {
		return entity.ErrWordNotFound
	}
	item.TimesReviewed += delta.TimesReviewed
	item.SuccessCount += delta.SuccessCount
	item.FailureCount += delta.FailureCount
	return nil
}

func (r *fakeWordRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return entity.ErrWordNotFound
	}
	delete(r.items, id)
	return nil
}

func cloneWord(src *entity.Word) *entity.Word {
	if src == nil {
		return nil
	}
	copy := *src
	copy.Examples = append([]string(nil), src.Examples...)
	copy.Tags = append([]string(nil), src.Tags...)
	return &copy
}

type fakeProgressRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.WordProgress
	words *fakeWordRepo

	conflictOnce bool
}

func newFakeProgressRepo(words *fakeWordRepo) *fakeProgressRepo {
	return &fakeProgressRepo{items: make(map[int64]*entity.WordProgress), words: words}
}

func (r *fakeProgressRepo) Create(ctx context.Context, p *entity.WordProgress) (*entity.WordProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range r.items {
		if item.UserID == p.UserID && item.WordID == p.WordID {
			return nil, entity.ErrDuplicateProgress
		}
	}
	r.seq++
	copy := cloneProgress(p)
	copy.ID = r.seq
	copy.Version = 1
	r.items[copy.ID] = copy
	r.markStudied(p.UserID, p.WordID)
	return cloneProgress(copy), nil
}

func (r *fakeProgressRepo) markStudied(userID, wordID int64) {
	if r.words == nil {
		return
	}
	if r.words.studied[userID] == nil {
		r.words.studied[userID] = make(map[int64]bool)
	}
	r.words.studied[userID][wordID] = true
}

func (r *fakeProgressRepo) Update(ctx context.Context, p *entity.WordProgress) (*entity.WordProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.items[p.ID]
	if !ok || existing.UserID != p.UserID {
		return nil, entity.ErrProgressNotFound
	}
	if r.conflictOnce {
		r.conflictOnce = false
		return nil, entity.ErrConflict
	}
	if existing.Version != p.Version {
		return nil, entity.ErrConflict
	}
	copy := cloneProgress(p)
	copy.Version = existing.Version + 1
	r.items[copy.ID] = copy
	return cloneProgress(copy), nil
}

func (r *fakeProgressRepo) GetByID(ctx context.Context, userID, id int64) (*entity.WordProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok || item.UserID != userID {
		return nil, entity.ErrProgressNotFound
	}
	return cloneProgress(item), nil
}

func (r *fakeProgressRepo) FindByWord(ctx context.Context, userID, wordID int64) (*entity.WordProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.items {
		if item.UserID == userID && item.WordID == wordID {
			return cloneProgress(item), nil
		}
	}
	return nil, nil
}

func (r *fakeProgressRepo) ListDue(ctx context.Context, userID int64, due time.Time, category string, limit int32) ([]*entity.WordProgress, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.WordProgress
	for _, item := range r.items {
		if item.UserID != userID || !item.Due(due) {
			continue
		}
		if category != "" && item.Category != category {
			continue
		}
		out = append(out, cloneProgress(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextReviewAt.Before(*out[j].NextReviewAt) })
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeProgressRepo) CountByStatus(ctx context.Context, userID int64, status entity.ProgressStatus) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, item := range r.items {
		if item.UserID == userID && item.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *fakeProgressRepo) DeleteByWord(ctx context.Context, wordID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, item := range r.items {
		if item.WordID == wordID {
			delete(r.items, id)
		}
	}
	return nil
}

func cloneProgress(src *entity.WordProgress) *entity.WordProgress {
	if src == nil {
		return nil
	}
	copy := *src
	if src.LastReviewedAt != nil {
		last := *src.LastReviewedAt
		copy.LastReviewedAt = &last
	}
	if src.NextReviewAt != nil {
		next := *src.NextReviewAt
		copy.NextReviewAt = &next
	}
	copy.History = append([]entity.ReviewHistoryEntry(nil), src.History...)
	return &copy
}

type fakeUserRepo struct {
	mu    sync.RWMutex
	users map[int64]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[int64]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = cloneUser(u)
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	return cloneUser(user), nil
}

func (r *fakeUserRepo) UpdateStats(ctx context.Context, user *entity.User) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[user.ID]
	if !ok {
		return nil, entity.ErrUserNotFound
	}
	if existing.Version != user.Version {
		return nil, entity.ErrConflict
	}
	copy := cloneUser(user)
	copy.Version = existing.Version + 1
	r.users[copy.ID] = copy
	return cloneUser(copy), nil
}

func cloneUser(src *entity.User) *entity.User {
	if src == nil {
		return nil
	}
	copy := *src
	copy.Stats.Session.Achievements = append([]string(nil), src.Stats.Session.Achievements...)
	return &copy
}

type fakeReviewLogRepo struct {
	mu      sync.Mutex
	entries []*entity.ReviewLog

	appendErr error
}

func newFakeReviewLogRepo() *fakeReviewLogRepo {
	return &fakeReviewLogRepo{}
}

func (r *fakeReviewLogRepo) Append(ctx context.Context, log *entity.ReviewLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.appendErr != nil {
		return r.appendErr
	}
	copy := *log
	r.entries = append(r.entries, &copy)
	return nil
}

func (r *fakeReviewLogRepo) List(ctx context.Context, query *repository.ListReviewLogQuery) ([]*entity.ReviewLog, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.ReviewLog
	for _, e := range r.entries {
		if query.UserID != 0 && e.UserID != query.UserID {
			continue
		}
		if query.WordID != 0 && e.WordID != query.WordID {
			continue
		}
		copy := *e
		out = append(out, &copy)
	}
	return out, int64(len(out)), nil
}

type fakeDailyStatRepo struct {
	mu   sync.Mutex
	rows map[string]*entity.DailyUserStat
	seq  int64
}

func newFakeDailyStatRepo() *fakeDailyStatRepo {
	return &fakeDailyStatRepo{rows: make(map[string]*entity.DailyUserStat)}
}

func dailyKey(userID int64, date string) string {
	return fmt.Sprintf("%d/%s", userID, date)
}

func (r *fakeDailyStatRepo) Upsert(ctx context.Context, delta *entity.DailyUserStatDelta) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := dailyKey(delta.UserID, delta.Date)
	row, ok := r.rows[key]
	if !ok {
		r.seq++
		row = &entity.DailyUserStat{ID: r.seq, UserID: delta.UserID, Date: delta.Date}
		r.rows[key] = row
	}
	row.QuizzesPlayed += delta.QuizzesPlayed
	row.WordsReviewed += delta.WordsReviewed
	row.WordsMastered += delta.WordsMastered
	row.XP += delta.XP
	row.StreakActive = delta.StreakActive
	return nil
}

func (r *fakeDailyStatRepo) Get(ctx context.Context, userID int64, date string) (*entity.DailyUserStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[dailyKey(userID, date)]
	if !ok {
		return nil, nil
	}
	copy := *row
	return &copy, nil
}

func (r *fakeDailyStatRepo) ListRange(ctx context.Context, userID int64, from, to string) ([]*entity.DailyUserStat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.DailyUserStat
	for _, row := range r.rows {
		if row.UserID != userID || row.Date < from || row.Date > to {
			continue
		}
		copy := *row
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *fakeDailyStatRepo) Leaderboard(ctx context.Context, from, to string, limit int32) ([]*entity.LeaderboardEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	totals := make(map[int64]*entity.LeaderboardEntry)
	for _, row := range r.rows {
		if row.Date < from || row.Date > to {
			continue
		}
		e, ok := totals[row.UserID]
		if !ok {
			e = &entity.LeaderboardEntry{UserID: row.UserID}
			totals[row.UserID] = e
		}
		e.XP += row.XP
		e.Reviews += row.WordsReviewed
	}
	var out []*entity.LeaderboardEntry
	for _, e := range totals {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].XP > out[j].XP })
	if int32(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}
