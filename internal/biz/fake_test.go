package biz

import (
	"context"
	"errors"
	"maps"
	"os"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/go-kratos/kratos/v2/log"
)

// memStore is an in-memory storage port. InTx snapshots the tables and
// restores them when fn fails, so partial writes never survive.
type memStore struct {
	mu      sync.Mutex
	movies  map[string]memMovie
	genres  map[string][]string
	ratings map[string]map[string]int // movieID -> userID -> score

	failGenreInsert error
	failRatingsOf   error
	calls           []string
}

type memMovie struct {
	ID    string
	Slug  string
	Title string
	Year  int
}

func newMemStore() *memStore {
	return &memStore{
		movies:  map[string]memMovie{},
		genres:  map[string][]string{},
		ratings: map[string]map[string]int{},
	}
}

func (s *memStore) record(call string) {
	s.calls = append(s.calls, call)
}

func (s *memStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	movies := maps.Clone(s.movies)
	genres := map[string][]string{}
	for k, v := range s.genres {
		genres[k] = slices.Clone(v)
	}
	ratings := map[string]map[string]int{}
	for k, v := range s.ratings {
		ratings[k] = maps.Clone(v)
	}
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.movies, s.genres, s.ratings = movies, genres, ratings
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *memStore) InsertMovie(_ context.Context, movie *Movie) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("InsertMovie")
	slug := movie.Slug()
	for _, m := range s.movies {
		if m.Slug == slug {
			return 0, ErrSlugConflict
		}
	}
	s.movies[movie.ID] = memMovie{ID: movie.ID, Slug: slug, Title: movie.Title, Year: movie.YearOfRelease}
	return 1, nil
}

func (s *memStore) InsertGenre(_ context.Context, movieID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("InsertGenre")
	if s.failGenreInsert != nil {
		return s.failGenreInsert
	}
	s.genres[movieID] = append(s.genres[movieID], name)
	return nil
}

func (s *memStore) DeleteGenresOf(_ context.Context, movieID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("DeleteGenresOf")
	delete(s.genres, movieID)
	return nil
}

func (s *memStore) UpdateMovie(_ context.Context, movie *Movie) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("UpdateMovie")
	if _, ok := s.movies[movie.ID]; !ok {
		return 0, nil
	}
	slug := movie.Slug()
	for id, m := range s.movies {
		if id != movie.ID && m.Slug == slug {
			return 0, ErrSlugConflict
		}
	}
	s.movies[movie.ID] = memMovie{ID: movie.ID, Slug: slug, Title: movie.Title, Year: movie.YearOfRelease}
	return 1, nil
}

func (s *memStore) DeleteMovie(_ context.Context, id string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("DeleteMovie")
	if _, ok := s.movies[id]; !ok {
		return 0, nil
	}
	delete(s.movies, id)
	// cascade
	delete(s.ratings, id)
	return 1, nil
}

func (s *memStore) MovieExists(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.movies[id]
	return ok, nil
}

func (s *memStore) FindMovieByID(_ context.Context, id string, userID *string) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok {
		return nil, ErrMovieNotFound
	}
	return s.toMovie(m, userID), nil
}

func (s *memStore) FindMovieBySlug(_ context.Context, slug string, userID *string) (*Movie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.movies {
		if m.Slug == slug {
			return s.toMovie(m, userID), nil
		}
	}
	return nil, ErrMovieNotFound
}

func (s *memStore) FindMovies(_ context.Context, spec *QuerySpec) ([]*Movie, error) {
	if !spec.Sort.Valid() {
		return nil, errors.New("unsupported sort")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.filter(spec.Filter)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		desc := spec.Sort.Order == SortDescending
		switch spec.Sort.Field {
		case SortFieldTitle:
			if a.Title != b.Title {
				return (a.Title < b.Title) != desc
			}
		case SortFieldYearOfRelease:
			if a.Year != b.Year {
				return (a.Year < b.Year) != desc
			}
		}
		return a.ID < b.ID
	})

	start := min(spec.Offset(), len(rows))
	end := min(start+spec.PageSize, len(rows))
	out := make([]*Movie, 0, end-start)
	for _, m := range rows[start:end] {
		out = append(out, s.toMovie(m, spec.UserID))
	}
	return out, nil
}

func (s *memStore) CountMovies(_ context.Context, filter MovieFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.filter(filter))), nil
}

func (s *memStore) filter(filter MovieFilter) []memMovie {
	var rows []memMovie
	for _, m := range s.movies {
		if filter.Title != nil && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(*filter.Title)) {
			continue
		}
		if filter.Year != nil && m.Year != *filter.Year {
			continue
		}
		rows = append(rows, m)
	}
	return rows
}

func (s *memStore) toMovie(m memMovie, userID *string) *Movie {
	movie := &Movie{
		ID:            m.ID,
		Title:         m.Title,
		YearOfRelease: m.Year,
		Genres:        slices.Clone(s.genres[m.ID]),
	}
	summary := AggregateRatings(s.scoresLocked(m.ID), userID)
	movie.Rating, movie.UserRating = summary.Rating, summary.UserRating
	return movie
}

func (s *memStore) scoresLocked(movieID string) []RatingScore {
	var scores []RatingScore
	for user, score := range s.ratings[movieID] {
		scores = append(scores, RatingScore{UserID: user, Score: score})
	}
	return scores
}

func (s *memStore) UpsertRating(_ context.Context, movieID, userID string, score int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("UpsertRating")
	if _, ok := s.movies[movieID]; !ok {
		return 0, ErrMovieNotFound
	}
	if s.ratings[movieID] == nil {
		s.ratings[movieID] = map[string]int{}
	}
	s.ratings[movieID][userID] = score
	return 1, nil
}

func (s *memStore) DeleteRating(_ context.Context, movieID, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("DeleteRating")
	if _, ok := s.ratings[movieID][userID]; !ok {
		return 0, nil
	}
	delete(s.ratings[movieID], userID)
	return 1, nil
}

func (s *memStore) RatingsOf(_ context.Context, movieID string) ([]RatingScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failRatingsOf != nil {
		return nil, s.failRatingsOf
	}
	return s.scoresLocked(movieID), nil
}

func (s *memStore) RatingsForUser(_ context.Context, userID string) ([]*MovieRating, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*MovieRating
	for movieID, byUser := range s.ratings {
		if score, ok := byUser[userID]; ok {
			out = append(out, &MovieRating{MovieID: movieID, Slug: s.movies[movieID].Slug, Rating: score})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *memStore) ratingRows(movieID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ratings[movieID])
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*CatalogEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event *CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	store   *memStore
	events  *recordingPublisher
	movies  *MovieUseCase
	ratings *RatingUseCase
}

func newFixture() *fixture {
	store := newMemStore()
	events := &recordingPublisher{}
	logger := log.NewStdLogger(os.Stderr)
	return &fixture{
		store:   store,
		events:  events,
		movies:  NewMovieUseCase(store, store, store, events, logger),
		ratings: NewRatingUseCase(store, store, events, logger),
	}
}

func ptr[T any](v T) *T {
	return &v
}
