package biz

import (
	"context"
	"math"
	"time"
)

// Movie domain model. Slug, Rating and UserRating are derived and never stored
// on the movie row.
type Movie struct {
	ID            string
	Title         string   `validate:"notblank"`
	YearOfRelease int      `validate:"gte=1888,notfuture"`
	Genres        []string `validate:"min=1,dive,notblank"`

	// Rating is the rounded mean of all scores, nil when the movie is unrated.
	Rating *float64
	// UserRating is the acting user's own score, nil when not requested or absent.
	UserRating *int
}

// Slug derives the movie's slug from its current title and year.
func (m *Movie) Slug() string {
	return Slugify(m.Title, m.YearOfRelease)
}

// MovieRating is one row of a user's rating history.
type MovieRating struct {
	MovieID string
	Slug    string
	Rating  int
}

// RatingScore is a raw rating row for a single movie.
type RatingScore struct {
	UserID string
	Score  int
}

// RatingSummary is the rating view of a movie for an optional acting user.
type RatingSummary struct {
	Rating     *float64
	UserRating *int
}

// SortField is the closed set of sortable columns.
type SortField int

const (
	SortFieldNone SortField = iota
	SortFieldTitle
	SortFieldYearOfRelease
	// SortFieldInvalid marks a caller supplied field outside the alias table.
	SortFieldInvalid
)

func (f SortField) String() string {
	switch f {
	case SortFieldNone:
		return "none"
	case SortFieldTitle:
		return "title"
	case SortFieldYearOfRelease:
		return "yearOfRelease"
	default:
		return "invalid"
	}
}

// SortOrder is the direction of a sort.
type SortOrder int

const (
	SortUnsorted SortOrder = iota
	SortAscending
	SortDescending
)

// MovieSort pairs a resolved field with its direction.
type MovieSort struct {
	Field SortField
	Order SortOrder
}

// Unsorted reports whether no ordering was requested.
func (s MovieSort) Unsorted() bool {
	return s.Order == SortUnsorted || s.Field == SortFieldNone
}

// Valid reports whether the sort can be executed by a storage port.
func (s MovieSort) Valid() bool {
	if s.Unsorted() {
		return s.Field == SortFieldNone && s.Order == SortUnsorted
	}
	return s.Field == SortFieldTitle || s.Field == SortFieldYearOfRelease
}

// MovieFilter narrows a listing. Nil fields impose no constraint.
type MovieFilter struct {
	Title *string
	Year  *int
}

// QuerySpec is the normalized form of a listing request.
type QuerySpec struct {
	Filter   MovieFilter
	Sort     MovieSort
	Page     int
	PageSize int
	// UserID only selects whose personal rating is reported.
	UserID *string
}

// WithUser attaches the acting user to the query.
func (q *QuerySpec) WithUser(userID *string) *QuerySpec {
	q.UserID = userID
	return q
}

// Offset is the number of filtered rows preceding the requested page. It
// saturates at math.MaxInt instead of wrapping negative.
func (q *QuerySpec) Offset() int {
	if q.Page <= 1 || q.PageSize <= 0 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.PageSize {
		return math.MaxInt
	}
	return (q.Page - 1) * q.PageSize
}

// MoviePage is one page of a listing.
type MoviePage struct {
	Items    []*Movie
	Page     int
	PageSize int
	Total    int64
}

// TotalPages is ceil(Total / PageSize).
func (p *MoviePage) TotalPages() int64 {
	if p.PageSize <= 0 {
		return 0
	}
	size := int64(p.PageSize)
	return (p.Total + size - 1) / size
}

// HasNext reports whether a page follows this one.
func (p *MoviePage) HasNext() bool {
	return int64(p.Page) < p.TotalPages()
}

// EventType names a catalog change.
type EventType string

const (
	EventMovieCreated   EventType = "movie.created"
	EventMovieUpdated   EventType = "movie.updated"
	EventMovieDeleted   EventType = "movie.deleted"
	EventRatingUpserted EventType = "rating.upserted"
	EventRatingDeleted  EventType = "rating.deleted"
)

// CatalogEvent is published after a write commits.
type CatalogEvent struct {
	Type       EventType
	MovieID    string
	Slug       string
	UserID     string
	Rating     int
	OccurredAt time.Time
}

// MovieRepo is the movie half of the storage port.
type MovieRepo interface {
	InsertMovie(ctx context.Context, movie *Movie) (int64, error)
	InsertGenre(ctx context.Context, movieID, name string) error
	DeleteGenresOf(ctx context.Context, movieID string) error
	UpdateMovie(ctx context.Context, movie *Movie) (int64, error)
	DeleteMovie(ctx context.Context, id string) (int64, error)
	MovieExists(ctx context.Context, id string) (bool, error)
	FindMovieByID(ctx context.Context, id string, userID *string) (*Movie, error)
	FindMovieBySlug(ctx context.Context, slug string, userID *string) (*Movie, error)
	FindMovies(ctx context.Context, spec *QuerySpec) ([]*Movie, error)
	CountMovies(ctx context.Context, filter MovieFilter) (int64, error)
}

// RatingRepo is the rating half of the storage port.
type RatingRepo interface {
	UpsertRating(ctx context.Context, movieID, userID string, score int) (int64, error)
	DeleteRating(ctx context.Context, movieID, userID string) (int64, error)
	RatingsOf(ctx context.Context, movieID string) ([]RatingScore, error)
	RatingsForUser(ctx context.Context, userID string) ([]*MovieRating, error)
}

// Transaction runs fn as one atomic unit of work. Repositories called with
// the ctx handed to fn join the unit; any error returned rolls it back.
type Transaction interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// EventPublisher delivers catalog events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *CatalogEvent) error
}
