package biz

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

// MovieUseCase handles movie-related business logic
type MovieUseCase struct {
	repo       MovieRepo
	ratingRepo RatingRepo
	tx         Transaction
	events     EventPublisher
	log        *log.Helper
}

// NewMovieUseCase creates a new MovieUseCase instance
func NewMovieUseCase(repo MovieRepo, ratingRepo RatingRepo, tx Transaction, events EventPublisher, logger log.Logger) *MovieUseCase {
	return &MovieUseCase{
		repo:       repo,
		ratingRepo: ratingRepo,
		tx:         tx,
		events:     events,
		log:        log.NewHelper(logger),
	}
}

// CreateMovie validates the movie, assigns its id and stores it together with
// its genres.
func (uc *MovieUseCase) CreateMovie(ctx context.Context, movie *Movie) (*Movie, error) {
	if err := ValidateMovie(movie); err != nil {
		return nil, err
	}

	// Generate movie ID (UUID v7: time-ordered, index-friendly)
	movieID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate movie ID: %w", err)
	}
	movie.ID = movieID.String()
	movie.Rating, movie.UserRating = nil, nil

	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		n, err := uc.repo.InsertMovie(ctx, movie)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("movie %s was not inserted", movie.ID)
		}
		for _, genre := range movie.Genres {
			if err := uc.repo.InsertGenre(ctx, movie.ID, genre); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapWrite("create", err)
	}

	publish(ctx, uc.events, uc.log, &CatalogEvent{Type: EventMovieCreated, MovieID: movie.ID, Slug: movie.Slug()})
	return movie, nil
}

// GetMovie looks a movie up by id.
func (uc *MovieUseCase) GetMovie(ctx context.Context, id string, userID *string) (*Movie, error) {
	movie, err := uc.repo.FindMovieByID(ctx, id, userID)
	if err != nil {
		return nil, wrapRead("get movie", err)
	}
	return movie, nil
}

// GetMovieBySlug looks a movie up by its slug.
func (uc *MovieUseCase) GetMovieBySlug(ctx context.Context, slug string, userID *string) (*Movie, error) {
	movie, err := uc.repo.FindMovieBySlug(ctx, slug, userID)
	if err != nil {
		return nil, wrapRead("get movie by slug", err)
	}
	return movie, nil
}

// ListMovies returns one page of the filtered, sorted catalog and the size of
// the whole filtered set.
func (uc *MovieUseCase) ListMovies(ctx context.Context, spec *QuerySpec) (*MoviePage, error) {
	if !spec.Sort.Valid() {
		verr := &ValidationError{}
		verr.Add("sortBy", "unsupported sort field %s", spec.Sort.Field)
		return nil, verr
	}
	if spec.Page < 1 || spec.PageSize < 1 || spec.PageSize > MaxPageSize {
		verr := &ValidationError{}
		verr.Add("pageSize", "must be between 1 and %d", MaxPageSize)
		return nil, verr
	}

	total, err := uc.repo.CountMovies(ctx, spec.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count movies: %w", err)
	}

	page := &MoviePage{
		Items:    []*Movie{},
		Page:     spec.Page,
		PageSize: spec.PageSize,
		Total:    total,
	}
	// Pages past the end are empty, not an error. Compared in page units so
	// huge page numbers cannot overflow.
	if total == 0 || int64(spec.Page-1) > (total-1)/int64(spec.PageSize) {
		return page, nil
	}

	movies, err := uc.repo.FindMovies(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	page.Items = movies
	return page, nil
}

// UpdateMovie replaces title, year and genres of an existing movie and returns
// it with its current ratings.
func (uc *MovieUseCase) UpdateMovie(ctx context.Context, movie *Movie, userID *string) (*Movie, error) {
	if err := ValidateMovie(movie); err != nil {
		return nil, err
	}

	exists, err := uc.repo.MovieExists(ctx, movie.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check movie: %w", err)
	}
	if !exists {
		return nil, ErrMovieNotFound
	}

	err = uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.DeleteGenresOf(ctx, movie.ID); err != nil {
			return err
		}
		for _, genre := range movie.Genres {
			if err := uc.repo.InsertGenre(ctx, movie.ID, genre); err != nil {
				return err
			}
		}
		n, err := uc.repo.UpdateMovie(ctx, movie)
		if err != nil {
			return err
		}
		if n == 0 {
			// deleted between the existence check and the update
			return ErrMovieNotFound
		}
		return nil
	})
	if err != nil {
		return nil, wrapWrite("update", err)
	}

	summary, err := ratingSummary(ctx, uc.ratingRepo, movie.ID, userID)
	if err != nil {
		return nil, err
	}
	movie.Rating, movie.UserRating = summary.Rating, summary.UserRating

	publish(ctx, uc.events, uc.log, &CatalogEvent{Type: EventMovieUpdated, MovieID: movie.ID, Slug: movie.Slug()})
	return movie, nil
}

// DeleteMovie removes a movie and its genres. Ratings follow through the
// storage cascade.
func (uc *MovieUseCase) DeleteMovie(ctx context.Context, id string) error {
	err := uc.tx.InTx(ctx, func(ctx context.Context) error {
		if err := uc.repo.DeleteGenresOf(ctx, id); err != nil {
			return err
		}
		n, err := uc.repo.DeleteMovie(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrMovieNotFound
		}
		return nil
	})
	if err != nil {
		return wrapWrite("delete", err)
	}

	publish(ctx, uc.events, uc.log, &CatalogEvent{Type: EventMovieDeleted, MovieID: id})
	return nil
}

// wrapWrite keeps domain errors intact so callers can match them.
func wrapWrite(op string, err error) error {
	if stderrors.Is(err, ErrMovieNotFound) || stderrors.Is(err, ErrSlugConflict) {
		return err
	}
	return fmt.Errorf("failed to %s movie: %w", op, err)
}

func wrapRead(op string, err error) error {
	if stderrors.Is(err, ErrMovieNotFound) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

// publish sends an event after a successful write. Failures are logged only:
// the write has already committed.
func publish(ctx context.Context, events EventPublisher, l *log.Helper, event *CatalogEvent) {
	if events == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := events.Publish(ctx, event); err != nil {
		l.WithContext(ctx).Warnf("failed to publish %s for movie %s: %v", event.Type, event.MovieID, err)
	}
}
