package service

import (
	"context"
	stderrors "errors"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"catalog/internal/auth"
	"catalog/internal/biz"
)

const ReasonStorageFailure = "STORAGE_FAILURE"

var errUnauthenticated = errors.Unauthorized("UNAUTHORIZED", "authentication required")

// CatalogService exposes the movie catalog over the transport layer
type CatalogService struct {
	movieUC  *biz.MovieUseCase
	ratingUC *biz.RatingUseCase
	log      *log.Helper
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(movieUC *biz.MovieUseCase, ratingUC *biz.RatingUseCase, logger log.Logger) *CatalogService {
	return &CatalogService{
		movieUC:  movieUC,
		ratingUC: ratingUC,
		log:      log.NewHelper(logger),
	}
}

// CreateMovie implements movie creation
func (s *CatalogService) CreateMovie(ctx context.Context, req *CreateMovieRequest) (*MovieReply, error) {
	movie, err := s.movieUC.CreateMovie(ctx, &biz.Movie{
		Title:         req.Title,
		YearOfRelease: req.YearOfRelease,
		Genres:        req.Genres,
	})
	if err != nil {
		return nil, s.toAPIError(ctx, "create movie", err)
	}
	return movieToReply(movie), nil
}

// GetMovie resolves the path segment as an id when it parses as a UUID and as
// a slug otherwise.
func (s *CatalogService) GetMovie(ctx context.Context, req *GetMovieRequest) (*MovieReply, error) {
	userID := auth.UserID(ctx)

	var (
		movie *biz.Movie
		err   error
	)
	if id, ok := parseID(req.IDOrSlug); ok {
		movie, err = s.movieUC.GetMovie(ctx, id, userID)
	} else {
		movie, err = s.movieUC.GetMovieBySlug(ctx, req.IDOrSlug, userID)
	}
	if err != nil {
		return nil, s.toAPIError(ctx, "get movie", err)
	}
	return movieToReply(movie), nil
}

// ListMovies implements movie listing
func (s *CatalogService) ListMovies(ctx context.Context, req *ListMoviesRequest) (*MoviesReply, error) {
	spec, err := biz.NormalizeQuery(biz.RawQuery{
		Title:    req.Title,
		Year:     req.Year,
		SortBy:   req.SortBy,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		return nil, s.toAPIError(ctx, "list movies", err)
	}

	page, err := s.movieUC.ListMovies(ctx, spec.WithUser(auth.UserID(ctx)))
	if err != nil {
		return nil, s.toAPIError(ctx, "list movies", err)
	}
	return pageToReply(page), nil
}

// UpdateMovie implements movie update
func (s *CatalogService) UpdateMovie(ctx context.Context, req *UpdateMovieRequest) (*MovieReply, error) {
	movie := &biz.Movie{
		Title:         req.Title,
		YearOfRelease: req.YearOfRelease,
		Genres:        req.Genres,
	}
	// An invalid body is a 400 whatever the id looks like
	if err := biz.ValidateMovie(movie); err != nil {
		return nil, s.toAPIError(ctx, "update movie", err)
	}
	id, ok := parseID(req.ID)
	if !ok {
		return nil, biz.ErrMovieNotFound
	}
	movie.ID = id
	movie, err := s.movieUC.UpdateMovie(ctx, movie, auth.UserID(ctx))
	if err != nil {
		return nil, s.toAPIError(ctx, "update movie", err)
	}
	return movieToReply(movie), nil
}

// DeleteMovie implements movie deletion
func (s *CatalogService) DeleteMovie(ctx context.Context, req *DeleteMovieRequest) (*EmptyReply, error) {
	id, ok := parseID(req.ID)
	if !ok {
		return nil, biz.ErrMovieNotFound
	}
	if err := s.movieUC.DeleteMovie(ctx, id); err != nil {
		return nil, s.toAPIError(ctx, "delete movie", err)
	}
	return &EmptyReply{}, nil
}

// RateMovie records the caller's rating
func (s *CatalogService) RateMovie(ctx context.Context, req *RateMovieRequest) (*EmptyReply, error) {
	userID := auth.UserID(ctx)
	if userID == nil {
		return nil, errUnauthenticated
	}
	if err := biz.ValidateScore(req.Rating); err != nil {
		return nil, s.toAPIError(ctx, "rate movie", err)
	}
	id, ok := parseID(req.MovieID)
	if !ok {
		return nil, biz.ErrMovieNotFound
	}
	if err := s.ratingUC.RateMovie(ctx, id, *userID, req.Rating); err != nil {
		return nil, s.toAPIError(ctx, "rate movie", err)
	}
	return &EmptyReply{}, nil
}

// DeleteRating removes the caller's rating
func (s *CatalogService) DeleteRating(ctx context.Context, req *DeleteRatingRequest) (*EmptyReply, error) {
	userID := auth.UserID(ctx)
	if userID == nil {
		return nil, errUnauthenticated
	}
	id, ok := parseID(req.MovieID)
	if !ok {
		return nil, biz.ErrRatingNotFound
	}
	if err := s.ratingUC.DeleteRating(ctx, id, *userID); err != nil {
		return nil, s.toAPIError(ctx, "delete rating", err)
	}
	return &EmptyReply{}, nil
}

// GetUserRatings lists every rating of the caller
func (s *CatalogService) GetUserRatings(ctx context.Context, _ *UserRatingsRequest) (*MovieRatingsReply, error) {
	userID := auth.UserID(ctx)
	if userID == nil {
		return nil, errUnauthenticated
	}
	ratings, err := s.ratingUC.GetUserRatings(ctx, *userID)
	if err != nil {
		return nil, s.toAPIError(ctx, "get user ratings", err)
	}
	return ratingsToReply(ratings), nil
}

// parseID normalizes a movie id; anything that is not a UUID cannot name a movie.
func parseID(raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

// toAPIError maps core errors onto kratos errors. Validation failures carry
// one metadata entry per field. Unclassified errors are logged and reported
// as storage failures.
func (s *CatalogService) toAPIError(ctx context.Context, op string, err error) error {
	if verr, ok := biz.IsValidation(err); ok {
		md := make(map[string]string, len(verr.Violations))
		for _, v := range verr.Violations {
			if prev, dup := md[v.Field]; dup {
				md[v.Field] = prev + "; " + v.Message
				continue
			}
			md[v.Field] = v.Message
		}
		return errors.BadRequest(biz.ReasonValidationFailed, verr.Error()).WithMetadata(md)
	}

	var kerr *errors.Error
	if stderrors.As(err, &kerr) {
		return kerr
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return errors.ClientClosed("CANCELLED", err.Error())
	}

	s.log.WithContext(ctx).Errorf("%s: %v", op, err)
	return errors.InternalServer(ReasonStorageFailure, "storage failure")
}
