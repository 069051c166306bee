package biz

import (
	"context"
	"fmt"

	"github.com/go-kratos/kratos/v2/log"
)

const (
	MinScore = 1
	MaxScore = 5
)

// AggregateRatings computes the public rating of a movie and, when userID is
// given, that user's own score. The mean is rounded to one decimal, half away
// from zero, using integer tenths so repeated computations always agree.
func AggregateRatings(scores []RatingScore, userID *string) RatingSummary {
	var summary RatingSummary
	if len(scores) == 0 {
		return summary
	}

	sum := 0
	for _, s := range scores {
		sum += s.Score
		if userID != nil && s.UserID == *userID {
			score := s.Score
			summary.UserRating = &score
		}
	}

	// scores are positive, so rounding half up is rounding away from zero
	n := len(scores)
	tenths := (20*sum + n) / (2 * n)
	rating := float64(tenths) / 10
	summary.Rating = &rating
	return summary
}

// ValidateScore rejects scores outside MinScore..MaxScore.
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		verr := &ValidationError{}
		verr.Add("rating", "must be between %d and %d", MinScore, MaxScore)
		return verr
	}
	return nil
}

// RatingUseCase handles rating-related business logic
type RatingUseCase struct {
	movieRepo  MovieRepo
	ratingRepo RatingRepo
	events     EventPublisher
	log        *log.Helper
}

// NewRatingUseCase creates a new RatingUseCase instance
func NewRatingUseCase(movieRepo MovieRepo, ratingRepo RatingRepo, events EventPublisher, logger log.Logger) *RatingUseCase {
	return &RatingUseCase{
		movieRepo:  movieRepo,
		ratingRepo: ratingRepo,
		events:     events,
		log:        log.NewHelper(logger),
	}
}

// RateMovie stores userID's score for a movie, replacing any earlier score.
func (uc *RatingUseCase) RateMovie(ctx context.Context, movieID, userID string, score int) error {
	if err := ValidateScore(score); err != nil {
		return err
	}

	exists, err := uc.movieRepo.MovieExists(ctx, movieID)
	if err != nil {
		return fmt.Errorf("failed to check movie: %w", err)
	}
	if !exists {
		return ErrMovieNotFound
	}

	if _, err := uc.ratingRepo.UpsertRating(ctx, movieID, userID, score); err != nil {
		return fmt.Errorf("failed to upsert rating: %w", err)
	}

	publish(ctx, uc.events, uc.log, &CatalogEvent{
		Type:    EventRatingUpserted,
		MovieID: movieID,
		UserID:  userID,
		Rating:  score,
	})
	return nil
}

// DeleteRating removes userID's score for a movie.
func (uc *RatingUseCase) DeleteRating(ctx context.Context, movieID, userID string) error {
	n, err := uc.ratingRepo.DeleteRating(ctx, movieID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	if n == 0 {
		return ErrRatingNotFound
	}

	publish(ctx, uc.events, uc.log, &CatalogEvent{
		Type:    EventRatingDeleted,
		MovieID: movieID,
		UserID:  userID,
	})
	return nil
}

// GetUserRatings lists every rating submitted by userID.
func (uc *RatingUseCase) GetUserRatings(ctx context.Context, userID string) ([]*MovieRating, error) {
	ratings, err := uc.ratingRepo.RatingsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ratings: %w", err)
	}
	return ratings, nil
}

// AverageRating recomputes the public rating of a movie.
func (uc *RatingUseCase) AverageRating(ctx context.Context, movieID string) (*float64, error) {
	summary, err := uc.MovieRating(ctx, movieID, nil)
	if err != nil {
		return nil, err
	}
	return summary.Rating, nil
}

// MovieRating recomputes the public rating of a movie together with userID's
// own score.
func (uc *RatingUseCase) MovieRating(ctx context.Context, movieID string, userID *string) (RatingSummary, error) {
	return ratingSummary(ctx, uc.ratingRepo, movieID, userID)
}

func ratingSummary(ctx context.Context, repo RatingRepo, movieID string, userID *string) (RatingSummary, error) {
	scores, err := repo.RatingsOf(ctx, movieID)
	if err != nil {
		return RatingSummary{}, fmt.Errorf("failed to load ratings: %w", err)
	}
	return AggregateRatings(scores, userID), nil
}
