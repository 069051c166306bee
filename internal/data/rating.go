package data

import (
	"context"
	"fmt"

	"catalog/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"gorm.io/gorm/clause"
)

type ratingRepo struct {
	data *Data
	log  *log.Helper
}

// NewRatingRepo creates a new rating repository
func NewRatingRepo(data *Data, logger log.Logger) biz.RatingRepo {
	return &ratingRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *ratingRepo) UpsertRating(ctx context.Context, movieID, userID string, score int) (int64, error) {
	dbRating := &Rating{
		UserID:  userID,
		MovieID: movieID,
		Score:   score,
	}

	// The (user_id, movie_id) primary key is the upsert boundary
	result := r.data.DB(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating"}),
	}).Create(dbRating)

	if result.Error != nil {
		// The movie disappeared after the existence check
		if isForeignKeyViolation(result.Error) {
			return 0, biz.ErrMovieNotFound
		}
		return 0, fmt.Errorf("failed to upsert rating: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ratingRepo) DeleteRating(ctx context.Context, movieID, userID string) (int64, error) {
	result := r.data.DB(ctx).
		Where("movie_id = ? AND user_id = ?", movieID, userID).
		Delete(&Rating{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete rating: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *ratingRepo) RatingsOf(ctx context.Context, movieID string) ([]biz.RatingScore, error) {
	var rows []Rating
	err := r.data.DB(ctx).
		Select("user_id", "rating").
		Where("movie_id = ?", movieID).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	scores := make([]biz.RatingScore, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, biz.RatingScore{UserID: row.UserID, Score: row.Score})
	}
	return scores, nil
}

type userRatingRow struct {
	MovieID string
	Slug    string
	Rating  int
}

func (r *ratingRepo) RatingsForUser(ctx context.Context, userID string) ([]*biz.MovieRating, error) {
	var rows []userRatingRow

	err := r.data.DB(ctx).
		Table("ratings").
		Select("ratings.movie_id, movies.slug, ratings.rating").
		Joins("JOIN movies ON movies.id = ratings.movie_id").
		Where("ratings.user_id = ?", userID).
		Order("movies.slug").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list user ratings: %w", err)
	}

	ratings := make([]*biz.MovieRating, 0, len(rows))
	for _, row := range rows {
		ratings = append(ratings, &biz.MovieRating{
			MovieID: row.MovieID,
			Slug:    row.Slug,
			Rating:  row.Rating,
		})
	}
	return ratings, nil
}
