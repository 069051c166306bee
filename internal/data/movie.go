package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog/internal/biz"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type movieRepo struct {
	data *Data
	log  *log.Helper
}

// NewMovieRepo creates a new movie repository
func NewMovieRepo(data *Data, logger log.Logger) biz.MovieRepo {
	return &movieRepo{
		data: data,
		log:  log.NewHelper(logger),
	}
}

func (r *movieRepo) InsertMovie(ctx context.Context, movie *biz.Movie) (int64, error) {
	result := r.data.DB(ctx).Omit(clause.Associations).Create(&Movie{
		ID:            movie.ID,
		Slug:          movie.Slug(),
		Title:         movie.Title,
		YearOfRelease: movie.YearOfRelease,
	})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return 0, biz.ErrSlugConflict
		}
		return 0, fmt.Errorf("failed to insert movie: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *movieRepo) InsertGenre(ctx context.Context, movieID, name string) error {
	if err := r.data.DB(ctx).Create(&Genre{MovieID: movieID, Name: name}).Error; err != nil {
		return fmt.Errorf("failed to insert genre: %w", err)
	}
	return nil
}

func (r *movieRepo) DeleteGenresOf(ctx context.Context, movieID string) error {
	if err := r.data.DB(ctx).Where("movie_id = ?", movieID).Delete(&Genre{}).Error; err != nil {
		return fmt.Errorf("failed to delete genres: %w", err)
	}
	return nil
}

func (r *movieRepo) UpdateMovie(ctx context.Context, movie *biz.Movie) (int64, error) {
	result := r.data.DB(ctx).Model(&Movie{}).Where("id = ?", movie.ID).Updates(map[string]any{
		"slug":            movie.Slug(),
		"title":           movie.Title,
		"year_of_release": movie.YearOfRelease,
	})
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			return 0, biz.ErrSlugConflict
		}
		return 0, fmt.Errorf("failed to update movie: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *movieRepo) DeleteMovie(ctx context.Context, id string) (int64, error) {
	result := r.data.DB(ctx).Where("id = ?", id).Delete(&Movie{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete movie: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *movieRepo) MovieExists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.data.DB(ctx).Model(&Movie{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check movie existence: %w", err)
	}
	return count > 0, nil
}

func (r *movieRepo) FindMovieByID(ctx context.Context, id string, userID *string) (*biz.Movie, error) {
	return r.findOne(ctx, "id = ?", id, userID)
}

func (r *movieRepo) FindMovieBySlug(ctx context.Context, slug string, userID *string) (*biz.Movie, error) {
	return r.findOne(ctx, "slug = ?", slug, userID)
}

func (r *movieRepo) findOne(ctx context.Context, cond string, arg string, userID *string) (*biz.Movie, error) {
	var dbMovie Movie
	if err := r.data.DB(ctx).Where(cond, arg).Take(&dbMovie).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, biz.ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to find movie: %w", err)
	}

	movies, err := r.hydrate(ctx, []Movie{dbMovie}, userID)
	if err != nil {
		return nil, err
	}
	return movies[0], nil
}

func (r *movieRepo) FindMovies(ctx context.Context, spec *biz.QuerySpec) ([]*biz.Movie, error) {
	order, err := orderColumns(spec.Sort)
	if err != nil {
		return nil, err
	}

	db := r.filtered(ctx, spec.Filter)
	for _, col := range order {
		db = db.Order(col)
	}

	var dbMovies []Movie
	if err := db.Offset(spec.Offset()).Limit(spec.PageSize).Find(&dbMovies).Error; err != nil {
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	return r.hydrate(ctx, dbMovies, spec.UserID)
}

func (r *movieRepo) CountMovies(ctx context.Context, filter biz.MovieFilter) (int64, error) {
	var total int64
	if err := r.filtered(ctx, filter).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return total, nil
}

// filtered builds a fresh statement carrying the listing filters.
func (r *movieRepo) filtered(ctx context.Context, filter biz.MovieFilter) *gorm.DB {
	db := r.data.DB(ctx).Model(&Movie{})

	if filter.Title != nil {
		db = db.Where(`title ILIKE ? ESCAPE '\'`, "%"+escapeLike(*filter.Title)+"%")
	}
	if filter.Year != nil {
		db = db.Where("year_of_release = ?", *filter.Year)
	}
	return db
}

// hydrate attaches genres and computed ratings to movie rows, keeping the
// row order.
func (r *movieRepo) hydrate(ctx context.Context, rows []Movie, userID *string) ([]*biz.Movie, error) {
	movies := make([]*biz.Movie, 0, len(rows))
	if len(rows) == 0 {
		return movies, nil
	}

	ids := make([]string, 0, len(rows))
	for i := range rows {
		ids = append(ids, rows[i].ID)
	}

	var genres []Genre
	if err := r.data.DB(ctx).Where("movie_id IN ?", ids).Order("id").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to load genres: %w", err)
	}
	var ratings []Rating
	if err := r.data.DB(ctx).Where("movie_id IN ?", ids).Find(&ratings).Error; err != nil {
		return nil, fmt.Errorf("failed to load ratings: %w", err)
	}

	genresOf := make(map[string][]string, len(rows))
	for _, g := range genres {
		genresOf[g.MovieID] = append(genresOf[g.MovieID], g.Name)
	}
	scoresOf := make(map[string][]biz.RatingScore, len(rows))
	for _, rt := range ratings {
		scoresOf[rt.MovieID] = append(scoresOf[rt.MovieID], biz.RatingScore{UserID: rt.UserID, Score: rt.Score})
	}

	for i := range rows {
		movie := modelToBiz(&rows[i], genresOf[rows[i].ID])
		summary := biz.AggregateRatings(scoresOf[movie.ID], userID)
		movie.Rating, movie.UserRating = summary.Rating, summary.UserRating
		movies = append(movies, movie)
	}
	return movies, nil
}

// Helper: Convert data.Movie to biz.Movie
func modelToBiz(m *Movie, genres []string) *biz.Movie {
	if genres == nil {
		genres = []string{}
	}
	return &biz.Movie{
		ID:            m.ID,
		Title:         m.Title,
		YearOfRelease: m.YearOfRelease,
		Genres:        genres,
	}
}

// orderColumns maps a resolved sort onto fixed column names. The id column
// breaks ties so pages never overlap.
func orderColumns(sort biz.MovieSort) ([]clause.OrderByColumn, error) {
	byID := clause.OrderByColumn{Column: clause.Column{Name: "id"}}
	if !sort.Valid() {
		return nil, fmt.Errorf("unsupported sort field %s", sort.Field)
	}
	if sort.Unsorted() {
		return []clause.OrderByColumn{byID}, nil
	}

	desc := sort.Order == biz.SortDescending
	switch sort.Field {
	case biz.SortFieldTitle:
		return []clause.OrderByColumn{{Column: clause.Column{Name: "title"}, Desc: desc}, byID}, nil
	case biz.SortFieldYearOfRelease:
		return []clause.OrderByColumn{{Column: clause.Column{Name: "year_of_release"}, Desc: desc}, byID}, nil
	default:
		return nil, fmt.Errorf("unsupported sort field %s", sort.Field)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
