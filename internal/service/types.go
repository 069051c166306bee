package service

import "catalog/internal/biz"

// CreateMovieRequest is the body of POST /api/movies.
type CreateMovieRequest struct {
	Title         string   `json:"title"`
	YearOfRelease int      `json:"yearOfRelease"`
	Genres        []string `json:"genres"`
}

// UpdateMovieRequest is the body of PUT /api/movies/{id}.
type UpdateMovieRequest struct {
	ID            string   `json:"-"`
	Title         string   `json:"title"`
	YearOfRelease int      `json:"yearOfRelease"`
	Genres        []string `json:"genres"`
}

type GetMovieRequest struct {
	IDOrSlug string `json:"idOrSlug"`
}

type DeleteMovieRequest struct {
	ID string `json:"id"`
}

// ListMoviesRequest carries the raw query string of GET /api/movies.
type ListMoviesRequest struct {
	Title    *string `json:"title"`
	Year     *int    `json:"year"`
	SortBy   *string `json:"sortBy"`
	Page     *int    `json:"page"`
	PageSize *int    `json:"pageSize"`
}

type RateMovieRequest struct {
	MovieID string `json:"-"`
	Rating  int    `json:"rating"`
}

type DeleteRatingRequest struct {
	MovieID string `json:"movieId"`
}

type UserRatingsRequest struct{}

type MovieReply struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Rating        *float64 `json:"rating"`
	UserRating    *int     `json:"userRating"`
	YearOfRelease int      `json:"yearOfRelease"`
	Genres        []string `json:"genres"`
}

type MoviesReply struct {
	Items    []*MovieReply `json:"items"`
	Page     int           `json:"page"`
	PageSize int           `json:"pageSize"`
	Total    int64         `json:"total"`
}

type MovieRatingReply struct {
	MovieID string `json:"movieId"`
	Slug    string `json:"slug"`
	Rating  int    `json:"rating"`
}

type MovieRatingsReply struct {
	Items []*MovieRatingReply `json:"items"`
}

type EmptyReply struct{}

func movieToReply(m *biz.Movie) *MovieReply {
	genres := m.Genres
	if genres == nil {
		genres = []string{}
	}
	return &MovieReply{
		ID:            m.ID,
		Title:         m.Title,
		Slug:          m.Slug(),
		Rating:        m.Rating,
		UserRating:    m.UserRating,
		YearOfRelease: m.YearOfRelease,
		Genres:        genres,
	}
}

func pageToReply(p *biz.MoviePage) *MoviesReply {
	reply := &MoviesReply{
		Items:    make([]*MovieReply, 0, len(p.Items)),
		Page:     p.Page,
		PageSize: p.PageSize,
		Total:    p.Total,
	}
	for _, m := range p.Items {
		reply.Items = append(reply.Items, movieToReply(m))
	}
	return reply
}

func ratingsToReply(ratings []*biz.MovieRating) *MovieRatingsReply {
	reply := &MovieRatingsReply{Items: make([]*MovieRatingReply, 0, len(ratings))}
	for _, r := range ratings {
		reply.Items = append(reply.Items, &MovieRatingReply{MovieID: r.MovieID, Slug: r.Slug, Rating: r.Rating})
	}
	return reply
}
