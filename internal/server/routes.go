package server

import (
	"context"
	"net/http"

	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"catalog/internal/service"
)

const (
	OperationCreateMovie    = "/catalog.v1.Catalog/CreateMovie"
	OperationGetMovie       = "/catalog.v1.Catalog/GetMovie"
	OperationListMovies     = "/catalog.v1.Catalog/ListMovies"
	OperationUpdateMovie    = "/catalog.v1.Catalog/UpdateMovie"
	OperationDeleteMovie    = "/catalog.v1.Catalog/DeleteMovie"
	OperationRateMovie      = "/catalog.v1.Catalog/RateMovie"
	OperationDeleteRating   = "/catalog.v1.Catalog/DeleteRating"
	OperationGetUserRatings = "/catalog.v1.Catalog/GetUserRatings"
)

// CatalogHTTPServer is the set of operations served under /api.
type CatalogHTTPServer interface {
	CreateMovie(context.Context, *service.CreateMovieRequest) (*service.MovieReply, error)
	GetMovie(context.Context, *service.GetMovieRequest) (*service.MovieReply, error)
	ListMovies(context.Context, *service.ListMoviesRequest) (*service.MoviesReply, error)
	UpdateMovie(context.Context, *service.UpdateMovieRequest) (*service.MovieReply, error)
	DeleteMovie(context.Context, *service.DeleteMovieRequest) (*service.EmptyReply, error)
	RateMovie(context.Context, *service.RateMovieRequest) (*service.EmptyReply, error)
	DeleteRating(context.Context, *service.DeleteRatingRequest) (*service.EmptyReply, error)
	GetUserRatings(context.Context, *service.UserRatingsRequest) (*service.MovieRatingsReply, error)
}

// RegisterCatalogHTTPServer mounts the catalog routes on s.
func RegisterCatalogHTTPServer(s *khttp.Server, srv CatalogHTTPServer) {
	r := s.Route("/")
	r.POST("/api/movies", createMovieHandler(srv))
	r.GET("/api/movies", listMoviesHandler(srv))
	r.GET("/api/movies/{idOrSlug}", getMovieHandler(srv))
	r.PUT("/api/movies/{id}", updateMovieHandler(srv))
	r.DELETE("/api/movies/{id}", deleteMovieHandler(srv))
	r.PUT("/api/movies/{id}/ratings", rateMovieHandler(srv))
	r.DELETE("/api/movies/{id}/ratings", deleteRatingHandler(srv))
	r.GET("/api/ratings/me", userRatingsHandler(srv))
	r.GET("/healthz", healthHandler)
}

func createMovieHandler(srv CatalogHTTPServer) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in service.CreateMovieRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		khttp.SetOperation(ctx, OperationCreateMovie)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.CreateMovie(ctx, req.(*service.CreateMovieRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		reply := out.(*service.MovieReply)
		ctx.Response().Header().Set("Location", "/api/movies/"+reply.ID)
		return ctx.Result(http.StatusCreated, reply)
	}
}

func getMovieHandler(srv CatalogHTTPServer) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		in := service.GetMovieRequest{IDOrSlug: ctx.Vars().Get("idOrSlug")}
		khttp.SetOperation(ctx, OperationGetMovie)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.GetMovie(ctx, req.(*service.GetMovieRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out.(*service.MovieReply))
	}
}

func listMoviesHandler(srv CatalogHTTPServer) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in service.ListMoviesRequest
		if err := ctx.BindQuery(&in); err != nil {
			return err
		}
		khttp.SetOperation(ctx, OperationListMovies)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.ListMovies(ctx, req.(*service.ListMoviesRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out.(*service.MoviesReply))
	}
}

func updateMovieHandler(srv CatalogHTTPServer) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in service.UpdateMovieRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		in.ID = ctx.Vars().Get("id")
		khttp.SetOperation(ctx, OperationUpdateMovie)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.UpdateMovie(ctx, req.(*service.UpdateMovieRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out.(*service.MovieReply))
	}
}

func deleteMovieHandler(srv CatalogHTTPServer) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		in := service.DeleteMovieRequest{ID: ctx.Vars().Get("id")}
		khttp.SetOperation(ctx, OperationDeleteMovie)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.DeleteMovie(ctx, req.(*service.DeleteMovieRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out.(*service.EmptyReply))
	}
}

func rateMovieHandler(srv CatalogHTTPServer) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in service.RateMovieRequest
		if err := ctx.Bind(&in); err != nil {
			return err
		}
		in.MovieID = ctx.Vars().Get("id")
		khttp.SetOperation(ctx, OperationRateMovie)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.RateMovie(ctx, req.(*service.RateMovieRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out.(*service.EmptyReply))
	}
}

func deleteRatingHandler(srv CatalogHTTPServer) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		in := service.DeleteRatingRequest{MovieID: ctx.Vars().Get("id")}
		khttp.SetOperation(ctx, OperationDeleteRating)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.DeleteRating(ctx, req.(*service.DeleteRatingRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out.(*service.EmptyReply))
	}
}

func userRatingsHandler(srv CatalogHTTPServer) func(ctx khttp.Context) error {
	return func(ctx khttp.Context) error {
		var in service.UserRatingsRequest
		khttp.SetOperation(ctx, OperationGetUserRatings)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return srv.GetUserRatings(ctx, req.(*service.UserRatingsRequest))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(http.StatusOK, out.(*service.MovieRatingsReply))
	}
}

func healthHandler(ctx khttp.Context) error {
	return ctx.Result(http.StatusOK, map[string]string{"status": "ok"})
}
