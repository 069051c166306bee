package server

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"catalog/internal/auth"
	"catalog/internal/conf"
	"catalog/internal/service"
)

// NewHTTPServer new an HTTP server.
func NewHTTPServer(c *conf.Server, tokens *auth.TokenManager, catalog *service.CatalogService, logger log.Logger) *khttp.Server {
	var opts []khttp.ServerOption
	if c.Http != nil {
		if c.Http.Network != "" {
			opts = append(opts, khttp.Network(c.Http.Network))
		}
		if c.Http.Addr != "" {
			opts = append(opts, khttp.Address(c.Http.Addr))
		}
		if c.Http.Timeout != nil {
			opts = append(opts, khttp.Timeout(c.Http.Timeout.AsDuration()))
		}
	}
	srv := newServer(tokens, logger, opts...)
	RegisterCatalogHTTPServer(srv, catalog)
	return srv
}

func newServer(tokens *auth.TokenManager, logger log.Logger, opts ...khttp.ServerOption) *khttp.Server {
	opts = append([]khttp.ServerOption{
		khttp.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
			AuthMiddleware(tokens, logger),
		),
	}, opts...)
	return khttp.NewServer(opts...)
}
