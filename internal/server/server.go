package server

import (
	"github.com/google/wire"

	"catalog/internal/auth"
)

// ProviderSet is server providers.
var ProviderSet = wire.NewSet(NewHTTPServer, auth.NewTokenManager)
