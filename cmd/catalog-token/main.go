package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/go-kratos/kratos/v2/config"
	"github.com/go-kratos/kratos/v2/config/file"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"

	"catalog/internal/auth"
	"catalog/internal/conf"
)

var (
	flagconf string
	userID   string
	admin    bool
	trusted  bool
	ttl      time.Duration
)

func init() {
	flag.StringVar(&flagconf, "conf", "../../configs", "config path, eg: -conf config.yaml")
	flag.StringVar(&userID, "user", "", "user id to embed; a new UUID when empty")
	flag.BoolVar(&admin, "admin", false, "grant the admin claim")
	flag.BoolVar(&trusted, "trusted", false, "grant the trusted_member claim")
	flag.DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")
}

type tokenResponse struct {
	TokenType   string    `json:"token_type"`
	ExpiresIn   time.Time `json:"expires_in"`
	AccessToken string    `json:"access_token"`
}

func main() {
	flag.Parse()
	logger := log.NewHelper(log.With(log.NewStdLogger(os.Stderr), "ts", log.DefaultTimestamp, "caller", log.DefaultCaller))

	c := config.New(config.WithSource(file.NewSource(flagconf)))
	defer c.Close()
	if err := c.Load(); err != nil {
		logger.Fatalf("load config: %v", err)
	}
	var bc conf.Bootstrap
	if err := c.Scan(&bc); err != nil {
		logger.Fatalf("scan config: %v", err)
	}

	tokens, err := auth.NewTokenManager(bc.Auth)
	if err != nil {
		logger.Fatalf("token manager: %v", err)
	}

	if userID == "" {
		userID = uuid.NewString()
	} else if _, err := uuid.Parse(userID); err != nil {
		logger.Fatalf("user id %q is not a UUID: %v", userID, err)
	}

	token, expiresAt, err := tokens.Generate(&auth.Identity{UserID: userID, Admin: admin, TrustedMember: trusted}, ttl)
	if err != nil {
		logger.Fatalf("generate token: %v", err)
	}

	out, err := json.MarshalIndent(tokenResponse{
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt.UTC(),
		AccessToken: token,
	}, "", "  ")
	if err != nil {
		logger.Fatalf("encode response: %v", err)
	}
	fmt.Println(string(out))
}
