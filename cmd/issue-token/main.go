package main

import (
	"flag"
	"fmt"
	"time"

	"go-supplychain-router/internal/config"
	"go-supplychain-router/internal/logger"
	"go-supplychain-router/pkg/jwt"
)

func main() {
	subject := flag.String("subject", "operator", "token subject")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	log := logger.NewLogger("issue-token")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	token, err := jwt.GenerateToken([]byte(cfg.JWTSecret), cfg.JWTIssuer, *subject, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to issue token")
	}

	log.Info().Str("subject", *subject).Dur("ttl", *ttl).Msg("operator token issued")
	fmt.Println(token)
}
