// Command tokengen mints an HS256 owner token for local testing.
//
//	AUTH_JWT_SECRET=dev tokengen -sub user123 -email me@example.com -ttl 24h
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/testify-backend/internal/auth"
	"github.com/tbourn/testify-backend/internal/sysutil"
)

func main() {
	_ = godotenv.Load()
	sysutil.InitLogger(sysutil.LoggerOptions{Level: "info", Pretty: true})

	var (
		sub      = flag.String("sub", "", "owner id (token subject)")
		email    = flag.String("email", "", "owner email")
		name     = flag.String("name", "", "owner display name")
		ttl      = flag.Duration("ttl", 24*time.Hour, "token lifetime")
		issuer   = flag.String("iss", os.Getenv("AUTH_ISSUER"), "issuer claim")
		audience = flag.String("aud", os.Getenv("AUTH_AUDIENCE"), "audience claim")
	)
	flag.Parse()

	secret := os.Getenv("AUTH_JWT_SECRET")
	if secret == "" {
		log.Fatal().Msg("AUTH_JWT_SECRET is required")
	}
	if strings.TrimSpace(*sub) == "" {
		flag.Usage()
		os.Exit(2)
	}

	token, err := auth.NewVerifier(secret, *issuer, *audience).Sign(auth.Identity{
		Subject: strings.TrimSpace(*sub),
		Email:   *email,
		Name:    *name,
	}, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("sign token")
	}
	fmt.Println(token)
}
