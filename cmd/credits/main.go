package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"

	"marketplace/internal/bootstrap"
	"marketplace/internal/infra"
	"marketplace/internal/ledger"
	"marketplace/internal/middleware"
)

const usage = `usage:
  credits grant <account> <amount> [note]
  credits balance <account>
  credits token [-ttl 24h] <user> [name] [email]
`

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "credits").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, cfg, logger, os.Args[1:], os.Stdout); err != nil {
		exitWithError(err)
	}
}

func run(ctx context.Context, cfg *infra.Config, logger infra.Logger, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New(usage)
	}
	cmd, args := args[0], args[1:]

	if cmd == "token" {
		return mintToken(cfg.JWTSecret, args, out)
	}

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	l := ledger.New(store, logger)

	switch cmd {
	case "grant":
		if len(args) < 2 {
			return errors.New(usage)
		}
		amount, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil || amount <= 0 {
			return fmt.Errorf("amount must be a positive integer, got %q", args[1])
		}
		note := strings.Join(args[2:], " ")
		balance, err := l.Grant(ctx, args[0], amount, note)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "granted %d credits to %s, balance %d\n", amount, args[0], balance)
	case "balance":
		if len(args) != 1 {
			return errors.New(usage)
		}
		balance, err := l.Balance(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s balance %d\n", args[0], balance)
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return nil
}

// mintToken prints a session token for local development.
func mintToken(secret string, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	ttl := fs.Duration("ttl", 24*time.Hour, "token lifetime")
	locale := fs.String("locale", "", "locale claim (en, id)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errors.New(usage)
	}
	claims := middleware.TokenClaims{
		Locale:           *locale,
		RegisteredClaims: jwt.RegisteredClaims{Subject: rest[0]},
	}
	if len(rest) > 1 {
		claims.Name = rest[1]
	}
	if len(rest) > 2 {
		claims.Email = rest[2]
	}
	token, err := middleware.SignJWT(secret, claims, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, token)
	return nil
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
