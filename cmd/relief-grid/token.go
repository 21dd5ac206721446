package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"relief-grid-go/internal/domain/access"
	"relief-grid-go/internal/transport/httpserver/middleware"
)

var (
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a signed bearer token for local testing",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "", "actor id (default: a new uuid)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(access.RoleAdmin), "volunteer, grid_manager or admin")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	role, ok := access.ParseRole(tokenRole)
	if !ok || role == access.RoleGuest {
		return fmt.Errorf("unsupported role %q", tokenRole)
	}
	if tokenTTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	subject := tokenSubject
	if subject == "" {
		subject = uuid.NewString()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	auth := middleware.NewJWTAuth(cfg.Auth, log)

	now := time.Now()
	token, err := auth.Sign(access.Actor{ID: subject, Role: role}, jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
