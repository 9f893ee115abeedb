// Command token prints a bearer token for a user id, signed with the
// configured secret. Meant for local development against the memory store.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dkeye/peerchat/internal/adapters/auth"
	"github.com/dkeye/peerchat/internal/config"
	"github.com/dkeye/peerchat/internal/domain"
)

var ttl time.Duration

var rootCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Sign a chat bearer token for a user id.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		v := auth.NewVerifier(auth.Config{Secret: cfg.Auth.JWTSecret, Issuer: cfg.Auth.Issuer}, nil)
		token, err := v.Issue(domain.UserID(args[0]), ttl)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	rootCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
