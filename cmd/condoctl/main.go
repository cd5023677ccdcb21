// condoctl is the administrative terminal client for the
// condominium-management backend: session handling, user
// administration, and the staged data editor for managers and
// associations.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"condoctl/internal/api"
	"condoctl/internal/authn"
	"condoctl/internal/config"
)

var (
	// Global flags
	flagServer     string
	flagAuthServer string
	flagConfig     string
	verbose        bool

	// Loaded at startup
	cfg config.Config

	// Logger
	logger *zap.Logger

	// Session context, set only by the login/logout flows and the
	// startup probe.
	session = authn.NewContext(authn.Session{})
)

var rootCmd = &cobra.Command{
	Use:   "condoctl",
	Short: "Administrative client for the condominium-management backend",
	Long: `condoctl manages the condominium backend from the terminal.

It covers login/logout, user administration, and a staged data editor
for property managers and their associations: edits accumulate locally
and are applied to the backend in one coordinated pass.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		path := flagConfig
		if path == "" {
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}
		if cfg, err = config.Load(path); err != nil {
			return err
		}
		if flagServer != "" {
			cfg.Server = flagServer
		}
		if flagAuthServer != "" {
			cfg.AuthServer = flagAuthServer
		}
		if verbose {
			cfg.Verbose = true
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// newClient builds an API client carrying any persisted session token.
func newClient() (*api.Client, error) {
	token, err := config.LoadToken()
	if err != nil {
		return nil, err
	}
	return api.New(cfg.Server, cfg.AuthServer,
		api.WithToken(token),
		api.WithTimeout(cfg.RequestTimeout()),
		api.WithLogger(logger),
	), nil
}

// requireSession probes the session endpoint and populates the session
// context. A dead session drops the persisted token so the next run
// starts clean.
func requireSession(ctx context.Context, client *api.Client) (authn.Session, error) {
	s, err := client.Me(ctx)
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			session.Set(authn.Session{})
			_ = config.SaveToken("")
			return authn.Session{}, fmt.Errorf("not logged in: run `condoctl login`")
		}
		return authn.Session{}, err
	}
	session.Set(s)
	return s, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "", "admin service base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagAuthServer, "auth-server", "", "auth service base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.condoctl/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
