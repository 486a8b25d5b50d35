package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/quizhub/quizctl/internal/api"
	"github.com/quizhub/quizctl/internal/authz"
	"github.com/quizhub/quizctl/internal/dependencies/clock"
	"github.com/quizhub/quizctl/internal/model"
	"github.com/quizhub/quizctl/internal/session"
	"github.com/quizhub/quizctl/internal/storage"
	filestore "github.com/quizhub/quizctl/internal/storage/file"
	redisstore "github.com/quizhub/quizctl/internal/storage/redis"
)

var (
	cfg *Config
	app *App
)

// App wires the SDK components the commands share
type App struct {
	Logger  *slog.Logger
	Store   storage.Store
	Client  *api.Client
	Session *session.Manager
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "quizctl",
		Short: "CLI client for the quiz platform API",
		Long: `quizctl is a command-line client for the quiz platform.

It manages the login session, talks to the platform's JSON API for
profiles, user administration and quiz authoring/moderation, and can
stream the platform's realtime notification channel.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupApp()
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: QUIZCTL_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.CredentialsDir, "credentials-dir", cfg.CredentialsDir, "Credential store directory (env: QUIZCTL_CREDENTIALS_DIR)")
	rootCmd.PersistentFlags().StringVar(&cfg.RedisURL, "redis", cfg.RedisURL, "Redis URL for a shared credential store (env: QUIZCTL_REDIS_URL)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newRegisterCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newRefreshCmd())
	rootCmd.AddCommand(newProfileCmd())
	rootCmd.AddCommand(newUsersCmd())
	rootCmd.AddCommand(newQuizCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newNotifyCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// setupApp builds the credential store, API client and session manager
func setupApp() error {
	logLevel := slog.LevelWarn
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	var logOut io.Writer = os.Stderr
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: logLevel}))

	var store storage.Store
	if cfg.RedisURL != "" {
		redisCfg := redisstore.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisCfg.Namespace = cfg.RedisNamespace
		redisStore, err := redisstore.New(redisCfg)
		if err != nil {
			return fmt.Errorf("failed to open redis credential store: %w", err)
		}
		store = redisStore
	} else {
		fileStore, err := filestore.New(cfg.CredentialsDir)
		if err != nil {
			return fmt.Errorf("failed to open credential store: %w", err)
		}
		store = fileStore
	}

	client := api.NewClient(cfg.ServerURL)
	app = &App{
		Logger:  logger,
		Store:   store,
		Client:  client,
		Session: session.New(store, client, clock.New(), logger),
	}
	return nil
}

// restoreSession rebuilds session state from the credential store
func restoreSession(ctx context.Context) session.Snapshot {
	return app.Session.Restore(ctx)
}

// requireRole restores the session and applies the route-gate policy
// before letting a command touch the API
func requireRole(ctx context.Context, required model.Role) (*model.User, error) {
	snap := restoreSession(ctx)

	d := authz.Evaluate(snap.Loading, snap.User, required)
	switch d.Outcome {
	case authz.OutcomeGranted:
		return snap.User, nil
	case authz.OutcomeRedirectToLogin:
		return nil, fmt.Errorf("not logged in; run 'quizctl login' first")
	case authz.OutcomeDeniedRole:
		return nil, fmt.Errorf("access denied: requires role %s, you are %s", d.RequiredRole, d.ActualRole)
	case authz.OutcomeDeniedBlocked:
		if d.BlockedUntil != "" {
			return nil, fmt.Errorf("account blocked until %s", d.BlockedUntil)
		}
		return nil, fmt.Errorf("account blocked")
	}
	return nil, fmt.Errorf("access denied")
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
