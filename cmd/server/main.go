package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/Skufu/MedSage/internal/auth"
	"github.com/Skufu/MedSage/internal/config"
	"github.com/Skufu/MedSage/internal/interaction"
	"github.com/Skufu/MedSage/internal/medapi"
	"github.com/Skufu/MedSage/internal/profile"
	"github.com/Skufu/MedSage/internal/server"
	"github.com/Skufu/MedSage/internal/session"
	"github.com/Skufu/MedSage/internal/wizard"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "medsage",
		Short: "MedSage symptom assessment and medication safety server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(interactionsCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the Postgres profile schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required")
			}

			ctx := context.Background()
			pool, err := profile.Connect(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()

			applied, err := profile.Migrate(ctx, pool)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			for _, v := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", v)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s) successfully.\n", len(applied))
			return nil
		},
	}
}

func interactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactions DRUG DRUG...",
		Short: "Check pairwise drug interactions",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			remote, _ := cmd.Flags().GetBool("remote")

			var resolver interaction.Resolver = interaction.NewStaticResolver()
			if remote {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				logger := newLogger(cfg)
				resolver = interaction.NewRemoteResolver(medapi.NewClient(cfg.MedAPIURL, cfg.MedAPITimeout), logger)
			}

			report, err := resolver.Check(cmd.Context(), args)
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().Bool("remote", false, "Ask the medical API instead of the built-in table")
	return cmd
}

func printReport(w io.Writer, report interaction.Report) error {
	if report.Failed {
		fmt.Fprintln(w, "Interaction service unavailable; no results.")
		return nil
	}
	if len(report.Results) == 0 {
		fmt.Fprintln(w, "No interactions reported.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PAIR\tSEVERITY\tDETAILS")
	for _, r := range report.Results {
		fmt.Fprintf(tw, "%s + %s\t%s\t%s\n", r.Drugs[0], r.Drugs[1], r.Level.Label, r.Details)
	}
	return tw.Flush()
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Development() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	gin.SetMode(cfg.GinMode)
	logger := newLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var app *firebase.App
	if cfg.UsesFirebase() {
		app, err = newFirebaseApp(ctx, cfg)
		if err != nil {
			return err
		}
	}

	store, closeStore, err := openProfileStore(ctx, cfg, app)
	if err != nil {
		return err
	}
	defer closeStore()

	authn, err := newAuthenticator(ctx, cfg, app)
	if err != nil {
		return err
	}

	client := medapi.NewClient(cfg.MedAPIURL, cfg.MedAPITimeout)
	sessions := session.NewStore(cfg.SessionTTL, func(results wizard.ResultStore) *wizard.Wizard {
		return wizard.New(client, results, logger)
	})
	go sessions.Run(ctx, time.Minute)

	profiles := profile.NewService(store, logger)
	var ready server.HealthChecker
	if cfg.ProfileBackend != config.BackendMemory {
		ready = profiles
	}

	router := server.New(server.Options{
		Sessions:   sessions,
		SessionTTL: cfg.SessionTTL,
		Resolvers: map[string]interaction.Resolver{
			interaction.ModeStatic: interaction.NewStaticResolver(),
			interaction.ModeRemote: interaction.NewRemoteResolver(client, logger),
		},
		Profiles:       profiles,
		Authn:          authn,
		Ready:          ready,
		CORSOrigins:    cfg.CORSOrigins,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		SecureCookies:  !cfg.Development(),
		Logger:         logger,
	})

	// Advance blocks on the prediction call.
	writeTimeout := cfg.MedAPITimeout + 15*time.Second
	if cfg.MedAPITimeout == 0 {
		writeTimeout = 0
	}
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	logger.Info().
		Str("port", cfg.Port).
		Str("profile_backend", cfg.ProfileBackend).
		Str("auth_mode", cfg.AuthMode).
		Msg("server listening")
	waitForShutdown(srv, logger)
	return nil
}

func newFirebaseApp(ctx context.Context, cfg *config.Config) (*firebase.App, error) {
	opt := option.WithCredentialsFile(cfg.FirebaseCredentials)
	app, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: cfg.FirebaseDatabaseURL}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}
	return app, nil
}

func openProfileStore(ctx context.Context, cfg *config.Config, app *firebase.App) (profile.Store, func(), error) {
	switch cfg.ProfileBackend {
	case config.BackendPostgres:
		pool, err := profile.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("database connection failed: %w", err)
		}
		return profile.NewPostgresStore(pool), pool.Close, nil
	case config.BackendFirebase:
		client, err := app.Database(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("error getting database client: %w", err)
		}
		return profile.NewFirebaseStore(client), func() {}, nil
	default:
		return profile.NewMemoryStore(), func() {}, nil
	}
}

func newAuthenticator(ctx context.Context, cfg *config.Config, app *firebase.App) (auth.Authenticator, error) {
	if cfg.AuthMode == config.AuthFirebase {
		client, err := app.Auth(ctx)
		if err != nil {
			return nil, fmt.Errorf("error getting auth client: %w", err)
		}
		return auth.NewFirebaseAuthenticator(client), nil
	}
	return auth.NewJWTAuthenticator(cfg.AuthJWTSecret), nil
}

func waitForShutdown(srv *http.Server, logger zerolog.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
