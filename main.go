package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	api "taskboard-backend/cmd/api"
	authdto "taskboard-backend/internal/auth/dto"
	authUsecase "taskboard-backend/internal/auth/usecase"
	taskUsecase "taskboard-backend/internal/task/usecase"
	"taskboard-backend/pkg/config"
	"taskboard-backend/pkg/idempotency"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "taskboard",
	Short:         "Task tracking backend with admin and member roles",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(); err != nil {
			return err
		}
		log.SetFormatter(&log.JSONFormatter{})
		if cfg.Debug {
			log.SetLevel(log.DebugLevel)
		}
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		stores, err := api.OpenStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStores(stores)

		// Auto-migrate database schemas
		if err := stores.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}

		logger := log.StandardLogger()
		authUc := authUsecase.NewAuthUsecase(stores.Users, cfg, logger)
		taskUc := taskUsecase.NewTaskUsecase(stores.Tasks, logger)

		if cfg.RedisURL != "" {
			client, err := idempotency.NewRedisClient(cfg.RedisURL)
			if err != nil {
				return err
			}
			defer client.Close()
			if err := client.Ping(ctx).Err(); err != nil {
				log.WithError(err).Warn("Redis unavailable, Idempotency-Key will be ignored")
			} else {
				taskUc.SetIdempotencyStore(idempotency.NewRedisStore(client, cfg.IdempotencyTTL))
				log.Info("Idempotent task creation enabled")
			}
		}

		handler := api.NewHandler(authUc, taskUc, cfg, logger)
		return handler.Start(ctx, ":"+cfg.Port)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create tables and indexes for the configured store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stores, err := api.OpenStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStores(stores)

		if err := stores.Migrate(cmd.Context()); err != nil {
			return err
		}
		log.WithField("driver", cfg.StoreDriver).Info("Migration complete")
		return nil
	},
}

var seedReq authdto.SeedUserRequest

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create or update a user account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stores, err := api.OpenStores(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStores(stores)

		if err := stores.Migrate(cmd.Context()); err != nil {
			return err
		}
		authUc := authUsecase.NewAuthUsecase(stores.Users, cfg, log.StandardLogger())
		user, created, err := authUc.SeedUser(cmd.Context(), &seedReq)
		if err != nil {
			return err
		}

		action := "updated"
		if created {
			action = "created"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s user %s (%s, role %s)\n", action, user.Email, user.ID, user.Role)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedReq.Email, "email", "", "account email")
	seedCmd.Flags().StringVar(&seedReq.Password, "password", "", "account password")
	seedCmd.Flags().StringVar(&seedReq.Name, "name", "", "display name (defaults to the email)")
	seedCmd.Flags().StringVar(&seedReq.Role, "role", "member", "admin or member")
	_ = seedCmd.MarkFlagRequired("email")
	_ = seedCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func closeStores(stores *api.Stores) {
	if err := stores.Close(context.Background()); err != nil {
		log.WithError(err).Warn("close store")
	}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
