package api

import (
	"context"
	"fmt"

	authRepo "taskboard-backend/internal/auth/repository"
	taskRepo "taskboard-backend/internal/task/repository"
	"taskboard-backend/pkg/config"
	"taskboard-backend/pkg/database"

	log "github.com/sirupsen/logrus"
)

// Stores bundles the repositories of the configured backend.
type Stores struct {
	Users authRepo.UserRepository
	Tasks taskRepo.TaskRepository

	migrate func(ctx context.Context) error
	close   func(ctx context.Context) error
}

// OpenStores connects to the backend selected by STORE_DRIVER.
func OpenStores(ctx context.Context, cfg *config.Config) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgresConnection(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		log.Info("[Stores] connected to PostgreSQL")
		return &Stores{
			Users: authRepo.NewUserRepository(db),
			Tasks: taskRepo.NewGormTaskRepository(db),
			migrate: func(context.Context) error {
				if err := authRepo.MigrateGorm(db); err != nil {
					return err
				}
				return taskRepo.MigrateGorm(db)
			},
			close: func(context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			},
		}, nil

	case config.StoreDriverMongo:
		client, db, err := database.NewMongoConnection(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.WithField("database", cfg.MongoDatabase).Info("[Stores] connected to MongoDB")
		return &Stores{
			Users: authRepo.NewMongoUserRepository(db),
			Tasks: taskRepo.NewMongoTaskRepository(db),
			migrate: func(ctx context.Context) error {
				if err := authRepo.MigrateMongo(ctx, db); err != nil {
					return err
				}
				return taskRepo.MigrateMongo(ctx, db)
			},
			close: client.Disconnect,
		}, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// Migrate creates tables or indexes. It is safe to run repeatedly.
func (s *Stores) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

func (s *Stores) Close(ctx context.Context) error {
	return s.close(ctx)
}
