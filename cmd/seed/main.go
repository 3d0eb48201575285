// Command seed resets the database to the fixture data set and prints the
// pre-issued session tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/taskmanager/task-api/internal/fixtures"
	mongodb "github.com/taskmanager/task-api/internal/infrastructure/db/mongo"
	"github.com/taskmanager/task-api/internal/infrastructure/token"
	"github.com/taskmanager/task-api/internal/pkg/config"
	"github.com/taskmanager/task-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "task-api-seed"})

	issuer, err := token.NewJWTIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("token issuer")
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	users := mongodb.NewUserRepository(db)
	tasks := mongodb.NewTaskRepository(db)
	if err := mongodb.EnsureIndexes(ctx, users, tasks); err != nil {
		log.Fatal().Err(err).Msg("indexes")
	}

	data, err := fixtures.Setup(ctx, users, tasks, issuer)
	if err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}

	log.Info().
		Str("database", cfg.Mongo.Database).
		Str("user_one", data.UserOne.Email).
		Str("user_two", data.UserTwo.Email).
		Msg("seed completed")
	fmt.Printf("%s\t%s\n", data.UserOne.Email, data.UserOneToken)
	fmt.Printf("%s\t%s\n", data.UserTwo.Email, data.UserTwoToken)
}
