package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chirper/crud"
	"chirper/errs"
	"chirper/http"
)

// main is the app's entry point.
func main() {
	// Load a .env file if present, then the config from env / config.yaml.
	_ = godotenv.Load(".env")
	config := LoadConfig()

	logger, err := newLogger(config.IsProd())
	must(err)
	defer logger.Sync()
	errs.SetLogger(logger)

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	must(Open(db, config.IsProd()))
	defer Close(db)
	must(AutoMigrate(db))

	// The feed cache is optional and only comes up when an address is set.
	var rdb *redis.Client
	if config.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: config.RedisAddr})
		defer rdb.Close()
	}

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper),
		crud.WithTweet(),
		crud.WithReply(),
		crud.WithFollow(),
		crud.WithLike(),
		crud.WithCache(rdb),
	)
	must(err)

	// Set up a webserver.
	server := http.NewServer(
		logger,
		config.TokenSecret,
		config.ClientOrigin,
		services.User,
		services.Tweet,
		services.Reply,
		services.Follow,
		services.Like,
		services.Cache,
	)

	// Serve until interrupted, then shut down gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, fmt.Sprintf(":%d", config.Port)); err != nil {
		logger.Fatal("server stopped unexpectedly", zap.Error(err))
	}
}

// newLogger builds the app logger for the current environment.
func newLogger(isProd bool) (*zap.Logger, error) {
	if isProd {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
