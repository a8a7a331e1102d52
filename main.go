package main

import (
	"context"
	"time"

	"meetup-backend/internal/auth"
	"meetup-backend/internal/config"
	"meetup-backend/internal/db"
	"meetup-backend/internal/ids"
	clog "meetup-backend/internal/log"
	"meetup-backend/internal/server"
	"meetup-backend/internal/service"
	"meetup-backend/internal/storage"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// usedTokenStore picks Redis when REDIS_ADDR is set, otherwise an in-process map.
func usedTokenStore(ctx context.Context, cfg config.Config) auth.UsedTokens {
	if cfg.RedisAddr == "" {
		log.Warn().Msg("REDIS_ADDR not set, reset tokens tracked in memory")
		return auth.NewMemoryUsedTokens(time.Now)
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping")
	}
	return auth.NewRedisUsedTokens(client)
}

func uploader(ctx context.Context, cfg config.Config) storage.Uploader {
	if cfg.S3Bucket == "" {
		log.Warn().Msg("S3_BUCKET not set, profile images kept in memory")
		return storage.NewMemoryUploader()
	}
	up, err := storage.NewS3Uploader(ctx, cfg.S3Bucket, cfg.S3Region)
	if err != nil {
		log.Fatal().Err(err).Msg("s3 config")
	}
	return up
}

func main() {
	// Load .env variables
	if err := config.LoadEnv(); err != nil {
		log.Warn().Msg(".env file not found, using system environment variables")
	}
	cfg := config.Load()
	clog.Init(cfg.Env)
	if err := config.Validate(cfg); err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	gdb, err := db.Open(cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	ctx := context.Background()
	gen := ids.NewRandom()
	tokens := auth.ResetTokens{
		Secret: cfg.JWTSecret,
		Salt:   cfg.PasswordSalt,
		MaxAge: time.Duration(cfg.ResetTokenMaxAgeSeconds) * time.Second,
	}
	svc := server.Services{
		Users:     service.NewUserService(gdb, gen, time.Now, tokens, usedTokenStore(ctx, cfg)),
		Events:    service.NewEventService(gdb, gen, time.Now),
		Chats:     service.NewChatService(gdb, gen, time.Now),
		Favorites: service.NewFavoriteService(gdb),
		Images:    service.NewImageService(gdb, gen, time.Now, uploader(ctx, cfg)),
	}

	r := server.SetupRouter(cfg, server.NewHandler(cfg, svc))
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server running")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server run")
	}
}
