package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const DefaultJWTSecret = "dev-secret-change-me"

type Config struct {
	Port string
	Env  string

	DatabaseDriver string
	DatabaseDSN    string

	JWTSecret               string
	PasswordSalt            string
	AccessTokenTTLMinutes   int
	ResetTokenMaxAgeSeconds int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3Bucket string
	S3Region string

	CORSOrigins []string
}

// LoadEnv reads a .env file into the process environment if there is one.
// Variables already set win over the file.
func LoadEnv(files ...string) error {
	return godotenv.Load(files...)
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// postgresDSN assembles a DSN from the DB_* variables. It returns "" unless all of them are set.
func postgresDSN() string {
	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASS")
	name := os.Getenv("DB_NAME")
	port := os.Getenv("DB_PORT")
	if host == "" || user == "" || pass == "" || name == "" || port == "" {
		return ""
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		host, user, pass, name, port)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func Load() Config {
	driver := getenv("DATABASE_DRIVER", "postgres")
	dsn := os.Getenv("DATABASE_DSN")
	if dsn == "" {
		if driver == "sqlite" {
			dsn = "file::memory:"
		} else {
			dsn = postgresDSN()
		}
	}
	redisDB, err := strconv.Atoi(os.Getenv("REDIS_DB"))
	if err != nil || redisDB < 0 {
		redisDB = 0
	}
	return Config{
		Port:                    getenv("APP_PORT", "8080"),
		Env:                     getenv("APP_ENV", "dev"),
		DatabaseDriver:          driver,
		DatabaseDSN:             dsn,
		JWTSecret:               getenv("JWT_SECRET", DefaultJWTSecret),
		PasswordSalt:            getenv("SECURITY_PASSWORD_SALT", "password-reset"),
		AccessTokenTTLMinutes:   getenvInt("ACCESS_TOKEN_TTL_MINUTES", 60*24),
		ResetTokenMaxAgeSeconds: getenvInt("RESET_TOKEN_MAX_AGE_SECONDS", 84600),
		RedisAddr:               os.Getenv("REDIS_ADDR"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 redisDB,
		S3Bucket:                os.Getenv("S3_BUCKET"),
		S3Region:                getenv("S3_REGION", "us-east-1"),
		CORSOrigins:             splitList(os.Getenv("CORS_ORIGINS")),
	}
}

func Validate(cfg Config) error {
	if cfg.Port == "" {
		return errors.New("config: APP_PORT is empty")
	}
	switch cfg.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("config: unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("config: DATABASE_DSN is empty and DB_* variables are incomplete")
	}
	if cfg.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is empty")
	}
	if cfg.Env != "dev" && cfg.JWTSecret == DefaultJWTSecret {
		return errors.New("config: JWT_SECRET must be changed outside dev")
	}
	if cfg.PasswordSalt == "" {
		return errors.New("config: SECURITY_PASSWORD_SALT is empty")
	}
	return nil
}
