package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielstephany/kanban-api/logging"
	"github.com/danielstephany/kanban-api/models"
)

type Config struct {
	Port                 string
	MongoURI             string
	MongoDBName          string
	JWTSecret            string
	JWTExpiry            time.Duration
	ColumnConflictPolicy models.ConflictPolicy
	PasswordBlacklist    string
}

func loadConfig() Config {
	// .env is optional outside local development
	_ = godotenv.Load(".env")

	for _, key := range []string{"MONGO_URI", "MONGO_DB_NAME", "JWT_SECRET"} {
		if os.Getenv(key) == "" {
			logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: %s is not set in the environment variables.", key)
		}
	}

	expiryHours := 24
	if raw := os.Getenv("JWT_EXPIRY_HOURS"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: JWT_EXPIRY_HOURS must be a positive integer, got %q", raw)
		}
		expiryHours = parsed
	}

	policy := models.ConflictPolicy(getenv("COLUMN_CONFLICT_POLICY", string(models.ConflictReject)))
	if policy != models.ConflictReject && policy != models.ConflictSuffix {
		logging.Logger.Fatalf("Event ID: CONFIG_ERROR, Description: COLUMN_CONFLICT_POLICY must be %q or %q, got %q", models.ConflictReject, models.ConflictSuffix, policy)
	}

	return Config{
		Port:                 getenv("PORT", "8080"),
		MongoURI:             os.Getenv("MONGO_URI"),
		MongoDBName:          os.Getenv("MONGO_DB_NAME"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		JWTExpiry:            time.Duration(expiryHours) * time.Hour,
		ColumnConflictPolicy: policy,
		PasswordBlacklist:    os.Getenv("PASSWORD_BLACKLIST"),
	}
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
