package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	MySQLDSN        string
	RedisURL        string
	JWTSecret       string
	Port            string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	AdminEmail      string
	AdminPassword   string
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func Load() Config {
	accessHours, _ := strconv.Atoi(getenv("ACCESS_TOKEN_HOURS", "24"))
	refreshHours, _ := strconv.Atoi(getenv("REFRESH_TOKEN_HOURS", "168"))
	return Config{
		MySQLDSN:        getenv("MYSQL_DSN", "elections:dev@tcp(localhost:3306)/elections?parseTime=true"),
		RedisURL:        getenv("REDIS_URL", "redis://localhost:6379/0"),
		JWTSecret:       getenv("JWT_SECRET", "change-me-in-production"),
		Port:            getenv("PORT", "8080"),
		AccessTokenTTL:  time.Duration(accessHours) * time.Hour,
		RefreshTokenTTL: time.Duration(refreshHours) * time.Hour,
		AdminEmail:      os.Getenv("ADMIN_EMAIL"),
		AdminPassword:   os.Getenv("ADMIN_PASSWORD"),
	}
}
