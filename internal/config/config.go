package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	DBDSN         string
	MediaDir      string
	LogFile       string
	AdminEmail    string
	AdminName     string
	AdminPassword string
	CSRFEnabled   bool
	CookieSecure  bool
	CORSOrigins   string
	Debug         bool
}

// Load reads .env when present, then the process environment.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] .env: %v", err)
	}

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		DBDSN:         getenv("DB_DSN", "nyumba.db"), // sqlite file in project root
		MediaDir:      getenv("MEDIA_DIR", "./media"),
		LogFile:       os.Getenv("LOG_FILE"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminName:     getenv("ADMIN_NAME", "Administrator"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		CSRFEnabled:   getbool("CSRF_ENABLED", true),
		CookieSecure:  getbool("COOKIE_SECURE", false),
		CORSOrigins:   strings.TrimSpace(os.Getenv("CORS_ORIGINS")),
		Debug:         getbool("DEBUG", false),
	}
	log.Printf("[config] PORT=%s DB_DSN=%s MEDIA_DIR=%s LOG_FILE=%s CSRF=%t DEBUG=%t",
		cfg.Port, cfg.DBDSN, cfg.MediaDir, cfg.LogFile, cfg.CSRFEnabled, cfg.Debug)
	return cfg
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return def
	}
	return v
}
