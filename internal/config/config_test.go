package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	for _, k := range []string{"PORT", "DB_DSN", "MEDIA_DIR", "CSRF_ENABLED", "COOKIE_SECURE", "ADMIN_NAME"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "nyumba.db", cfg.DBDSN)
	assert.Equal(t, "./media", cfg.MediaDir)
	assert.Equal(t, "Administrator", cfg.AdminName)
	assert.True(t, cfg.CSRFEnabled)
	assert.False(t, cfg.CookieSecure)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("DB_DSN", ":memory:")
	t.Setenv("CSRF_ENABLED", "false")
	t.Setenv("COOKIE_SECURE", "1")
	t.Setenv("CORS_ORIGINS", " https://shop.example ")
	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBDSN)
	assert.False(t, cfg.CSRFEnabled)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, "https://shop.example", cfg.CORSOrigins)
}

func TestGetbool(t *testing.T) {
	t.Setenv("NYUMBA_FLAG", "nonsense")
	assert.True(t, getbool("NYUMBA_FLAG", true))
	t.Setenv("NYUMBA_FLAG", "TRUE")
	assert.True(t, getbool("NYUMBA_FLAG", false))
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent of testing.T.Chdir, Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
