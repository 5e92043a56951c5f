package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir a un directorio sin .env para que Load no lea el del repositorio.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	for _, k := range []string{
		"JOURNAL_API_URL", "JOURNAL_INSECURE_TLS", "JOURNAL_SESSION_DB", "JOURNAL_SESSION_KEY",
		"JOURNAL_SESSION_CIPHER", "JOURNAL_LOG_DIR", "JOURNAL_LISTEN_ADDR", "JOURNAL_SERVER_DB",
		"JOURNAL_JWT_SECRET", "JOURNAL_TOKEN_TTL", "JOURNAL_ALLOW_ORIGINS",
	} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.APIURL)
	assert.False(t, cfg.InsecureTLS)
	assert.Equal(t, "data/session.db", cfg.SessionDB)
	assert.Empty(t, cfg.SessionKey)
	assert.Equal(t, "AES256", cfg.SessionCipher)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, 12*time.Hour, cfg.TokenTTL)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowOrigins)
	assert.Equal(t, "logs", cfg.LogDir)
}

func TestLoad_FromEnvAndDotenv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("JOURNAL_JWT_SECRET=desde-env\n"), 0600))
	t.Setenv("JOURNAL_JWT_SECRET", "")
	os.Unsetenv("JOURNAL_JWT_SECRET")
	t.Setenv("JOURNAL_API_URL", "https://journal.local:8443")
	t.Setenv("JOURNAL_INSECURE_TLS", "true")
	t.Setenv("JOURNAL_SESSION_CIPHER", "twofish")
	t.Setenv("JOURNAL_TOKEN_TTL", "30m")
	t.Setenv("JOURNAL_ALLOW_ORIGINS", "http://a, http://b ,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://journal.local:8443", cfg.APIURL)
	assert.True(t, cfg.InsecureTLS)
	assert.Equal(t, "TWOFISH", cfg.SessionCipher)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.AllowOrigins)
	assert.Equal(t, "desde-env", cfg.JWTSecret)
}

func TestLoad_Malformed(t *testing.T) {
	chdirTemp(t)
	t.Setenv("JOURNAL_INSECURE_TLS", "quizás")
	_, err := Load()
	assert.ErrorContains(t, err, "JOURNAL_INSECURE_TLS")

	t.Setenv("JOURNAL_INSECURE_TLS", "")
	t.Setenv("JOURNAL_TOKEN_TTL", "pronto")
	_, err = Load()
	assert.ErrorContains(t, err, "JOURNAL_TOKEN_TTL")

	t.Setenv("JOURNAL_TOKEN_TTL", "-1h")
	_, err = Load()
	assert.Error(t, err)
}

func TestOpenLog(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, f, err := OpenLog(dir, "client", "[cli] ")
	require.NoError(t, err)
	l.Println("hola")
	require.NoError(t, f.Close())

	data, err := os.ReadFile(filepath.Join(dir, "client_"+time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[cli] "))
	assert.Contains(t, string(data), "hola")
}
