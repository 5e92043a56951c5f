// El paquete config reúne la configuración de cliente y servidor a partir
// del entorno (y de un fichero .env si existe) y abre los ficheros de log.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Cliente
	APIURL        string
	InsecureTLS   bool
	SessionDB     string
	SessionKey    string
	SessionCipher string

	// Servidor
	ListenAddr   string
	ServerDB     string
	JWTSecret    string
	TokenTTL     time.Duration
	AllowOrigins []string

	LogDir string
}

// Load lee .env (si no existe no es un error) y después las variables de
// entorno JOURNAL_*. Los valores mal formados se devuelven como error.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("cargando .env: %w", err)
	}

	cfg := Config{
		APIURL:        getenv("JOURNAL_API_URL", "http://localhost:8080"),
		SessionDB:     getenv("JOURNAL_SESSION_DB", "data/session.db"),
		SessionKey:    os.Getenv("JOURNAL_SESSION_KEY"),
		SessionCipher: strings.ToUpper(getenv("JOURNAL_SESSION_CIPHER", "AES256")),
		ListenAddr:    getenv("JOURNAL_LISTEN_ADDR", ":8080"),
		ServerDB:      getenv("JOURNAL_SERVER_DB", "data/server.db"),
		JWTSecret:     os.Getenv("JOURNAL_JWT_SECRET"),
		LogDir:        getenv("JOURNAL_LOG_DIR", "logs"),
	}

	var err error
	if cfg.InsecureTLS, err = strconv.ParseBool(getenv("JOURNAL_INSECURE_TLS", "false")); err != nil {
		return Config{}, fmt.Errorf("JOURNAL_INSECURE_TLS: %w", err)
	}
	if cfg.TokenTTL, err = time.ParseDuration(getenv("JOURNAL_TOKEN_TTL", "12h")); err != nil {
		return Config{}, fmt.Errorf("JOURNAL_TOKEN_TTL: %w", err)
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("JOURNAL_TOKEN_TTL debe ser positivo: %s", cfg.TokenTTL)
	}
	for _, o := range strings.Split(getenv("JOURNAL_ALLOW_ORIGINS", "http://localhost:5173"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	return cfg, nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// OpenLog crea (o reabre) el fichero <dir>/<name>_AAAA-MM-DD.log y devuelve
// un logger con el prefijo indicado. El llamador cierra el fichero.
func OpenLog(dir, name, prefix string) (*log.Logger, *os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("creando directorio de logs: %w", err)
	}
	fileName := filepath.Join(dir, fmt.Sprintf("%s_%s.log", name, time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("abriendo archivo de log: %w", err)
	}
	return log.New(f, prefix, log.LstdFlags|log.Lmicroseconds), f, nil
}
