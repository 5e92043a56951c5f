// El paquete server contiene el servidor de desarrollo de historiales.
// Atiende la API JSON/HTTP que consume el cliente y guarda los datos en un
// store.Store.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"journal/pkg/api"
	"journal/pkg/config"
	"journal/pkg/store"
)

// Namespaces del almacén.
const (
	nsUsers        = "users"
	nsUsernames    = "usernames"
	nsPatients     = "patients"
	nsPatientNames = "patient_names"
	nsNotes        = "notes"
	nsConditions   = "conditions"
	nsMessages     = "messages"
	nsRevoked      = "revoked"
	nsPractitioner = "practitioners"
)

// Formato de fecha y hora de notas y mensajes (sin zona horaria).
const timeLayout = "2006-01-02T15:04:05"

type Options struct {
	Secret       []byte
	TokenTTL     time.Duration
	AllowOrigins []string
	Logger       *log.Logger
}

// Server encapsula el estado del servidor.
type Server struct {
	db     store.Store
	log    *log.Logger
	secret []byte
	ttl    time.Duration
	guard  *lockout
	now    func() time.Time
	mu     sync.Mutex // serializa altas de usuarios y pacientes
	router *gin.Engine
}

func New(db store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 12 * time.Hour
	}
	s := &Server{
		db:     db,
		log:    opts.Logger,
		secret: opts.Secret,
		ttl:    opts.TokenTTL,
		guard:  newLockout(maxAttempts, blockDuration),
		now:    time.Now,
	}
	s.router = s.routes(opts.AllowOrigins)
	return s
}

// Handler devuelve el router HTTP del servidor.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes(origins []string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.UseRawPath = true
	r.Use(gin.Recovery(), s.requestLogger())
	if len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: origins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{"Content-Type", api.AuthHeader},
			MaxAge:       12 * time.Hour,
		}))
	}

	r.POST(api.PathRegister, s.register)
	r.POST(api.PathLogin, s.login)
	r.POST(api.PathLogout, s.logout)

	authed := r.Group("/api")
	authed.Use(s.requireUser())
	authed.GET("/auth/me", s.me)

	authed.GET("/patients/me", s.myRecord)
	authed.GET("/patients/:name/full", s.requireClinical(), s.recordByName)
	authed.POST("/patients/notes/by-name", s.requireClinical(), s.addNote)
	authed.POST("/patients/conditions/by-name", s.requireClinical(), s.addCondition)

	authed.GET("/messages/contacts", s.contacts)
	authed.GET("/messages/thread/:otherId", s.thread)
	authed.POST("/messages", s.send)
	return r
}

// requestLogger registra cada petición con la IP de origen y el estado.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()
		c.Next()
		s.log.Printf("%s %s %s -> %d (%v)", c.ClientIP(), c.Request.Method, c.Request.URL.Path,
			c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}

// Run abre el log y la base de datos y atiende peticiones hasta que se
// cancela ctx.
func Run(ctx context.Context, cfg config.Config) error {
	if cfg.JWTSecret == "" {
		return errors.New("no se ha definido la variable de entorno JOURNAL_JWT_SECRET")
	}

	logger, logFile, err := config.OpenLog(cfg.LogDir, "server", "[srv] ")
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger.Println("**************************************************")
	logger.Println("Iniciando servidor...")

	db, err := store.NewStore("bbolt", cfg.ServerDB)
	if err != nil {
		logger.Printf("ERROR: error abriendo base de datos: %v", err)
		return fmt.Errorf("abriendo base de datos: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Printf("ERROR al cerrar la base de datos: %v", err)
		} else {
			logger.Println("Base de datos cerrada correctamente.")
		}
	}()

	srv := New(db, Options{
		Secret:       []byte(cfg.JWTSecret),
		TokenTTL:     cfg.TokenTTL,
		AllowOrigins: cfg.AllowOrigins,
		Logger:       logger,
	})
	httpSrv := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Handler()}

	errc := make(chan error, 1)
	go func() { errc <- httpSrv.ListenAndServe() }()
	logger.Printf("Servidor escuchando en %s", cfg.ListenAddr)
	fmt.Printf("Servidor escuchando en %s\nLogs del servidor en: %s\n", cfg.ListenAddr, logFile.Name())

	select {
	case err := <-errc:
		logger.Printf("FATAL: %v", err)
		return err
	case <-ctx.Done():
	}

	logger.Println("Deteniendo servidor...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func idKey(id int64) []byte {
	return []byte(fmt.Sprintf("%020d", id))
}

func (s *Server) getJSON(ns string, key []byte, v any) error {
	raw, err := s.db.Get(ns, key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func (s *Server) putJSON(ns string, key []byte, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Put(ns, key, raw)
}

// listJSON decodifica en orden de clave todos los valores de ns.
func listJSON[T any](s *Server, ns string) ([]T, error) {
	keys, err := s.db.ListKeys(ns)
	if err != nil {
		if errors.Is(err, store.ErrBucketNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		var v T
		if err := s.getJSON(ns, k, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// fail responde con el mensaje en texto plano, como espera el cliente.
func fail(c *gin.Context, status int, msg string) {
	c.String(status, msg)
}

func (s *Server) internal(c *gin.Context, what string, err error) {
	s.log.Printf("ERROR %s: %v", what, err)
	c.String(http.StatusInternalServerError, "Internal error")
	c.Abort()
}
