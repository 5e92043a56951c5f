// El paquete client contiene el cliente de terminal del sistema de
// historiales: las vistas y el controlador raíz que decide cuál mostrar
// según la sesión y el rol del usuario.
package client

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"journal/pkg/api"
	"journal/pkg/cifrado"
	"journal/pkg/config"
	"journal/pkg/rest"
	"journal/pkg/session"
	"journal/pkg/store"
	"journal/pkg/ui"
)

// Screen es la pantalla que muestra el controlador raíz.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenClinical
	ScreenPatientJournal
	ScreenMessages
)

func (s Screen) String() string {
	switch s {
	case ScreenRegister:
		return "registro"
	case ScreenClinical:
		return "historiales"
	case ScreenPatientJournal:
		return "mi historial"
	case ScreenMessages:
		return "mensajes"
	}
	return "login"
}

// App es el controlador raíz. Sin sesión alterna entre login y registro;
// con sesión muestra el historial que corresponde al rol o los mensajes.
type App struct {
	con      *ui.Console
	log      *log.Logger
	sess     *session.Session
	auth     *rest.AuthAPI
	journal  *rest.JournalAPI
	messages *rest.MessageAPI

	me           *api.User
	registering  bool
	viewMessages bool
}

// NewApp lee el usuario de la sesión guardada al arrancar.
func NewApp(con *ui.Console, sess *session.Session, rc *rest.Client, logger *log.Logger) *App {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &App{
		con:      con,
		log:      logger,
		sess:     sess,
		auth:     rest.NewAuthAPI(rc),
		journal:  rest.NewJournalAPI(rc),
		messages: rest.NewMessageAPI(rc),
		me:       sess.CurrentUser(),
	}
}

// User devuelve el usuario autenticado o nil.
func (a *App) User() *api.User { return a.me }

func (a *App) Screen() Screen {
	switch {
	case a.me == nil && a.registering:
		return ScreenRegister
	case a.me == nil:
		return ScreenLogin
	case a.viewMessages:
		return ScreenMessages
	case a.me.Role.Clinical():
		return ScreenClinical
	}
	return ScreenPatientJournal
}

func (a *App) ShowRegister() { a.registering = true }
func (a *App) ShowLogin()    { a.registering = false }
func (a *App) ShowJournal()  { a.viewMessages = false }
func (a *App) ShowMessages() { a.viewMessages = true }

// loggedIn se llama tras un login correcto.
func (a *App) loggedIn(u *api.User) {
	a.me = u
	a.registering = false
	a.viewMessages = false
	a.log.Printf("Login exitoso para el usuario %s (%s)", u.Username, u.Role)
}

// Logout avisa al servidor, sin esperar éxito, y borra la sesión local.
func (a *App) Logout(ctx context.Context) {
	if err := a.auth.Logout(ctx); err != nil {
		a.log.Printf("ADVERTENCIA: error cerrando sesión en el servidor: %v", err)
	}
	a.sess.Clear()
	a.me = nil
	a.registering = false
	a.viewMessages = false
}

// Run es la función de entrada del cliente: abre el log, la sesión y el
// cliente HTTP y ejecuta el bucle principal.
func Run(ctx context.Context, cfg config.Config) error {
	logger, logFile, err := config.OpenLog(cfg.LogDir, "client", "[cli] ")
	if err != nil {
		return err
	}
	defer logFile.Close()
	logger.Println("**************************************************")
	logger.Println("Iniciando cliente...")
	fmt.Printf("\nLogs del cliente se escriben en: %s\n", logFile.Name())

	db, err := store.NewStore("bbolt", cfg.SessionDB)
	if err != nil {
		return fmt.Errorf("abriendo almacén de sesión: %w", err)
	}
	opts := []session.Option{session.WithLogger(logger)}
	if cfg.SessionKey != "" {
		sealer, err := cifrado.NewSealer(cfg.SessionKey, cfg.SessionCipher, false)
		if err != nil {
			db.Close()
			return fmt.Errorf("configurando cifrado de sesión: %w", err)
		}
		opts = append(opts, session.WithSealer(sealer))
	}
	sess := session.New(db, opts...)
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Printf("ERROR al cerrar el almacén de sesión: %v", err)
		}
	}()

	httpClient := &http.Client{}
	if cfg.InsecureTLS {
		httpClient.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	rc := rest.New(cfg.APIURL, httpClient, sess, logger)

	app := NewApp(ui.NewConsole(os.Stdin, os.Stdout), sess, rc, logger)
	app.runLoop(ctx)
	logger.Println("Saliendo del cliente...")
	return nil
}
