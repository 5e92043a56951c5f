// El paquete session guarda el token de autenticación y el usuario en caché
// entre ejecuciones del cliente.
package session

import (
	"encoding/json"
	"io"
	"log"

	"journal/pkg/api"
	"journal/pkg/cifrado"
	"journal/pkg/store"
)

const (
	namespace = "session"
	keyToken  = "token"
	keyUser   = "user"
)

// Session envuelve el almacén persistente del cliente. Se crea al arrancar
// y se cierra al salir; nadie más escribe en el namespace de sesión.
type Session struct {
	db     store.Store
	sealer *cifrado.Sealer
	log    *log.Logger
}

type Option func(*Session)

// WithSealer cifra el token en reposo.
func WithSealer(s *cifrado.Sealer) Option {
	return func(ss *Session) { ss.sealer = s }
}

func WithLogger(l *log.Logger) Option {
	return func(ss *Session) { ss.log = l }
}

func New(db store.Store, opts ...Option) *Session {
	s := &Session{db: db, log: log.New(io.Discard, "", 0)}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Token devuelve el token guardado o "" si no hay sesión o no se puede leer.
func (s *Session) Token() string {
	raw, err := s.db.Get(namespace, []byte(keyToken))
	if err != nil {
		if !store.IsNotFound(err) {
			s.log.Printf("Error leyendo el token de sesión: %v", err)
		}
		return ""
	}
	if s.sealer == nil {
		return string(raw)
	}
	plain, err := s.sealer.Open(raw)
	if err != nil {
		s.log.Printf("ADVERTENCIA: no se puede descifrar el token de sesión: %v", err)
		return ""
	}
	return string(plain)
}

// CurrentUser devuelve el usuario en caché, o nil si no existe, el JSON
// guardado no es válido o es null, o el rol no es conocido.
func (s *Session) CurrentUser() *api.User {
	raw, err := s.db.Get(namespace, []byte(keyUser))
	if err != nil {
		return nil
	}
	var u *api.User
	if err := json.Unmarshal(raw, &u); err != nil {
		s.log.Printf("Usuario en caché ilegible, se ignora: %v", err)
		return nil
	}
	if u == nil || !u.Role.Valid() {
		s.log.Printf("Usuario en caché sin rol válido, se ignora")
		return nil
	}
	return u
}

// Save crea la sesión tras un login correcto. Si falla alguna escritura
// no queda nada a medias.
func (s *Session) Save(token string, u api.User) error {
	userJSON, err := json.Marshal(u)
	if err != nil {
		return err
	}
	tok := []byte(token)
	if s.sealer != nil {
		if tok, err = s.sealer.Seal(tok); err != nil {
			return err
		}
	}
	if err := s.db.Put(namespace, []byte(keyToken), tok); err != nil {
		s.Clear()
		return err
	}
	if err := s.db.Put(namespace, []byte(keyUser), userJSON); err != nil {
		s.Clear()
		return err
	}
	s.log.Printf("Sesión guardada para el usuario %s (%s)", u.Username, u.Role)
	return nil
}

// Clear borra el token y el usuario. Se puede llamar varias veces.
func (s *Session) Clear() {
	for _, k := range []string{keyToken, keyUser} {
		if err := s.db.Delete(namespace, []byte(k)); err != nil {
			s.log.Printf("Error borrando %s de la sesión: %v", k, err)
		}
	}
	s.log.Println("Sesión local borrada")
}

// Close libera el almacén subyacente.
func (s *Session) Close() error {
	return s.db.Close()
}
