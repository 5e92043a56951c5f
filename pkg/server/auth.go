package server

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"journal/pkg/api"
	"journal/pkg/store"
)

const (
	maxAttempts   = 3
	blockDuration = time.Minute
	ctxUser       = "user"
)

// userRecord es el usuario tal y como se guarda: los datos públicos más
// el hash argon2id de la contraseña.
type userRecord struct {
	api.User
	Hash []byte `json:"hash"`
	Salt []byte `json:"salt"`
}

type claims struct {
	UserID int64 `json:"uid"`
	jwt.StandardClaims
}

func hashPassword(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, 2, 19*1024, 1, 32)
}

func (s *Server) register(c *gin.Context) {
	var req api.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}
	role, err := api.ParseRole(string(req.Role))
	if err != nil {
		fail(c, http.StatusBadRequest, "Unknown role")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Get(nsUsernames, []byte(req.Username)); err == nil {
		fail(c, http.StatusConflict, "Username already exists")
		return
	} else if !store.IsNotFound(err) {
		s.internal(c, "comprobando usuario", err)
		return
	}

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		s.internal(c, "generando sal", err)
		return
	}
	id, err := s.db.NextID(nsUsers)
	if err != nil {
		s.internal(c, "asignando id de usuario", err)
		return
	}
	u := userRecord{
		User: api.User{ID: id, Username: req.Username, Role: role},
		Hash: hashPassword(req.Password, salt),
		Salt: salt,
	}

	switch role {
	case api.RolePatient:
		// el paciente se crea con el nombre de usuario como nombre y personnummer
		p, err := s.createPatient(api.Patient{Name: req.Username, Personnummer: req.Username})
		if err != nil {
			s.internal(c, "creando paciente", err)
			return
		}
		u.PatientID = &p.ID
	case api.RoleDoctor, api.RoleStaff:
		pid, err := s.db.NextID(nsPractitioner)
		if err != nil {
			s.internal(c, "asignando id de profesional", err)
			return
		}
		if err := s.db.Put(nsPractitioner, idKey(pid), []byte(req.Username)); err != nil {
			s.internal(c, "guardando profesional", err)
			return
		}
		u.PractitionerID = &pid
	}

	if err := s.putJSON(nsUsers, idKey(id), u); err != nil {
		s.internal(c, "guardando usuario", err)
		return
	}
	if err := s.db.Put(nsUsernames, []byte(req.Username), idKey(id)); err != nil {
		s.internal(c, "indexando usuario", err)
		return
	}
	s.log.Printf("Usuario %s registrado con rol %s", u.Username, u.Role)

	c.JSON(http.StatusOK, gin.H{
		"id":        u.ID,
		"username":  u.Username,
		"role":      u.Role,
		"patientId": u.PatientID,
	})
}

func (s *Server) login(c *gin.Context) {
	var req api.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	if ok, until := s.guard.check(req.Username, s.now()); !ok {
		s.log.Printf("Intento de inicio de sesión para cuenta bloqueada: %s (hasta %s)", req.Username, until.Format("15:04:05"))
		fail(c, http.StatusTooManyRequests,
			fmt.Sprintf("Too many failed attempts, try again in %d seconds", int(until.Sub(s.now()).Seconds())+1))
		return
	}

	u, err := s.userByName(req.Username)
	if err == nil && subtle.ConstantTimeCompare(u.Hash, hashPassword(req.Password, u.Salt)) != 1 {
		err = errors.New("contraseña incorrecta")
	}
	if err != nil {
		if attempts, blocked := s.guard.fail(req.Username, s.now()); blocked {
			s.log.Printf("ALERTA: cuenta %s bloqueada %v tras %d intentos fallidos", req.Username, blockDuration, attempts)
		}
		s.log.Printf("Login fallido para %s desde %s: %v", req.Username, c.ClientIP(), err)
		fail(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	s.guard.success(req.Username)

	token, err := s.issueToken(u.ID)
	if err != nil {
		s.internal(c, "firmando token", err)
		return
	}
	s.log.Printf("Login exitoso para %s desde %s", u.Username, c.ClientIP())
	c.JSON(http.StatusOK, api.LoginResponse{Token: token, User: u.User})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c).User)
}

// logout revoca el token si es válido y responde siempre 204.
func (s *Server) logout(c *gin.Context) {
	if cl, err := s.parseToken(c.GetHeader(api.AuthHeader)); err == nil {
		if err := s.db.Put(nsRevoked, []byte(cl.Id), idKey(cl.ExpiresAt)); err != nil {
			s.log.Printf("ERROR revocando token: %v", err)
		} else {
			s.log.Printf("Sesión cerrada para el usuario %d", cl.UserID)
		}
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) userByName(username string) (*userRecord, error) {
	key, err := s.db.Get(nsUsernames, []byte(username))
	if err != nil {
		return nil, err
	}
	var u userRecord
	if err := s.getJSON(nsUsers, key, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Server) userByID(id int64) (*userRecord, error) {
	var u userRecord
	if err := s.getJSON(nsUsers, idKey(id), &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Server) issueToken(userID int64) (string, error) {
	now := s.now()
	cl := claims{
		UserID: userID,
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(s.ttl).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(s.secret)
}

// parseToken valida firma, caducidad y revocación.
func (s *Server) parseToken(raw string) (*claims, error) {
	if raw == "" {
		return nil, errors.New("sin token")
	}
	tok, err := jwt.ParseWithClaims(raw, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma erróneo: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	cl, ok := tok.Claims.(*claims)
	if !ok || !tok.Valid {
		return nil, errors.New("token inválido")
	}
	if _, err := s.db.Get(nsRevoked, []byte(cl.Id)); err == nil {
		return nil, errors.New("token revocado")
	}
	return cl, nil
}

// requireUser resuelve el usuario del token de X-Auth y lo deja en el
// contexto.
func (s *Server) requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		cl, err := s.parseToken(c.GetHeader(api.AuthHeader))
		if err != nil {
			c.String(http.StatusUnauthorized, "Not logged in")
			c.Abort()
			return
		}
		u, err := s.userByID(cl.UserID)
		if err != nil {
			c.String(http.StatusUnauthorized, "Invalid session")
			c.Abort()
			return
		}
		c.Set(ctxUser, u)
		c.Next()
	}
}

func (s *Server) requireClinical() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !currentUser(c).Role.Clinical() {
			c.String(http.StatusForbidden, "Only doctor/staff may do this")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *userRecord {
	return c.MustGet(ctxUser).(*userRecord)
}

type loginAttempt struct {
	attempts   int
	blockUntil time.Time
}

// lockout bloquea temporalmente un nombre de usuario tras varios fallos
// consecutivos de inicio de sesión.
type lockout struct {
	mu       sync.Mutex
	max      int
	block    time.Duration
	attempts map[string]*loginAttempt
}

func newLockout(max int, block time.Duration) *lockout {
	return &lockout{max: max, block: block, attempts: make(map[string]*loginAttempt)}
}

func (l *lockout) check(username string, now time.Time) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.attempts[username]
	if !ok || a.blockUntil.IsZero() {
		return true, time.Time{}
	}
	if now.After(a.blockUntil) {
		delete(l.attempts, username)
		return true, time.Time{}
	}
	return false, a.blockUntil
}

// fail devuelve el número de fallos y si la cuenta ha quedado bloqueada.
func (l *lockout) fail(username string, now time.Time) (int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	a, ok := l.attempts[username]
	if !ok {
		a = &loginAttempt{}
		l.attempts[username] = a
	}
	a.attempts++
	if a.attempts >= l.max {
		a.blockUntil = now.Add(l.block)
		return a.attempts, true
	}
	return a.attempts, false
}

func (l *lockout) success(username string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, username)
}
