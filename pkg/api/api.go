// El paquete api contiene las estructuras necesarias
// para la comunicación entre el cliente y el servidor de historiales.
package api

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// AuthHeader es la cabecera que transporta el token de sesión en crudo.
const AuthHeader = "X-Auth"

// Rutas del servidor.
const (
	PathLogin           = "/api/auth/login"
	PathRegister        = "/api/auth/register"
	PathMe              = "/api/auth/me"
	PathLogout          = "/api/auth/logout"
	PathMyRecord        = "/api/patients/me"
	PathNoteByName      = "/api/patients/notes/by-name"
	PathConditionByName = "/api/patients/conditions/by-name"
	PathContacts        = "/api/messages/contacts"
	PathMessages        = "/api/messages"
)

// RecordByNamePath devuelve la ruta del historial completo de un paciente,
// con el nombre codificado como un único segmento.
func RecordByNamePath(name string) string {
	return "/api/patients/" + url.PathEscape(name) + "/full"
}

// ThreadPath devuelve la ruta de la conversación con otro usuario.
func ThreadPath(otherID int64) string {
	return "/api/messages/thread/" + strconv.FormatInt(otherID, 10)
}

type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
	RoleStaff   Role = "STAFF"
)

// Roles en el orden en que se ofrecen al registrarse.
var Roles = []Role{RolePatient, RoleDoctor, RoleStaff}

// ParseRole acepta el nombre del rol sin distinguir mayúsculas.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("rol desconocido: %q", s)
	}
	return r, nil
}

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RoleStaff:
		return true
	}
	return false
}

// Clinical indica si el rol puede escribir notas y diagnósticos
// y consultar el historial de cualquier paciente.
func (r Role) Clinical() bool {
	return r == RoleDoctor || r == RoleStaff
}

type User struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	Role           Role   `json:"role"`
	PatientID      *int64 `json:"patientId,omitempty"`
	PractitionerID *int64 `json:"practitionerId,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Patient son los datos demográficos del paciente. Todos los campos salvo
// el id son opcionales.
type Patient struct {
	ID           int64  `json:"id"`
	Name         string `json:"name,omitempty"`
	Personnummer string `json:"personnummer,omitempty"`
	BirthDate    string `json:"birthDate,omitempty"`
	Gender       string `json:"gender,omitempty"`
	ContactInfo  string `json:"contactInfo,omitempty"`
}

// Note es una anotación clínica. El servidor asigna id y startTime.
type Note struct {
	ID        int64  `json:"id"`
	PatientID int64  `json:"patientId,omitempty"`
	StartTime string `json:"startTime"`
	Notes     string `json:"notes"`
}

// Condition es un diagnóstico codificado.
type Condition struct {
	ID        int64  `json:"id"`
	PatientID int64  `json:"patientId,omitempty"`
	Code      string `json:"code"`
	Display   string `json:"display"`
	OnsetDate string `json:"onsetDate,omitempty"`
}

// PatientRecord es el historial completo de un paciente.
type PatientRecord struct {
	Patient    Patient     `json:"patient"`
	Notes      []Note      `json:"notes"`
	Conditions []Condition `json:"conditions"`
}

type CreateNoteRequest struct {
	PatientName string `json:"patientName"`
	NoteText    string `json:"noteText"`
}

// CreateConditionRequest envía onsetDate como null cuando no se indica.
type CreateConditionRequest struct {
	PatientName string  `json:"patientName"`
	Code        string  `json:"code"`
	Display     string  `json:"display"`
	OnsetDate   *string `json:"onsetDate"`
}

// Contact es un usuario con el que se puede conversar.
type Contact struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

type Message struct {
	ID           int64  `json:"id"`
	SenderID     int64  `json:"senderId"`
	ReceiverID   int64  `json:"receiverId"`
	SenderName   string `json:"senderName"`
	ReceiverName string `json:"receiverName,omitempty"`
	Content      string `json:"content"`
	SentAt       string `json:"sentAt"`
	Read         bool   `json:"read"`
}

type SendMessageRequest struct {
	ReceiverID int64  `json:"receiverId"`
	Content    string `json:"content"`
}
