package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"journal/pkg/api"
)

func TestAuthAPI_Me(t *testing.T) {
	calls := 0
	handler := func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Header.Get(api.AuthHeader) != "good" {
			w.WriteHeader(http.StatusUnauthorized)
			io.WriteString(w, "Not logged in")
			return
		}
		io.WriteString(w, `{"id":1,"username":"dr1364","role":"DOCTOR"}`)
	}

	// sin token no se llama al servidor
	assert.Nil(t, NewAuthAPI(newTestClient(t, "", handler)).Me(context.Background()))
	assert.Equal(t, 0, calls)

	assert.Nil(t, NewAuthAPI(newTestClient(t, "bad", handler)).Me(context.Background()))
	assert.Equal(t, 1, calls)

	u := NewAuthAPI(newTestClient(t, "good", handler)).Me(context.Background())
	require.NotNil(t, u)
	assert.Equal(t, api.RoleDoctor, u.Role)
}

func TestAuthAPI_RegisterAndLogin(t *testing.T) {
	c := newTestClient(t, "stale", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get(api.AuthHeader))
		switch r.URL.Path {
		case api.PathRegister:
			var req api.RegisterRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			if req.Username == "taken" {
				w.WriteHeader(http.StatusConflict)
				io.WriteString(w, "El usuario ya existe")
				return
			}
			io.WriteString(w, `{"id":9,"username":"`+req.Username+`","role":"`+string(req.Role)+`","patientId":3}`)
		case api.PathLogin:
			io.WriteString(w, `{"token":"t-9","user":{"id":9,"username":"anna","role":"PATIENT","patientId":3}}`)
		}
	})
	auth := NewAuthAPI(c)

	u, err := auth.Register(context.Background(), api.RegisterRequest{Username: "anna", Password: "x", Role: api.RolePatient})
	require.NoError(t, err)
	assert.Equal(t, int64(9), u.ID)
	require.NotNil(t, u.PatientID)
	assert.Equal(t, int64(3), *u.PatientID)

	_, err = auth.Register(context.Background(), api.RegisterRequest{Username: "taken", Password: "x", Role: api.RoleStaff})
	assert.EqualError(t, err, "El usuario ya existe")

	lr, err := auth.Login(context.Background(), "anna", "x")
	require.NoError(t, err)
	assert.Equal(t, "t-9", lr.Token)
	assert.Equal(t, "anna", lr.User.Username)
}

func TestJournalAPI_Paths(t *testing.T) {
	var paths []string
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.EscapedPath())
		switch r.URL.EscapedPath() {
		case api.PathNoteByName:
			var req api.CreateNoteRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Anna Svensson", req.PatientName)
			io.WriteString(w, `{"id":5,"patientId":2,"notes":"`+req.NoteText+`","startTime":"2025-11-09T10:00:00"}`)
		case api.PathConditionByName:
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"patientName":"Anna Svensson","code":"J45","display":"Astma","onsetDate":null}`, string(body))
			io.WriteString(w, `{"id":6,"patientId":2,"code":"J45","display":"Astma"}`)
		default:
			io.WriteString(w, `{"patient":{"id":2,"name":"Anna Svensson"},"notes":[],"conditions":[]}`)
		}
	})
	j := NewJournalAPI(c)
	ctx := context.Background()

	rec, err := j.MyRecord(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Anna Svensson", rec.Patient.Name)

	_, err = j.RecordByName(ctx, "Anna Svensson")
	require.NoError(t, err)

	n, err := j.AddNote(ctx, "Anna Svensson", "Kontroll")
	require.NoError(t, err)
	assert.Equal(t, "Kontroll", n.Notes)

	cond, err := j.AddCondition(ctx, api.CreateConditionRequest{PatientName: "Anna Svensson", Code: "J45", Display: "Astma"})
	require.NoError(t, err)
	assert.Equal(t, "J45", cond.Code)

	assert.Equal(t, []string{
		api.PathMyRecord,
		"/api/patients/Anna%20Svensson/full",
		api.PathNoteByName,
		api.PathConditionByName,
	}, paths)
}

func TestJournalAPI_RawBodyIsNotARecord(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "OK")
	})
	_, err := NewJournalAPI(c).MyRecord(context.Background())
	assert.ErrorIs(t, err, ErrNotStructured)
}

func TestMessageAPI(t *testing.T) {
	c := newTestClient(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case api.PathContacts:
			io.WriteString(w, `[{"id":1,"username":"dr1364","role":"DOCTOR"}]`)
		case api.ThreadPath(1):
			io.WriteString(w, `null`)
		case api.PathMessages:
			io.WriteString(w, `{"id":11,"senderId":2,"receiverId":1,"senderName":"anna","content":"hej","sentAt":"2025-11-09T10:00:00"}`)
		}
	})
	m := NewMessageAPI(c)
	ctx := context.Background()

	contacts, err := m.Contacts(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, api.RoleDoctor, contacts[0].Role)

	thread, err := m.Thread(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, thread)
	assert.NotNil(t, thread)

	sent, err := m.Send(ctx, api.SendMessageRequest{ReceiverID: 1, Content: "hej"})
	require.NoError(t, err)
	assert.Equal(t, int64(11), sent.ID)
}
