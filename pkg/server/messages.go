package server

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"journal/pkg/api"
	"journal/pkg/store"
)

// contacts: un paciente ve a médicos y personal; el resto ve a los
// pacientes. Nunca a sí mismo.
func (s *Server) contacts(c *gin.Context) {
	me := currentUser(c)
	users, err := listJSON[userRecord](s, nsUsers)
	if err != nil {
		s.internal(c, "listando usuarios", err)
		return
	}
	out := []api.Contact{}
	for _, u := range users {
		if u.ID == me.ID {
			continue
		}
		if (me.Role == api.RolePatient) == u.Role.Clinical() {
			out = append(out, api.Contact{ID: u.ID, Username: u.Username, Role: u.Role})
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) thread(c *gin.Context) {
	me := currentUser(c)
	otherID, err := strconv.ParseInt(c.Param("otherId"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid user id")
		return
	}
	if _, err := s.userByID(otherID); err != nil {
		if store.IsNotFound(err) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}
		s.internal(c, "buscando usuario", err)
		return
	}

	all, err := listJSON[api.Message](s, nsMessages)
	if err != nil {
		s.internal(c, "listando mensajes", err)
		return
	}
	out := []api.Message{}
	for _, m := range all {
		if (m.SenderID == me.ID && m.ReceiverID == otherID) || (m.SenderID == otherID && m.ReceiverID == me.ID) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SentAt != out[j].SentAt {
			return out[i].SentAt < out[j].SentAt
		}
		return out[i].ID < out[j].ID
	})
	c.JSON(http.StatusOK, out)
}

func (s *Server) send(c *gin.Context) {
	me := currentUser(c)
	var req api.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ReceiverID == 0 || strings.TrimSpace(req.Content) == "" {
		fail(c, http.StatusBadRequest, "receiverId and content are required")
		return
	}
	if req.ReceiverID == me.ID {
		fail(c, http.StatusBadRequest, "Cannot send a message to yourself")
		return
	}
	receiver, err := s.userByID(req.ReceiverID)
	if err != nil {
		if store.IsNotFound(err) {
			fail(c, http.StatusNotFound, "Receiver not found")
			return
		}
		s.internal(c, "buscando destinatario", err)
		return
	}

	id, err := s.db.NextID(nsMessages)
	if err != nil {
		s.internal(c, "asignando id de mensaje", err)
		return
	}
	m := api.Message{
		ID:           id,
		SenderID:     me.ID,
		ReceiverID:   receiver.ID,
		SenderName:   me.Username,
		ReceiverName: receiver.Username,
		Content:      strings.TrimSpace(req.Content),
		SentAt:       s.now().Format(timeLayout),
	}
	if err := s.putJSON(nsMessages, idKey(id), m); err != nil {
		s.internal(c, "guardando mensaje", err)
		return
	}
	s.log.Printf("Mensaje %d de %s a %s", id, me.Username, receiver.Username)
	c.JSON(http.StatusOK, m)
}
