package server

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"journal/pkg/api"
	"journal/pkg/store"
)

var errPatientNotFound = errors.New("paciente no encontrado")

// createPatient da de alta un paciente y lo indexa por nombre. Se llama
// con s.mu tomado.
func (s *Server) createPatient(p api.Patient) (*api.Patient, error) {
	if _, err := s.db.Get(nsPatientNames, []byte(p.Name)); err == nil {
		return nil, fmt.Errorf("ya existe un paciente llamado %q", p.Name)
	}
	id, err := s.db.NextID(nsPatients)
	if err != nil {
		return nil, err
	}
	p.ID = id
	if err := s.putJSON(nsPatients, idKey(id), p); err != nil {
		return nil, err
	}
	if err := s.db.Put(nsPatientNames, []byte(p.Name), idKey(id)); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Server) patientByName(name string) (*api.Patient, error) {
	key, err := s.db.Get(nsPatientNames, []byte(name))
	if err != nil {
		if store.IsNotFound(err) {
			return nil, errPatientNotFound
		}
		return nil, err
	}
	var p api.Patient
	if err := s.getJSON(nsPatients, key, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Server) patientByID(id int64) (*api.Patient, error) {
	var p api.Patient
	if err := s.getJSON(nsPatients, idKey(id), &p); err != nil {
		if store.IsNotFound(err) {
			return nil, errPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

// childKey ordena notas y diagnósticos por paciente y después por id.
func childKey(patientID, id int64) []byte {
	return []byte(fmt.Sprintf("%020d/%020d", patientID, id))
}

func listByPatient[T any](s *Server, ns string, patientID int64) ([]T, error) {
	keys, err := s.db.ListKeys(ns)
	if err != nil && !errors.Is(err, store.ErrBucketNotFound) {
		return nil, err
	}
	prefix := []byte(fmt.Sprintf("%020d/", patientID))
	out := []T{}
	for _, k := range keys {
		if !bytes.HasPrefix(k, prefix) {
			continue
		}
		var v T
		if err := s.getJSON(ns, k, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Server) record(p *api.Patient) (*api.PatientRecord, error) {
	notes, err := listByPatient[api.Note](s, nsNotes, p.ID)
	if err != nil {
		return nil, err
	}
	conds, err := listByPatient[api.Condition](s, nsConditions, p.ID)
	if err != nil {
		return nil, err
	}
	return &api.PatientRecord{Patient: *p, Notes: notes, Conditions: conds}, nil
}

func (s *Server) writeRecord(c *gin.Context, p *api.Patient, err error) {
	if errors.Is(err, errPatientNotFound) {
		fail(c, http.StatusNotFound, "Patient not found")
		return
	}
	if err != nil {
		s.internal(c, "leyendo paciente", err)
		return
	}
	rec, err := s.record(p)
	if err != nil {
		s.internal(c, "leyendo historial", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) myRecord(c *gin.Context) {
	u := currentUser(c)
	if u.Role != api.RolePatient {
		fail(c, http.StatusForbidden, "Only patients can use this")
		return
	}
	if u.PatientID == nil {
		fail(c, http.StatusBadRequest, "No patient linked to this user")
		return
	}
	p, err := s.patientByID(*u.PatientID)
	s.writeRecord(c, p, err)
}

func (s *Server) recordByName(c *gin.Context) {
	p, err := s.patientByName(c.Param("name"))
	s.writeRecord(c, p, err)
}

func (s *Server) addNote(c *gin.Context) {
	var req api.CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := s.patientByName(req.PatientName)
	if errors.Is(err, errPatientNotFound) {
		fail(c, http.StatusNotFound, "Patient not found")
		return
	} else if err != nil {
		s.internal(c, "buscando paciente", err)
		return
	}

	id, err := s.db.NextID(nsNotes)
	if err != nil {
		s.internal(c, "asignando id de nota", err)
		return
	}
	n := api.Note{ID: id, PatientID: p.ID, StartTime: s.now().Format(timeLayout), Notes: req.NoteText}
	if err := s.putJSON(nsNotes, childKey(p.ID, id), n); err != nil {
		s.internal(c, "guardando nota", err)
		return
	}
	s.log.Printf("Nota %d añadida al paciente %d por %s", id, p.ID, currentUser(c).Username)
	c.JSON(http.StatusOK, n)
}

func (s *Server) addCondition(c *gin.Context) {
	var req api.CreateConditionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	var onset string
	if req.OnsetDate != nil && strings.TrimSpace(*req.OnsetDate) != "" {
		onset = strings.TrimSpace(*req.OnsetDate)
		if _, err := time.Parse("2006-01-02", onset); err != nil {
			fail(c, http.StatusBadRequest, "Invalid onsetDate, expected YYYY-MM-DD")
			return
		}
	}
	p, err := s.patientByName(req.PatientName)
	if errors.Is(err, errPatientNotFound) {
		fail(c, http.StatusNotFound, "Patient not found")
		return
	} else if err != nil {
		s.internal(c, "buscando paciente", err)
		return
	}

	id, err := s.db.NextID(nsConditions)
	if err != nil {
		s.internal(c, "asignando id de diagnóstico", err)
		return
	}
	cond := api.Condition{ID: id, PatientID: p.ID, Code: req.Code, Display: req.Display, OnsetDate: onset}
	if err := s.putJSON(nsConditions, childKey(p.ID, id), cond); err != nil {
		s.internal(c, "guardando diagnóstico", err)
		return
	}
	s.log.Printf("Diagnóstico %s añadido al paciente %d por %s", cond.Code, p.ID, currentUser(c).Username)
	c.JSON(http.StatusOK, cond)
}
