package rest

import (
	"context"
	"net/http"

	"journal/pkg/api"
)

type JournalAPI struct {
	c *Client
}

func NewJournalAPI(c *Client) *JournalAPI { return &JournalAPI{c: c} }

// MyRecord devuelve el historial del paciente de la sesión.
func (j *JournalAPI) MyRecord(ctx context.Context) (*api.PatientRecord, error) {
	return expect[api.PatientRecord](j.c.Request(ctx, api.PathMyRecord, Options{}))
}

// RecordByName busca un historial por nombre de paciente.
func (j *JournalAPI) RecordByName(ctx context.Context, name string) (*api.PatientRecord, error) {
	return expect[api.PatientRecord](j.c.Request(ctx, api.RecordByNamePath(name), Options{}))
}

func (j *JournalAPI) AddNote(ctx context.Context, patientName, text string) (*api.Note, error) {
	return expect[api.Note](j.c.Request(ctx, api.PathNoteByName, Options{
		Method: http.MethodPost,
		Body:   api.CreateNoteRequest{PatientName: patientName, NoteText: text},
	}))
}

func (j *JournalAPI) AddCondition(ctx context.Context, req api.CreateConditionRequest) (*api.Condition, error) {
	return expect[api.Condition](j.c.Request(ctx, api.PathConditionByName, Options{
		Method: http.MethodPost,
		Body:   req,
	}))
}
