package client

import (
	"context"
	"io"
	"strings"
	"time"

	"journal/pkg/api"
	"journal/pkg/rest"
)

// MyJournalView muestra el historial del paciente autenticado. Se carga
// al montarse.
type MyJournalView struct {
	lifetime
	journal *rest.JournalAPI
	state   fetch[*api.PatientRecord]
}

func NewMyJournalView(ctx context.Context, journal *rest.JournalAPI) *MyJournalView {
	v := &MyJournalView{lifetime: mount(ctx), journal: journal}
	v.Load()
	return v
}

func (v *MyJournalView) Load() {
	run(v.ctx, &v.state, "No se pudo cargar el historial", v.journal.MyRecord)
}

func (v *MyJournalView) Render(w io.Writer) {
	titleColor.Fprintln(w, "Mi historial")
	switch v.state.Phase {
	case Loading:
		dimColor.Fprintln(w, "Cargando historial...")
	case Failed:
		errorColor.Fprintln(w, v.state.Err)
	case Ready:
		renderRecord(w, v.state.Data)
	}
}

// RecordViewer busca el historial de un paciente por nombre.
type RecordViewer struct {
	lifetime
	journal *rest.JournalAPI
	state   fetch[*api.PatientRecord]
}

func NewRecordViewer(ctx context.Context, journal *rest.JournalAPI) *RecordViewer {
	return &RecordViewer{lifetime: mount(ctx), journal: journal}
}

// Search no llama al servidor si el nombre está vacío.
func (v *RecordViewer) Search(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		v.state.fail("Escribe un nombre de paciente.")
		return
	}
	run(v.ctx, &v.state, "No se pudo cargar el historial del paciente", func(ctx context.Context) (*api.PatientRecord, error) {
		return v.journal.RecordByName(ctx, name)
	})
}

func (v *RecordViewer) Render(w io.Writer) {
	titleColor.Fprintln(w, "Historial de paciente")
	switch v.state.Phase {
	case Idle:
		dimColor.Fprintln(w, "Busca un paciente para ver su historial.")
	case Loading:
		dimColor.Fprintln(w, "Buscando paciente...")
	case Failed:
		errorColor.Fprintln(w, v.state.Err)
	case Ready:
		renderRecord(w, v.state.Data)
	}
}

// NotesPage permite a médicos y personal añadir notas y diagnósticos a un
// paciente identificado por su nombre.
type NotesPage struct {
	lifetime
	journal     *rest.JournalAPI
	PatientName string
	note        fetch[*api.Note]
	diagnosis   fetch[*api.Condition]
}

func NewNotesPage(ctx context.Context, journal *rest.JournalAPI) *NotesPage {
	return &NotesPage{lifetime: mount(ctx), journal: journal}
}

func (p *NotesPage) SaveNote(text string) {
	p.diagnosis = fetch[*api.Condition]{}
	run(p.ctx, &p.note, "No se pudo guardar la nota", func(ctx context.Context) (*api.Note, error) {
		return p.journal.AddNote(ctx, p.PatientName, text)
	})
}

// SaveDiagnosis envía onsetDate como null si no se indica. Una fecha que
// no sea AAAA-MM-DD se rechaza sin llamar al servidor.
func (p *NotesPage) SaveDiagnosis(code, display, onset string) {
	p.note = fetch[*api.Note]{}
	req := api.CreateConditionRequest{PatientName: p.PatientName, Code: code, Display: display}
	if onset = strings.TrimSpace(onset); onset != "" {
		if _, err := time.Parse("2006-01-02", onset); err != nil {
			p.diagnosis.fail("Fecha de inicio no válida, usa AAAA-MM-DD.")
			return
		}
		req.OnsetDate = &onset
	}
	run(p.ctx, &p.diagnosis, "No se pudo guardar el diagnóstico", func(ctx context.Context) (*api.Condition, error) {
		return p.journal.AddCondition(ctx, req)
	})
}

func (p *NotesPage) Render(w io.Writer) {
	titleColor.Fprintln(w, "Notas y diagnósticos")
	infoColor.Fprintf(w, "Paciente: %s\n", orDash(p.PatientName))
	switch {
	case p.note.Phase == Loading || p.diagnosis.Phase == Loading:
		dimColor.Fprintln(w, "Guardando...")
	case p.note.Phase == Failed:
		errorColor.Fprintln(w, p.note.Err)
	case p.diagnosis.Phase == Failed:
		errorColor.Fprintln(w, p.diagnosis.Err)
	case p.note.Phase == Ready:
		successColor.Fprintln(w, "Nota guardada.")
	case p.diagnosis.Phase == Ready:
		successColor.Fprintln(w, "Diagnóstico guardado.")
	}
}
