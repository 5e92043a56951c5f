package client

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"journal/pkg/api"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
	ownColor     = color.New(color.FgHiBlue)
)

// renderRecord pinta datos del paciente, notas y diagnósticos.
func renderRecord(w io.Writer, rec *api.PatientRecord) {
	p := rec.Patient
	headerColor.Fprintf(w, "Paciente: %s\n", orDash(p.Name))
	fmt.Fprintf(w, "  Personnummer: %s\n", orDash(p.Personnummer))
	fmt.Fprintf(w, "  Fecha de nacimiento: %s\n", orDash(p.BirthDate))
	fmt.Fprintf(w, "  Sexo: %s\n", orDash(p.Gender))
	fmt.Fprintf(w, "  Contacto: %s\n", orDash(p.ContactInfo))

	headerColor.Fprintln(w, "\nNotas")
	if len(rec.Notes) == 0 {
		dimColor.Fprintln(w, "  Sin notas.")
	}
	for _, n := range rec.Notes {
		fmt.Fprintf(w, "  [%s] %s\n", strings.Replace(n.StartTime, "T", " ", 1), n.Notes)
	}

	headerColor.Fprintln(w, "\nDiagnósticos")
	if len(rec.Conditions) == 0 {
		dimColor.Fprintln(w, "  Sin diagnósticos.")
	}
	for _, c := range rec.Conditions {
		line := fmt.Sprintf("  %s - %s", c.Code, c.Display)
		if c.OnsetDate != "" {
			line += " (desde " + c.OnsetDate + ")"
		}
		fmt.Fprintln(w, line)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
