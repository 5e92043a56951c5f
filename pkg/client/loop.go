package client

import (
	"context"
	"fmt"

	"journal/pkg/api"
	"journal/pkg/ui"
)

const pauseMsg = "\nPulsa [Enter] para continuar..."

var roleNames = map[api.Role]string{
	api.RolePatient: "Paciente",
	api.RoleDoctor:  "Médico",
	api.RoleStaff:   "Personal",
}

// runLoop muestra la pantalla que toca hasta que el usuario sale, se
// cancela ctx o se agota la entrada.
func (a *App) runLoop(ctx context.Context) {
	for ctx.Err() == nil && !a.con.EOF() {
		a.con.ClearScreen()
		a.log.Printf("Pantalla: %s", a.Screen())

		var quit bool
		switch a.Screen() {
		case ScreenLogin:
			quit = a.loginScreen(ctx)
		case ScreenRegister:
			quit = a.registerScreen(ctx)
		case ScreenClinical:
			quit = a.clinicalScreen(ctx)
		case ScreenPatientJournal:
			quit = a.journalScreen(ctx)
		case ScreenMessages:
			quit = a.messagesScreen(ctx)
		}
		if quit {
			return
		}
	}
}

func (a *App) header() {
	a.con.Title(fmt.Sprintf("Sistema de historiales | %s (%s)", a.me.Username, a.me.Role))
	fmt.Fprintln(a.con.Out())
}

func (a *App) loginScreen(ctx context.Context) bool {
	switch a.con.PrintMenu("Menú", []string{"Iniciar sesión", "Crear cuenta", "Salir"}) {
	case 1:
		v := NewLoginView(ctx, a.auth, a.sess)
		defer v.Close()

		a.con.ClearScreen()
		a.con.Title("Inicio de sesión")
		username := a.con.ReadInput("Nombre de usuario")
		password := a.con.ReadPassword("Contraseña")
		u := v.Submit(username, password)
		v.Render(a.con.Out())
		if u != nil {
			a.loggedIn(u)
		} else {
			a.log.Printf("ERROR iniciando sesión como %s", username)
		}
		a.con.Pause(pauseMsg)
	case 2:
		a.ShowRegister()
	case 3:
		return true
	}
	return false
}

func (a *App) registerScreen(ctx context.Context) bool {
	v := NewRegisterView(ctx, a.auth)
	defer v.Close()

	a.con.Title("Registro de usuario")
	username := a.con.ReadInput("Nombre de usuario")
	names := make([]string, len(api.Roles))
	for i, r := range api.Roles {
		names[i] = roleNames[r]
	}
	role := api.Roles[a.con.PrintMenu("Rol", names)-1]

	password, err := a.choosePassword()
	if err != nil {
		a.con.Error("Registro cancelado.")
		a.ShowLogin()
		a.con.Pause(pauseMsg)
		return false
	}

	if v.Submit(api.RegisterRequest{Username: username, Password: password, Role: role}) {
		a.log.Printf("Registro exitoso de %s (%s)", username, role)
		v.Render(a.con.Out())
		a.ShowLogin()
		a.con.Pause(pauseMsg)
		return false
	}
	v.Render(a.con.Out())
	if !a.con.Confirm("¿Intentar de nuevo?") {
		a.ShowLogin()
	}
	return false
}

// choosePassword sugiere una contraseña generada y, si no se acepta, la
// pide mostrando su fortaleza.
func (a *App) choosePassword() (string, error) {
	out := a.con.Out()
	if suggested, err := ui.GeneratePassword(12); err == nil {
		fmt.Fprintf(out, "Contraseña sugerida: %s (Fortaleza: %s)\n", suggested, ui.PasswordStrength(suggested))
		if a.con.Confirm("¿Deseas usar esta contraseña?") {
			return suggested, nil
		}
	}
	pw, err := a.con.ReadPasswordLive("Contraseña")
	if err != nil {
		return "", err
	}
	fmt.Fprintf(out, "Fortaleza: %s\n", ui.PasswordStrength(pw))
	return pw, nil
}

func (a *App) clinicalScreen(ctx context.Context) bool {
	notes := NewNotesPage(ctx, a.journal)
	defer notes.Close()
	viewer := NewRecordViewer(ctx, a.journal)
	defer viewer.Close()

	out := a.con.Out()
	for {
		a.con.ClearScreen()
		a.header()
		notes.Render(out)
		fmt.Fprintln(out)
		viewer.Render(out)
		fmt.Fprintln(out)

		switch a.con.PrintMenu("Menú", []string{
			"Buscar historial de paciente",
			"Cambiar paciente para notas",
			"Añadir nota",
			"Añadir diagnóstico",
			"Mensajes",
			"Cerrar sesión",
			"Salir",
		}) {
		case 1:
			viewer.Search(a.con.ReadInput("Nombre del paciente"))
		case 2:
			notes.PatientName = a.con.ReadInput("Nombre del paciente")
		case 3:
			a.askPatient(notes)
			notes.SaveNote(a.con.ReadText("Nota"))
		case 4:
			a.askPatient(notes)
			code := a.con.ReadInput("Código")
			display := a.con.ReadInput("Descripción")
			onset := a.con.ReadInput("Fecha de inicio (AAAA-MM-DD, opcional)")
			notes.SaveDiagnosis(code, display, onset)
		case 5:
			a.ShowMessages()
			return false
		case 6:
			a.Logout(ctx)
			return false
		case 7:
			return true
		}
	}
}

func (a *App) askPatient(notes *NotesPage) {
	if notes.PatientName == "" {
		notes.PatientName = a.con.ReadInput("Nombre del paciente")
	}
}

func (a *App) journalScreen(ctx context.Context) bool {
	v := NewMyJournalView(ctx, a.journal)
	defer v.Close()

	for {
		a.con.ClearScreen()
		a.header()
		v.Render(a.con.Out())
		fmt.Fprintln(a.con.Out())

		switch a.con.PrintMenu("Menú", []string{"Recargar historial", "Mensajes", "Cerrar sesión", "Salir"}) {
		case 1:
			v.Load()
		case 2:
			a.ShowMessages()
			return false
		case 3:
			a.Logout(ctx)
			return false
		case 4:
			return true
		}
	}
}

func (a *App) messagesScreen(ctx context.Context) bool {
	v := NewMessagesView(ctx, a.messages, *a.me)
	defer v.Close()

	for {
		a.con.ClearScreen()
		a.header()
		v.Render(a.con.Out())
		fmt.Fprintln(a.con.Out())

		switch a.con.PrintMenu("Menú", []string{
			"Abrir conversación",
			"Escribir mensaje",
			"Recargar contactos",
			"Volver al historial",
			"Cerrar sesión",
			"Salir",
		}) {
		case 1:
			n := a.con.ReadInt("Número de contacto")
			contacts := v.Contacts()
			if n < 1 || n > len(contacts) {
				a.con.Error("Contacto no válido")
				a.con.Pause(pauseMsg)
				continue
			}
			v.Open(contacts[n-1])
		case 2:
			if v.Selected() == nil {
				a.con.Info("Elige primero un contacto.")
				a.con.Pause(pauseMsg)
				continue
			}
			v.Send(a.con.ReadText("Mensaje"))
		case 3:
			v.LoadContacts()
		case 4:
			a.ShowJournal()
			return false
		case 5:
			a.Logout(ctx)
			return false
		case 6:
			return true
		}
	}
}
