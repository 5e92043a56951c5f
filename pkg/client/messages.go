package client

import (
	"context"
	"fmt"
	"io"
	"strings"

	"journal/pkg/api"
	"journal/pkg/rest"
)

// MessagesView lista los contactos al montarse y muestra la conversación
// con el contacto elegido.
type MessagesView struct {
	lifetime
	messages *rest.MessageAPI
	me       api.User
	contacts fetch[[]api.Contact]
	selected *api.Contact
	thread   fetch[[]api.Message]
	sendErr  string
}

func NewMessagesView(ctx context.Context, messages *rest.MessageAPI, me api.User) *MessagesView {
	v := &MessagesView{lifetime: mount(ctx), messages: messages, me: me}
	v.LoadContacts()
	return v
}

func (v *MessagesView) LoadContacts() {
	run(v.ctx, &v.contacts, "No se pudieron cargar los contactos", v.messages.Contacts)
}

// Contacts devuelve la lista cargada (vacía si aún no hay).
func (v *MessagesView) Contacts() []api.Contact { return v.contacts.Data }

func (v *MessagesView) Selected() *api.Contact { return v.selected }

// Thread devuelve los mensajes mostrados.
func (v *MessagesView) Thread() []api.Message { return v.thread.Data }

// Open selecciona el contacto y carga la conversación.
func (v *MessagesView) Open(c api.Contact) {
	v.selected = &c
	v.sendErr = ""
	run(v.ctx, &v.thread, "No se pudieron cargar los mensajes", func(ctx context.Context) ([]api.Message, error) {
		return v.messages.Thread(ctx, c.ID)
	})
}

// Send no hace nada sin contacto o con texto vacío. Si el servidor acepta
// el mensaje, añade a la conversación el registro que devuelve.
func (v *MessagesView) Send(text string) bool {
	text = strings.TrimSpace(text)
	if v.selected == nil || text == "" {
		return false
	}
	v.sendErr = ""
	to := v.selected.ID
	m, err := v.messages.Send(v.ctx, api.SendMessageRequest{ReceiverID: to, Content: text})
	if !v.Mounted() || v.selected == nil || v.selected.ID != to {
		return false
	}
	if err != nil {
		v.sendErr = errorText(err, "No se pudo enviar el mensaje")
		return false
	}
	v.thread.Data = append(v.thread.Data, *m)
	return true
}

func (v *MessagesView) hint() string {
	if v.me.Role == api.RolePatient {
		return "Puedes escribir a médicos y personal."
	}
	return "Puedes escribir a pacientes."
}

func (v *MessagesView) Render(w io.Writer) {
	titleColor.Fprintln(w, "Mensajes")
	dimColor.Fprintln(w, v.hint())

	switch v.contacts.Phase {
	case Loading:
		dimColor.Fprintln(w, "Cargando contactos...")
	case Failed:
		errorColor.Fprintln(w, v.contacts.Err)
	case Ready:
		if len(v.contacts.Data) == 0 {
			dimColor.Fprintln(w, "No hay contactos disponibles.")
		}
		for i, c := range v.contacts.Data {
			mark := " "
			if v.selected != nil && v.selected.ID == c.ID {
				mark = ">"
			}
			fmt.Fprintf(w, "%s %d. %s (%s)\n", mark, i+1, c.Username, c.Role)
		}
	}
	fmt.Fprintln(w)

	if v.sendErr != "" {
		errorColor.Fprintln(w, v.sendErr)
	}
	if v.selected == nil {
		dimColor.Fprintln(w, "Elige un contacto para ver los mensajes.")
		return
	}
	headerColor.Fprintf(w, "Conversación con %s (%s)\n", v.selected.Username, v.selected.Role)
	if v.thread.Phase == Loading {
		dimColor.Fprintln(w, "Cargando mensajes...")
		return
	}
	// el error de carga no oculta la lista: lo enviado después sigue visible
	if v.thread.Phase == Failed {
		errorColor.Fprintln(w, v.thread.Err)
	}
	if v.thread.Phase == Failed || v.thread.Phase == Ready {
		if len(v.thread.Data) == 0 {
			dimColor.Fprintln(w, "Todavía no hay mensajes.")
		}
		for _, m := range v.thread.Data {
			stamp := strings.Replace(m.SentAt, "T", " ", 1)
			if m.SenderID == v.me.ID {
				ownColor.Fprintf(w, "  » %s (tú) • %s\n    %s\n", m.SenderName, stamp, m.Content)
			} else {
				fmt.Fprintf(w, "  %s • %s\n    %s\n", m.SenderName, stamp, m.Content)
			}
		}
	}
}
