package rest

import (
	"context"
	"net/http"

	"journal/pkg/api"
)

type MessageAPI struct {
	c *Client
}

func NewMessageAPI(c *Client) *MessageAPI { return &MessageAPI{c: c} }

// Contacts lista los usuarios con los que se puede conversar; el servidor
// decide cuáles según el rol.
func (m *MessageAPI) Contacts(ctx context.Context) ([]api.Contact, error) {
	res, err := m.c.Request(ctx, api.PathContacts, Options{})
	if err != nil {
		return nil, err
	}
	return intoList[api.Contact](res)
}

// Thread devuelve la conversación en el orden que dé el servidor
// (cronológico ascendente).
func (m *MessageAPI) Thread(ctx context.Context, otherID int64) ([]api.Message, error) {
	res, err := m.c.Request(ctx, api.ThreadPath(otherID), Options{})
	if err != nil {
		return nil, err
	}
	return intoList[api.Message](res)
}

// Send devuelve el mensaje creado, con id y fecha del servidor.
func (m *MessageAPI) Send(ctx context.Context, req api.SendMessageRequest) (*api.Message, error) {
	return expect[api.Message](m.c.Request(ctx, api.PathMessages, Options{
		Method: http.MethodPost,
		Body:   req,
	}))
}

// intoList trata el cuerpo vacío o null como lista vacía.
func intoList[T any](r Result) ([]T, error) {
	list, err := Into[[]T](r)
	if err != nil {
		return nil, err
	}
	if list == nil {
		return []T{}, nil
	}
	return *list, nil
}
