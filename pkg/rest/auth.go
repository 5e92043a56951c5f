package rest

import (
	"context"
	"net/http"

	"journal/pkg/api"
)

type AuthAPI struct {
	c *Client
}

func NewAuthAPI(c *Client) *AuthAPI { return &AuthAPI{c: c} }

// Login no envía la cabecera de autenticación.
func (a *AuthAPI) Login(ctx context.Context, username, password string) (*api.LoginResponse, error) {
	return expect[api.LoginResponse](a.c.Request(ctx, api.PathLogin, Options{
		Method: http.MethodPost,
		Body:   api.LoginRequest{Username: username, Password: password},
		NoAuth: true,
	}))
}

// Register devuelve {id, username, role, patientId}.
func (a *AuthAPI) Register(ctx context.Context, req api.RegisterRequest) (*api.User, error) {
	return expect[api.User](a.c.Request(ctx, api.PathRegister, Options{
		Method: http.MethodPost,
		Body:   req,
		NoAuth: true,
	}))
}

// Me devuelve el usuario de la sesión. Sin token, o ante cualquier fallo,
// devuelve nil en lugar de un error.
func (a *AuthAPI) Me(ctx context.Context) *api.User {
	if a.c.token() == "" {
		return nil
	}
	u, err := expect[api.User](a.c.Request(ctx, api.PathMe, Options{}))
	if err != nil {
		a.c.log.Printf("Sesión no válida en /me: %v", err)
		return nil
	}
	return u
}

// Logout revoca el token en el servidor.
func (a *AuthAPI) Logout(ctx context.Context) error {
	if a.c.token() == "" {
		return nil
	}
	_, err := a.c.Request(ctx, api.PathLogout, Options{Method: http.MethodPost})
	return err
}
