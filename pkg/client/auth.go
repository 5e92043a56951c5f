package client

import (
	"context"
	"errors"
	"io"

	"journal/pkg/api"
	"journal/pkg/rest"
	"journal/pkg/session"
)

var errInvalidLogin = errors.New("Respuesta de login no válida")

// LoginView pide credenciales y crea la sesión local.
type LoginView struct {
	lifetime
	auth  *rest.AuthAPI
	sess  *session.Session
	state fetch[*api.User]
}

func NewLoginView(ctx context.Context, auth *rest.AuthAPI, sess *session.Session) *LoginView {
	return &LoginView{lifetime: mount(ctx), auth: auth, sess: sess}
}

// Submit hace login y, si el servidor devuelve un token y un rol válidos,
// guarda la sesión. Devuelve el usuario autenticado o nil.
func (v *LoginView) Submit(username, password string) *api.User {
	var lr *api.LoginResponse
	ok := run(v.ctx, &v.state, "Login fallido", func(ctx context.Context) (*api.User, error) {
		resp, err := v.auth.Login(ctx, username, password)
		if err != nil {
			return nil, err
		}
		if resp.Token == "" || !resp.User.Role.Valid() {
			return nil, errInvalidLogin
		}
		lr = resp
		return &resp.User, nil
	})
	if !ok {
		return nil
	}
	if err := v.sess.Save(lr.Token, lr.User); err != nil {
		v.state.fail("No se pudo guardar la sesión: " + err.Error())
		return nil
	}
	return v.state.Data
}

func (v *LoginView) Render(w io.Writer) {
	switch v.state.Phase {
	case Loading:
		dimColor.Fprintln(w, "Iniciando sesión...")
	case Failed:
		errorColor.Fprintln(w, v.state.Err)
	case Ready:
		successColor.Fprintf(w, "Inicio de sesión exitoso. Hola, %s.\n", v.state.Data.Username)
	}
}

// RegisterView crea cuentas nuevas.
type RegisterView struct {
	lifetime
	auth  *rest.AuthAPI
	state fetch[*api.User]
}

func NewRegisterView(ctx context.Context, auth *rest.AuthAPI) *RegisterView {
	return &RegisterView{lifetime: mount(ctx), auth: auth}
}

func (v *RegisterView) Submit(req api.RegisterRequest) bool {
	return run(v.ctx, &v.state, "Registro fallido", func(ctx context.Context) (*api.User, error) {
		return v.auth.Register(ctx, req)
	})
}

func (v *RegisterView) Render(w io.Writer) {
	switch v.state.Phase {
	case Loading:
		dimColor.Fprintln(w, "Creando cuenta...")
	case Failed:
		errorColor.Fprintln(w, v.state.Err)
	case Ready:
		successColor.Fprintln(w, "Cuenta creada. Ya puedes iniciar sesión.")
	}
}
