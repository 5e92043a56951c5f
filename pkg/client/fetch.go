package client

import (
	"context"
	"strings"
)

// Phase es el estado de una petición de una vista.
type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "cargando"
	case Ready:
		return "listo"
	case Failed:
		return "error"
	}
	return "inactivo"
}

// fetch guarda el estado local de una petición: fase, datos y error.
type fetch[T any] struct {
	Phase Phase
	Data  T
	Err   string
}

// start vuelve a Loading y descarta datos y error anteriores.
func (f *fetch[T]) start() {
	var zero T
	f.Phase, f.Data, f.Err = Loading, zero, ""
}

func (f *fetch[T]) fail(msg string) {
	var zero T
	f.Phase, f.Data, f.Err = Failed, zero, msg
}

// run hace la llamada y aplica el resultado solo si la vista sigue
// montada. Devuelve true si el resultado se aplicó y fue correcto.
func run[T any](ctx context.Context, f *fetch[T], fallback string, call func(context.Context) (T, error)) bool {
	f.start()
	v, err := call(ctx)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		f.fail(errorText(err, fallback))
		return false
	}
	f.Phase, f.Data = Ready, v
	return true
}

// errorText devuelve el texto más concreto del error o fallback si no
// tiene ninguno.
func errorText(err error, fallback string) string {
	if err == nil {
		return ""
	}
	if msg := strings.TrimSpace(err.Error()); msg != "" {
		return msg
	}
	return fallback
}

// lifetime ata las peticiones de una vista a su montaje. Close la desmonta
// y los resultados que lleguen después se descartan.
type lifetime struct {
	ctx    context.Context
	cancel context.CancelFunc
}

func mount(parent context.Context) lifetime {
	ctx, cancel := context.WithCancel(parent)
	return lifetime{ctx: ctx, cancel: cancel}
}

func (l lifetime) Close() { l.cancel() }

// Mounted indica si la vista sigue montada.
func (l lifetime) Mounted() bool { return l.ctx.Err() == nil }
