package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotStructured indica que se esperaba JSON y llegó texto.
var ErrNotStructured = errors.New("respuesta no estructurada")

// ErrEmpty indica que se esperaba un objeto y el cuerpo llegó vacío.
var ErrEmpty = errors.New("respuesta vacía del servidor")

type Kind int

const (
	Empty Kind = iota
	Structured
	Raw
)

func (k Kind) String() string {
	switch k {
	case Structured:
		return "structured"
	case Raw:
		return "raw"
	}
	return "empty"
}

// Result es el cuerpo de una respuesta exitosa: JSON válido, texto en
// crudo o nada.
type Result struct {
	Kind Kind
	JSON json.RawMessage
	Text string
}

func classify(body []byte) Result {
	switch {
	case len(body) == 0:
		return Result{Kind: Empty}
	case json.Valid(body):
		return Result{Kind: Structured, JSON: json.RawMessage(body)}
	default:
		return Result{Kind: Raw, Text: string(body)}
	}
}

// Into decodifica un resultado en T. Un cuerpo vacío o un null JSON dan
// (nil, nil); el texto en crudo da ErrNotStructured.
func Into[T any](r Result) (*T, error) {
	switch r.Kind {
	case Empty:
		return nil, nil
	case Raw:
		return nil, fmt.Errorf("%w: %q", ErrNotStructured, shorten(r.Text, 80))
	}
	if bytes.Equal(bytes.TrimSpace(r.JSON), []byte("null")) {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(r.JSON, &v); err != nil {
		return nil, fmt.Errorf("decodificando respuesta: %w", err)
	}
	return &v, nil
}

// expect es Into para llamadas que siempre devuelven un objeto.
func expect[T any](r Result, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	v, err := Into[T](r)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrEmpty
	}
	return v, nil
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
