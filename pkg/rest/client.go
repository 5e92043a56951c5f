// El paquete rest habla con el servidor de historiales: añade el token de
// sesión a cada petición, convierte las respuestas no exitosas en errores
// y clasifica los cuerpos como JSON, texto o vacío.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"journal/pkg/api"
)

// TokenSource entrega el token de la sesión actual ("" si no hay).
type TokenSource interface {
	Token() string
}

// RequestError es una respuesta con estado no exitoso. Su mensaje es el
// cuerpo de la respuesta tal cual.
type RequestError struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *RequestError) Error() string { return e.Body }

// Options describe una petición. Sin Method se usa GET; Body se envía como
// JSON. NoAuth omite la cabecera de autenticación.
type Options struct {
	Method string
	Body   any
	Header http.Header
	NoAuth bool
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     *log.Logger
}

func New(baseURL string, httpClient *http.Client, tokens TokenSource, logger *log.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		log:     logger,
	}
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// Request hace un único intento, sin reintentos ni caché.
func (c *Client) Request(ctx context.Context, path string, opts Options) (Result, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return Result{}, fmt.Errorf("codificando cuerpo de %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return Result{}, fmt.Errorf("creando petición %s %s: %w", method, path, err)
	}
	for k, vs := range opts.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if opts.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if !opts.NoAuth {
		if tok := c.token(); tok != "" {
			req.Header.Set(api.AuthHeader, tok)
		}
	}

	c.log.Printf("Enviando %s %s", method, path)
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Printf("ERROR de red en %s %s: %v", method, path, err)
		return Result{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("leyendo respuesta de %s %s: %w", method, path, err)
	}
	c.log.Printf("Respuesta %d para %s %s", resp.StatusCode, method, path)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &RequestError{Method: method, Path: path, Status: resp.StatusCode, Body: string(data)}
	}
	return classify(data), nil
}
