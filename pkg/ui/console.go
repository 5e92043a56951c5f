// El paquete ui agrupa la entrada y salida de la terminal: menús,
// preguntas, contraseñas y mensajes en color.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
)

// Console lee de in y escribe en out. Cuando in es una terminal las
// contraseñas se leen sin eco.
type Console struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
	eof bool
}

func NewConsole(in io.Reader, out io.Writer) *Console {
	fd := -1
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd = int(f.Fd())
	}
	return &Console{in: bufio.NewReader(in), out: out, fd: fd}
}

func (c *Console) Out() io.Writer { return c.out }

func (c *Console) IsTerminal() bool { return c.fd >= 0 }

// EOF indica que la entrada se ha agotado.
func (c *Console) EOF() bool { return c.eof }

func (c *Console) ClearScreen() {
	if c.IsTerminal() {
		fmt.Fprint(c.out, "\033[H\033[2J")
	}
}

func (c *Console) Title(msg string)   { titleColor.Fprintln(c.out, msg) }
func (c *Console) Error(msg string)   { errorColor.Fprintln(c.out, msg) }
func (c *Console) Success(msg string) { successColor.Fprintln(c.out, msg) }
func (c *Console) Info(msg string)    { infoColor.Fprintln(c.out, msg) }
func (c *Console) Dim(msg string)     { dimColor.Fprintln(c.out, msg) }

func (c *Console) readLine() string {
	line, err := c.in.ReadString('\n')
	if err != nil {
		c.eof = true
	}
	return strings.TrimRight(line, "\r\n")
}

// ReadInput muestra prompt y devuelve la línea leída sin espacios en los
// extremos.
func (c *Console) ReadInput(prompt string) string {
	fmt.Fprintf(c.out, "%s: ", prompt)
	return strings.TrimSpace(c.readLine())
}

// ReadText devuelve la línea tal cual, para textos libres.
func (c *Console) ReadText(prompt string) string {
	fmt.Fprintf(c.out, "%s: ", prompt)
	return c.readLine()
}

// ReadInt devuelve -1 si lo leído no es un número.
func (c *Console) ReadInt(prompt string) int {
	n, err := strconv.Atoi(c.ReadInput(prompt))
	if err != nil {
		return -1
	}
	return n
}

// PrintMenu muestra las opciones numeradas desde 1 y repite la pregunta
// hasta recibir una opción válida. Si la entrada se agota devuelve la
// última opción, que por convención es salir o volver.
func (c *Console) PrintMenu(title string, options []string) int {
	c.Title(title)
	for i, o := range options {
		fmt.Fprintf(c.out, "%d. %s\n", i+1, o)
	}
	for {
		choice := c.ReadInt("Selecciona una opción")
		if choice >= 1 && choice <= len(options) {
			return choice
		}
		if c.eof {
			return len(options)
		}
		c.Error("Opción no válida")
	}
}

func (c *Console) Confirm(prompt string) bool {
	switch strings.ToLower(c.ReadInput(prompt + " (s/n)")) {
	case "s", "si", "sí", "y", "yes":
		return true
	}
	return false
}

func (c *Console) Pause(msg string) {
	fmt.Fprint(c.out, msg)
	c.readLine()
	fmt.Fprintln(c.out)
}

// ReadPassword lee sin eco en una terminal y como una línea normal en
// cualquier otro caso.
func (c *Console) ReadPassword(prompt string) string {
	if !c.IsTerminal() {
		return c.ReadText(prompt)
	}
	fmt.Fprintf(c.out, "%s: ", prompt)
	b, err := term.ReadPassword(c.fd)
	fmt.Fprintln(c.out)
	if err != nil {
		c.eof = true
		return ""
	}
	return string(b)
}
