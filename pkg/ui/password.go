package ui

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"github.com/nsf/termbox-go"
)

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	symbols   = "!@#$%^&*()-_=+[]{}|;:,.<>?"
)

var ErrCancelled = errors.New("entrada cancelada")

type Strength int

const (
	Weak Strength = iota
	Medium
	Strong
	VeryStrong
)

func (s Strength) String() string {
	switch s {
	case Medium:
		return "Media"
	case Strong:
		return "Fuerte"
	case VeryStrong:
		return "Muy fuerte"
	}
	return "Débil"
}

// PasswordStrength puntúa longitud (hasta 2) y variedad de caracteres
// (uno por clase).
func PasswordStrength(password string) Strength {
	score := 0
	switch {
	case len(password) >= 12:
		score += 2
	case len(password) >= 8:
		score++
	}
	for _, class := range []string{uppercase, lowercase, digits, symbols} {
		if strings.ContainsAny(password, class) {
			score++
		}
	}
	switch {
	case score >= 6:
		return VeryStrong
	case score >= 4:
		return Strong
	case score >= 3:
		return Medium
	}
	return Weak
}

func randIndex(n int) (int, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(i.Int64()), nil
}

// GeneratePassword crea una contraseña aleatoria con al menos un carácter
// de cada clase. La longitud mínima es 8.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		length = 8
	}
	classes := []string{lowercase, uppercase, digits, symbols}
	all := strings.Join(classes, "")

	pw := make([]byte, length)
	for i := range pw {
		set := all
		if i < len(classes) {
			set = classes[i]
		}
		j, err := randIndex(len(set))
		if err != nil {
			return "", err
		}
		pw[i] = set[j]
	}
	// Fisher-Yates con crypto/rand
	for i := length - 1; i > 0; i-- {
		j, err := randIndex(i + 1)
		if err != nil {
			return "", err
		}
		pw[i], pw[j] = pw[j], pw[i]
	}
	return string(pw), nil
}

// ReadPasswordLive pide la contraseña a pantalla completa mostrando su
// fortaleza mientras se escribe. Fuera de una terminal equivale a
// ReadPassword.
func (c *Console) ReadPasswordLive(prompt string) (string, error) {
	if !c.IsTerminal() {
		return c.ReadPassword(prompt), nil
	}
	if err := termbox.Init(); err != nil {
		return "", err
	}
	defer termbox.Close()

	var password []rune
	draw := func() {
		termbox.Clear(termbox.ColorDefault, termbox.ColorDefault)
		strength := PasswordStrength(string(password))
		fg := termbox.ColorRed
		switch strength {
		case Medium:
			fg = termbox.ColorYellow
		case Strong:
			fg = termbox.ColorGreen
		case VeryStrong:
			fg = termbox.ColorCyan
		}
		drawString(0, 0, prompt+": "+strings.Repeat("*", len(password)), termbox.ColorWhite)
		drawString(0, 1, "Fortaleza: "+strength.String(), fg)
		drawString(0, 3, "ENTER para confirmar, ESC para cancelar", termbox.ColorWhite)
		termbox.Flush()
	}

	draw()
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventKey:
			switch {
			case ev.Key == termbox.KeyEsc:
				return "", ErrCancelled
			case ev.Key == termbox.KeyEnter:
				return string(password), nil
			case ev.Key == termbox.KeyBackspace || ev.Key == termbox.KeyBackspace2:
				if len(password) > 0 {
					password = password[:len(password)-1]
				}
			case ev.Key == termbox.KeySpace:
				password = append(password, ' ')
			case ev.Ch != 0:
				password = append(password, ev.Ch)
			}
			draw()
		case termbox.EventResize:
			draw()
		case termbox.EventError:
			return "", ev.Err
		}
	}
}

func drawString(x, y int, s string, fg termbox.Attribute) {
	for i, r := range []rune(s) {
		termbox.SetCell(x+i, y, r, fg, termbox.ColorDefault)
	}
}
