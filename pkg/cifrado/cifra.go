// El paquete cifrado protege en reposo los datos pequeños y sensibles
// (el token de sesión) con un cifrador en flujo y una etiqueta HMAC.
package cifrado

import (
	"bytes"
	"compress/zlib"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/salsa20"
	"golang.org/x/crypto/twofish"
)

var (
	ErrUnsupported = errors.New("algoritmo no soportado")
	ErrCorrupt     = errors.New("datos cifrados corruptos o clave incorrecta")
)

// Algoritmos admitidos.
const (
	AES256   = "AES256"
	TWOFISH  = "TWOFISH"
	BLOWFISH = "BLOWFISH"
	SALSA20  = "SALSA20"
)

const tagSize = sha256.Size

// salsaStream adapta salsa20 a cipher.Stream. Cada llamada reinicia el
// flujo, así que sólo se llama una vez por mensaje.
type salsaStream struct {
	nonce []byte
	key   [32]byte
}

func (s *salsaStream) XORKeyStream(dst, src []byte) {
	salsa20.XORKeyStream(dst, src, s.nonce, &s.key)
}

// Sealer cifra y descifra con una clave derivada de una contraseña.
type Sealer struct {
	algorithm string
	key       []byte
	macKey    []byte
	compress  bool
}

// NewSealer deriva las claves de cifrado y de HMAC a partir de keyStr.
func NewSealer(keyStr, algorithm string, compress bool) (*Sealer, error) {
	if keyStr == "" {
		return nil, errors.New("la clave de cifrado está vacía")
	}
	algorithm = strings.ToUpper(algorithm)
	if _, err := nonceSize(algorithm); err != nil {
		return nil, err
	}
	key := sha256.Sum256([]byte(keyStr))
	mac := sha256.Sum256([]byte("<hmac>" + keyStr))
	return &Sealer{
		algorithm: algorithm,
		key:       key[:],
		macKey:    mac[:],
		compress:  compress,
	}, nil
}

func (s *Sealer) Algorithm() string { return s.algorithm }

func nonceSize(algorithm string) (int, error) {
	switch algorithm {
	case AES256, TWOFISH:
		return 16, nil
	case BLOWFISH:
		return 8, nil
	case SALSA20:
		return 24, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrUnsupported, algorithm)
}

func (s *Sealer) stream(nonce []byte) (cipher.Stream, error) {
	switch s.algorithm {
	case AES256:
		block, err := aes.NewCipher(s.key)
		if err != nil {
			return nil, err
		}
		return cipher.NewCTR(block, nonce), nil
	case TWOFISH:
		block, err := twofish.NewCipher(s.key)
		if err != nil {
			return nil, err
		}
		return cipher.NewCTR(block, nonce), nil
	case BLOWFISH:
		block, err := blowfish.NewCipher(s.key)
		if err != nil {
			return nil, err
		}
		return cipher.NewCTR(block, nonce), nil
	case SALSA20:
		st := &salsaStream{nonce: append([]byte(nil), nonce...)}
		copy(st.key[:], s.key)
		return st, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, s.algorithm)
}

// Seal devuelve nonce || texto cifrado || HMAC-SHA256.
func (s *Sealer) Seal(data []byte) ([]byte, error) {
	plain := data
	if s.compress {
		var b bytes.Buffer
		w := zlib.NewWriter(&b)
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		plain = b.Bytes()
	}

	n, _ := nonceSize(s.algorithm)
	out := make([]byte, n+len(plain), n+len(plain)+tagSize)
	if _, err := rand.Read(out[:n]); err != nil {
		return nil, fmt.Errorf("generando nonce: %w", err)
	}
	st, err := s.stream(out[:n])
	if err != nil {
		return nil, err
	}
	st.XORKeyStream(out[n:], plain)
	return append(out, s.tag(out)...), nil
}

// Open verifica la etiqueta y descifra lo producido por Seal.
func (s *Sealer) Open(data []byte) ([]byte, error) {
	n, _ := nonceSize(s.algorithm)
	if len(data) < n+tagSize {
		return nil, ErrCorrupt
	}
	body, tag := data[:len(data)-tagSize], data[len(data)-tagSize:]
	if !hmac.Equal(tag, s.tag(body)) {
		return nil, ErrCorrupt
	}
	st, err := s.stream(body[:n])
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(body)-n)
	st.XORKeyStream(plain, body[n:])
	if !s.compress {
		return plain, nil
	}
	r, err := zlib.NewReader(bytes.NewReader(plain))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *Sealer) tag(body []byte) []byte {
	h := hmac.New(sha256.New, s.macKey)
	h.Write(body)
	return h.Sum(nil)
}
