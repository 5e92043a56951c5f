package cifrado

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealer_RoundTrip(t *testing.T) {
	data := []byte("0f7c1f1e-6b7e-4a61-a9a3-3b1f0c9d2e11")
	for _, algo := range []string{AES256, TWOFISH, BLOWFISH, SALSA20} {
		for _, compress := range []bool{false, true} {
			s, err := NewSealer("clave maestra", algo, compress)
			require.NoError(t, err)

			sealed, err := s.Seal(data)
			require.NoError(t, err, algo)
			assert.False(t, bytes.Contains(sealed, data), "%s deja el texto en claro", algo)

			opened, err := s.Open(sealed)
			require.NoError(t, err, algo)
			assert.Equal(t, data, opened)
		}
	}
}

func TestSealer_NonceIsRandom(t *testing.T) {
	s, err := NewSealer("k", AES256, false)
	require.NoError(t, err)
	a, _ := s.Seal([]byte("token"))
	b, _ := s.Seal([]byte("token"))
	assert.NotEqual(t, a, b)
}

func TestSealer_WrongKeyOrTampered(t *testing.T) {
	s, err := NewSealer("buena", SALSA20, true)
	require.NoError(t, err)
	sealed, err := s.Seal([]byte("secreto"))
	require.NoError(t, err)

	other, err := NewSealer("mala", SALSA20, true)
	require.NoError(t, err)
	_, err = other.Open(sealed)
	assert.ErrorIs(t, err, ErrCorrupt)

	sealed[len(sealed)/2] ^= 0xff
	_, err = s.Open(sealed)
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = s.Open([]byte("corto"))
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestNewSealer_Validation(t *testing.T) {
	_, err := NewSealer("k", "RC4", false)
	assert.ErrorIs(t, err, ErrUnsupported)

	_, err = NewSealer("", AES256, false)
	assert.Error(t, err)

	s, err := NewSealer("k", "twofish", false)
	require.NoError(t, err)
	assert.Equal(t, TWOFISH, s.Algorithm())
}
