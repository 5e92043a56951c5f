// El paquete store ofrece un almacén clave/valor organizado en espacios de
// nombres (buckets). Lo usan la sesión del cliente y el servidor de desarrollo.
package store

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("clave no encontrada")
	ErrBucketNotFound = errors.New("bucket no encontrado")
)

// Store es la interfaz común de los motores de almacenamiento.
type Store interface {
	Put(namespace string, key, value []byte) error
	Get(namespace string, key []byte) ([]byte, error)
	Delete(namespace string, key []byte) error
	ListKeys(namespace string) ([][]byte, error)
	// NextID devuelve un identificador creciente propio del namespace,
	// empezando en 1.
	NextID(namespace string) (int64, error)
	Close() error
}

// NewStore abre el motor indicado: "bbolt" (persistente en path) o
// "memory" (path se ignora).
func NewStore(engine, path string) (Store, error) {
	switch engine {
	case "bbolt":
		return newBboltStore(path)
	case "memory":
		return newMemoryStore(), nil
	default:
		return nil, fmt.Errorf("motor de almacenamiento desconocido: %s", engine)
	}
}

func notFound(key []byte) error {
	return fmt.Errorf("%w: %s", ErrNotFound, key)
}

func bucketNotFound(namespace string) error {
	return fmt.Errorf("%w: %s", ErrBucketNotFound, namespace)
}

// IsNotFound agrupa los dos casos en que una clave no existe.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrBucketNotFound)
}
