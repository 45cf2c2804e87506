package receiving

import "context"

// ReferenceLocker serializa el procesamiento de confirmaciones de una misma referencia
// entre instancias, antes de tocar la base de datos. La BD sigue siendo la garantía final.
// Si el lock no se obtiene debe devolver domain.ErrConcurrency.
type ReferenceLocker interface {
	Lock(ctx context.Context, reference string) (unlock func(context.Context) error, err error)
}

// NoopLocker no bloquea nada (una sola instancia o Redis no configurado).
type NoopLocker struct{}

// Lock implementa ReferenceLocker.
func (NoopLocker) Lock(context.Context, string) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
