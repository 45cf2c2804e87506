package entity

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"
)

const tempReferencePrefix = "TEMP-"

const tempAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// NewTemporaryReference genera la referencia provisional que ocupa la columna única
// mientras la base de datos asigna el ID de la solicitud.
func NewTemporaryReference(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read no falla en plataformas soportadas; el timestamp en ns mantiene la unicidad.
		return fmt.Sprintf("%s%d", tempReferencePrefix, now.UnixNano())
	}
	for i, b := range buf {
		buf[i] = tempAlphabet[int(b)%len(tempAlphabet)]
	}
	return fmt.Sprintf("%s%d-%s", tempReferencePrefix, now.UnixNano(), buf)
}

// IsTemporaryReference indica si la referencia es la provisional de creación.
func IsTemporaryReference(ref string) bool {
	return strings.HasPrefix(ref, tempReferencePrefix)
}
