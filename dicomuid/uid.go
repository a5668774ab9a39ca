// Package dicomuid generates DICOM UIDs in the 2.25 arc, where the UUID is
// written as one decimal integer (PS3.5 B.2).
package dicomuid

import (
	"math/big"

	"github.com/google/uuid"
)

// Root is the UUID-derived UID arc.
const Root = "2.25."

// namespace scopes deterministic UIDs derived by Derive.
var namespace = uuid.MustParse("6f1c1c5e-3f7a-4f27-9a55-5c2d3f0f1e2b")

// New returns a random UID.
func New() string {
	return FromUUID(uuid.New())
}

// Derive returns the same UID for the same seed. Editors use it so that
// replacing a UID twice in one study keeps references consistent.
func Derive(seed string) string {
	return FromUUID(uuid.NewSHA1(namespace, []byte(seed)))
}

// FromUUID formats u under Root.
func FromUUID(u uuid.UUID) string {
	return Root + new(big.Int).SetBytes(u[:]).String()
}
