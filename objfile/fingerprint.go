package objfile

import (
	"encoding/hex"

	"frogc/bytecode"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns the hex BLAKE2b-256 digest of m's serialized form.
// Equal modules always share a fingerprint.
func Fingerprint(m *bytecode.Module) (string, error) {
	data, err := Marshal(m)
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
