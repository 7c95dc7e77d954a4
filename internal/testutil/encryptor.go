package testutil

import (
	"twarchive/internal/archive"
	"twarchive/internal/encryption"
)

// NewTestEncryptor creates a new test encryptor for testing.
func NewTestEncryptor() archive.Encryptor {
	return encryption.NewTestEncryptor()
}
