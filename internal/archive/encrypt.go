package archive

import "io"

// Encryptor handles at-rest encryption of externally stored media blobs.
// Encryption uses the public key only, so archiving runs need no passphrase.
// Reading blobs back requires unlocking the private key first.
type Encryptor interface {
	// Setup performs one-time key generation: stores the public key in
	// plaintext and the private key encrypted with the passphrase.
	Setup(passphrase string) error

	// Encrypt encrypts data read from r and writes ciphertext to w.
	Encrypt(r io.Reader, w io.Writer) error

	// Unlock decrypts the private key with the passphrase and returns a
	// DecryptionContext valid for the session.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured reports whether both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for the
// duration of an export session. The key is never written back to disk.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
