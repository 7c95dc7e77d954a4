package blob

import (
	"bytes"
	"fmt"
	"io"

	"twarchive/internal/archive"
)

// EncryptedStore wraps another BlobStore and encrypts blobs before they are
// written. Blobs stay keyed by the digest of their plaintext, so dedup still
// works across encrypted and unencrypted archives. Reading blobs back
// requires an unlocked DecryptionContext, which is attached per session via
// WithDecryption.
type EncryptedStore struct {
	inner     archive.BlobStore
	encryptor archive.Encryptor
	decrypt   archive.DecryptionContext
}

// NewEncryptedStore wraps inner so all writes go through the encryptor.
func NewEncryptedStore(inner archive.BlobStore, encryptor archive.Encryptor) *EncryptedStore {
	return &EncryptedStore{
		inner:     inner,
		encryptor: encryptor,
	}
}

// WithDecryption returns a copy of the store that can serve Get calls using
// the given unlocked context.
func (s *EncryptedStore) WithDecryption(ctx archive.DecryptionContext) *EncryptedStore {
	return &EncryptedStore{
		inner:     s.inner,
		encryptor: s.encryptor,
		decrypt:   ctx,
	}
}

// Put encrypts the content and stores the ciphertext under the plaintext
// digest. The ciphertext size differs from the plaintext size, so the inner
// store is handed the encrypted length.
func (s *EncryptedStore) Put(digest string, r io.Reader, size int64) error {
	var encrypted bytes.Buffer
	if err := s.encryptor.Encrypt(r, &encrypted); err != nil {
		return fmt.Errorf("encrypting blob %s: %w", digest, err)
	}
	return s.inner.Put(digest, &encrypted, int64(encrypted.Len()))
}

// Get retrieves the ciphertext and decrypts it into w. Fails when no
// decryption context has been attached.
func (s *EncryptedStore) Get(digest string, w io.Writer) error {
	if s.decrypt == nil {
		return fmt.Errorf("blob store is encrypted and not unlocked")
	}

	var encrypted bytes.Buffer
	if err := s.inner.Get(digest, &encrypted); err != nil {
		return err
	}

	if err := s.decrypt.Decrypt(&encrypted, w); err != nil {
		return fmt.Errorf("decrypting blob %s: %w", digest, err)
	}
	return nil
}

// Exists reports whether content with the given digest is stored.
func (s *EncryptedStore) Exists(digest string) (bool, error) {
	return s.inner.Exists(digest)
}

// Compile-time check that EncryptedStore implements the BlobStore interface
var _ archive.BlobStore = (*EncryptedStore)(nil)
