package encryption

import (
	"crypto/aes"
	"crypto/sha256"
	"crypto/subtle"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/curve25519"
	"golang.org/x/crypto/hkdf"
)

var ephemeralKeyInfo = []byte("ocr2 shared secret encryption key")

// SharedSecretEncryptions lets every oracle recover the shared secret with its
// config private key, without knowing the operator secret.
type SharedSecretEncryptions struct {
	// DiffieHellmanPoint is the public half of the ephemeral key.
	DiffieHellmanPoint [32]byte
	// SharedSecretHash is sha256(sharedSecret), used to detect a wrong key.
	SharedSecretHash [32]byte
	// Encryptions[i] is the shared secret encrypted for oracle i.
	Encryptions [][SharedSecretLen]byte
}

// NewSharedSecretEncryptions encrypts the shared secret derived from secret for each
// config public key. The ephemeral key is derived from secret as well, so the result
// is deterministic.
func NewSharedSecretEncryptions(secret []byte, configPublicKeys [][]byte) (SharedSecretEncryptions, error) {
	var out SharedSecretEncryptions
	ss, err := DeriveSharedSecret(secret)
	if err != nil {
		return out, err
	}
	sk := make([]byte, curve25519.ScalarSize)
	if _, err = io.ReadFull(hkdf.New(sha256.New, secret, nil, ephemeralKeyInfo), sk); err != nil {
		return out, errors.Wrap(err, "failed to derive ephemeral key")
	}
	point, err := curve25519.X25519(sk, curve25519.Basepoint)
	if err != nil {
		return out, errors.Wrap(err, "failed to compute diffie hellman point")
	}
	copy(out.DiffieHellmanPoint[:], point)
	out.SharedSecretHash = sha256.Sum256(ss[:])

	for i, pk := range configPublicKeys {
		key, err := dhKey(sk, pk)
		if err != nil {
			return SharedSecretEncryptions{}, errors.Wrapf(err, "config public key %d", i)
		}
		block, err := aes.NewCipher(key)
		if err != nil {
			return SharedSecretEncryptions{}, errors.Wrap(err, "failed to create aes cipher")
		}
		var enc [SharedSecretLen]byte
		block.Encrypt(enc[:], ss[:])
		out.Encryptions = append(out.Encryptions, enc)
	}
	return out, nil
}

// Verify reports whether ss is the shared secret these encryptions were made for.
func (e SharedSecretEncryptions) Verify(ss SharedSecret) bool {
	h := sha256.Sum256(ss[:])
	return subtle.ConstantTimeCompare(h[:], e.SharedSecretHash[:]) == 1
}

// Decrypt recovers the shared secret for oracle i holding configPrivateKey.
func (e SharedSecretEncryptions) Decrypt(i int, configPrivateKey []byte) (SharedSecret, error) {
	var ss SharedSecret
	if i < 0 || i >= len(e.Encryptions) {
		return ss, &DecryptionError{Reason: "no shared secret encryption for oracle"}
	}
	key, err := dhKey(configPrivateKey, e.DiffieHellmanPoint[:])
	if err != nil {
		return ss, &DecryptionError{Reason: "diffie hellman", Err: err}
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return ss, &DecryptionError{Reason: "aes cipher", Err: err}
	}
	block.Decrypt(ss[:], e.Encryptions[i][:])
	if !e.Verify(ss) {
		return SharedSecret{}, &DecryptionError{Reason: "shared secret hash mismatch"}
	}
	return ss, nil
}

// ConfigPublicKey returns the X25519 public key for a config private key.
func ConfigPublicKey(configPrivateKey []byte) ([]byte, error) {
	return curve25519.X25519(configPrivateKey, curve25519.Basepoint)
}

func dhKey(scalar, point []byte) ([]byte, error) {
	dh, err := curve25519.X25519(scalar, point)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(dh)
	return sum[:SharedSecretLen], nil
}
