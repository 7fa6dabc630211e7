package codec

import (
	"bytes"

	bin "github.com/gagliardetto/binary"
	"github.com/pkg/errors"

	"github.com/smartcontractkit/chainlink-starknet/pkg/starknet/ocr2/encryption"
)

// envelope is the Borsh layout of the bytes that get chunked into felts.
type envelope struct {
	Version                 uint8
	SharedSecretEncryptions wireSharedSecretEncryptions
	Ciphertext              []byte
}

type wireSharedSecretEncryptions struct {
	DiffieHellmanPoint [32]byte
	SharedSecretHash   [32]byte
	Encryptions        [][encryption.SharedSecretLen]byte
}

func (e envelope) marshal() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := bin.NewBorshEncoder(buf).Encode(e); err != nil {
		return nil, errors.Wrap(err, "failed to encode offchain config envelope")
	}
	return buf.Bytes(), nil
}

// envelopeHeaderLen covers the version byte, the diffie hellman point and the shared
// secret hash that precede the first vec length.
const envelopeHeaderLen = 1 + 32 + 32

// checkEnvelopeLengths bounds the vec lengths in b before the decoder allocates for them.
func checkEnvelopeLengths(b []byte) error {
	dec := bin.NewBorshDecoder(b)
	if err := dec.SkipBytes(envelopeHeaderLen); err != nil {
		return malformed("envelope: %v", err)
	}
	n, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return malformed("envelope: %v", err)
	}
	if n > MaxOracles || int(n)*encryption.SharedSecretLen > dec.Remaining() {
		return malformed("envelope: %d shared secret encryptions in %d bytes", n, dec.Remaining())
	}
	if err = dec.SkipBytes(uint(n) * encryption.SharedSecretLen); err != nil {
		return malformed("envelope: %v", err)
	}
	m, err := dec.ReadUint32(bin.LE)
	if err != nil {
		return malformed("envelope: %v", err)
	}
	if int64(m) > int64(dec.Remaining()) {
		return malformed("envelope: ciphertext of %d bytes in %d bytes", m, dec.Remaining())
	}
	return nil
}

func unmarshalEnvelope(b []byte) (envelope, error) {
	var e envelope
	if err := checkEnvelopeLengths(b); err != nil {
		return e, err
	}
	dec := bin.NewBorshDecoder(b)
	if err := dec.Decode(&e); err != nil {
		return e, malformed("envelope: %v", err)
	}
	if dec.Remaining() != 0 {
		return e, malformed("envelope: %d trailing bytes", dec.Remaining())
	}
	if e.Version != EnvelopeVersion {
		return e, malformed("envelope version %d, want %d", e.Version, EnvelopeVersion)
	}
	return e, nil
}

func (w wireSharedSecretEncryptions) toSSE() encryption.SharedSecretEncryptions {
	return encryption.SharedSecretEncryptions{
		DiffieHellmanPoint: w.DiffieHellmanPoint,
		SharedSecretHash:   w.SharedSecretHash,
		Encryptions:        w.Encryptions,
	}
}

func fromSSE(s encryption.SharedSecretEncryptions) wireSharedSecretEncryptions {
	return wireSharedSecretEncryptions{
		DiffieHellmanPoint: s.DiffieHellmanPoint,
		SharedSecretHash:   s.SharedSecretHash,
		Encryptions:        s.Encryptions,
	}
}
