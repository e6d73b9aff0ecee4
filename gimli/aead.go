/*
File Name:  aead.go

Gimli-Cipher: an authenticated-encryption construction over the Gimli
permutation, built as a duplex. The key and nonce together initialize the
384-bit state; associated data and then plaintext are absorbed block by
block with the rate bytes of state replaced by ciphertext as it is
produced; the final state's capacity bytes become the authentication tag.
*/

package gimli

import (
	"crypto/subtle"
	"errors"
)

const (
	KeySize   = 32
	NonceSize = 16
	TagSize   = 16
)

// ErrAuthenticationFailed is returned by Open when the tag does not verify.
var ErrAuthenticationFailed = errors.New("gimli: authentication failed")

// AEAD implements a Gimli-Cipher instance bound to a fixed key.
type AEAD struct {
	key [KeySize]byte
}

// NewAEAD constructs an AEAD from a 32-byte key.
func NewAEAD(key [KeySize]byte) *AEAD {
	return &AEAD{key: key}
}

func (a *AEAD) init(nonce [NonceSize]byte) (state [words]uint32) {
	var full [BlockSize]byte
	copy(full[0:NonceSize], nonce[:])
	copy(full[NonceSize:NonceSize+KeySize], a.key[:])
	state = bytesToState(full[:])
	Permute(&state)
	return state
}

func absorbAD(state *[words]uint32, ad []byte) {
	pending := make([]byte, 0, rate)
	pending = append(pending, ad...)
	for len(pending) >= rate {
		xorBlock(state, pending[:rate])
		Permute(state)
		pending = pending[rate:]
	}
	padAndAbsorb(state, pending)
}

// Seal encrypts plaintext and appends a 16-byte authentication tag, binding
// associatedData. nonce must be NonceSize bytes.
func (a *AEAD) Seal(nonce [NonceSize]byte, plaintext, associatedData []byte) (ciphertext []byte) {
	state := a.init(nonce)
	absorbAD(&state, associatedData)

	out := make([]byte, 0, len(plaintext)+TagSize)
	var full [BlockSize]byte

	// Full, non-final rate-sized blocks: duplex call with no padding.
	remaining := plaintext
	for len(remaining) >= rate {
		stateToBytes(&state, full[:])
		block := make([]byte, rate)
		for i := 0; i < rate; i++ {
			block[i] = full[i] ^ remaining[i]
		}
		out = append(out, block...)

		// Replace the rate portion of the state with the ciphertext just produced.
		copy(full[0:rate], block)
		state = bytesToState(full[:])
		Permute(&state)

		remaining = remaining[rate:]
	}

	// Final, possibly-empty, partial block: always padded, even when
	// remaining is empty (the padding itself still needs one duplex call).
	n := len(remaining)
	stateToBytes(&state, full[:])
	block := make([]byte, n)
	for i := 0; i < n; i++ {
		block[i] = full[i] ^ remaining[i]
	}
	out = append(out, block...)

	copy(full[0:n], block)
	full[n] ^= 0x1F
	full[rate-1] ^= 0x80
	state = bytesToState(full[:])
	Permute(&state)

	var tagBuf [BlockSize]byte
	stateToBytes(&state, tagBuf[:])
	out = append(out, tagBuf[BlockSize-TagSize:]...)
	return out
}

// Open verifies and decrypts ciphertext (which must include the trailing
// tag), binding associatedData. Returns ErrAuthenticationFailed if the tag
// does not match.
func (a *AEAD) Open(nonce [NonceSize]byte, ciphertext, associatedData []byte) (plaintext []byte, err error) {
	if len(ciphertext) < TagSize {
		return nil, ErrAuthenticationFailed
	}
	ct := ciphertext[:len(ciphertext)-TagSize]
	tag := ciphertext[len(ciphertext)-TagSize:]

	state := a.init(nonce)
	absorbAD(&state, associatedData)

	out := make([]byte, 0, len(ct))
	var full [BlockSize]byte

	// Full, non-final rate-sized blocks: duplex call with no padding.
	remaining := ct
	for len(remaining) >= rate {
		stateToBytes(&state, full[:])
		block := make([]byte, rate)
		for i := 0; i < rate; i++ {
			block[i] = full[i] ^ remaining[i]
		}
		out = append(out, block...)

		copy(full[0:rate], remaining[:rate])
		state = bytesToState(full[:])
		Permute(&state)

		remaining = remaining[rate:]
	}

	// Final, possibly-empty, partial block: always padded, even when
	// remaining is empty (the padding itself still needs one duplex call).
	n := len(remaining)
	stateToBytes(&state, full[:])
	block := make([]byte, n)
	for i := 0; i < n; i++ {
		block[i] = full[i] ^ remaining[i]
	}
	out = append(out, block...)

	copy(full[0:n], remaining[:n])
	full[n] ^= 0x1F
	full[rate-1] ^= 0x80
	state = bytesToState(full[:])
	Permute(&state)

	var tagBuf [BlockSize]byte
	stateToBytes(&state, tagBuf[:])
	if subtle.ConstantTimeCompare(tagBuf[BlockSize-TagSize:], tag) != 1 {
		return nil, ErrAuthenticationFailed
	}
	return out, nil
}
