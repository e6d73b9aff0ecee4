/*
File Name:  Envelope.go

Encoding of an envelope, the fixed-size signed inner record carried inside
every sealed Message:

Offset  Size   Info
0       2      Header: continuation:1 | payload_type:2 | padding:4 | n_in_reply_to_bytes:9
2       22     Authorization: IntraChannelReference to the capability envelope
24      16     first_in_reply_to: MessageHash of the immediate previous message
40      378    Variable region: reply-graph entries (front) + payload (remainder)
418     64     Signature: Ed25519 over bytes [0:418)

Total size is fixed at 482 bytes and asserted at init time.
*/

package protocol

import (
	"encoding/binary"
	"errors"

	"github.com/cloudflare/circl/sign/ed25519"
)

// PayloadType identifies the role of an envelope's payload bytes.
type PayloadType uint8

const (
	PayloadTypeAuthorization    PayloadType = 0
	PayloadTypePayload          PayloadType = 1
	PayloadTypeEncryptedPayload PayloadType = 2
)

const (
	headerSize       = 2
	authRefSize      = MsgIDLen + MsgHashLen // 22
	firstReplySize   = MsgHashLen            // 16
	variableSize     = 378
	signatureSize    = ed25519.SignatureSize // 64
	EnvelopeSize     = headerSize + authRefSize + firstReplySize + variableSize + signatureSize
	signedPrefixSize = EnvelopeSize - signatureSize // 418
)

func init() {
	if EnvelopeSize != 482 {
		panic("protocol: Envelope layout drifted from the fixed 482-byte wire size")
	}
}

var (
	// ErrNoSpace is returned by AddInReplyTo when the insertion would exceed
	// the 378-byte variable region.
	ErrNoSpace = errors.New("protocol: no space left for reply entry")
	// ErrSignatureVerification is returned by Verify when the Ed25519
	// signature does not authenticate the envelope bytes.
	ErrSignatureVerification = errors.New("protocol: signature verification failed")
)

// Envelope is the plaintext, signed inner record of a Message.
type Envelope struct {
	raw [EnvelopeSize]byte
}

// Init constructs a new Envelope referencing an authorization capability and
// a first in-reply-to hash. n_in_reply_to_bytes starts at 0, continuation is
// false, and payload_type is payload. Callers must write the payload and
// sign before sealing into a Message.
func Init(authRef IntraChannelReference, firstInReplyTo MessageHash) *Envelope {
	e := &Envelope{}
	e.setHeader(false, PayloadTypePayload, 0)
	e.setAuthorizationRef(authRef)
	e.setFirstInReplyTo(firstInReplyTo)
	return e
}

// FromBytes wraps exactly EnvelopeSize raw bytes as an Envelope without
// copying semantics beyond the fixed array, for use after AEAD decryption.
func FromBytes(raw []byte) (*Envelope, error) {
	if len(raw) != EnvelopeSize {
		return nil, errors.New("protocol: envelope has wrong length")
	}
	e := &Envelope{}
	copy(e.raw[:], raw)
	return e, nil
}

// Bytes returns the envelope's wire image.
func (e *Envelope) Bytes() []byte {
	return e.raw[:]
}

func (e *Envelope) header() uint16 {
	return binary.BigEndian.Uint16(e.raw[0:2])
}

func (e *Envelope) setHeader(continuation bool, payloadType PayloadType, nReplyBytes uint16) {
	var h uint16
	if continuation {
		h |= 1 << 15
	}
	h |= uint16(payloadType&0x3) << 13
	// bits 3..6 (header value bits 12..9) are padding, left zero
	h |= nReplyBytes & 0x1FF
	binary.BigEndian.PutUint16(e.raw[0:2], h)
}

// Continuation returns the header's continuation bit. Its semantics are
// reserved for a higher layer; this type preserves it verbatim.
func (e *Envelope) Continuation() bool {
	return e.header()&(1<<15) != 0
}

// PayloadType returns the header's payload_type field.
func (e *Envelope) PayloadType() PayloadType {
	return PayloadType((e.header() >> 13) & 0x3)
}

// SetPayloadType overwrites the header's payload_type field.
func (e *Envelope) SetPayloadType(t PayloadType) {
	e.setHeader(e.Continuation(), t, e.nInReplyToBytes())
}

// SetContinuation overwrites the header's continuation bit.
func (e *Envelope) SetContinuation(c bool) {
	e.setHeader(c, e.PayloadType(), e.nInReplyToBytes())
}

func (e *Envelope) nInReplyToBytes() uint16 {
	return e.header() & 0x1FF
}

func (e *Envelope) setNInReplyToBytes(n uint16) {
	e.setHeader(e.Continuation(), e.PayloadType(), n)
}

const authRefOffset = headerSize
const firstReplyOffset = authRefOffset + authRefSize
const variableOffset = firstReplyOffset + firstReplySize
const signatureOffset = variableOffset + variableSize

func (e *Envelope) setAuthorizationRef(ref IntraChannelReference) {
	idBytes := ref.ID.Bytes()
	copy(e.raw[authRefOffset:authRefOffset+MsgIDLen], idBytes[:])
	copy(e.raw[authRefOffset+MsgIDLen:authRefOffset+authRefSize], ref.Hash[:])
}

// AuthorizationRef returns the IntraChannelReference to the capability
// envelope that authorizes this one.
func (e *Envelope) AuthorizationRef() (ref IntraChannelReference) {
	var idBytes [MsgIDLen]byte
	copy(idBytes[:], e.raw[authRefOffset:authRefOffset+MsgIDLen])
	ref.ID = MessageIdFromBytes(idBytes)
	copy(ref.Hash[:], e.raw[authRefOffset+MsgIDLen:authRefOffset+authRefSize])
	return ref
}

func (e *Envelope) setFirstInReplyTo(h MessageHash) {
	copy(e.raw[firstReplyOffset:firstReplyOffset+firstReplySize], h[:])
}

// FirstInReplyTo returns the MessageHash of the immediate previous message
// being replied to.
func (e *Envelope) FirstInReplyTo() (h MessageHash) {
	copy(h[:], e.raw[firstReplyOffset:firstReplyOffset+firstReplySize])
	return h
}

// variableRegion returns the full 378-byte mutable region holding the
// reply list (front) and payload (remainder).
func (e *Envelope) variableRegion() []byte {
	return e.raw[variableOffset : variableOffset+variableSize]
}

// PayloadSlice returns a mutable view of the payload bytes: everything in
// the variable region after the reply-graph entries. Its capacity shrinks
// as reply entries are added.
func (e *Envelope) PayloadSlice() []byte {
	n := e.nInReplyToBytes()
	return e.variableRegion()[n:]
}

// Sign writes the Ed25519 signature field over bytes [0, signedPrefixSize).
func (e *Envelope) Sign(priv ed25519.PrivateKey) {
	sig := ed25519.Sign(priv, e.raw[:signedPrefixSize])
	copy(e.raw[signatureOffset:signatureOffset+signatureSize], sig)
}

// Signature returns the raw 64-byte Ed25519 signature field.
func (e *Envelope) Signature() []byte {
	return e.raw[signatureOffset : signatureOffset+signatureSize]
}

// Verify checks the Ed25519 signature against the given public key, over
// the envelope bytes excluding the signature field.
func (e *Envelope) Verify(pub ed25519.PublicKey) error {
	if !ed25519.Verify(pub, e.raw[:signedPrefixSize], e.Signature()) {
		return ErrSignatureVerification
	}
	return nil
}
