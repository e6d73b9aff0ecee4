/*
File Name:  Authorization.go

An Authorization is the in-memory view of a capability payload: the raw
bytes of a capability envelope's payload region, plus the message id of
that capability envelope. The bytes begin with a 32-byte Ed25519 public
key, followed by a JSON array of Condition objects, followed by zero
padding to the end of the payload region.
*/

package authorization

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/cloudflare/circl/sign/ed25519"
	"github.com/nma-go/core/protocol"
)

// ErrInvalidPadding is returned when bytes after the JSON condition list
// are not all zero.
var ErrInvalidPadding = errors.New("authorization: invalid padding")

// ErrUnknownCondition is returned when a condition object carries a tag
// this implementation does not recognize.
var ErrUnknownCondition = errors.New("authorization: unknown condition tag")

// Authorization is the capability payload drawn from an envelope whose
// role is to convey authorization data.
type Authorization struct {
	Bytes     []byte
	MessageID protocol.MessageId
}

// New wraps a capability envelope's payload bytes and the message id of
// the envelope that carried them.
func New(payload []byte, messageID protocol.MessageId) *Authorization {
	return &Authorization{Bytes: payload, MessageID: messageID}
}

// Authorizes returns true iff:
//  1. candidateEnvelope.Verify(bytes[0:32]) succeeds (the Ed25519 public
//     key is the first 32 bytes of Bytes).
//  2. bytes[32:] parses as a JSON array of Condition objects (trailing
//     data beyond the JSON value is allowed at the parser level).
//  3. every byte after the consumed JSON value is 0x00 (else
//     ErrInvalidPadding).
//  4. every parsed condition's Check returns true against
//     (a, candidateEnvelope, candidateMessageID).
//
// Parse and padding failures are returned as errors; a rejected Ed25519
// signature is reported as (false, nil), not an error.
func (a *Authorization) Authorizes(candidateEnvelope *protocol.Envelope, candidateMessageID protocol.MessageId) (bool, error) {
	if len(a.Bytes) < ed25519.PublicKeySize {
		return false, errors.New("authorization: capability bytes too short for public key")
	}

	pub := ed25519.PublicKey(a.Bytes[:ed25519.PublicKeySize])
	if err := candidateEnvelope.Verify(pub); err != nil {
		return false, nil
	}

	rest := a.Bytes[ed25519.PublicKeySize:]
	conditions, consumed, err := parseConditions(rest)
	if err != nil {
		return false, err
	}

	for _, b := range rest[consumed:] {
		if b != 0x00 {
			return false, ErrInvalidPadding
		}
	}

	for _, cond := range conditions {
		ok, err := cond.Check(a, candidateEnvelope, candidateMessageID)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// ParseConditions decodes the JSON array of Condition objects from data,
// ignoring any trailing bytes, for callers (such as authcache) that want
// to cache the parsed condition list independently of a specific
// candidate check.
func ParseConditions(data []byte) ([]Condition, error) {
	conditions, _, err := parseConditions(data)
	return conditions, err
}

// parseConditions decodes exactly one JSON value (an array of Condition
// objects) from the front of data and reports how many bytes it consumed,
// per the "allow trailing data" contract required by Authorization.Authorizes.
func parseConditions(data []byte) ([]Condition, int, error) {
	// bytes.Reader never copies data, but json.Decoder allocates its own
	// read buffer and the decoded values on the heap; parsing does not run
	// in a caller-provided scratch region.
	dec := json.NewDecoder(bytes.NewReader(data))

	var raw []json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return nil, 0, err
	}

	conditions := make([]Condition, 0, len(raw))
	for _, r := range raw {
		cond, err := parseCondition(r)
		if err != nil {
			return nil, 0, err
		}
		conditions = append(conditions, cond)
	}

	return conditions, int(dec.InputOffset()), nil
}
