/*
File Name:  Identifiers.go

Identifier and hash primitives: ChannelId, MessageId, MessageIdHash and
MessageHash. All hashing goes through package gimli; domain-separation
magic strings are prepended before the remaining fields in field order.
*/

package protocol

import (
	"encoding/binary"

	"github.com/nma-go/core/gimli"
)

const (
	ChannelIDLen = 32
	MsgIDLen     = 6
	MsgIDHashLen = 6
	MsgHashLen   = 16
)

// magic domain separators. The leading character is U+0231 (LATIN SMALL
// LETTER O WITH STROKE AND DESCENDER), encoded as 0xC8 0xB1 in UTF-8.
const (
	magicIDHash      = "ȱ id hash"
	magicMessageHash = "ȱ message hash"
	magicMessage     = "ȱ message"
)

// ChannelId identifies a channel. It doubles as the symmetric AEAD key
// (zero-padded to the AEAD's key length, which happens to match exactly).
type ChannelId [ChannelIDLen]byte

// MessageId is a 48-bit big-endian counter, unique and monotonically
// increasing per sender within a channel.
type MessageId uint64

const maxMessageID = (uint64(1) << 48) - 1

// Next returns id+1, wrapping around at 2^48.
func (id MessageId) Next() MessageId {
	return MessageId((uint64(id) + 1) & maxMessageID)
}

// Bytes encodes the MessageId as 6 big-endian bytes.
func (id MessageId) Bytes() (out [MsgIDLen]byte) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(id)&maxMessageID)
	copy(out[:], buf[2:8])
	return out
}

// MessageIdFromBytes decodes a 6-byte big-endian MessageId.
func MessageIdFromBytes(b [MsgIDLen]byte) MessageId {
	var buf [8]byte
	copy(buf[2:8], b[:])
	return MessageId(binary.BigEndian.Uint64(buf[:]))
}

// MessageIdHash is a 6-byte keyed digest of (channel_id, message_id). It is
// the public identifier carried on the wire; it does not reveal the
// plaintext message id.
type MessageIdHash [MsgIDHashLen]byte

// CalculateMessageIdHash computes the MessageIdHash for an anticipated
// (channelID, messageID) pair, to match against an inbound Message's
// id_hash field.
func CalculateMessageIdHash(channelID ChannelId, messageID MessageId) (h MessageIdHash) {
	idBytes := messageID.Bytes()
	digest := gimli.Sum(MsgIDHashLen, []byte(magicIDHash), channelID[:], idBytes[:])
	copy(h[:], digest)
	return h
}

// MessageHash is a 16-byte digest of a fully serialized Message, used to
// reference it from a later message's reply list.
type MessageHash [MsgHashLen]byte

// CalculateMessageHash computes the MessageHash over a message's wire bytes.
func CalculateMessageHash(messageBytes []byte) (h MessageHash) {
	digest := gimli.Sum(MsgHashLen, []byte(magicMessageHash), messageBytes)
	copy(h[:], digest)
	return h
}

// IntraChannelReference pairs a MessageId with the MessageHash of the
// message it identifies, as stored in an envelope's reply list.
type IntraChannelReference struct {
	ID   MessageId
	Hash MessageHash
}
