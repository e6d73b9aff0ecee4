/*
File Name:  Message.go

Offset  Size   Info
0       6      id_hash: MessageIdHash(channel_id, message_id)
6       482    encrypted: AEAD ciphertext of the envelope
488     16     tag: AEAD authentication tag

Total size is fixed at 504 bytes (the packet data layout's full wire
budget, sized to fit the IPv4 minimum path MTU after IPv4+UDP headers).
Sealing uses the Gimli AEAD: key = ChannelId (zero-padded), nonce =
MessageId (zero-padded), associated data = the magic string "ȱ message".
*/

package protocol

import (
	"errors"

	"github.com/nma-go/core/gimli"
)

// PacketSize is the total wire length of every Message.
const PacketSize = MsgIDHashLen + EnvelopeSize + gimli.TagSize

func init() {
	if PacketSize != 504 {
		panic("protocol: Message layout drifted from the fixed 504-byte wire size")
	}
}

// ErrAuthenticationFailed is returned by Decrypt when the AEAD tag does not
// verify, including when (channelID, messageID) do not match the sealed message.
var ErrAuthenticationFailed = errors.New("protocol: authentication failed")

const (
	idHashOffset    = 0
	encryptedOffset = idHashOffset + MsgIDHashLen
	tagOffset       = encryptedOffset + EnvelopeSize
)

// Message is the sealed, fixed-size wire packet wrapping an envelope.
type Message struct {
	raw [PacketSize]byte
}

func channelKey(channelID ChannelId) (key [gimli.KeySize]byte) {
	copy(key[:], channelID[:])
	return key
}

func messageNonce(messageID MessageId) (nonce [gimli.NonceSize]byte) {
	idBytes := messageID.Bytes()
	copy(nonce[:], idBytes[:])
	return nonce
}

// SealMessage computes id_hash, seals envelope under the channel-derived
// key and message-id nonce, and returns the resulting 504-byte Message.
func SealMessage(channelID ChannelId, messageID MessageId, envelope *Envelope) *Message {
	m := &Message{}

	idHash := CalculateMessageIdHash(channelID, messageID)
	copy(m.raw[idHashOffset:idHashOffset+MsgIDHashLen], idHash[:])

	aead := gimli.NewAEAD(channelKey(channelID))
	sealed := aead.Seal(messageNonce(messageID), envelope.Bytes(), []byte(magicMessage))

	copy(m.raw[encryptedOffset:tagOffset], sealed[:EnvelopeSize])
	copy(m.raw[tagOffset:PacketSize], sealed[EnvelopeSize:])
	return m
}

// MessageFromBytes wraps exactly PacketSize raw bytes as a Message.
func MessageFromBytes(raw []byte) (*Message, error) {
	if len(raw) != PacketSize {
		return nil, errors.New("protocol: message has wrong length")
	}
	m := &Message{}
	copy(m.raw[:], raw)
	return m, nil
}

// Bytes returns the message's 504-byte wire image.
func (m *Message) Bytes() []byte {
	return m.raw[:]
}

// IDHash returns the id_hash field, to be compared against
// CalculateMessageIdHash(channelID, messageID) for a candidate match before
// attempting the more expensive Decrypt.
func (m *Message) IDHash() (h MessageIdHash) {
	copy(h[:], m.raw[idHashOffset:idHashOffset+MsgIDHashLen])
	return h
}

// Decrypt opens the AEAD ciphertext against the given (channelID,
// messageID) and returns the decrypted Envelope. Returns
// ErrAuthenticationFailed if the tag does not verify.
func (m *Message) Decrypt(channelID ChannelId, messageID MessageId) (*Envelope, error) {
	aead := gimli.NewAEAD(channelKey(channelID))
	sealed := m.raw[encryptedOffset:PacketSize]

	plaintext, err := aead.Open(messageNonce(messageID), sealed, []byte(magicMessage))
	if err != nil {
		return nil, ErrAuthenticationFailed
	}
	return FromBytes(plaintext)
}

// Hash returns MessageHash.calculate over the message's 504-byte wire image.
func (m *Message) Hash() MessageHash {
	return CalculateMessageHash(m.raw[:])
}
