/*
File Name:  Reply Graph.go

The reply-graph codec: insertion and iteration of delta-encoded
in-reply-to entries stored in an envelope's variable region.

The additional parents (beyond first_in_reply_to) are stored sorted
strictly decreasing by MessageId. Each entry is varint(delta) || MessageHash,
where delta is the difference between the previous entry's id and this
entry's id. The "previous" for the first stored entry is own_message_id-1 —
the implicit first parent occupies that id conceptually, but it is never
re-stored here; it has its own first_in_reply_to field as a bare hash.
*/

package protocol

import (
	"errors"

	"github.com/nma-go/core/varint"
)

// ErrMalformedReplyList is returned by iteration when the stored deltas
// decode to an id that underflows below zero.
var ErrMalformedReplyList = errors.New("protocol: malformed reply list")

// AddInReplyTo inserts entry into the reply list, keeping it sorted
// strictly decreasing by MessageId. ownMessageID is this envelope's own id;
// entry.ID must be less than ownMessageID. Fails with ErrNoSpace without
// modifying the envelope if the insertion would exceed the 378-byte
// variable region.
func (e *Envelope) AddInReplyTo(ownMessageID MessageId, entry IntraChannelReference) error {
	region := e.variableRegion()
	n := int(e.nInReplyToBytes())

	prevID := ownMessageID - 1
	cursor := 0
	// Walk the list, tracking prevID, stopping at the first entry whose id
	// is less than entry.ID (or at end of list).
	for cursor < n {
		delta, consumed, err := varint.Read(region[cursor:n])
		if err != nil {
			return err
		}
		currentID := prevID - MessageId(delta)

		if currentID < entry.ID {
			break
		}

		cursor += consumed + MsgHashLen
		prevID = currentID
	}

	// If stopping mid-list, the entry at cursor must be re-encoded: its
	// delta was relative to the old prevID, now it is relative to the
	// newly inserted entry.ID. Capture it rather than shift its raw bytes.
	hasAdjusted := cursor < n
	var adjustedVarint []byte
	var adjustedHash [MsgHashLen]byte
	afterAdjusted := cursor
	movedVarintSizeDiff := 0

	if hasAdjusted {
		oldDelta, oldConsumed, err := varint.Read(region[cursor:n])
		if err != nil {
			return err
		}
		currentID := prevID - MessageId(oldDelta)

		newDeltaSize := varint.Size(uint64(entry.ID - currentID))
		movedVarintSizeDiff = newDeltaSize - oldConsumed

		adjustedVarint = make([]byte, newDeltaSize)
		varint.Write(adjustedVarint, uint64(entry.ID-currentID))
		copy(adjustedHash[:], region[cursor+oldConsumed:cursor+oldConsumed+MsgHashLen])
		afterAdjusted = cursor + oldConsumed + MsgHashLen
	}

	newEntrySize := varint.Size(uint64(prevID-entry.ID)) + MsgHashLen
	newTotal := n + newEntrySize + movedVarintSizeDiff
	if newTotal > variableSize {
		return ErrNoSpace
	}

	// Capture the untouched remainder before overwriting anything.
	restTail := make([]byte, n-afterAdjusted)
	copy(restTail, region[afterAdjusted:n])

	offset := cursor
	written := varint.Write(region[offset:], uint64(prevID-entry.ID))
	offset += written
	copy(region[offset:offset+MsgHashLen], entry.Hash[:])
	offset += MsgHashLen

	if hasAdjusted {
		copy(region[offset:offset+len(adjustedVarint)], adjustedVarint)
		offset += len(adjustedVarint)
		copy(region[offset:offset+MsgHashLen], adjustedHash[:])
		offset += MsgHashLen
	}

	copy(region[offset:offset+len(restTail)], restTail)

	e.setNInReplyToBytes(uint16(newTotal))
	return nil
}

// ReplyIterator is a single-pass, restartable cursor over an envelope's
// additional reply entries, in the order stored (strictly decreasing by id).
type ReplyIterator struct {
	region    []byte
	n         int
	cursor    int
	runningID MessageId
	err       error
}

// IterateReplyTo returns a lazy cursor over the reply list, given the
// envelope's own message id.
func (e *Envelope) IterateReplyTo(ownMessageID MessageId) *ReplyIterator {
	return &ReplyIterator{
		region:    e.variableRegion(),
		n:         int(e.nInReplyToBytes()),
		runningID: ownMessageID - 1,
	}
}

// Next returns the next IntraChannelReference, or ok=false at end of
// stream. A malformed list (cumulative deltas underflowing below zero)
// surfaces as Err() returning ErrMalformedReplyList.
func (it *ReplyIterator) Next() (entry IntraChannelReference, ok bool) {
	if it.err != nil || it.cursor >= it.n {
		return IntraChannelReference{}, false
	}

	delta, consumed, err := varint.Read(it.region[it.cursor:it.n])
	if err != nil {
		it.err = err
		return IntraChannelReference{}, false
	}

	if MessageId(delta) > it.runningID {
		it.err = ErrMalformedReplyList
		return IntraChannelReference{}, false
	}
	it.runningID -= MessageId(delta)

	var hash MessageHash
	copy(hash[:], it.region[it.cursor+consumed:it.cursor+consumed+MsgHashLen])

	it.cursor += consumed + MsgHashLen
	return IntraChannelReference{ID: it.runningID, Hash: hash}, true
}

// Err returns the error that ended iteration early, if any.
func (it *ReplyIterator) Err() error {
	return it.err
}
