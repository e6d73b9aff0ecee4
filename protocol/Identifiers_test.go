package protocol

import "testing"

func TestMessageIDNextWraps(t *testing.T) {
	max := MessageId(maxMessageID)
	if next := max.Next(); next != 0 {
		t.Fatalf("MessageId wraparound: got %d, want 0", uint64(next))
	}
}

func TestMessageIDBytesRoundTrip(t *testing.T) {
	for _, id := range []MessageId{0, 1, 255, 65536, MessageId(maxMessageID)} {
		b := id.Bytes()
		if got := MessageIdFromBytes(b); got != id {
			t.Fatalf("round trip mismatch: wrote %d, read %d", id, got)
		}
	}
}

func TestMessageIdHashIsDeterministicAndChannelBound(t *testing.T) {
	var c1, c2 ChannelId
	c1[0] = 1
	c2[0] = 2

	h1 := CalculateMessageIdHash(c1, MessageId(5))
	h1Again := CalculateMessageIdHash(c1, MessageId(5))
	h2 := CalculateMessageIdHash(c2, MessageId(5))

	if h1 != h1Again {
		t.Fatalf("MessageIdHash not deterministic")
	}
	if h1 == h2 {
		t.Fatalf("MessageIdHash did not change across channels")
	}
}

func TestMessageHashChangesWithContent(t *testing.T) {
	h1 := CalculateMessageHash([]byte("alpha"))
	h2 := CalculateMessageHash([]byte("beta"))
	if h1 == h2 {
		t.Fatalf("MessageHash collided for distinct input")
	}
}
