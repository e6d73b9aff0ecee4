/*
File Name:  Condition.go

Condition is a closed sum type over the predicates a capability can attach
to its grant. v1 defines exactly one: ttl. The JSON surface is a
single-field object {"<tag>": <value>}; unknown tags are a parse error.
*/

package authorization

import (
	"encoding/json"
	"fmt"

	"github.com/nma-go/core/protocol"
)

// ConditionKind identifies which predicate a Condition carries.
type ConditionKind int

const (
	ConditionTTL ConditionKind = iota
)

// Condition is a tagged variant; exactly one field is meaningful depending
// on Kind.
type Condition struct {
	Kind ConditionKind
	TTL  uint64 // valid when Kind == ConditionTTL
}

// Check evaluates the condition against a candidate envelope being
// authorized by the capability a.
func (c Condition) Check(a *Authorization, candidateEnvelope *protocol.Envelope, candidateMessageID protocol.MessageId) (bool, error) {
	switch c.Kind {
	case ConditionTTL:
		return uint64(candidateMessageID) <= uint64(a.MessageID)+c.TTL, nil
	default:
		return false, fmt.Errorf("authorization: %w: kind %d", ErrUnknownCondition, c.Kind)
	}
}

// parseCondition decodes a single {"<tag>": <value>} JSON object.
func parseCondition(raw json.RawMessage) (Condition, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Condition{}, err
	}
	if len(obj) != 1 {
		return Condition{}, fmt.Errorf("authorization: condition object must have exactly one field, got %d", len(obj))
	}

	for tag, value := range obj {
		switch tag {
		case "ttl":
			var ttl uint64
			if err := json.Unmarshal(value, &ttl); err != nil {
				return Condition{}, fmt.Errorf("authorization: invalid ttl value: %w", err)
			}
			return Condition{Kind: ConditionTTL, TTL: ttl}, nil
		default:
			return Condition{}, fmt.Errorf("authorization: %w: %q", ErrUnknownCondition, tag)
		}
	}
	return Condition{}, fmt.Errorf("authorization: empty condition object")
}
