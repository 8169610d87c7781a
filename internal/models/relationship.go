package models

import "fmt"

// RelationshipStatus classifies how a viewer relates to a target user.
type RelationshipStatus uint8

const (
	RelationshipNone RelationshipStatus = iota + 1
	RelationshipSelf
	RelationshipFriends
	RelationshipOutgoing
	RelationshipIncoming
)

var relationshipStatusNames = map[RelationshipStatus]string{
	RelationshipNone:     "NONE",
	RelationshipSelf:     "SELF",
	RelationshipFriends:  "FRIENDS",
	RelationshipOutgoing: "OUTGOING",
	RelationshipIncoming: "INCOMING",
}

func (s RelationshipStatus) String() string {
	if name, ok := relationshipStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RelationshipStatus(%d)", uint8(s))
}

func (s RelationshipStatus) MarshalText() ([]byte, error) {
	name, ok := relationshipStatusNames[s]
	if !ok {
		return nil, fmt.Errorf("invalid relationship status %d", uint8(s))
	}
	return []byte(name), nil
}

// Relationship carries the pending request id for OUTGOING and INCOMING
// so the caller can act on it.
type Relationship struct {
	Status    RelationshipStatus `json:"status"`
	RequestID *uint              `json:"request_id"`
}
