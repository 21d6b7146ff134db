package models

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a message.
//
// Only RoleUser and RoleAssistant can appear in a conversation or be decoded
// from a relay request. RoleSystem is reserved for the instruction the relay
// prepends before forwarding upstream.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ParseRole converts a string into a conversational role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleAssistant:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role %q", s)
	}
}

// IsConversational reports whether r may appear in a conversation.
func (r Role) IsConversational() bool {
	return r == RoleUser || r == RoleAssistant
}

func (r Role) String() string {
	return string(r)
}

// UnmarshalJSON rejects anything other than "user" or "assistant".
func (r *Role) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("role must be a string: %w", err)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
