package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

const maxGroupNameLen = 100

// Group is a named collection of members sharing expenses.
// A group always has at least one member: its creator joins as admin in the
// same transaction that creates the group.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Flat 4B", "Us").
	Name string

	// InviteCode is the opaque code others use to join. Unique across all
	// groups and stable for the group's lifetime. Assigned by the store.
	InviteCode string

	// CreatedBy is the user ID of the creator.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// NewGroup validates the name and builds a group owned by creatorID.
// ID and InviteCode are assigned when the group is stored.
func NewGroup(name, creatorID string) (*Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "must not be empty")
	}
	if utf8.RuneCountInString(name) > maxGroupNameLen {
		return nil, invalid("name", "too long (max 100 characters)")
	}
	if creatorID == "" {
		return nil, invalid("creator", "must not be empty")
	}
	return &Group{
		Name:      name,
		CreatedBy: creatorID,
		CreatedAt: time.Now().Unix(),
	}, nil
}

// JoinState is where a caller stands relative to a group reached by invite.
type JoinState string

const (
	JoinStateUnauthenticated JoinState = "unauthenticated"
	JoinStateNotMember       JoinState = "not_member"
	JoinStateMember          JoinState = "member"
)
