package models

import "time"

// Role is a member's permission level inside a group.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleMember:
		return Role(s), nil
	}
	return "", invalid("role", "must be admin or member")
}

// Member is one user's participation in one group.
type Member struct {
	GroupID string
	UserID  string
	Role    Role

	// Label is the user's display name or email. Filled in on reads.
	Label string

	// JoinedAt is the Unix timestamp when the membership was created.
	JoinedAt int64
}

// NewMember builds a membership row.
func NewMember(groupID, userID string, role Role) (*Member, error) {
	if groupID == "" {
		return nil, invalid("group", "must not be empty")
	}
	if userID == "" {
		return nil, invalid("user", "must not be empty")
	}
	if _, err := ParseRole(string(role)); err != nil {
		return nil, err
	}
	return &Member{
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		JoinedAt: time.Now().Unix(),
	}, nil
}

// IsAdmin reports whether the member can manage the group.
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
