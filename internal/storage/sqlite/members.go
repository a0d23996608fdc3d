package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/tandem/internal/models"
	"github.com/mmynk/tandem/internal/storage"
)

// Labels come from users; a member whose user row is missing shows its ID.
const memberSelect = `
	SELECT m.group_id, m.user_id, m.role, m.joined_at,
	       COALESCE(NULLIF(u.display_name, ''), u.email, m.user_id)
	FROM group_members m
	LEFT JOIN users u ON u.id = m.user_id`

func scanMember(row interface{ Scan(...any) error }) (*models.Member, error) {
	m := &models.Member{}
	var role string
	if err := row.Scan(&m.GroupID, &m.UserID, &role, &m.JoinedAt, &m.Label); err != nil {
		return nil, err
	}
	m.Role = models.Role(role)
	return m, nil
}

// AddMember inserts a membership. The existence check and insert share a
// transaction so a duplicate is reported as storage.ErrConflict.
func (s *SQLiteStore) AddMember(ctx context.Context, groupID, userID string, role models.Role) (*models.Member, error) {
	member, err := models.NewMember(groupID, userID, role)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, "SELECT 1 FROM groups WHERE id = ?", groupID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check group existence: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		"SELECT 1 FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID,
	).Scan(&exists)
	if err == nil {
		return nil, fmt.Errorf("member %s of group %s: %w", userID, groupID, storage.ErrConflict)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		member.GroupID, member.UserID, string(member.Role), member.JoinedAt,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("member %s of group %s: %w", userID, groupID, storage.ErrConflict)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to insert member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetMember(ctx, groupID, userID)
}

// GetMember retrieves one membership.
func (s *SQLiteStore) GetMember(ctx context.Context, groupID, userID string) (*models.Member, error) {
	row := s.db.QueryRowContext(ctx, memberSelect+" WHERE m.group_id = ? AND m.user_id = ?", groupID, userID)
	member, err := scanMember(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("member %s of group %s: %w", userID, groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return member, nil
}

// ListMembers retrieves all members of a group in join order.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]*models.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		memberSelect+" WHERE m.group_id = ? ORDER BY m.joined_at, m.user_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate members: %w", err)
	}
	return members, nil
}

// RemoveMember deletes a membership unless it is the group's last one.
// When the last admin leaves, the longest-standing remaining member is
// promoted.
func (s *SQLiteStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM group_members WHERE group_id = ?", groupID).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count members: %w", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM group_members WHERE group_id = ? AND user_id = ?", groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("member %s of group %s: %w", userID, groupID, storage.ErrNotFound)
	}
	if count <= 1 {
		return fmt.Errorf("group %s: %w", groupID, storage.ErrLastMember)
	}

	var admins int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM group_members WHERE group_id = ? AND role = ?", groupID, string(models.RoleAdmin),
	).Scan(&admins)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins == 0 {
		_, err = tx.ExecContext(ctx,
			`UPDATE group_members SET role = ?
			 WHERE group_id = ? AND user_id = (
			     SELECT user_id FROM group_members WHERE group_id = ? ORDER BY joined_at, user_id LIMIT 1)`,
			string(models.RoleAdmin), groupID, groupID,
		)
		if err != nil {
			return fmt.Errorf("failed to promote admin: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
