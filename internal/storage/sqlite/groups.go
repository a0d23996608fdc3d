package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/tandem/internal/models"
	"github.com/mmynk/tandem/internal/storage"
)

const groupColumns = `g.id, g.name, g.invite_code, g.created_by, g.created_at`

func scanGroup(row interface{ Scan(...any) error }) (*models.Group, error) {
	g := &models.Group{}
	err := row.Scan(&g.ID, &g.Name, &g.InviteCode, &g.CreatedBy, &g.CreatedAt)
	return g, err
}

// CreateGroup inserts the group and its creator as admin in one transaction.
// A fresh invite code is drawn on every UNIQUE collision, up to
// inviteCodeAttempts times.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group, creatorID string) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}
	if group.CreatedBy == "" {
		group.CreatedBy = creatorID
	}

	for attempt := 1; attempt <= inviteCodeAttempts; attempt++ {
		code, err := s.invites.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate invite code: %w", err)
		}
		group.InviteCode = code

		err = s.insertGroup(ctx, group, creatorID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, errInviteCodeTaken) {
			return err
		}
		slog.Warn("Invite code collision, retrying", "attempt", attempt, "group_id", group.ID)
	}
	group.InviteCode = ""
	return fmt.Errorf("no unique invite code after %d attempts: %w", inviteCodeAttempts, storage.ErrConflict)
}

var errInviteCodeTaken = errors.New("invite code taken")

func (s *SQLiteStore) insertGroup(ctx context.Context, group *models.Group, creatorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var taken int
	err = tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM groups WHERE invite_code = ?", group.InviteCode).Scan(&taken)
	if err != nil {
		return fmt.Errorf("failed to check invite code: %w", err)
	}
	if taken > 0 {
		return errInviteCodeTaken
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, invite_code, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		group.ID, group.Name, group.InviteCode, group.CreatedBy, group.CreatedAt,
	)
	if isUniqueViolation(err) {
		return errInviteCodeTaken
	}
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO group_members (group_id, user_id, role, joined_at) VALUES (?, ?, ?, ?)",
		group.ID, creatorID, string(models.RoleAdmin), group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert creator membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM groups g WHERE g.id = ?", groupID)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return group, nil
}

// FindGroupByInviteCode retrieves the group that owns code.
func (s *SQLiteStore) FindGroupByInviteCode(ctx context.Context, code string) (*models.Group, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+groupColumns+" FROM groups g WHERE g.invite_code = ?", code)
	group, err := scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("invite code %q: %w", code, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find group by invite code: %w", err)
	}
	return group, nil
}

// ListGroupsForUser retrieves every group userID is a member of.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+groupColumns+`
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = ?
		 ORDER BY g.created_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}
