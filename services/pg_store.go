package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"streakzillaAPI/internal/habit"
	"streakzillaAPI/internal/ledger"
	"streakzillaAPI/internal/notification"
	"streakzillaAPI/internal/stats"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/internal/types/chat"
	"streakzillaAPI/internal/types/checkin"
	"streakzillaAPI/internal/types/profile"
)

// PgStore implements Store on a pgx pool.
type PgStore struct {
	db *pgxpool.Pool
}

func NewPgStore(db *pgxpool.Pool) *PgStore {
	return &PgStore{db: db}
}

var _ Store = (*PgStore)(nil)

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func parseUUIDs(ss []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, len(ss))
	for i, s := range ss {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// profiles

const profileColumns = `id, clerk_id, email, display_name, full_name, avatar_url, bio,
	max_groups, subscription_status, created_at, updated_at`

func scanProfile(row pgx.Row) (*profile.Profile, error) {
	p := &profile.Profile{}
	err := row.Scan(
		&p.ID, &p.ClerkID, &p.Email, &p.DisplayName, &p.FullName, &p.AvatarURL, &p.Bio,
		&p.MaxGroups, &p.SubscriptionStatus, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

func (s *PgStore) UpsertProfile(ctx context.Context, req profile.CreateProfileRequest) (*profile.Profile, error) {
	query := `
		INSERT INTO profiles (clerk_id, email, display_name, full_name, avatar_url, max_groups)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (clerk_id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			full_name = EXCLUDED.full_name,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING ` + profileColumns

	p, err := scanProfile(s.db.QueryRow(ctx, query,
		req.ClerkID, req.Email, req.DisplayName, req.FullName, req.AvatarURL, profile.DefaultMaxGroups,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return p, nil
}

func (s *PgStore) GetProfile(ctx context.Context, id uuid.UUID) (*profile.Profile, error) {
	return scanProfile(s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

func (s *PgStore) GetProfileByClerkID(ctx context.Context, clerkID string) (*profile.Profile, error) {
	return scanProfile(s.db.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE clerk_id = $1`, clerkID))
}

func (s *PgStore) UpdateProfile(ctx context.Context, id uuid.UUID, req profile.UpdateProfileRequest) (*profile.Profile, error) {
	query := `
		UPDATE profiles SET
			display_name = COALESCE($2, display_name),
			full_name = COALESCE($3, full_name),
			avatar_url = COALESCE($4, avatar_url),
			bio = COALESCE($5, bio),
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + profileColumns

	return scanProfile(s.db.QueryRow(ctx, query, id, req.DisplayName, req.FullName, req.AvatarURL, req.Bio))
}

func (s *PgStore) DeleteProfileByClerkID(ctx context.Context, clerkID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM profiles WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) GetUserStats(ctx context.Context, id uuid.UUID) (stats.UserStats, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE g.is_active AND NOT gm.is_out),
			COALESCE(SUM(gm.total_points), 0),
			COALESCE(MAX(gm.current_streak), 0),
			(SELECT COUNT(*) FROM checkins c WHERE c.user_id = $1)
		FROM group_members gm
		JOIN groups g ON g.id = gm.group_id
		WHERE gm.user_id = $1
	`
	var st stats.UserStats
	err := s.db.QueryRow(ctx, query, id).Scan(
		&st.ChallengesJoined, &st.ActiveChallenges, &st.TotalPoints, &st.BestStreak, &st.TotalCheckins,
	)
	if err != nil {
		return st, fmt.Errorf("failed to get user stats: %w", err)
	}
	return st, nil
}

// ---------------------------------------------------------------------------
// challenges

const challengeColumns = `g.id, g.name, g.code, g.start_date, g.duration_days, g.mode,
	g.is_active, g.created_by, g.created_at`

func challengeDest(c *challenge.Challenge) []any {
	return []any{
		&c.ID, &c.Name, &c.InviteCode, &c.StartDate, &c.DurationDays, &c.Mode,
		&c.IsActive, &c.CreatedBy, &c.CreatedAt,
	}
}

func scanChallenge(row pgx.Row) (challenge.Challenge, error) {
	var c challenge.Challenge
	if err := row.Scan(challengeDest(&c)...); err != nil {
		return c, notFound(err)
	}
	return c, nil
}

func (s *PgStore) CreateChallenge(ctx context.Context, c challenge.Challenge, admin challenge.Membership) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO groups (id, name, code, start_date, duration_days, mode, is_active, created_by, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			c.ID, c.Name, c.InviteCode, c.StartDate, c.DurationDays, c.Mode, c.IsActive, c.CreatedBy, c.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrInvalidInviteCode
			}
			return fmt.Errorf("failed to insert challenge: %w", err)
		}
		return insertMember(ctx, tx, admin)
	})
}

func (s *PgStore) GetChallenge(ctx context.Context, id uuid.UUID) (challenge.Challenge, error) {
	return scanChallenge(s.db.QueryRow(ctx, `SELECT `+challengeColumns+` FROM groups g WHERE g.id = $1`, id))
}

func (s *PgStore) GetChallengeByCode(ctx context.Context, code string) (challenge.Challenge, error) {
	return scanChallenge(s.db.QueryRow(ctx, `SELECT `+challengeColumns+` FROM groups g WHERE g.code = $1`, code))
}

func (s *PgStore) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM groups WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

func (s *PgStore) UpdateChallenge(ctx context.Context, c challenge.Challenge) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE groups SET name = $2, start_date = $3, duration_days = $4
		WHERE id = $1`,
		c.ID, c.Name, c.StartDate, c.DurationDays,
	)
	if err != nil {
		return fmt.Errorf("failed to update challenge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) DeleteChallenge(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) DeactivateChallenge(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.Exec(ctx, `UPDATE groups SET is_active = FALSE WHERE id = $1`, id)
	return err
}

func (s *PgStore) ListActiveChallenges(ctx context.Context) ([]challenge.Challenge, error) {
	rows, err := s.db.Query(ctx, `SELECT `+challengeColumns+` FROM groups g WHERE g.is_active ORDER BY g.start_date`)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (challenge.Challenge, error) {
		return scanChallenge(row)
	})
}

// ---------------------------------------------------------------------------
// memberships

const memberColumns = `gm.id, gm.group_id, gm.user_id, gm.role, gm.lives_remaining, gm.total_points,
	gm.current_streak, gm.is_out, gm.restart_count, gm.skips_used, gm.joined_at`

func memberDest(m *challenge.Membership) []any {
	return []any{
		&m.ID, &m.ChallengeID, &m.UserID, &m.Role, &m.LivesRemaining, &m.TotalPoints,
		&m.CurrentStreak, &m.IsOut, &m.RestartCount, &m.SkipsUsed, &m.JoinedAt,
	}
}

func scanMemberWithProfile(row pgx.Row) (challenge.Membership, error) {
	var m challenge.Membership
	if err := row.Scan(append(memberDest(&m), &m.DisplayName, &m.AvatarURL)...); err != nil {
		return m, notFound(err)
	}
	return m, nil
}

func insertMember(ctx context.Context, tx pgx.Tx, m challenge.Membership) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO group_members (id, group_id, user_id, role, lives_remaining, total_points, current_streak, is_out, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.ChallengeID, m.UserID, m.Role, m.LivesRemaining, m.TotalPoints, m.CurrentStreak, m.IsOut, m.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyMember
		}
		return fmt.Errorf("failed to insert membership: %w", err)
	}
	return nil
}

func (s *PgStore) AddMember(ctx context.Context, m challenge.Membership) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		return insertMember(ctx, tx, m)
	})
}

func (s *PgStore) RemoveMember(ctx context.Context, challengeID, userID uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`, challengeID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		_, err = tx.Exec(ctx, `DELETE FROM user_habits WHERE group_id = $1 AND user_id = $2`, challengeID, userID)
		return err
	})
}

func (s *PgStore) GetMembership(ctx context.Context, challengeID, userID uuid.UUID) (challenge.Membership, error) {
	query := `SELECT ` + memberColumns + `, p.display_name, p.avatar_url
		FROM group_members gm
		JOIN profiles p ON p.id = gm.user_id
		WHERE gm.group_id = $1 AND gm.user_id = $2`
	return scanMemberWithProfile(s.db.QueryRow(ctx, query, challengeID, userID))
}

func (s *PgStore) ListMembers(ctx context.Context, challengeID uuid.UUID) ([]challenge.Membership, error) {
	query := `SELECT ` + memberColumns + `, p.display_name, p.avatar_url
		FROM group_members gm
		JOIN profiles p ON p.id = gm.user_id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at`
	rows, err := s.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (challenge.Membership, error) {
		return scanMemberWithProfile(row)
	})
}

func (s *PgStore) CountUserMemberships(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM group_members gm
		JOIN groups g ON g.id = gm.group_id
		WHERE gm.user_id = $1 AND g.is_active`, userID).Scan(&n)
	return n, err
}

func (s *PgStore) ListUserChallenges(ctx context.Context, userID uuid.UUID) ([]challenge.UserChallenge, error) {
	query := `SELECT ` + challengeColumns + `, ` + memberColumns + `
		FROM group_members gm
		JOIN groups g ON g.id = gm.group_id
		WHERE gm.user_id = $1
		ORDER BY g.is_active DESC, g.start_date DESC`
	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user challenges: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (challenge.UserChallenge, error) {
		var uc challenge.UserChallenge
		err := row.Scan(append(challengeDest(&uc.Challenge), memberDest(&uc.Membership)...)...)
		return uc, err
	})
}

func (s *PgStore) UpdateMembershipState(ctx context.Context, m challenge.Membership) error {
	_, err := s.db.Exec(ctx, `
		UPDATE group_members SET current_streak = $3, is_out = is_out OR $4
		WHERE group_id = $1 AND user_id = $2`,
		m.ChallengeID, m.UserID, m.CurrentStreak, m.IsOut,
	)
	if err != nil {
		return fmt.Errorf("failed to update membership: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// habits

const habitColumns = `h.id, h.slug, h.title, h.description, h.category, h.frequency, h.default_set, h.points`

func scanHabit(row pgx.Row) (habit.Habit, error) {
	var h habit.Habit
	err := row.Scan(&h.ID, &h.Slug, &h.Title, &h.Description, &h.Category, &h.Frequency, &h.DefaultSet, &h.Points)
	return h, notFound(err)
}

func (s *PgStore) ListHabits(ctx context.Context) ([]habit.Habit, error) {
	rows, err := s.db.Query(ctx, `SELECT `+habitColumns+` FROM habits h ORDER BY h.category, h.points DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (habit.Habit, error) {
		return scanHabit(row)
	})
}

func (s *PgStore) AddHabitIfAbsent(ctx context.Context, h habit.Habit) (habit.Habit, error) {
	stored, err := scanHabit(s.db.QueryRow(ctx, `
		INSERT INTO habits AS h (id, slug, title, description, category, frequency, default_set, points)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (slug) DO NOTHING
		RETURNING `+habitColumns,
		h.ID, h.Slug, h.Title, h.Description, h.Category, h.Frequency, h.DefaultSet, h.Points,
	))
	if errors.Is(err, ErrNotFound) {
		return scanHabit(s.db.QueryRow(ctx, `SELECT `+habitColumns+` FROM habits h WHERE h.slug = $1`, h.Slug))
	}
	return stored, err
}

func (s *PgStore) GetSelection(ctx context.Context, challengeID, userID uuid.UUID) (habit.Selection, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+habitColumns+`
		FROM user_habits uh
		JOIN habits h ON h.id = uh.habit_id
		WHERE uh.group_id = $1 AND uh.user_id = $2`, challengeID, userID)
	if err != nil {
		return habit.Selection{}, fmt.Errorf("failed to load selection: %w", err)
	}
	hs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (habit.Habit, error) {
		return scanHabit(row)
	})
	if err != nil {
		return habit.Selection{}, err
	}
	return habit.NewSelection(hs...), nil
}

func (s *PgStore) ReplaceSelection(ctx context.Context, challengeID, userID uuid.UUID, habitIDs []uuid.UUID) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM user_habits WHERE group_id = $1 AND user_id = $2`, challengeID, userID); err != nil {
			return fmt.Errorf("failed to clear selection: %w", err)
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO user_habits (group_id, user_id, habit_id)
			SELECT $1, $2, unnest($3::uuid[])`,
			challengeID, userID, uuidStrings(habitIDs),
		)
		if err != nil {
			return fmt.Errorf("failed to save selection: %w", err)
		}
		return nil
	})
}

// ---------------------------------------------------------------------------
// check-ins

const checkinColumns = `c.id, c.group_id, c.user_id, c.day_number, c.completed_habit_ids::text[],
	c.points_earned, c.note, c.photo_path, c.via_life, c.created_at`

func scanCheckin(row pgx.Row, extra ...any) (checkin.Checkin, error) {
	var ci checkin.Checkin
	var ids []string
	dest := append([]any{
		&ci.ID, &ci.ChallengeID, &ci.UserID, &ci.DayNumber, &ids,
		&ci.PointsEarned, &ci.Note, &ci.PhotoRef, &ci.ViaLife, &ci.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return ci, err
	}
	var err error
	ci.CompletedHabitIDs, err = parseUUIDs(ids)
	return ci, err
}

func (s *PgStore) ListCheckins(ctx context.Context, challengeID, userID uuid.UUID) ([]checkin.Checkin, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+checkinColumns+`
		FROM checkins c
		WHERE c.group_id = $1 AND c.user_id = $2
		ORDER BY c.day_number`, challengeID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkins: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (checkin.Checkin, error) {
		return scanCheckin(row)
	})
}

func (s *PgStore) ChallengeHasCheckins(ctx context.Context, challengeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM checkins WHERE group_id = $1)`, challengeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for checkins: %w", err)
	}
	return exists, nil
}

func (s *PgStore) AppendCheckin(ctx context.Context, ci checkin.Checkin, streak int) (challenge.Membership, error) {
	var m challenge.Membership
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO checkins (id, group_id, user_id, day_number, completed_habit_ids,
				points_earned, note, photo_path, via_life, created_at)
			VALUES ($1, $2, $3, $4, $5::uuid[], $6, $7, $8, $9, $10)`,
			ci.ID, ci.ChallengeID, ci.UserID, ci.DayNumber, uuidStrings(ci.CompletedHabitIDs),
			ci.PointsEarned, ci.Note, ci.PhotoRef, ci.ViaLife, ci.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ledger.ErrAlreadyCheckedIn
			}
			return fmt.Errorf("failed to insert checkin: %w", err)
		}

		err = tx.QueryRow(ctx, `
			UPDATE group_members gm SET
				total_points = gm.total_points + $3,
				current_streak = $4,
				lives_remaining = gm.lives_remaining - CASE WHEN $5::boolean THEN 1 ELSE 0 END
			WHERE gm.group_id = $1 AND gm.user_id = $2
			  AND (NOT $5::boolean OR gm.lives_remaining > 0)
			RETURNING `+memberColumns,
			ci.ChallengeID, ci.UserID, ci.PointsEarned, streak, ci.ViaLife,
		).Scan(memberDest(&m)...)
		if errors.Is(err, pgx.ErrNoRows) {
			if ci.ViaLife {
				return ledger.ErrNoLivesRemaining
			}
			return ErrNotFound
		}
		return err
	})
	return m, err
}

func (s *PgStore) ListFeed(ctx context.Context, challengeID uuid.UUID, limit int) ([]checkin.FeedItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+checkinColumns+`, p.display_name, p.avatar_url
		FROM checkins c
		JOIN profiles p ON p.id = c.user_id
		WHERE c.group_id = $1
		ORDER BY c.created_at DESC
		LIMIT $2`, challengeID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (checkin.FeedItem, error) {
		var item checkin.FeedItem
		ci, err := scanCheckin(row, &item.DisplayName, &item.AvatarURL)
		item.Checkin = ci
		return item, err
	})
}

// ---------------------------------------------------------------------------
// devices

func (s *PgStore) UpsertDevice(ctx context.Context, userID uuid.UUID, req notification.RegisterDeviceRequest) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, token) DO UPDATE SET platform = EXCLUDED.platform, updated_at = NOW()`,
		userID, req.Token, req.Platform,
	)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

func (s *PgStore) ListDevices(ctx context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `SELECT user_id, token, platform FROM device_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (notification.DeviceToken, error) {
		var d notification.DeviceToken
		err := row.Scan(&d.UserID, &d.Token, &d.Platform)
		return d, err
	})
}

// ---------------------------------------------------------------------------
// chat

func (s *PgStore) InsertMessage(ctx context.Context, msg chat.Message) (chat.Message, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO chats (id, group_id, user_id, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		msg.ID, msg.ChallengeID, msg.UserID, msg.Message,
	).Scan(&msg.CreatedAt)
	if err != nil {
		return msg, fmt.Errorf("failed to post message: %w", err)
	}
	return msg, nil
}

func (s *PgStore) ListMessages(ctx context.Context, challengeID uuid.UUID, before time.Time, limit int) ([]chat.Message, error) {
	rows, err := s.db.Query(ctx, `
		SELECT m.id, m.group_id, m.user_id, m.message, m.created_at, p.display_name, p.avatar_url
		FROM chats m
		JOIN profiles p ON p.id = m.user_id
		WHERE m.group_id = $1 AND m.created_at < $2
		ORDER BY m.created_at DESC
		LIMIT $3`, challengeID, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (chat.Message, error) {
		var m chat.Message
		err := row.Scan(&m.ID, &m.ChallengeID, &m.UserID, &m.Message, &m.CreatedAt, &m.DisplayName, &m.AvatarURL)
		return m, err
	})
}
