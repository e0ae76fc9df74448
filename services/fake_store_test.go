package services

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/habit"
	"streakzillaAPI/internal/ledger"
	"streakzillaAPI/internal/notification"
	"streakzillaAPI/internal/stats"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/internal/types/chat"
	"streakzillaAPI/internal/types/checkin"
	"streakzillaAPI/internal/types/profile"
)

type memberKey struct {
	challenge uuid.UUID
	user      uuid.UUID
}

// fakeStore is an in-memory Store. Func fields override single methods.
type fakeStore struct {
	mu sync.Mutex

	profiles   map[uuid.UUID]*profile.Profile
	challenges map[uuid.UUID]challenge.Challenge
	members    map[memberKey]challenge.Membership
	habits     []habit.Habit
	selections map[memberKey][]uuid.UUID
	checkins   map[memberKey][]checkin.Checkin
	devices    map[uuid.UUID][]notification.DeviceToken
	messages   []chat.Message

	listMembersCalls int

	appendCheckinFn func(ci checkin.Checkin, streak int) (challenge.Membership, error)
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:   map[uuid.UUID]*profile.Profile{},
		challenges: map[uuid.UUID]challenge.Challenge{},
		members:    map[memberKey]challenge.Membership{},
		selections: map[memberKey][]uuid.UUID{},
		checkins:   map[memberKey][]checkin.Checkin{},
		devices:    map[uuid.UUID][]notification.DeviceToken{},
	}
}

func (f *fakeStore) addProfile(name string) *profile.Profile {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &profile.Profile{
		ID:          uuid.New(),
		ClerkID:     "user_" + name,
		DisplayName: name,
		MaxGroups:   profile.DefaultMaxGroups,
	}
	f.profiles[p.ID] = p
	return p
}

func (f *fakeStore) withProfile(m challenge.Membership) challenge.Membership {
	if p, ok := f.profiles[m.UserID]; ok {
		m.DisplayName = p.DisplayName
		m.AvatarURL = p.AvatarURL
	}
	return m
}

// profiles

func (f *fakeStore) UpsertProfile(_ context.Context, req profile.CreateProfileRequest) (*profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.ClerkID == req.ClerkID {
			p.Email, p.DisplayName, p.FullName, p.AvatarURL = req.Email, req.DisplayName, req.FullName, req.AvatarURL
			return p, nil
		}
	}
	p := &profile.Profile{
		ID:          uuid.New(),
		ClerkID:     req.ClerkID,
		Email:       req.Email,
		DisplayName: req.DisplayName,
		FullName:    req.FullName,
		AvatarURL:   req.AvatarURL,
		MaxGroups:   profile.DefaultMaxGroups,
	}
	f.profiles[p.ID] = p
	return p, nil
}

func (f *fakeStore) GetProfile(_ context.Context, id uuid.UUID) (*profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) GetProfileByClerkID(_ context.Context, clerkID string) (*profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.ClerkID == clerkID {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) UpdateProfile(_ context.Context, id uuid.UUID, req profile.UpdateProfileRequest) (*profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.DisplayName != nil {
		p.DisplayName = *req.DisplayName
	}
	if req.Bio != nil {
		p.Bio = req.Bio
	}
	return p, nil
}

func (f *fakeStore) DeleteProfileByClerkID(_ context.Context, clerkID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.profiles {
		if p.ClerkID == clerkID {
			delete(f.profiles, id)
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) GetUserStats(_ context.Context, id uuid.UUID) (stats.UserStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var st stats.UserStats
	for k, m := range f.members {
		if k.user != id {
			continue
		}
		st.ChallengesJoined++
		st.TotalPoints += m.TotalPoints
		st.BestStreak = max(st.BestStreak, m.CurrentStreak)
		st.TotalCheckins += len(f.checkins[k])
	}
	return st, nil
}

// challenges

func (f *fakeStore) CreateChallenge(_ context.Context, c challenge.Challenge, admin challenge.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.challenges[c.ID] = c
	f.members[memberKey{c.ID, admin.UserID}] = admin
	return nil
}

func (f *fakeStore) GetChallenge(_ context.Context, id uuid.UUID) (challenge.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.challenges[id]
	if !ok {
		return c, ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) GetChallengeByCode(_ context.Context, code string) (challenge.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.challenges {
		if c.InviteCode == code {
			return c, nil
		}
	}
	return challenge.Challenge{}, ErrNotFound
}

func (f *fakeStore) CodeExists(ctx context.Context, code string) (bool, error) {
	_, err := f.GetChallengeByCode(ctx, code)
	return err == nil, nil
}

func (f *fakeStore) UpdateChallenge(_ context.Context, c challenge.Challenge) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.challenges[c.ID]; !ok {
		return ErrNotFound
	}
	f.challenges[c.ID] = c
	return nil
}

func (f *fakeStore) DeleteChallenge(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.challenges[id]; !ok {
		return ErrNotFound
	}
	delete(f.challenges, id)
	for k := range f.members {
		if k.challenge == id {
			delete(f.members, k)
		}
	}
	return nil
}

func (f *fakeStore) DeactivateChallenge(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.challenges[id]
	c.IsActive = false
	f.challenges[id] = c
	return nil
}

func (f *fakeStore) ListActiveChallenges(_ context.Context) ([]challenge.Challenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []challenge.Challenge
	for _, c := range f.challenges {
		if c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

// memberships

func (f *fakeStore) AddMember(_ context.Context, m challenge.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := memberKey{m.ChallengeID, m.UserID}
	if _, ok := f.members[k]; ok {
		return ErrAlreadyMember
	}
	f.members[k] = m
	return nil
}

func (f *fakeStore) RemoveMember(_ context.Context, challengeID, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := memberKey{challengeID, userID}
	if _, ok := f.members[k]; !ok {
		return ErrNotFound
	}
	delete(f.members, k)
	delete(f.selections, k)
	return nil
}

func (f *fakeStore) GetMembership(_ context.Context, challengeID, userID uuid.UUID) (challenge.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[memberKey{challengeID, userID}]
	if !ok {
		return m, ErrNotFound
	}
	return f.withProfile(m), nil
}

func (f *fakeStore) ListMembers(_ context.Context, challengeID uuid.UUID) ([]challenge.Membership, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listMembersCalls++
	var out []challenge.Membership
	for k, m := range f.members {
		if k.challenge == challengeID {
			out = append(out, f.withProfile(m))
		}
	}
	slices.SortFunc(out, func(a, b challenge.Membership) int { return a.JoinedAt.Compare(b.JoinedAt) })
	return out, nil
}

func (f *fakeStore) CountUserMemberships(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for k := range f.members {
		if k.user == userID && f.challenges[k.challenge].IsActive {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ListUserChallenges(_ context.Context, userID uuid.UUID) ([]challenge.UserChallenge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []challenge.UserChallenge
	for k, m := range f.members {
		if k.user == userID {
			out = append(out, challenge.UserChallenge{Challenge: f.challenges[k.challenge], Membership: m})
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateMembershipState(_ context.Context, m challenge.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := memberKey{m.ChallengeID, m.UserID}
	cur, ok := f.members[k]
	if !ok {
		return ErrNotFound
	}
	cur.CurrentStreak = m.CurrentStreak
	cur.IsOut = cur.IsOut || m.IsOut
	f.members[k] = cur
	return nil
}

// habits

func (f *fakeStore) ListHabits(_ context.Context) ([]habit.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.habits), nil
}

func (f *fakeStore) AddHabitIfAbsent(_ context.Context, h habit.Habit) (habit.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.habits {
		if existing.Slug == h.Slug {
			return existing, nil
		}
	}
	f.habits = append(f.habits, h)
	return h, nil
}

func (f *fakeStore) GetSelection(_ context.Context, challengeID, userID uuid.UUID) (habit.Selection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return habit.NewSelection(habit.NewSelection(f.habits...).Intersect(f.selections[memberKey{challengeID, userID}])...), nil
}

func (f *fakeStore) ReplaceSelection(_ context.Context, challengeID, userID uuid.UUID, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selections[memberKey{challengeID, userID}] = slices.Clone(ids)
	return nil
}

// check-ins

func (f *fakeStore) ListCheckins(_ context.Context, challengeID, userID uuid.UUID) ([]checkin.Checkin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.checkins[memberKey{challengeID, userID}]), nil
}

func (f *fakeStore) ChallengeHasCheckins(_ context.Context, challengeID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, cis := range f.checkins {
		if k.challenge == challengeID && len(cis) > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AppendCheckin(_ context.Context, ci checkin.Checkin, streak int) (challenge.Membership, error) {
	if f.appendCheckinFn != nil {
		return f.appendCheckinFn(ci, streak)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	k := memberKey{ci.ChallengeID, ci.UserID}
	for _, existing := range f.checkins[k] {
		if existing.DayNumber == ci.DayNumber {
			return challenge.Membership{}, ledger.ErrAlreadyCheckedIn
		}
	}
	m, ok := f.members[k]
	if !ok {
		return m, ErrNotFound
	}
	if ci.ViaLife {
		if m.LivesRemaining <= 0 {
			return m, ledger.ErrNoLivesRemaining
		}
		m.LivesRemaining--
	}
	m.TotalPoints += ci.PointsEarned
	m.CurrentStreak = streak
	f.members[k] = m
	f.checkins[k] = append(f.checkins[k], ci)
	return m, nil
}

func (f *fakeStore) ListFeed(_ context.Context, challengeID uuid.UUID, limit int) ([]checkin.FeedItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []checkin.FeedItem
	for k, cis := range f.checkins {
		if k.challenge != challengeID {
			continue
		}
		for _, ci := range cis {
			out = append(out, checkin.FeedItem{Checkin: ci, DisplayName: f.profiles[k.user].DisplayName})
		}
	}
	slices.SortFunc(out, func(a, b checkin.FeedItem) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out[:min(limit, len(out))], nil
}

// devices

func (f *fakeStore) UpsertDevice(_ context.Context, userID uuid.UUID, req notification.RegisterDeviceRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.devices[userID] = append(f.devices[userID], notification.DeviceToken{UserID: userID, Token: req.Token, Platform: req.Platform})
	return nil
}

func (f *fakeStore) ListDevices(_ context.Context, userID uuid.UUID) ([]notification.DeviceToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.devices[userID]), nil
}

// chat

func (f *fakeStore) InsertMessage(_ context.Context, msg chat.Message) (chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Date(2024, 1, 2, 12, 0, len(f.messages), 0, time.UTC)
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeStore) ListMessages(_ context.Context, challengeID uuid.UUID, before time.Time, limit int) ([]chat.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []chat.Message
	for _, m := range f.messages {
		if m.ChallengeID == challengeID && m.CreatedAt.Before(before) {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b chat.Message) int { return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano()) })
	return out[:min(limit, len(out))], nil
}

// fakeNotifier records what would have been pushed.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	UserID uuid.UUID
	Type   notification.NotificationType
	Data   map[string]any
}

func (n *fakeNotifier) Notify(_ context.Context, userID uuid.UUID, t notification.NotificationType, data map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Type: t, Data: data})
	return nil
}

func (n *fakeNotifier) NotifyMembers(ctx context.Context, members []challenge.Membership, except uuid.UUID, t notification.NotificationType, data map[string]any) {
	for _, m := range members {
		if m.UserID != except {
			_ = n.Notify(ctx, m.UserID, t, data)
		}
	}
}

func (n *fakeNotifier) ofType(t notification.NotificationType) []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []sentNotification
	for _, s := range n.sent {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}
