package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"streakzillaAPI/internal/cache"
	"streakzillaAPI/internal/calendar"
	"streakzillaAPI/internal/habit"
	"streakzillaAPI/internal/types/challenge"
	"streakzillaAPI/internal/types/checkin"
	"streakzillaAPI/internal/types/profile"
)

var challengeStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// at returns hour o'clock on the given challenge day.
func at(day, hour int) time.Time {
	return challengeStart.AddDate(0, 0, day-1).Add(time.Duration(hour) * time.Hour)
}

type fixture struct {
	store    *fakeStore
	notifier *fakeNotifier
	cache    *cache.MemoryCache
	live     *recordingBroadcaster

	boards     *LeaderboardService
	challenges *ChallengeService
	habits     *HabitService
	checkins   *CheckinService
	chat       *ChatService

	admin     *profile.Profile
	member    *profile.Profile
	challenge challenge.Challenge
	catalog   []habit.Habit
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := newFakeStore()
	for i, pts := range []int{10, 15, 20, 10, 10, 10, 15} {
		title := string(rune('a'+i)) + " habit"
		store.habits = append(store.habits, habit.Habit{
			ID:       uuid.New(),
			Slug:     habit.Slugify(title),
			Title:    title,
			Category: "fitness",
			Points:   pts,
		})
	}

	f := &fixture{
		store:    store,
		notifier: &fakeNotifier{},
		live:     &recordingBroadcaster{},
		cache:    cache.NewMemoryCache(),
		catalog:  store.habits,
	}
	f.admin = store.addProfile("alice")
	f.member = store.addProfile("bob")

	duration := 30
	f.challenge = challenge.Challenge{
		ID:           uuid.New(),
		Name:         "January Grind",
		InviteCode:   "ABC234",
		StartDate:    challengeStart,
		DurationDays: &duration,
		Mode:         challenge.ModeMedium,
		IsActive:     true,
		CreatedBy:    &f.admin.ID,
		CreatedAt:    challengeStart.AddDate(0, 0, -3),
	}
	store.challenges[f.challenge.ID] = f.challenge
	f.join(f.admin.ID, challenge.RoleAdmin, challengeStart.AddDate(0, 0, -2))
	f.join(f.member.ID, challenge.RoleMember, challengeStart.AddDate(0, 0, -1))

	resolver := calendar.NewResolver(time.UTC)
	f.boards = NewLeaderboardService(store, f.cache, 30*time.Second)
	f.challenges = NewChallengeService(store, resolver, f.notifier, f.boards, 3, "https://streakzilla.test")
	f.habits = NewHabitService(store, resolver)
	f.checkins = NewCheckinService(store, resolver, f.notifier, f.boards, f.cache)
	f.chat = NewChatService(store)
	f.challenges.SetBroadcaster(f.live)
	f.checkins.SetBroadcaster(f.live)
	f.chat.SetBroadcaster(f.live)
	return f
}

func (f *fixture) join(userID uuid.UUID, role challenge.Role, joinedAt time.Time) {
	k := memberKey{f.challenge.ID, userID}
	f.store.members[k] = challenge.Membership{
		ID:             uuid.New(),
		ChallengeID:    f.challenge.ID,
		UserID:         userID,
		Role:           role,
		LivesRemaining: 3,
		JoinedAt:       joinedAt,
	}
	ids := make([]uuid.UUID, len(f.store.habits))
	for i, h := range f.store.habits {
		ids[i] = h.ID
	}
	f.store.selections[k] = ids
}

func (f *fixture) membership(userID uuid.UUID) challenge.Membership {
	return f.store.members[memberKey{f.challenge.ID, userID}]
}

func (f *fixture) setMembership(m challenge.Membership) {
	f.store.members[memberKey{m.ChallengeID, m.UserID}] = m
}

// logDays stores plain check-ins for the given days worth 10 points each.
func (f *fixture) logDays(userID uuid.UUID, days ...int) {
	k := memberKey{f.challenge.ID, userID}
	for _, d := range days {
		f.store.checkins[k] = append(f.store.checkins[k], checkin.Checkin{
			ID:                uuid.New(),
			ChallengeID:       f.challenge.ID,
			UserID:            userID,
			DayNumber:         d,
			CompletedHabitIDs: []uuid.UUID{f.catalog[0].ID},
			PointsEarned:      10,
			CreatedAt:         at(d, 9),
		})
	}
}

func (f *fixture) ids(idx ...int) []uuid.UUID {
	out := make([]uuid.UUID, len(idx))
	for i, n := range idx {
		out[i] = f.catalog[n].ID
	}
	return out
}

type recordingBroadcaster struct {
	events []LiveEvent
}

func (b *recordingBroadcaster) Publish(ev LiveEvent) {
	b.events = append(b.events, ev)
}

func (b *recordingBroadcaster) ofType(t LiveEventType) []LiveEvent {
	var out []LiveEvent
	for _, ev := range b.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}
