package utils

import (
	"inkbook/src/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRefundEligible(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		startAt time.Time
		want    bool
	}{
		{"starts right now", now, true},
		{"starts in one hour", now.Add(time.Hour), true},
		{"starts just inside the window", now.Add(72*time.Hour - time.Minute), true},
		{"starts exactly at the window", now.Add(72 * time.Hour), false},
		{"starts well past the window", now.Add(240 * time.Hour), false},
		{"already started", now.Add(-time.Minute), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRefundEligible(tt.startAt, now))
		})
	}
}

func TestUsernameSlug(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     string
	}{
		{"plain", "inkmaster", "inkmaster"},
		{"spaces and case", "Ink Master NYC", "ink-master-nyc"},
		{"unicode", "Tátsü Ärtist", "tatsu-artist"},
		{"punctuation", "needle&thread!!", "needle-and-thread"},
		{"truncated with no trailing hyphen", "a very long artist name here", "a-very-long-artist-name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UsernameSlug(tt.username)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 24)
		})
	}
}

func TestBuildSyncPayload(t *testing.T) {
	bio := "black and grey realism"
	updates := BuildSyncPayload("Jo Doe", "Jo Doe Tattoos", &bio)
	assert.Equal(t, "Jo Doe", updates["name"])
	assert.Equal(t, "jo-doe-tattoos", updates["username_slug"])
	assert.Equal(t, bio, updates["bio"])

	updates = BuildSyncPayload("Jo Doe", "Jo Doe Tattoos", nil)
	_, hasBio := updates["bio"]
	assert.False(t, hasBio)
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"a@b.co", true},
		{"someone@example.com", true},
		{"first.last+tag@sub.example.org", true},
		{"bad", false},
		{"", false},
		{"@example.com", false},
		{"user@", false},
		{"user@domain", false},
		{"user@domain.", false},
		{"two@@example.com", false},
		{"has space@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateEmail(tt.email))
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Abcdef1", true},
		{"Str0ngPassword", true},
		{"abcdef", false},
		{"abcdefg", false},
		{"ABCDEFG1", false},
		{"abcdefg1", false},
		{"Abcdef", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePassword(tt.password))
		})
	}
}

func TestTimeRangeOverlaps(t *testing.T) {
	base := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	a := TimeRange{StartAt: base, EndAt: base.Add(time.Hour)}

	assert.True(t, a.Overlaps(TimeRange{StartAt: base.Add(30 * time.Minute), EndAt: base.Add(90 * time.Minute)}))
	assert.True(t, a.Overlaps(TimeRange{StartAt: base.Add(-30 * time.Minute), EndAt: base.Add(30 * time.Minute)}))
	assert.True(t, a.Overlaps(a))
	// Touching endpoints do not overlap.
	assert.False(t, a.Overlaps(TimeRange{StartAt: base.Add(time.Hour), EndAt: base.Add(2 * time.Hour)}))
	assert.False(t, a.Overlaps(TimeRange{StartAt: base.Add(-time.Hour), EndAt: base}))
}

func TestComputeOpenSlots(t *testing.T) {
	// 2025-06-02 is a Monday.
	day := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	now := day.Add(-24 * time.Hour)
	monday := []models.Availability{
		{ArtistID: 1, Weekday: 1, StartMinute: 9 * 60, EndMinute: 12 * 60},
	}

	t.Run("full morning open", func(t *testing.T) {
		slots := ComputeOpenSlots(day, time.Hour, now, monday, nil)
		// 09:00 through 11:00 inclusive on 15-minute steps.
		assert.Len(t, slots, 9)
		assert.Equal(t, day.Add(9*time.Hour), slots[0].StartAt)
		assert.Equal(t, day.Add(11*time.Hour), slots[len(slots)-1].StartAt)
	})

	t.Run("busy interval removed", func(t *testing.T) {
		busy := []TimeRange{{StartAt: day.Add(10 * time.Hour), EndAt: day.Add(11 * time.Hour)}}
		slots := ComputeOpenSlots(day, time.Hour, now, monday, busy)
		for _, s := range slots {
			assert.False(t, s.Overlaps(busy[0]))
		}
		// 09:00 and 11:00 survive; 09:15..10:45 collide.
		assert.Len(t, slots, 2)
	})

	t.Run("weekday without availability is empty", func(t *testing.T) {
		tuesday := day.Add(24 * time.Hour)
		slots := ComputeOpenSlots(tuesday, time.Hour, now, monday, nil)
		assert.Empty(t, slots)
	})

	t.Run("past starts skipped", func(t *testing.T) {
		lateNow := day.Add(10 * time.Hour)
		slots := ComputeOpenSlots(day, time.Hour, lateNow, monday, nil)
		assert.NotEmpty(t, slots)
		assert.Equal(t, day.Add(10*time.Hour), slots[0].StartAt)
	})

	t.Run("duration longer than interval", func(t *testing.T) {
		slots := ComputeOpenSlots(day, 4*time.Hour, now, monday, nil)
		assert.Empty(t, slots)
	})

	t.Run("non-positive duration", func(t *testing.T) {
		slots := ComputeOpenSlots(day, 0, now, monday, nil)
		assert.Empty(t, slots)
	})
}

func TestCooldownActive(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	cooldown := models.BookingCooldown{
		UserID:      2,
		ArtistID:    1,
		CancelledAt: now.Add(-time.Hour),
		ExpiresAt:   now.Add(47 * time.Hour),
	}
	assert.True(t, cooldown.Active(now))
	assert.True(t, cooldown.Active(cooldown.ExpiresAt.Add(-time.Second)))
	assert.False(t, cooldown.Active(cooldown.ExpiresAt))
	assert.False(t, cooldown.Active(cooldown.ExpiresAt.Add(time.Hour)))
}
