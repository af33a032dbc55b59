package utils

import (
	"inkbook/src/config"
	"inkbook/src/models"
	"strings"
	"time"
	"unicode"

	"github.com/gosimple/slug"
)

type TimeRange struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

func (r TimeRange) Overlaps(other TimeRange) bool {
	return r.StartAt.Before(other.EndAt) && other.StartAt.Before(r.EndAt)
}

// IsRefundEligible reports whether a deposit refund is allowed: the
// appointment must start in the future, but less than the refund
// window away.
func IsRefundEligible(startAt time.Time, now time.Time) bool {
	until := startAt.Sub(now)
	return until >= 0 && until < config.REFUND_WINDOW
}

const maxSlugLength = 24

// UsernameSlug normalizes a display username into a URL-safe handle:
// lowercase, hyphenated, at most 24 chars, no leading or trailing
// hyphen.
func UsernameSlug(username string) string {
	s := slug.Make(username)
	if len(s) > maxSlugLength {
		s = s[:maxSlugLength]
	}
	return strings.Trim(s, "-")
}

// BuildSyncPayload maps a profile sync request onto the column updates
// applied to the user row.
func BuildSyncPayload(name string, username string, bio *string) map[string]any {
	updates := map[string]any{
		"name":          name,
		"username_slug": UsernameSlug(username),
	}
	if bio != nil {
		updates["bio"] = *bio
	}
	return updates
}

func ValidateEmail(email string) bool {
	at := strings.Index(email, "@")
	if at < 1 || at != strings.LastIndex(email, "@") {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	if dot < 1 || dot == len(domain)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t\r\n")
}

func ValidatePassword(password string) bool {
	if len(password) < 7 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// ComputeOpenSlots produces the bookable start/end pairs for one day:
// the artist's weekly open intervals on that weekday, stepped on the
// slot grid, minus anything overlapping a live booking and anything
// already started.
func ComputeOpenSlots(day time.Time, duration time.Duration, now time.Time, intervals []models.Availability, busy []TimeRange) []TimeRange {
	slots := []TimeRange{}
	if duration <= 0 {
		return slots
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	weekday := int(midnight.Weekday())
	for _, iv := range intervals {
		if iv.Weekday != weekday || iv.EndMinute <= iv.StartMinute {
			continue
		}
		open := midnight.Add(time.Duration(iv.StartMinute) * time.Minute)
		close := midnight.Add(time.Duration(iv.EndMinute) * time.Minute)
		for start := open; !start.Add(duration).After(close); start = start.Add(config.SLOT_STEP) {
			if start.Before(now) {
				continue
			}
			candidate := TimeRange{StartAt: start, EndAt: start.Add(duration)}
			conflict := false
			for _, b := range busy {
				if candidate.Overlaps(b) {
					conflict = true
					break
				}
			}
			if !conflict {
				slots = append(slots, candidate)
			}
		}
	}
	return slots
}
