package digest

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Schedule is how often a digest goes out.
type Schedule string

// Schedule constants.
const (
	Daily  Schedule = "daily"
	Weekly Schedule = "weekly"
)

// IsValid checks if the schedule is supported.
func (s Schedule) IsValid() bool {
	return s == Daily || s == Weekly
}

// Minimum gap between two sends of the same config.
const (
	dailyGap  = 20 * time.Hour
	weeklyGap = 6 * 24 * time.Hour
)

// DefaultSendHour is the UTC hour digests go out when none is chosen.
const DefaultSendHour = 8

// sendWindowHours is how far from sendHour a digest may still go out.
const sendWindowHours = 1

// Config is an e-mail digest subscription (immutable value object).
type Config struct {
	id       string
	target   string
	schedule Schedule
	sendHour int
	keywords []string
	enabled  bool
	lastSent time.Time
}

// New validates and creates a digest Config.
func New(target string, schedule Schedule, sendHour int, keywords []string) (Config, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(target))
	if err != nil {
		return Config{}, fmt.Errorf("invalid target address: %w", err)
	}
	if schedule == "" {
		schedule = Daily
	}
	if !schedule.IsValid() {
		return Config{}, fmt.Errorf("schedule must be %q or %q, got %q", Daily, Weekly, schedule)
	}
	if sendHour < 0 || sendHour > 23 {
		return Config{}, fmt.Errorf("send hour must be between 0 and 23, got %d", sendHour)
	}

	kws := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			kws = append(kws, k)
		}
	}

	return Config{
		id:       uuid.NewString(),
		target:   addr.Address,
		schedule: schedule,
		sendHour: sendHour,
		keywords: kws,
		enabled:  true,
	}, nil
}

// Reconstruct creates a Config without validation (storage hydration).
func Reconstruct(
	id, target string, schedule Schedule, sendHour int,
	keywords []string, enabled bool, lastSent time.Time,
) Config {
	return Config{
		id:       id,
		target:   target,
		schedule: schedule,
		sendHour: sendHour,
		keywords: keywords,
		enabled:  enabled,
		lastSent: lastSent,
	}
}

// ID returns the config UUID.
func (c Config) ID() string { return c.id }

// Target returns the recipient address.
func (c Config) Target() string { return c.target }

// Schedule returns the send cadence.
func (c Config) Schedule() Schedule { return c.schedule }

// SendHour returns the preferred UTC hour.
func (c Config) SendHour() int { return c.sendHour }

// Keywords returns the digest-specific keyword filter. Empty means all papers.
func (c Config) Keywords() []string { return c.keywords }

// Enabled reports whether the digest is active.
func (c Config) Enabled() bool { return c.enabled }

// LastSent returns the last successful send, zero if never sent.
func (c Config) LastSent() time.Time { return c.lastSent }

// Due reports whether the digest should be sent at now.
func (c Config) Due(now time.Time) bool {
	if !c.enabled {
		return false
	}
	now = now.UTC()

	if !c.lastSent.IsZero() {
		since := now.Sub(c.lastSent)
		switch c.schedule {
		case Weekly:
			if since < weeklyGap {
				return false
			}
		default:
			if since < dailyGap {
				return false
			}
		}
	}

	diff := now.Hour() - c.sendHour
	if diff < 0 {
		diff = -diff
	}
	return diff <= sendWindowHours
}
