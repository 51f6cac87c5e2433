package engine

import (
	"fmt"
	"time"

	"github.com/grove-social/weir/ratelimit/policy"
)

// The engine's only output value: the user may not submit again until
// NextEligibleAt. A nil *Decision means unconstrained.
type Decision struct {
	NextEligibleAt time.Time
	Kind           policy.Kind
	Message        string
}

// Picks the binding decision: the one with the numerically latest
// NextEligibleAt. Nils are advisory and dropped. On an exact timestamp tie
// the first-seen decision wins; callers must not depend on which kind or
// message surfaces in that case.
func Strictest(decisions []*Decision) *Decision {
	var binding *Decision
	for _, d := range decisions {
		if d == nil {
			continue
		}
		if binding == nil || d.NextEligibleAt.After(binding.NextEligibleAt) {
			binding = d
		}
	}
	return binding
}

// Renders the wait as a human-relative duration: "until <time>, in about
// <duration>". Always includes a concrete retry time.
func (d *Decision) RetryMessage(now time.Time) string {
	return fmt.Sprintf("until %s, in about %s",
		d.NextEligibleAt.UTC().Format(time.RFC1123),
		humanDuration(d.NextEligibleAt.Sub(now)))
}

func humanDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		secs := int(d.Round(time.Second).Seconds())
		if secs <= 1 {
			return "1 second"
		}
		return fmt.Sprintf("%d seconds", secs)
	case d < time.Hour:
		mins := int(d.Round(time.Minute).Minutes())
		if mins <= 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", mins)
	case d < 48*time.Hour:
		hours := int(d.Round(time.Hour).Hours())
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	default:
		days := int(d.Round(24*time.Hour).Hours() / 24)
		return fmt.Sprintf("%d days", days)
	}
}
