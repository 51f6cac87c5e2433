package policy

import (
	"sort"
)

// Read-only view of a user's vote totals, owned by the account subsystem.
// The counters are denormalized and known to drift slightly; see
// DownvoteRatio.
type ReputationSnapshot struct {
	Karma                  int64
	SmallUpvotesReceived   int64
	SmallDownvotesReceived int64
	BigUpvotesReceived     int64
	BigDownvotesReceived   int64
	TotalVotesReceived     int64
}

// Fraction of received votes that were downvotes. If the per-bucket counters
// disagree with the recorded total by more than 5%, the counters are
// considered inconsistent and the ratio degrades to 0, so that no
// downvote-based policy fires on bad data.
func (s ReputationSnapshot) DownvoteRatio() float64 {
	if s.TotalVotesReceived <= 0 {
		return 0
	}
	sum := s.SmallUpvotesReceived + s.SmallDownvotesReceived + s.BigUpvotesReceived + s.BigDownvotesReceived
	drift := sum - s.TotalVotesReceived
	if drift < 0 {
		drift = -drift
	}
	if float64(drift) > 0.05*float64(s.TotalVotesReceived) {
		return 0
	}
	downvotes := s.SmallDownvotesReceived + s.BigDownvotesReceived
	return float64(downvotes) / float64(s.TotalVotesReceived)
}

// Karma and downvoter stats over a fixed-size trailing sample of the user's
// most recent contributions (posts and comments together).
type RecentReputation struct {
	SampleSize     int
	Karma          int64
	DownvoterCount int
}

// Keyed by sample size: a condition declaring Sample N reads the stats
// computed over exactly the last N contributions, never a larger window
// another policy happens to need.
type Reputation struct {
	Snapshot ReputationSnapshot
	Recent   map[int]RecentReputation
}

// A single applicability predicate. Conditions on a policy are AND-composed:
// the policy constrains a user only when every condition applies.
type Condition interface {
	Applies(rep Reputation) bool
}

// Applies to users at or below a total karma ceiling.
type KarmaCeiling struct {
	Max int64
}

func (c KarmaCeiling) Applies(rep Reputation) bool {
	return rep.Snapshot.Karma <= c.Max
}

// Applies to users at or above a total karma floor.
type KarmaFloor struct {
	Min int64
}

func (c KarmaFloor) Applies(rep Reputation) bool {
	return rep.Snapshot.Karma >= c.Min
}

// Applies to users whose downvote ratio meets a minimum. Inconsistent vote
// counters report a ratio of 0 and never trigger this condition.
type DownvoteRatioFloor struct {
	Min float64
}

func (c DownvoteRatioFloor) Applies(rep Reputation) bool {
	return rep.Snapshot.DownvoteRatio() >= c.Min
}

// Applies to users whose karma over their last Sample contributions is at or
// below Max. A missing sample for this size means the stats were never
// computed; the condition does not apply, same leniency as inconsistent
// vote counters.
type RecentKarmaFloor struct {
	Max    int64
	Sample int
}

func (c RecentKarmaFloor) Applies(rep Reputation) bool {
	r, ok := rep.Recent[c.Sample]
	if !ok {
		return false
	}
	return r.Karma <= c.Max
}

// Applies to users with at least Min distinct downvoters across their last
// Sample contributions. A missing sample for this size never applies.
type DownvoterCountFloor struct {
	Min    int
	Sample int
}

func (c DownvoterCountFloor) Applies(rep Reputation) bool {
	r, ok := rep.Recent[c.Sample]
	if !ok {
		return false
	}
	return r.DownvoterCount >= c.Min
}

// Distinct recent-contribution sample sizes the conditions in the list need,
// ascending. Account metadata fetchers compute one RecentReputation per
// size so every condition reads stats over exactly its declared sample.
func SampleSizes(policies []Policy) []int {
	seen := make(map[int]bool)
	var out []int
	for _, p := range policies {
		for _, cond := range p.Conditions {
			var size int
			switch c := cond.(type) {
			case RecentKarmaFloor:
				size = c.Sample
			case DownvoterCountFloor:
				size = c.Sample
			default:
				continue
			}
			if size > 0 && !seen[size] {
				seen[size] = true
				out = append(out, size)
			}
		}
	}
	sort.Ints(out)
	return out
}
