package policy

import (
	"fmt"
)

// An ordered set of policies for one deployment. Loaded once at startup and
// immutable for the process lifetime.
type Set struct {
	Policies []Policy
}

func (s *Set) Validate() error {
	for i := range s.Policies {
		if err := s.Policies[i].Validate(); err != nil {
			return fmt.Errorf("policy %d: %w", i, err)
		}
	}
	return nil
}

// Policies constraining the given action, in declaration order.
func (s *Set) ForAction(a Action) []Policy {
	var out []Policy
	for _, p := range s.Policies {
		if p.Action == a {
			out = append(out, p)
		}
	}
	return out
}

const DefaultTenant = "default"

// Policy sets keyed by deployment/brand. Selected once at engine
// construction, never looked up ambiently.
type Config map[string]Set

func (c Config) Validate() error {
	for tenant, set := range c {
		if err := set.Validate(); err != nil {
			return fmt.Errorf("tenant %q: %w", tenant, err)
		}
	}
	return nil
}

// The policy set for a tenant, falling back to the default set. Errors if
// neither exists.
func (c Config) Select(tenant string) (Set, error) {
	if set, ok := c[tenant]; ok {
		return set, nil
	}
	if set, ok := c[DefaultTenant]; ok {
		return set, nil
	}
	return Set{}, fmt.Errorf("no policy set configured for tenant %q and no default", tenant)
}

// The built-in policy configuration: a universal anti-spam tier plus
// reputation-derived tiers for new and heavily-downvoted accounts.
func DefaultConfig() Config {
	return Config{
		DefaultTenant: {
			Policies: []Policy{
				{
					Action:              ActionPosts,
					Kind:                KindUniversal,
					Timeframe:           Timeframe{Length: 1, Unit: UnitDays},
					ItemsPerTimeframe:   5,
					Message:             "Users cannot submit more than 5 posts per day.",
					AppliesToOwnThreads: true,
				},
				{
					Action:              ActionPosts,
					Kind:                KindLowReputation,
					Timeframe:           Timeframe{Length: 1, Unit: UnitWeeks},
					ItemsPerTimeframe:   2,
					Message:             "As a new user, you can submit up to 2 posts per week. Gain more karma to post more often.",
					AppliesToOwnThreads: true,
					Conditions:          []Condition{KarmaCeiling{Max: 10}},
				},
				{
					Action:              ActionPosts,
					Kind:                KindDownvoteRatio,
					Timeframe:           Timeframe{Length: 1, Unit: UnitWeeks},
					ItemsPerTimeframe:   1,
					Message:             "Users with a high proportion of downvotes can submit up to 1 post per week.",
					AppliesToOwnThreads: true,
					Conditions: []Condition{
						DownvoteRatioFloor{Min: 0.3},
						KarmaCeiling{Max: 2000},
					},
				},
				{
					Action:              ActionComments,
					Kind:                KindUniversal,
					Timeframe:           Timeframe{Length: 8, Unit: UnitSeconds},
					ItemsPerTimeframe:   1,
					Message:             "Users cannot submit more than 1 comment every 8 seconds to prevent double-posting.",
					AppliesToOwnThreads: true,
				},
				{
					Action:            ActionComments,
					Kind:              KindLowReputation,
					Timeframe:         Timeframe{Length: 1, Unit: UnitDays},
					ItemsPerTimeframe: 3,
					Message:           "New users can write up to 3 comments per day. Gain more karma to comment more often.",
					Conditions:        []Condition{KarmaCeiling{Max: 5}},
				},
				{
					Action:            ActionComments,
					Kind:              KindLowReputation,
					Timeframe:         Timeframe{Length: 1, Unit: UnitDays},
					ItemsPerTimeframe: 1,
					Message:           "Your recent contributions have low karma, so you can write up to 1 comment per day on other users' posts.",
					Conditions: []Condition{
						RecentKarmaFloor{Max: 1, Sample: 20},
						KarmaCeiling{Max: 2000},
					},
				},
				{
					Action:            ActionComments,
					Kind:              KindDownvoteRatio,
					Timeframe:         Timeframe{Length: 1, Unit: UnitDays},
					ItemsPerTimeframe: 1,
					Message:           "Several users have downvoted your recent contributions, so you can write up to 1 comment per day on other users' posts.",
					Conditions: []Condition{
						DownvoterCountFloor{Min: 4, Sample: 20},
						DownvoteRatioFloor{Min: 0.3},
					},
				},
			},
		},
	}
}
