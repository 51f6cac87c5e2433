package policy

import (
	"fmt"
	"time"
)

// Which kind of submission a policy constrains.
type Action string

const (
	ActionPosts    Action = "posts"
	ActionComments Action = "comments"
)

func (a Action) Validate() error {
	switch a {
	case ActionPosts, ActionComments:
		return nil
	}
	return fmt.Errorf("unknown rate limit action: %q", a)
}

type Unit string

const (
	UnitSeconds Unit = "seconds"
	UnitMinutes Unit = "minutes"
	UnitHours   Unit = "hours"
	UnitDays    Unit = "days"
	UnitWeeks   Unit = "weeks"
	UnitMonths  Unit = "months"
)

// A trailing window: Length in Unit. Calendar-aware for months, fixed-size
// for everything else.
type Timeframe struct {
	Length int  `yaml:"length"`
	Unit   Unit `yaml:"unit"`
}

func (tf Timeframe) Validate() error {
	if tf.Length < 1 {
		return fmt.Errorf("timeframe length must be at least 1, got %d", tf.Length)
	}
	switch tf.Unit {
	case UnitSeconds, UnitMinutes, UnitHours, UnitDays, UnitWeeks, UnitMonths:
		return nil
	}
	return fmt.Errorf("unknown timeframe unit: %q", tf.Unit)
}

// Start of the window ending at t.
func (tf Timeframe) Before(t time.Time) time.Time {
	switch tf.Unit {
	case UnitSeconds:
		return t.Add(-time.Duration(tf.Length) * time.Second)
	case UnitMinutes:
		return t.Add(-time.Duration(tf.Length) * time.Minute)
	case UnitHours:
		return t.Add(-time.Duration(tf.Length) * time.Hour)
	case UnitDays:
		return t.AddDate(0, 0, -tf.Length)
	case UnitWeeks:
		return t.AddDate(0, 0, -7*tf.Length)
	case UnitMonths:
		return t.AddDate(0, -tf.Length, 0)
	}
	return t
}

// End of the window starting at t. Inverse of Before for all units except
// months, where calendar arithmetic is not symmetric around month ends.
func (tf Timeframe) After(t time.Time) time.Time {
	switch tf.Unit {
	case UnitSeconds:
		return t.Add(time.Duration(tf.Length) * time.Second)
	case UnitMinutes:
		return t.Add(time.Duration(tf.Length) * time.Minute)
	case UnitHours:
		return t.Add(time.Duration(tf.Length) * time.Hour)
	case UnitDays:
		return t.AddDate(0, 0, tf.Length)
	case UnitWeeks:
		return t.AddDate(0, 0, 7*tf.Length)
	case UnitMonths:
		return t.AddDate(0, tf.Length, 0)
	}
	return t
}

// Kind tags a policy for observability and decision reporting.
type Kind string

const (
	KindUniversal     Kind = "universal"
	KindLowReputation Kind = "lowReputation"
	KindDownvoteRatio Kind = "downvoteRatio"
	KindModerator     Kind = "moderator"
)

func (k Kind) Validate() error {
	switch k {
	case KindUniversal, KindLowReputation, KindDownvoteRatio, KindModerator:
		return nil
	}
	return fmt.Errorf("unknown rate limit kind: %q", k)
}

// A declarative trailing-window item-count limit, optionally gated by
// reputation conditions. Immutable after load.
type Policy struct {
	Action            Action
	Kind              Kind
	Timeframe         Timeframe
	ItemsPerTimeframe int
	Message           string
	// whether the policy still constrains a user commenting on their own
	// (or co-authored) threads
	AppliesToOwnThreads bool
	// AND-composed; empty means the policy applies to everyone
	Conditions []Condition
}

func (p *Policy) Validate() error {
	if err := p.Action.Validate(); err != nil {
		return err
	}
	if err := p.Kind.Validate(); err != nil {
		return err
	}
	if err := p.Timeframe.Validate(); err != nil {
		return err
	}
	if p.ItemsPerTimeframe < 1 {
		return fmt.Errorf("itemsPerTimeframe must be at least 1, got %d", p.ItemsPerTimeframe)
	}
	if p.Message == "" {
		return fmt.Errorf("policy (%s/%s) is missing a user-facing message", p.Action, p.Kind)
	}
	for _, cond := range p.Conditions {
		switch c := cond.(type) {
		case RecentKarmaFloor:
			if c.Sample < 1 {
				return fmt.Errorf("policy (%s/%s): recentKarmaFloor sample must be at least 1, got %d", p.Action, p.Kind, c.Sample)
			}
		case DownvoterCountFloor:
			if c.Sample < 1 {
				return fmt.Errorf("policy (%s/%s): downvoterCountFloor sample must be at least 1, got %d", p.Action, p.Kind, c.Sample)
			}
		}
	}
	return nil
}

// Whether every condition is met by the user's reputation. Policies with no
// conditions apply unconditionally.
func (p *Policy) AppliesTo(rep Reputation) bool {
	for _, cond := range p.Conditions {
		if !cond.Applies(rep) {
			return false
		}
	}
	return true
}
