package engine

import (
	"time"

	"github.com/grove-social/weir/ratelimit/contentstore"
	"github.com/grove-social/weir/ratelimit/policy"
)

// Evaluates one policy against one activity window. Returns nil when the
// policy does not apply to this user or the user has not hit the threshold.
//
// Pure function of its inputs. The evaluator is unaware of thread ownership:
// policies with AppliesToOwnThreads == false must receive activity already
// filtered to other users' threads.
func EvaluatePolicy(p *policy.Policy, rep policy.Reputation, activity []contentstore.ActivityItem, now time.Time) *Decision {
	if !p.AppliesTo(rep) {
		return nil
	}
	d := windowDecision(p.Timeframe, p.ItemsPerTimeframe, activity, now)
	if d == nil {
		return nil
	}
	d.Kind = p.Kind
	d.Message = p.Message
	return d
}

// The shared pivot computation. Filters activity (descending by timestamp)
// to the trailing window, and if at least `items` remain, the pivot is the
// oldest of the most-recent `items`: the user is eligible again one full
// timeframe after the pivot.
func windowDecision(tf policy.Timeframe, items int, activity []contentstore.ActivityItem, now time.Time) *Decision {
	cutoff := tf.Before(now)
	recent := make([]contentstore.ActivityItem, 0, len(activity))
	for _, item := range activity {
		if !item.CreatedAt.Before(cutoff) {
			recent = append(recent, item)
		}
	}
	if len(recent) < items {
		return nil
	}
	pivot := recent[items-1]
	return &Decision{NextEligibleAt: tf.After(pivot.CreatedAt)}
}

// Furthest-back window start any of the given policies (plus an optional
// override interval) can need, so that one activity query covers every
// evaluation.
func maxLookback(policies []policy.Policy, overrideInterval *policy.Timeframe, now time.Time) time.Time {
	earliest := now
	for _, p := range policies {
		if start := p.Timeframe.Before(now); start.Before(earliest) {
			earliest = start
		}
	}
	if overrideInterval != nil {
		if start := overrideInterval.Before(now); start.Before(earliest) {
			earliest = start
		}
	}
	return earliest
}
