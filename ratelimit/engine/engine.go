package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/grove-social/weir/ratelimit/contentstore"
	"github.com/grove-social/weir/ratelimit/overridestore"
	"github.com/grove-social/weir/ratelimit/policy"
)

// Runtime for submission rate-limit checks. Stateless: every check is an
// independent read-evaluate sequence, safe to run concurrently. The engine
// never writes; whether to proceed with the submission is the caller's call.
//
// Careful when initializing: all fields should be non-nil except Now.
type Engine struct {
	Logger    *slog.Logger
	Policies  policy.Set
	Content   contentstore.ContentStore
	Overrides overridestore.OverrideStore

	// clock override for tests; nil means time.Now
	Now func() time.Time
}

func (eng *Engine) now() time.Time {
	if eng.Now != nil {
		return eng.Now()
	}
	return time.Now()
}

// Decides whether the user may create a new post. Returns nil when
// unconstrained, or the binding decision. Store failures propagate as
// errors and must abort the submission; they never mean "no constraint".
func (eng *Engine) CanCreatePost(ctx context.Context, acct *AccountMeta) (decision *Decision, err error) {
	defer eng.recoverCheck(&err, acct, policy.ActionPosts)
	start := eng.now()
	defer func() {
		checkDuration.WithLabelValues(string(policy.ActionPosts)).Observe(time.Since(start).Seconds())
	}()

	if Exempt(acct, policy.ActionPosts, nil) {
		eng.observe(acct, policy.ActionPosts, nil)
		return nil, nil
	}
	now := eng.now()

	overrides, err := eng.Overrides.ActiveOverrides(ctx, acct.ID, policy.ActionPosts, now)
	if err != nil {
		storeErrorCount.WithLabelValues("overrides").Inc()
		return nil, fmt.Errorf("resolving rate limit overrides: %w", err)
	}
	override := governingOverride(overrides, nil, acct.ID)
	if override != nil {
		if err := validOverride(override); err != nil {
			return nil, err
		}
	}

	policies := eng.Policies.ForAction(policy.ActionPosts)
	since := maxLookback(policies, overrideInterval(override), now)
	activity, err := eng.Content.RecentPosts(ctx, acct.ID, since)
	if err != nil {
		storeErrorCount.WithLabelValues("content").Inc()
		return nil, fmt.Errorf("fetching recent posts: %w", err)
	}

	decisions := make([]*Decision, 0, len(policies)+1)
	for i := range policies {
		decisions = append(decisions, EvaluatePolicy(&policies[i], acct.Reputation, activity, now))
	}
	if override != nil {
		decisions = append(decisions, evaluateOverride(override, activity, now))
	}

	binding := Strictest(decisions)
	eng.observe(acct, policy.ActionPosts, binding)
	return binding, nil
}

// Decides whether the user may comment on the given thread. Thread metadata
// drives both exemption (flagged threads) and own-thread filtering for
// author-exemption-sensitive policies.
func (eng *Engine) CanCreateComment(ctx context.Context, acct *AccountMeta, threadID string) (decision *Decision, err error) {
	defer eng.recoverCheck(&err, acct, policy.ActionComments)
	start := eng.now()
	defer func() {
		checkDuration.WithLabelValues(string(policy.ActionComments)).Observe(time.Since(start).Seconds())
	}()

	now := eng.now()

	thread, err := eng.Content.ThreadMeta(ctx, threadID)
	if err != nil {
		storeErrorCount.WithLabelValues("content").Inc()
		return nil, fmt.Errorf("fetching thread metadata: %w", err)
	}

	// exemption resolves before any moderation-store read
	if Exempt(acct, policy.ActionComments, thread) {
		eng.observe(acct, policy.ActionComments, nil)
		return nil, nil
	}

	overrides, err := eng.Overrides.ActiveOverrides(ctx, acct.ID, policy.ActionComments, now)
	if err != nil {
		storeErrorCount.WithLabelValues("overrides").Inc()
		return nil, fmt.Errorf("resolving rate limit overrides: %w", err)
	}

	override := governingOverride(overrides, thread, acct.ID)
	if override != nil {
		if err := validOverride(override); err != nil {
			return nil, err
		}
	}

	policies := eng.Policies.ForAction(policy.ActionComments)
	since := maxLookback(policies, overrideInterval(override), now)
	activity, err := eng.Content.RecentComments(ctx, acct.ID, since)
	if err != nil {
		storeErrorCount.WithLabelValues("content").Inc()
		return nil, fmt.Errorf("fetching recent comments: %w", err)
	}

	// activity restricted to other users' threads, computed once and only
	// if some policy is author-exemption-sensitive
	var onOthers []contentstore.ActivityItem
	needsFilter := false
	for i := range policies {
		if !policies[i].AppliesToOwnThreads {
			needsFilter = true
			break
		}
	}
	if needsFilter {
		onOthers, err = eng.commentsOnOthersThreads(ctx, acct.ID, activity)
		if err != nil {
			storeErrorCount.WithLabelValues("content").Inc()
			return nil, fmt.Errorf("filtering own-thread comments: %w", err)
		}
	}

	decisions := make([]*Decision, 0, len(policies)+1)
	for i := range policies {
		p := &policies[i]
		window := activity
		if !p.AppliesToOwnThreads {
			window = onOthers
		}
		decisions = append(decisions, EvaluatePolicy(p, acct.Reputation, window, now))
	}
	if override != nil {
		decisions = append(decisions, evaluateOverride(override, activity, now))
	}

	binding := Strictest(decisions)
	eng.observe(acct, policy.ActionComments, binding)
	return binding, nil
}

// Drops items on threads the user authored or co-authored, preserving order.
func (eng *Engine) commentsOnOthersThreads(ctx context.Context, userID string, activity []contentstore.ActivityItem) ([]contentstore.ActivityItem, error) {
	if len(activity) == 0 {
		return activity, nil
	}
	seen := make(map[string]bool, len(activity))
	threadIDs := make([]string, 0, len(activity))
	for _, item := range activity {
		if !seen[item.ThreadID] {
			seen[item.ThreadID] = true
			threadIDs = append(threadIDs, item.ThreadID)
		}
	}
	owned, err := eng.Content.OwnedThreadIDs(ctx, userID, threadIDs)
	if err != nil {
		return nil, err
	}
	out := make([]contentstore.ActivityItem, 0, len(activity))
	for _, item := range activity {
		if !owned[item.ThreadID] {
			out = append(out, item)
		}
	}
	return out, nil
}

// Override rows come from external tooling at runtime, so unlike policy
// sets they cannot be validated at startup. A malformed row fails the check
// (fail closed) rather than being skipped.
func validOverride(o *overridestore.Override) error {
	if err := o.Interval.Validate(); err != nil {
		return fmt.Errorf("malformed rate limit override for user %s: %w", o.UserID, err)
	}
	if o.ActionsPerInterval < 1 {
		return fmt.Errorf("malformed rate limit override for user %s: actionsPerInterval %d", o.UserID, o.ActionsPerInterval)
	}
	return nil
}

func overrideInterval(o *overridestore.Override) *policy.Timeframe {
	if o == nil {
		return nil
	}
	return &o.Interval
}

// Evaluation is pure in-memory computation, but policies and overrides come
// from config and external tooling; recover panics so one poisoned check
// cannot take the process down. The check still fails (never silently
// allows).
func (eng *Engine) recoverCheck(err *error, acct *AccountMeta, action policy.Action) {
	if r := recover(); r != nil {
		eng.Logger.Error("rate limit check panicked", "err", r, "user", acct.ID, "action", action)
		*err = fmt.Errorf("rate limit check panicked: %v", r)
	}
}

func (eng *Engine) observe(acct *AccountMeta, action policy.Action, binding *Decision) {
	checksProcessed.WithLabelValues(string(action)).Inc()
	if binding == nil {
		return
	}
	checksRejected.WithLabelValues(string(action), string(binding.Kind)).Inc()
	eng.Logger.Info("submission rate limited",
		"user", acct.ID,
		"action", action,
		"kind", binding.Kind,
		"nextEligibleAt", binding.NextEligibleAt)
}
