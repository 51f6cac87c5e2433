package ratelimit

import (
	"github.com/grove-social/weir/ratelimit/engine"
	"github.com/grove-social/weir/ratelimit/policy"
)

type Engine = engine.Engine
type AccountMeta = engine.AccountMeta
type Decision = engine.Decision

type Policy = policy.Policy
type PolicySet = policy.Set
type PolicyConfig = policy.Config

var (
	ActionPosts    = policy.ActionPosts
	ActionComments = policy.ActionComments

	KindUniversal     = policy.KindUniversal
	KindLowReputation = policy.KindLowReputation
	KindDownvoteRatio = policy.KindDownvoteRatio
	KindModerator     = policy.KindModerator
)
