// Submission rate-limiting engine for the Grove forum.
//
// This package (`github.com/grove-social/weir/ratelimit`) decides, at the
// moment a user tries to create a post or comment, whether they must wait
// and until when. It combines moderator-assigned per-user limits, universal
// anti-spam limits, and reputation-derived automatic limits into one binding
// decision per submission attempt, under a strictest-wins rule. The engine
// only reads: the surrounding content-creation flow decides whether to
// proceed or surface the rejection.
//
// See `cmd/weir` for a daemon exposing the engine over HTTP.
package ratelimit
