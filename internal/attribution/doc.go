// Package attribution credits subscriber signups to the newsletter posts
// that most plausibly drove them.
//
// For a lookback window of W days, a signup is attributed to the most recent
// published post whose date is at or before the signup time and no more than
// W days earlier (both boundaries inclusive). Signups with no qualifying
// post are organic; subscribers without a signup timestamp are excluded up
// front and tracked separately.
//
// Each configured window runs as an independent computation with no shared
// mutable state, so windows may be evaluated concurrently. For a fixed
// input and window the result is byte-identical across runs: candidate
// posts are scanned in a stably sorted date-descending order and results
// are emitted in that same order before the final ranking sort.
package attribution
