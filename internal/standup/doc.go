// Package standup runs the daily standup: it resolves participants, fans out
// the first question, advances each participant's record as replies arrive,
// and publishes individual reports and the end-of-window rollup.
package standup
