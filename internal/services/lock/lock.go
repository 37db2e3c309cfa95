// Package lock decides when a score record becomes read-only.
//
// A record starts Unlocked. After every score-affecting write, Evaluate locks
// it once every player has at least one nonzero mark and a recorded time.
// Only an explicit Unlock reopens it.
package lock

import (
	"strings"

	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/scoring"
)

// Transition describes what Evaluate did to a record
type Transition int

const (
	// Unchanged means the lock flag was left as it was
	Unchanged Transition = iota
	// Locked means the record moved from Unlocked to Locked
	Locked
)

// Eligible reports whether a record is complete enough to lock.
// A record with no players is never eligible.
func Eligible(r *model.ScoreRecord) bool {
	if len(r.Scores) == 0 {
		return false
	}
	for _, ps := range r.Scores {
		if scoring.ScoredCount(ps.Marks) == 0 {
			return false
		}
		if strings.TrimSpace(ps.Time) == "" {
			return false
		}
	}
	return true
}

// Evaluate locks the record if it is unlocked and eligible
func Evaluate(r *model.ScoreRecord) Transition {
	if r.IsLocked || !Eligible(r) {
		return Unchanged
	}
	r.IsLocked = true
	return Locked
}

// Guard rejects writes to a locked record
func Guard(r *model.ScoreRecord) error {
	if r.IsLocked {
		return model.ErrScoreLocked
	}
	return nil
}

// Unlock clears the lock without checking completeness or touching marks
func Unlock(r *model.ScoreRecord) {
	r.IsLocked = false
}
