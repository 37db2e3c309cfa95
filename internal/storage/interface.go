package storage

import (
	"context"
	"time"

	"github.com/mcoot/teamscore/internal/model"
)

// MutateFunc edits a score record in place. Returning an error aborts the
// write and leaves the stored record untouched.
type MutateFunc func(record *model.ScoreRecord) error

// Storage defines the interface for data persistence
type Storage interface {
	// Competition operations
	SaveCompetition(ctx context.Context, c *model.Competition) error
	GetCompetition(ctx context.Context, id model.CompetitionID) (*model.Competition, error)

	// Team operations
	SaveTeam(ctx context.Context, team *model.Team) error
	GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error)

	// Account operations
	SaveAccount(ctx context.Context, account *model.Account) error
	GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)

	// Judge operations. SaveJudge enforces one judge per (competition, category,
	// role) and unique non-empty usernames per competition.
	SaveJudge(ctx context.Context, judge *model.Judge) error
	GetJudge(ctx context.Context, id model.JudgeID) (*model.Judge, error)
	GetJudgeByUsername(ctx context.Context, competitionID model.CompetitionID, username string) (*model.Judge, error)
	ListJudges(ctx context.Context, filter model.JudgeFilter) ([]*model.Judge, error)

	// Score record operations
	GetScoreRecord(ctx context.Context, key model.ScoreKey) (*model.ScoreRecord, error)
	GetScoreRecordByID(ctx context.Context, id model.ScoreID) (*model.ScoreRecord, error)
	ListScoreRecords(ctx context.Context, filter model.ScoreFilter) ([]*model.ScoreRecord, error)

	// MutateScoreRecord atomically applies fn to the record with the given key.
	// When create is true and no record exists, fn receives a fresh record with
	// a new ID and the key fields set; otherwise ErrScoreNotFound is returned.
	// created reports whether a record was inserted. Version is incremented on
	// every successful write.
	MutateScoreRecord(ctx context.Context, key model.ScoreKey, create bool, fn MutateFunc) (record *model.ScoreRecord, created bool, err error)
	MutateScoreRecordByID(ctx context.Context, id model.ScoreID, fn MutateFunc) (*model.ScoreRecord, error)

	// Assignment change operations. Entries expire after ttl.
	RecordAssignmentChange(ctx context.Context, adminID model.AccountID, at time.Time, ttl time.Duration) error
	GetAssignmentChange(ctx context.Context, adminID model.AccountID) (at time.Time, found bool, err error)
}
