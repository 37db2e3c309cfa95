package storage

import (
	"github.com/google/uuid"

	"github.com/mcoot/teamscore/internal/model"
)

// NewScoreRecord returns an empty record for the key with a fresh ID
func NewScoreRecord(key model.ScoreKey) *model.ScoreRecord {
	return &model.ScoreRecord{
		ID:            model.ScoreID(uuid.NewString()),
		CompetitionID: key.CompetitionID,
		TeamID:        key.TeamID,
		Gender:        key.Category.Gender,
		AgeGroup:      key.Category.AgeGroup,
		Scores:        []model.PlayerScore{},
	}
}
