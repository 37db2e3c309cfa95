package redis

import (
	"fmt"

	"github.com/mcoot/teamscore/internal/model"
)

// Key prefix for all scoring data
const keyPrefix = "teamscore"

// Key generation functions for each entity type

func competitionKey(id model.CompetitionID) string {
	return fmt.Sprintf("%s:competition:%s", keyPrefix, id)
}

func teamKey(id model.TeamID) string {
	return fmt.Sprintf("%s:team:%s", keyPrefix, id)
}

func accountKey(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s", keyPrefix, id)
}

// accountUsernameIndexKey maps a username to an account id
func accountUsernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:account_username:%s", keyPrefix, username)
}

func judgeKey(id model.JudgeID) string {
	return fmt.Sprintf("%s:judge:%s", keyPrefix, id)
}

// judgeSlotIndexKey maps a panel seat to the judge occupying it
func judgeSlotIndexKey(compID model.CompetitionID, category model.Category, role model.JudgeRole) string {
	return fmt.Sprintf("%s:idx:judge_slot:%s:%s:%s:%s", keyPrefix, compID, category.Gender, category.AgeGroup, role)
}

// judgeUsernameIndexKey maps a competition-scoped judge username to a judge id
func judgeUsernameIndexKey(compID model.CompetitionID, username string) string {
	return fmt.Sprintf("%s:idx:judge_username:%s:%s", keyPrefix, compID, username)
}

// judgesForCompetitionIndexKey is the SET of judge ids in a competition
func judgesForCompetitionIndexKey(compID model.CompetitionID) string {
	return fmt.Sprintf("%s:idx:judges:%s", keyPrefix, compID)
}

func scoreKey(id model.ScoreID) string {
	return fmt.Sprintf("%s:score:%s", keyPrefix, id)
}

// scoreNaturalKeyIndexKey maps (competition, team, category) to a score id
func scoreNaturalKeyIndexKey(key model.ScoreKey) string {
	return fmt.Sprintf("%s:idx:score_key:%s:%s:%s:%s", keyPrefix,
		key.CompetitionID, key.TeamID, key.Category.Gender, key.Category.AgeGroup)
}

// scoresForCompetitionIndexKey is the SET of score ids in a competition
func scoresForCompetitionIndexKey(compID model.CompetitionID) string {
	return fmt.Sprintf("%s:idx:scores:%s", keyPrefix, compID)
}

// allScoresIndexKey is the SET of every score id
func allScoresIndexKey() string {
	return fmt.Sprintf("%s:idx:scores", keyPrefix)
}

// assignmentChangeKey records when an admin's competition assignments changed
func assignmentChangeKey(adminID model.AccountID) string {
	return fmt.Sprintf("%s:assignment_change:%s", keyPrefix, adminID)
}
