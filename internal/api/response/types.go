package response

import (
	"math"
	"time"

	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/auth"
	"github.com/mcoot/teamscore/internal/services/ranking"
	"github.com/mcoot/teamscore/internal/services/scorecard"
)

// Token is the response for sign-in endpoints
type Token struct {
	Token         string    `json:"token"`
	Role          string    `json:"role"`
	Subject       string    `json:"subject"`
	CompetitionID string    `json:"competitionId,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// TokenFromAuth converts an issued auth token
func TokenFromAuth(t *auth.Token) Token {
	return Token{
		Token:         t.Value,
		Role:          string(t.Claims.Role),
		Subject:       t.Claims.Subject,
		CompetitionID: t.Claims.CompetitionID,
		ExpiresAt:     t.ExpiresAt,
	}
}

// Mark is the response for a single judge mark
type Mark struct {
	ScoreID      string  `json:"scoreId"`
	PlayerID     string  `json:"playerId"`
	JudgeType    string  `json:"judgeType"`
	Score        float64 `json:"score"`
	AverageMarks float64 `json:"averageMarks"`
	FinalScore   float64 `json:"finalScore"`
	IsLocked     bool    `json:"isLocked"`
	Version      int64   `json:"version"`
}

// MarkFromResult converts a committed judge mark
func MarkFromResult(r *scorecard.MarkResult) Mark {
	return Mark{
		ScoreID:      string(r.Record.ID),
		PlayerID:     string(r.Player.PlayerID),
		JudgeType:    string(r.Role),
		Score:        r.Player.Marks.Get(r.Role),
		AverageMarks: r.Player.AverageMarks,
		FinalScore:   r.Player.FinalScore,
		IsLocked:     r.Record.IsLocked,
		Version:      r.Record.Version,
	}
}

// BulkSave is the response for a bulk save
type BulkSave struct {
	ScoreID       string `json:"scoreId"`
	PlayersScored int    `json:"playersScored"`
	IsLocked      bool   `json:"isLocked"`
	Version       int64  `json:"version"`
}

// BulkSaveFromResult converts a committed bulk save
func BulkSaveFromResult(r *scorecard.BulkResult) BulkSave {
	return BulkSave{
		ScoreID:       string(r.Record.ID),
		PlayersScored: len(r.Record.Scores),
		IsLocked:      r.Record.IsLocked,
		Version:       r.Record.Version,
	}
}

// Unlock is the response for an unlock
type Unlock struct {
	ScoreID  string `json:"scoreId"`
	IsLocked bool   `json:"isLocked"`
	Version  int64  `json:"version"`
}

// Scores wraps a list of score records
type Scores struct {
	Scores []*model.ScoreRecord `json:"scores"`
}

// IndividualRank is one row of the individual leaderboard
type IndividualRank struct {
	Rank             int      `json:"rank"`
	PlayerID         string   `json:"playerId"`
	PlayerName       string   `json:"playerName"`
	TeamID           string   `json:"teamId"`
	TeamName         string   `json:"teamName"`
	AverageMarks     float64  `json:"averageMarks"`
	SeniorJudgeMarks float64  `json:"seniorJudgeMarks"`
	Time             string   `json:"time"`
	TimeSeconds      *float64 `json:"timeSeconds"`
	FinalScore       float64  `json:"finalScore"`
}

// IndividualFromEntry converts a leaderboard entry. Unparseable times are
// reported as null.
func IndividualFromEntry(e ranking.IndividualEntry) IndividualRank {
	var seconds *float64
	if !math.IsInf(e.TimeSeconds, 0) {
		v := e.TimeSeconds
		seconds = &v
	}
	return IndividualRank{
		Rank:             e.Rank,
		PlayerID:         string(e.PlayerID),
		PlayerName:       e.PlayerName,
		TeamID:           string(e.TeamID),
		TeamName:         e.TeamName,
		AverageMarks:     e.AverageMarks,
		SeniorJudgeMarks: e.SeniorJudgeMarks,
		Time:             e.Time,
		TimeSeconds:      seconds,
		FinalScore:       e.FinalScore,
	}
}

// IndividualRanking wraps the individual leaderboard
type IndividualRanking struct {
	Rankings []IndividualRank `json:"rankings"`
}

// IndividualRankingFromEntries converts a full leaderboard
func IndividualRankingFromEntries(entries []ranking.IndividualEntry) IndividualRanking {
	out := make([]IndividualRank, len(entries))
	for i, e := range entries {
		out[i] = IndividualFromEntry(e)
	}
	return IndividualRanking{Rankings: out}
}

// TeamRank is one row of the team leaderboard
type TeamRank struct {
	Rank              int              `json:"rank"`
	TeamID            string           `json:"teamId"`
	TeamName          string           `json:"teamName"`
	TeamTotalScore    float64          `json:"teamTotalScore"`
	AverageTeamScore  float64          `json:"averageTeamScore"`
	ContributingCount int              `json:"contributingCount"`
	TopPlayers        []IndividualRank `json:"topPlayers"`
}

// TeamRanking wraps the team leaderboard
type TeamRanking struct {
	Rankings []TeamRank `json:"rankings"`
}

// TeamRankingFromEntries converts a full team leaderboard
func TeamRankingFromEntries(entries []ranking.TeamEntry) TeamRanking {
	out := make([]TeamRank, len(entries))
	for i, e := range entries {
		top := make([]IndividualRank, len(e.TopPlayers))
		for j, p := range e.TopPlayers {
			top[j] = IndividualFromEntry(p)
		}
		out[i] = TeamRank{
			Rank:              e.Rank,
			TeamID:            string(e.TeamID),
			TeamName:          e.TeamName,
			TeamTotalScore:    e.TeamTotalScore,
			AverageTeamScore:  e.AverageTeamScore,
			ContributingCount: e.ContributingCount,
			TopPlayers:        top,
		}
	}
	return TeamRanking{Rankings: out}
}

// Judge is a judge seat without its credential
type Judge struct {
	ID        string    `json:"id"`
	Gender    string    `json:"gender"`
	AgeGroup  string    `json:"ageGroup"`
	JudgeType string    `json:"judgeType"`
	JudgeNo   int       `json:"judgeNo"`
	Name      string    `json:"name"`
	Username  string    `json:"username"`
	IsActive  bool      `json:"isActive"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// JudgeFromModel converts a model.Judge
func JudgeFromModel(j *model.Judge) Judge {
	return Judge{
		ID:        string(j.ID),
		Gender:    string(j.Gender),
		AgeGroup:  string(j.AgeGroup),
		JudgeType: string(j.Role),
		JudgeNo:   j.JudgeNo,
		Name:      j.Name,
		Username:  j.Username,
		IsActive:  j.IsActive,
		UpdatedAt: j.UpdatedAt,
	}
}

// Panel wraps a list of judge seats
type Panel struct {
	Judges []Judge `json:"judges"`
}

// PanelFromModels converts judge seats
func PanelFromModels(judges []*model.Judge) Panel {
	out := make([]Judge, len(judges))
	for i, j := range judges {
		out[i] = JudgeFromModel(j)
	}
	return Panel{Judges: out}
}

// Competition is the response for competition assignment updates
type Competition struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	AssignedAdmins []string `json:"assignedAdmins"`
}

// CompetitionFromModel converts a model.Competition
func CompetitionFromModel(c *model.Competition) Competition {
	admins := make([]string, len(c.AssignedAdmins))
	for i, id := range c.AssignedAdmins {
		admins[i] = string(id)
	}
	return Competition{ID: string(c.ID), Name: c.Name, AssignedAdmins: admins}
}

// Health is the response for the health check
type Health struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}
