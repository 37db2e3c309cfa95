package model

import "time"

// ScoreID uniquely identifies a score record
type ScoreID string

// JudgeRole is one of the five ordinal seats on a judge panel
type JudgeRole string

const (
	RoleSeniorJudge JudgeRole = "seniorJudge"
	RoleJudge1      JudgeRole = "judge1"
	RoleJudge2      JudgeRole = "judge2"
	RoleJudge3      JudgeRole = "judge3"
	RoleJudge4      JudgeRole = "judge4"
)

// JudgeRoles lists the panel seats in judge-number order
var JudgeRoles = []JudgeRole{RoleSeniorJudge, RoleJudge1, RoleJudge2, RoleJudge3, RoleJudge4}

// Valid reports whether r is a panel seat
func (r JudgeRole) Valid() bool {
	return r.Number() > 0
}

// Number returns the 1-based judge number, or 0 for an unknown role
func (r JudgeRole) Number() int {
	for i, role := range JudgeRoles {
		if role == r {
			return i + 1
		}
	}
	return 0
}

// DisplayName returns the human-readable seat name
func (r JudgeRole) DisplayName() string {
	switch r {
	case RoleSeniorJudge:
		return "Senior Judge"
	case RoleJudge1:
		return "Judge 1"
	case RoleJudge2:
		return "Judge 2"
	case RoleJudge3:
		return "Judge 3"
	case RoleJudge4:
		return "Judge 4"
	default:
		return string(r)
	}
}

// Marks holds one mark per panel seat. Zero means not yet scored.
type Marks struct {
	SeniorJudge float64 `json:"seniorJudge"`
	Judge1      float64 `json:"judge1"`
	Judge2      float64 `json:"judge2"`
	Judge3      float64 `json:"judge3"`
	Judge4      float64 `json:"judge4"`
}

// Get returns the mark for a seat
func (m Marks) Get(role JudgeRole) float64 {
	switch role {
	case RoleSeniorJudge:
		return m.SeniorJudge
	case RoleJudge1:
		return m.Judge1
	case RoleJudge2:
		return m.Judge2
	case RoleJudge3:
		return m.Judge3
	case RoleJudge4:
		return m.Judge4
	default:
		return 0
	}
}

// With returns a copy of m with the seat's mark replaced
func (m Marks) With(role JudgeRole, value float64) Marks {
	switch role {
	case RoleSeniorJudge:
		m.SeniorJudge = value
	case RoleJudge1:
		m.Judge1 = value
	case RoleJudge2:
		m.Judge2 = value
	case RoleJudge3:
		m.Judge3 = value
	case RoleJudge4:
		m.Judge4 = value
	}
	return m
}

// Values returns the marks in seat order
func (m Marks) Values() []float64 {
	return []float64{m.SeniorJudge, m.Judge1, m.Judge2, m.Judge3, m.Judge4}
}

// PlayerScore is one player's entry within a score record
type PlayerScore struct {
	PlayerID       PlayerID `json:"playerId"`
	PlayerName     string   `json:"playerName"`
	Time           string   `json:"time"`
	Marks          Marks    `json:"marks"`
	AverageMarks   float64  `json:"averageMarks"`
	Deduction      float64  `json:"deduction"`
	OtherDeduction float64  `json:"otherDeduction"`
	FinalScore     float64  `json:"finalScore"`
}

// ScoreKey is the natural key of a score record
type ScoreKey struct {
	CompetitionID CompetitionID
	TeamID        TeamID
	Category      Category
}

// ScoreRecord holds a team's scores for one category of one competition
type ScoreRecord struct {
	ID             ScoreID       `json:"id"`
	CompetitionID  CompetitionID `json:"competitionId"`
	TeamID         TeamID        `json:"teamId"`
	TeamName       string        `json:"teamName"`
	Gender         Gender        `json:"gender"`
	AgeGroup       AgeGroup      `json:"ageGroup"`
	TimeKeeperName string        `json:"timeKeeperName"`
	ScorerName     string        `json:"scorerName"`
	Remarks        string        `json:"remarks"`
	IsLocked       bool          `json:"isLocked"`
	Scores         []PlayerScore `json:"scores"`
	Version        int64         `json:"version"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// Key returns the natural key of the record
func (r *ScoreRecord) Key() ScoreKey {
	return ScoreKey{
		CompetitionID: r.CompetitionID,
		TeamID:        r.TeamID,
		Category:      r.Category(),
	}
}

// Category returns the record's scoring category
func (r *ScoreRecord) Category() Category {
	return Category{Gender: r.Gender, AgeGroup: r.AgeGroup}
}

// Clone returns a deep copy of the record
func (r *ScoreRecord) Clone() *ScoreRecord {
	c := *r
	c.Scores = make([]PlayerScore, len(r.Scores))
	copy(c.Scores, r.Scores)
	return &c
}

// ScoreFilter selects score records. Empty fields match everything.
type ScoreFilter struct {
	CompetitionID CompetitionID
	TeamID        TeamID
	Gender        Gender
	AgeGroup      AgeGroup
}

// Matches reports whether the record satisfies the filter
func (f ScoreFilter) Matches(r *ScoreRecord) bool {
	if f.CompetitionID != "" && r.CompetitionID != f.CompetitionID {
		return false
	}
	if f.TeamID != "" && r.TeamID != f.TeamID {
		return false
	}
	if f.Gender != "" && r.Gender != f.Gender {
		return false
	}
	if f.AgeGroup != "" && r.AgeGroup != f.AgeGroup {
		return false
	}
	return true
}
