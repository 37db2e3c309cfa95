package model

import "time"

// AccountID uniquely identifies an operator account
type AccountID string

// AccountRole is the role carried by an operator account
type AccountRole string

const (
	AccountSuperAdmin AccountRole = "super_admin"
	AccountAdmin      AccountRole = "admin"
	AccountCoach      AccountRole = "coach"
	AccountPlayer     AccountRole = "player"
)

// Valid reports whether r is a known account role
func (r AccountRole) Valid() bool {
	switch r {
	case AccountSuperAdmin, AccountAdmin, AccountCoach, AccountPlayer:
		return true
	default:
		return false
	}
}

// Account is an operator identity (admins, coaches, players)
type Account struct {
	ID           AccountID   `json:"id"`
	Username     string      `json:"username"`
	DisplayName  string      `json:"displayName"`
	PasswordHash string      `json:"passwordHash"`
	Role         AccountRole `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// JudgeID uniquely identifies a judge slot
type JudgeID string

// Judge is one seat on a category panel within a competition.
// Empty placeholder slots have no name or credentials and are inactive.
type Judge struct {
	ID            JudgeID       `json:"id"`
	CompetitionID CompetitionID `json:"competitionId"`
	Gender        Gender        `json:"gender"`
	AgeGroup      AgeGroup      `json:"ageGroup"`
	Role          JudgeRole     `json:"judgeType"`
	JudgeNo       int           `json:"judgeNo"`
	Name          string        `json:"name"`
	Username      string        `json:"username"`
	PasswordHash  string        `json:"passwordHash"`
	IsActive      bool          `json:"isActive"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// Category returns the judge's scoring category
func (j *Judge) Category() Category {
	return Category{Gender: j.Gender, AgeGroup: j.AgeGroup}
}

// Complete reports whether the slot has a name and credentials
func (j *Judge) Complete() bool {
	return j.Name != "" && j.Username != "" && j.PasswordHash != ""
}

// JudgeFilter selects judges. Empty fields match everything.
type JudgeFilter struct {
	CompetitionID CompetitionID
	Gender        Gender
	AgeGroup      AgeGroup
}

// Matches reports whether the judge satisfies the filter
func (f JudgeFilter) Matches(j *Judge) bool {
	if f.CompetitionID != "" && j.CompetitionID != f.CompetitionID {
		return false
	}
	if f.Gender != "" && j.Gender != f.Gender {
		return false
	}
	if f.AgeGroup != "" && j.AgeGroup != f.AgeGroup {
		return false
	}
	return true
}
