package model

import (
	"slices"
	"time"
)

// CompetitionID uniquely identifies a competition. Always a UUID string.
type CompetitionID string

// TeamID uniquely identifies a team
type TeamID string

// PlayerID uniquely identifies a player
type PlayerID string

// Competition is read by the scoring engine; its CRUD lives elsewhere
type Competition struct {
	ID             CompetitionID `json:"id"`
	Name           string        `json:"name"`
	AssignedAdmins []AccountID   `json:"assignedAdmins"`
	Deleted        bool          `json:"deleted"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// HasAdmin reports whether the admin is assigned to the competition
func (c *Competition) HasAdmin(id AccountID) bool {
	return slices.Contains(c.AssignedAdmins, id)
}

// Player is a team member as registered by the team collaborator
type Player struct {
	ID       PlayerID `json:"id"`
	Name     string   `json:"name"`
	Gender   Gender   `json:"gender"`
	AgeGroup AgeGroup `json:"ageGroup"`
}

// Category returns the category the player competes in
func (p *Player) Category() Category {
	return Category{Gender: p.Gender, AgeGroup: p.AgeGroup}
}

// Team is read by the scoring engine; its CRUD lives elsewhere
type Team struct {
	ID            TeamID        `json:"id"`
	CompetitionID CompetitionID `json:"competitionId"`
	Name          string        `json:"name"`
	Players       []Player      `json:"players"`
}

// GetPlayer returns the team player with the given id, or nil
func (t *Team) GetPlayer(id PlayerID) *Player {
	for i := range t.Players {
		if t.Players[i].ID == id {
			return &t.Players[i]
		}
	}
	return nil
}
