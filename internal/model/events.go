package model

import "time"

// EventType identifies the type of real-time event
type EventType string

const (
	EventScoreUpdated            EventType = "score_updated"
	EventScoresSavedNotification EventType = "scores_saved_notification"
	EventScoreLocked             EventType = "score_locked"
	EventScoreUnlocked           EventType = "score_unlocked"
)

// Event is fanned out to every client in a category room
type Event struct {
	Type      EventType `json:"event"`
	Room      RoomID    `json:"roomId"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"data"`
}

// ScoreUpdatedPayload is sent when a single judge mark is saved.
// Clients upsert the (player, judge role) cell; Version lets them discard stale events.
type ScoreUpdatedPayload struct {
	ScoreID    ScoreID   `json:"scoreId"`
	PlayerID   PlayerID  `json:"playerId"`
	PlayerName string    `json:"playerName"`
	JudgeType  JudgeRole `json:"judgeType"`
	Score      float64   `json:"score"`
	RoomID     RoomID    `json:"roomId"`
	Version    int64     `json:"version"`
}

// ScoresSavedPayload is sent when a team's scores are bulk-saved
type ScoresSavedPayload struct {
	ScoreID       ScoreID  `json:"scoreId"`
	TeamID        TeamID   `json:"teamId"`
	TeamName      string   `json:"teamName"`
	Gender        Gender   `json:"gender"`
	AgeGroup      AgeGroup `json:"ageGroup"`
	PlayersScored int      `json:"playersScored"`
	Version       int64    `json:"version"`
}

// LockChangedPayload is sent when a record is locked or unlocked
type LockChangedPayload struct {
	ScoreID  ScoreID `json:"scoreId"`
	TeamID   TeamID  `json:"teamId"`
	IsLocked bool    `json:"isLocked"`
	Version  int64   `json:"version"`
}
