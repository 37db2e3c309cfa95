package realtime

import (
	"encoding/json"
	"log/slog"

	"github.com/mcoot/teamscore/internal/dependencies/clock"
	"github.com/mcoot/teamscore/internal/metrics"
	"github.com/mcoot/teamscore/internal/model"
)

// Broadcaster turns score changes into room events.
// Delivery is best-effort: rooms nobody has joined are skipped.
type Broadcaster struct {
	hubManager *HubManager
	clock      clock.Clock
	logger     *slog.Logger
	metrics    *metrics.Recorder
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, clock clock.Clock, logger *slog.Logger, recorder *metrics.Recorder) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		clock:      clock,
		logger:     logger.With(slog.String("component", "broadcaster")),
		metrics:    recorder,
	}
}

// ScoreUpdated announces a single saved judge mark
func (b *Broadcaster) ScoreUpdated(record *model.ScoreRecord, player model.PlayerScore, role model.JudgeRole) {
	room := record.Category().RoomID()
	b.publish(record.CompetitionID, room, model.EventScoreUpdated, model.ScoreUpdatedPayload{
		ScoreID:    record.ID,
		PlayerID:   player.PlayerID,
		PlayerName: player.PlayerName,
		JudgeType:  role,
		Score:      player.Marks.Get(role),
		RoomID:     room,
		Version:    record.Version,
	})
}

// ScoresSaved announces a bulk save of a team's scores
func (b *Broadcaster) ScoresSaved(record *model.ScoreRecord) {
	b.publish(record.CompetitionID, record.Category().RoomID(), model.EventScoresSavedNotification, model.ScoresSavedPayload{
		ScoreID:       record.ID,
		TeamID:        record.TeamID,
		TeamName:      record.TeamName,
		Gender:        record.Gender,
		AgeGroup:      record.AgeGroup,
		PlayersScored: len(record.Scores),
		Version:       record.Version,
	})
}

// LockChanged announces a record moving into or out of the locked state
func (b *Broadcaster) LockChanged(record *model.ScoreRecord) {
	event := model.EventScoreUnlocked
	if record.IsLocked {
		event = model.EventScoreLocked
	}
	b.publish(record.CompetitionID, record.Category().RoomID(), event, model.LockChangedPayload{
		ScoreID:  record.ID,
		TeamID:   record.TeamID,
		IsLocked: record.IsLocked,
		Version:  record.Version,
	})
}

func (b *Broadcaster) publish(competitionID model.CompetitionID, room model.RoomID, eventType model.EventType, payload any) {
	hub := b.hubManager.GetHub(RoomKey{CompetitionID: competitionID, Room: room})
	if hub == nil {
		return
	}

	data, err := json.Marshal(model.Event{
		Type:      eventType,
		Room:      room,
		Timestamp: b.clock.Now(),
		Payload:   payload,
	})
	if err != nil {
		b.logger.Error("failed to encode room event",
			slog.String("event", string(eventType)),
			slog.String("room", string(room)),
			slog.Any("error", err))
		return
	}

	hub.Broadcast(Frame{Event: string(eventType), Data: data})
	b.metrics.EventBroadcast(string(eventType))
}
