package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/storage"
)

// FixedTime is the default instant used by mock clocks in tests
var FixedTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// Hash returns a cheap bcrypt hash for test credentials
func Hash(t testing.TB, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// NewCompetition stores a competition with the given assigned admins
func NewCompetition(t testing.TB, store storage.Storage, name string, admins ...model.AccountID) *model.Competition {
	t.Helper()
	c := &model.Competition{
		ID:             model.CompetitionID(uuid.NewString()),
		Name:           name,
		AssignedAdmins: admins,
		CreatedAt:      FixedTime,
		UpdatedAt:      FixedTime,
	}
	require.NoError(t, store.SaveCompetition(context.Background(), c))
	return c
}

// NewTeam stores a team in the competition
func NewTeam(t testing.TB, store storage.Storage, competitionID model.CompetitionID, name string, players ...model.Player) *model.Team {
	t.Helper()
	team := &model.Team{
		ID:            model.TeamID(uuid.NewString()),
		CompetitionID: competitionID,
		Name:          name,
		Players:       players,
	}
	require.NoError(t, store.SaveTeam(context.Background(), team))
	return team
}

// NewAccount stores an operator account with a bcrypt-hashed password
func NewAccount(t testing.TB, store storage.Storage, username, password string, role model.AccountRole) *model.Account {
	t.Helper()
	account := &model.Account{
		ID:           model.AccountID(uuid.NewString()),
		Username:     username,
		DisplayName:  username,
		PasswordHash: Hash(t, password),
		Role:         role,
		CreatedAt:    FixedTime,
	}
	require.NoError(t, store.SaveAccount(context.Background(), account))
	return account
}

// NewJudge stores an active judge occupying one panel seat
func NewJudge(t testing.TB, store storage.Storage, competitionID model.CompetitionID, category model.Category, role model.JudgeRole, username, password string) *model.Judge {
	t.Helper()
	judge := &model.Judge{
		ID:            model.JudgeID(uuid.NewString()),
		CompetitionID: competitionID,
		Gender:        category.Gender,
		AgeGroup:      category.AgeGroup,
		Role:          role,
		JudgeNo:       role.Number(),
		Name:          role.DisplayName(),
		Username:      username,
		PasswordHash:  Hash(t, password),
		IsActive:      true,
		CreatedAt:     FixedTime,
		UpdatedAt:     FixedTime,
	}
	require.NoError(t, store.SaveJudge(context.Background(), judge))
	return judge
}
