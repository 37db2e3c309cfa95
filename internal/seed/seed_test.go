package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/teamscore/internal/dependencies/mocks"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/storage/memory"
	"github.com/mcoot/teamscore/internal/testutil"
)

const document = `
accounts:
  - username: root
    password: rootpass
    role: super_admin
  - username: alice
    password: alicepass
    displayName: Alice Admin
    role: admin
competitions:
  - id: 6f1c2b3a-4d5e-4f60-8a7b-9c0d1e2f3a4b
    name: Spring Cup
    admins: [alice]
    teams:
      - id: team-falcons
        name: Falcons
        players:
          - id: p1
            name: Ana
            gender: Female
            ageGroup: U12
          - id: p2
            name: Bea
            gender: Female
            ageGroup: U12
    judges:
      - gender: Female
        ageGroup: U12
        judgeType: seniorJudge
        name: Senior
        username: senior
        password: judgepass
      - gender: Female
        ageGroup: U12
        judgeType: judge1
        name: First
        username: first
        password: judgepass
`

const competitionID = model.CompetitionID("6f1c2b3a-4d5e-4f60-8a7b-9c0d1e2f3a4b")

type SeedSuite struct {
	suite.Suite
	storage *memory.Storage
	loader  *Loader
	ctx     context.Context
}

func TestSeedSuite(t *testing.T) {
	suite.Run(t, new(SeedSuite))
}

func (s *SeedSuite) SetupTest() {
	s.storage = memory.New()
	s.loader = NewLoader(s.storage, mocks.NewMockClock(testutil.FixedTime), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *SeedSuite) apply(doc string) (Summary, error) {
	f, err := Parse(strings.NewReader(doc))
	s.Require().NoError(err)
	return s.loader.Apply(s.ctx, f)
}

func (s *SeedSuite) TestApplyWritesEverything() {
	sum, err := s.apply(document)
	s.Require().NoError(err)
	s.Equal(Summary{Accounts: 2, Competitions: 1, Teams: 1, Judges: 2}, sum)

	alice, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(model.AccountAdmin, alice.Role)
	s.Equal("Alice Admin", alice.DisplayName)
	s.NoError(bcrypt.CompareHashAndPassword([]byte(alice.PasswordHash), []byte("alicepass")))

	competition, err := s.storage.GetCompetition(s.ctx, competitionID)
	s.Require().NoError(err)
	s.Equal([]model.AccountID{alice.ID}, competition.AssignedAdmins)

	team, err := s.storage.GetTeam(s.ctx, "team-falcons")
	s.Require().NoError(err)
	s.Equal(competitionID, team.CompetitionID)
	s.Len(team.Players, 2)

	judge, err := s.storage.GetJudgeByUsername(s.ctx, competitionID, "senior")
	s.Require().NoError(err)
	s.Equal(model.RoleSeniorJudge, judge.Role)
	s.Equal(1, judge.JudgeNo)
	s.True(judge.IsActive)
}

func (s *SeedSuite) TestApplyTwiceKeepsIdentities() {
	_, err := s.apply(document)
	s.Require().NoError(err)
	alice, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	senior, err := s.storage.GetJudgeByUsername(s.ctx, competitionID, "senior")
	s.Require().NoError(err)

	_, err = s.apply(document)
	s.Require().NoError(err)

	again, err := s.storage.GetAccountByUsername(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(alice.ID, again.ID)

	judges, err := s.storage.ListJudges(s.ctx, model.JudgeFilter{CompetitionID: competitionID})
	s.Require().NoError(err)
	s.Len(judges, 2)

	seniorAgain, err := s.storage.GetJudgeByUsername(s.ctx, competitionID, "senior")
	s.Require().NoError(err)
	s.Equal(senior.ID, seniorAgain.ID)
}

func (s *SeedSuite) TestRejectsInvalidDocuments() {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown role", `
accounts:
  - {username: x, password: y, role: owner}`},
		{"competition id not a uuid", `
competitions:
  - {id: cup-1, name: Cup}`},
		{"unknown admin", `
competitions:
  - {id: 6f1c2b3a-4d5e-4f60-8a7b-9c0d1e2f3a4b, name: Cup, admins: [ghost]}`},
		{"bad player category", `
competitions:
  - id: 6f1c2b3a-4d5e-4f60-8a7b-9c0d1e2f3a4b
    name: Cup
    teams:
      - {name: T, players: [{name: P, gender: Male, ageGroup: U16}]}`},
		{"bad judge type", `
competitions:
  - id: 6f1c2b3a-4d5e-4f60-8a7b-9c0d1e2f3a4b
    name: Cup
    judges:
      - {gender: Male, ageGroup: U14, judgeType: judge9, name: J, username: j, password: p}`},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			_, err := s.apply(tt.doc)
			s.ErrorIs(err, ErrInvalidSeed)
		})
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse(strings.NewReader("acounts: []\n"))
	if err == nil {
		t.Fatal("expected an error for a misspelled key")
	}
}

func TestParseEmptyDocument(t *testing.T) {
	f, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Accounts) != 0 || len(f.Competitions) != 0 {
		t.Fatalf("expected an empty document, got %+v", f)
	}
}
