package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/teamscore/internal/api"
	"github.com/mcoot/teamscore/internal/api/apierr"
	"github.com/mcoot/teamscore/internal/api/middleware"
	"github.com/mcoot/teamscore/internal/api/response"
	"github.com/mcoot/teamscore/internal/factory"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/testutil"
)

var u14 = model.Category{Gender: model.GenderMale, AgeGroup: "U14"}

// testServer drives the full router in-process
type testServer struct {
	app     *factory.TestApp
	handler http.Handler
}

func newTestServer(t *testing.T, opts ...factory.TestOption) *testServer {
	t.Helper()
	app := factory.NewTestApp(opts...)
	t.Cleanup(func() { _ = app.Close() })
	return &testServer{app: app, handler: app.Handler()}
}

func (ts *testServer) request(method, path string, body any, token, competitionID string) *httptest.ResponseRecorder {
	reqBody := bytes.NewBuffer(nil)
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if competitionID != "" {
		req.Header.Set(middleware.CompetitionHeader, competitionID)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.ErrorResponse {
	t.Helper()
	var body apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/health", nil, "", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, response.Health{Status: "ok", Storage: "memory"}, resp)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	ts.request(http.MethodGet, "/health", nil, "", "")
	rr := ts.request(http.MethodGet, "/metrics", nil, "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `teamscore_http_requests_total{method="GET",route="/health",status_code="200"}`)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/nope", nil, "", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Error)
}

func TestRequestIDIsEchoed(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/health", nil, "", "")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

// ScoringSuite covers the scoring routes with one seeded competition
type ScoringSuite struct {
	suite.Suite
	ts *testServer

	competition *model.Competition
	team        *model.Team
	superToken  string
	adminToken  string
	judgeTokens map[model.JudgeRole]string
}

func TestScoringSuite(t *testing.T) {
	suite.Run(t, new(ScoringSuite))
}

func (s *ScoringSuite) SetupTest() {
	s.ts = newTestServer(s.T())
	store := s.ts.app.Storage

	testutil.NewAccount(s.T(), store, "root", "rootpass", model.AccountSuperAdmin)
	admin := testutil.NewAccount(s.T(), store, "alice", "alicepass", model.AccountAdmin)
	s.competition = testutil.NewCompetition(s.T(), store, "Regional Open", admin.ID)
	s.team = testutil.NewTeam(s.T(), store, s.competition.ID, "Team A",
		model.Player{ID: "p1", Name: "Piet", Gender: u14.Gender, AgeGroup: u14.AgeGroup},
		model.Player{ID: "p2", Name: "Paul", Gender: u14.Gender, AgeGroup: u14.AgeGroup},
	)

	s.superToken = s.login("/api/v1/auth/login", map[string]string{"username": "root", "password": "rootpass"})
	s.adminToken = s.login("/api/v1/auth/login", map[string]string{"username": "alice", "password": "alicepass"})

	s.judgeTokens = make(map[model.JudgeRole]string)
	for _, role := range model.JudgeRoles {
		username := "judge-" + string(role)
		testutil.NewJudge(s.T(), store, s.competition.ID, u14, role, username, "pw")
		s.judgeTokens[role] = s.login("/api/v1/auth/judge/login", map[string]string{
			"competitionId": string(s.competition.ID),
			"username":      username,
			"password":      "pw",
		})
	}
}

func (s *ScoringSuite) login(path string, body map[string]string) string {
	rr := s.ts.request(http.MethodPost, path, body, "", "")
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	var resp response.Token
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &resp))
	s.Require().NotEmpty(resp.Token)
	return resp.Token
}

func (s *ScoringSuite) mark(role model.JudgeRole, playerID string, score float64) *httptest.ResponseRecorder {
	return s.ts.request(http.MethodPost, "/api/v1/scores/marks", map[string]any{
		"teamId":   s.team.ID,
		"playerId": playerID,
		"gender":   u14.Gender,
		"ageGroup": u14.AgeGroup,
		"score":    score,
	}, s.judgeTokens[role], "")
}

func (s *ScoringSuite) competitionID() string {
	return string(s.competition.ID)
}

func (s *ScoringSuite) TestLoginRejectsBadPassword() {
	rr := s.ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "alice", "password": "wrong"}, "", "")
	s.Equal(http.StatusUnauthorized, rr.Code)
	s.Equal(apierr.CodeInvalidCredentials, decodeError(s.T(), rr).Error)
}

func (s *ScoringSuite) TestJudgeTokenCarriesCompetition() {
	rr := s.ts.request(http.MethodPost, "/api/v1/auth/judge/login", map[string]string{
		"competitionId": s.competitionID(),
		"username":      "judge-judge1",
		"password":      "pw",
	}, "", "")
	s.Require().Equal(http.StatusOK, rr.Code)

	var resp response.Token
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &resp))
	s.Equal("judge", resp.Role)
	s.Equal(s.competitionID(), resp.CompetitionID)
	s.True(testutil.FixedTime.Add(7*24*time.Hour).Equal(resp.ExpiresAt))
}

// Test: Full panel locks the record; further marks are refused until unlock
func (s *ScoringSuite) TestMarkLockUnlockFlow() {
	scores := map[model.JudgeRole]float64{
		model.RoleSeniorJudge: 8.0,
		model.RoleJudge1:      7.5,
		model.RoleJudge2:      8.5,
		model.RoleJudge3:      7.0,
		model.RoleJudge4:      9.0,
	}

	var last response.Mark
	for _, role := range model.JudgeRoles {
		rr := s.mark(role, "p1", scores[role])
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
		s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &last))
		s.Equal(string(role), last.JudgeType)
	}

	s.True(last.IsLocked)
	s.InDelta(8.0, last.AverageMarks, 1e-9)
	s.InDelta(8.0, last.FinalScore, 1e-9)
	s.EqualValues(5, last.Version)

	rr := s.mark(model.RoleJudge1, "p2", 6)
	s.Equal(http.StatusForbidden, rr.Code)
	s.Equal(apierr.CodeScoreLocked, decodeError(s.T(), rr).Error)

	// Judges cannot unlock
	rr = s.ts.request(http.MethodPost, "/api/v1/scores/"+last.ScoreID+"/unlock", nil, s.judgeTokens[model.RoleSeniorJudge], "")
	s.Equal(http.StatusForbidden, rr.Code)

	rr = s.ts.request(http.MethodPost, "/api/v1/scores/"+last.ScoreID+"/unlock", nil, s.adminToken, s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	var unlocked response.Unlock
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &unlocked))
	s.False(unlocked.IsLocked)

	rr = s.mark(model.RoleJudge1, "p2", 6)
	s.Equal(http.StatusOK, rr.Code, rr.Body.String())

	// Anyone may read the record back
	rr = s.ts.request(http.MethodGet, "/api/v1/scores/"+last.ScoreID, nil, "", s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code)

	var record model.ScoreRecord
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &record))
	s.Len(record.Scores, 2)
	s.False(record.IsLocked)
}

func (s *ScoringSuite) TestJudgeOutsidePanelCategory() {
	rr := s.ts.request(http.MethodPost, "/api/v1/scores/marks", map[string]any{
		"teamId":   s.team.ID,
		"playerId": "p1",
		"gender":   "Female",
		"ageGroup": "U14",
		"score":    5,
	}, s.judgeTokens[model.RoleJudge1], "")

	s.Equal(http.StatusForbidden, rr.Code)
	s.Equal(apierr.CodeJudgeScopeMismatch, decodeError(s.T(), rr).Error)
}

func (s *ScoringSuite) TestPlayerOutsideCategoryIsRefused() {
	mixed := testutil.NewTeam(s.T(), s.ts.app.Storage, s.competition.ID, "Team B",
		model.Player{ID: "q1", Name: "Quinn", Gender: model.GenderFemale, AgeGroup: "U10"},
	)

	rr := s.ts.request(http.MethodPost, "/api/v1/scores/marks", map[string]any{
		"teamId":   mixed.ID,
		"playerId": "q1",
		"gender":   u14.Gender,
		"ageGroup": u14.AgeGroup,
		"score":    9.5,
		"time":     "1:00",
	}, s.judgeTokens[model.RoleSeniorJudge], "")
	s.Equal(http.StatusForbidden, rr.Code)
	s.Equal(apierr.CodePlayerScopeMismatch, decodeError(s.T(), rr).Error)

	body := s.bulkBody()
	body["teamId"] = mixed.ID
	body["scores"] = []map[string]any{{"playerId": "q1", "time": "1:00", "marks": map[string]float64{"seniorJudge": 9}}}
	rr = s.ts.request(http.MethodPost, "/api/v1/scores", body, s.adminToken, s.competitionID())
	s.Equal(http.StatusForbidden, rr.Code)
	s.Equal(apierr.CodePlayerScopeMismatch, decodeError(s.T(), rr).Error)

	rr = s.ts.request(http.MethodGet, "/api/v1/rankings/individual?gender=Male&ageGroup=U14", nil, "", s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"rankings":[]}`, rr.Body.String())
}

func (s *ScoringSuite) TestMarkValidation() {
	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"score above ten", map[string]any{"teamId": "t", "playerId": "p", "gender": "Male", "ageGroup": "U14", "score": 10.5}, "score"},
		{"negative score", map[string]any{"teamId": "t", "playerId": "p", "gender": "Male", "ageGroup": "U14", "score": -1}, "score"},
		{"missing score", map[string]any{"teamId": "t", "playerId": "p", "gender": "Male", "ageGroup": "U14"}, "score"},
		{"unknown gender", map[string]any{"teamId": "t", "playerId": "p", "gender": "Mixed", "ageGroup": "U14", "score": 5}, "gender"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rr := s.ts.request(http.MethodPost, "/api/v1/scores/marks", tt.body, s.judgeTokens[model.RoleJudge1], "")
			s.Equal(http.StatusBadRequest, rr.Code)

			body := decodeError(s.T(), rr)
			s.Equal(apierr.CodeValidationFailed, body.Error)
			s.Equal(tt.field, body.Field)
		})
	}
}

func (s *ScoringSuite) TestMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/scores/marks", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+s.judgeTokens[model.RoleJudge1])
	rr := httptest.NewRecorder()
	s.ts.handler.ServeHTTP(rr, req)

	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidRequest, decodeError(s.T(), rr).Error)
}

func (s *ScoringSuite) bulkBody() map[string]any {
	return map[string]any{
		"teamId":   s.team.ID,
		"gender":   u14.Gender,
		"ageGroup": u14.AgeGroup,
		"scores": []map[string]any{
			{
				"playerId":  "p1",
				"time":      "1:30",
				"marks":     map[string]float64{"seniorJudge": 8, "judge1": 7, "judge2": 9, "judge3": 8, "judge4": 6},
				"deduction": 0.5,
			},
		},
	}
}

func (s *ScoringSuite) TestBulkSaveCreatesThenUpdates() {
	rr := s.ts.request(http.MethodPost, "/api/v1/scores", s.bulkBody(), s.adminToken, s.competitionID())
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())

	var created response.BulkSave
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &created))
	s.Equal(1, created.PlayersScored)
	s.True(created.IsLocked)

	// Locked now, so an admin update is refused until unlock
	rr = s.ts.request(http.MethodPost, "/api/v1/scores", s.bulkBody(), s.adminToken, s.competitionID())
	s.Equal(http.StatusForbidden, rr.Code)

	rr = s.ts.request(http.MethodPost, "/api/v1/scores/"+created.ScoreID+"/unlock", nil, s.adminToken, s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code)

	rr = s.ts.request(http.MethodPost, "/api/v1/scores", s.bulkBody(), s.superToken, s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	var updated response.BulkSave
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &updated))
	s.Equal(created.ScoreID, updated.ScoreID)
}

func (s *ScoringSuite) TestBulkSaveRequiresAdministrator() {
	rr := s.ts.request(http.MethodPost, "/api/v1/scores", s.bulkBody(), s.judgeTokens[model.RoleJudge1], "")
	s.Equal(http.StatusForbidden, rr.Code)
	s.Equal(apierr.CodeForbidden, decodeError(s.T(), rr).Error)
}

func (s *ScoringSuite) TestRankings() {
	rr := s.ts.request(http.MethodPost, "/api/v1/scores", s.bulkBody(), s.adminToken, s.competitionID())
	s.Require().Equal(http.StatusCreated, rr.Code)

	rr = s.ts.request(http.MethodGet, "/api/v1/rankings/individual?gender=Male&ageGroup=U14", nil, "", s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code)

	var individual response.IndividualRanking
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &individual))
	s.Require().Len(individual.Rankings, 1)
	s.Equal(1, individual.Rankings[0].Rank)
	// Trimmed mean of 8,7,9,8,6 is 7.67, less 0.5
	s.InDelta(7.17, individual.Rankings[0].FinalScore, 1e-9)
	s.Require().NotNil(individual.Rankings[0].TimeSeconds)
	s.InDelta(90, *individual.Rankings[0].TimeSeconds, 1e-9)

	rr = s.ts.request(http.MethodGet, "/api/v1/rankings/team", nil, "", s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code)

	var team response.TeamRanking
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &team))
	s.Require().Len(team.Rankings, 1)
	s.Equal(string(s.team.ID), team.Rankings[0].TeamID)

	rr = s.ts.request(http.MethodGet, "/api/v1/rankings/individual?gender=Female", nil, "", s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code)
	s.JSONEq(`{"rankings":[]}`, rr.Body.String())
}

func (s *ScoringSuite) TestListFilterValidation() {
	rr := s.ts.request(http.MethodGet, "/api/v1/scores?ageGroup=U14", nil, "", s.competitionID())
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal("ageGroup", decodeError(s.T(), rr).Field)

	rr = s.ts.request(http.MethodGet, "/api/v1/scores?gender=Male&ageGroup=U16", nil, "", s.competitionID())
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidCategory, decodeError(s.T(), rr).Error)
}

func (s *ScoringSuite) TestRoomEventsRejectsUnknownRoom() {
	rr := s.ts.request(http.MethodGet, "/api/v1/rooms/scoring_Male_U99/events", nil, "", s.competitionID())
	s.Equal(http.StatusBadRequest, rr.Code)
	s.Equal(apierr.CodeInvalidCategory, decodeError(s.T(), rr).Error)
}

func (s *ScoringSuite) TestPanelLifecycle() {
	rr := s.ts.request(http.MethodPost, "/api/v1/panels", map[string]string{"gender": "Female", "ageGroup": "U10"}, s.adminToken, s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	var panel response.Panel
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &panel))
	s.Require().Len(panel.Judges, 5)
	s.False(panel.Judges[0].IsActive)

	seat := panel.Judges[0].ID
	rr = s.ts.request(http.MethodPut, "/api/v1/judges/"+seat, map[string]string{
		"name": "Greta", "username": "greta", "password": "secret",
	}, s.adminToken, s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	var judge response.Judge
	s.Require().NoError(json.Unmarshal(rr.Body.Bytes(), &judge))
	s.True(judge.IsActive)
	s.Equal("seniorJudge", judge.JudgeType)

	rr = s.ts.request(http.MethodPost, "/api/v1/judges/"+seat+"/deactivate", nil, s.adminToken, s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code)

	rr = s.ts.request(http.MethodPost, "/api/v1/auth/judge/login", map[string]string{
		"competitionId": s.competitionID(), "username": "greta", "password": "secret",
	}, "", "")
	s.Equal(http.StatusForbidden, rr.Code)
	s.Equal(apierr.CodeJudgeInactive, decodeError(s.T(), rr).Error)

	// Listing requires a credential
	rr = s.ts.request(http.MethodGet, "/api/v1/panels?gender=Female", nil, "", s.competitionID())
	s.Equal(http.StatusUnauthorized, rr.Code)
}

// Test: Every way a competition context can be refused
func (s *ScoringSuite) TestCompetitionGuard() {
	store := s.ts.app.Storage
	deleted := testutil.NewCompetition(s.T(), store, "Old Cup")
	deleted.Deleted = true
	s.Require().NoError(store.SaveCompetition(context.Background(), deleted))
	other := testutil.NewCompetition(s.T(), store, "Other Cup")

	tests := []struct {
		name        string
		method      string
		path        string
		token       string
		competition string
		status      int
		code        string
	}{
		{"missing competition", http.MethodGet, "/api/v1/scores", "", "", http.StatusBadRequest, apierr.CodeCompetitionRequired},
		{"malformed competition", http.MethodGet, "/api/v1/scores", "", "cup-1", http.StatusBadRequest, apierr.CodeInvalidCompetition},
		{"unknown competition", http.MethodGet, "/api/v1/scores", "", "3d0f8f7e-5b1a-4c2d-9e3f-4a5b6c7d8e9f", http.StatusNotFound, apierr.CodeCompetitionNotFound},
		{"deleted competition", http.MethodGet, "/api/v1/scores", "", string(deleted.ID), http.StatusForbidden, apierr.CodeCompetitionDeleted},
		{"unassigned admin", http.MethodGet, "/api/v1/scores", s.adminToken, string(other.ID), http.StatusForbidden, apierr.CodeForbidden},
		{"anonymous write", http.MethodPost, "/api/v1/scores/marks", "", s.competitionID(), http.StatusUnauthorized, apierr.CodeUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/scores", "not-a-token", s.competitionID(), http.StatusUnauthorized, apierr.CodeUnauthorized},
		{"super admin anywhere", http.MethodGet, "/api/v1/scores", s.superToken, string(other.ID), http.StatusOK, ""},
		// The judge's own competition wins over the header
		{"judge claim wins", http.MethodGet, "/api/v1/scores", s.judgeTokens[model.RoleJudge1], string(deleted.ID), http.StatusOK, ""},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rr := s.ts.request(tt.method, tt.path, nil, tt.token, tt.competition)
			s.Equal(tt.status, rr.Code, rr.Body.String())
			if tt.code != "" {
				s.Equal(tt.code, decodeError(s.T(), rr).Error)
			}
		})
	}
}

// Test: Changing assignments forces affected admins to sign in again
func (s *ScoringSuite) TestStaleAdminMustReauthenticate() {
	s.ts.app.MockClock.Advance(2 * time.Second)

	rr := s.ts.request(http.MethodPut, "/api/v1/competition/admins", map[string]any{"adminIds": []string{}}, s.superToken, s.competitionID())
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())

	rr = s.ts.request(http.MethodGet, "/api/v1/scores", nil, s.adminToken, s.competitionID())
	s.Equal(http.StatusForbidden, rr.Code)

	body := decodeError(s.T(), rr)
	s.Equal(apierr.CodeStaleCredential, body.Error)
	s.Equal(apierr.CodeReauthenticate, body.Code)
}

func (s *ScoringSuite) TestOnlySuperAdminAssignsAdmins() {
	rr := s.ts.request(http.MethodPut, "/api/v1/competition/admins", map[string]any{"adminIds": []string{}}, s.adminToken, s.competitionID())
	s.Equal(http.StatusForbidden, rr.Code)
}

func TestWriteRateLimit(t *testing.T) {
	ts := newTestServer(t, factory.WithWriteLimit(1, 2))
	store := ts.app.Storage

	admin := testutil.NewAccount(t, store, "alice", "alicepass", model.AccountAdmin)
	competition := testutil.NewCompetition(t, store, "Cup", admin.ID)

	rr := ts.request(http.MethodPost, "/api/v1/auth/login", map[string]string{"username": "alice", "password": "alicepass"}, "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var token response.Token
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &token))

	unlock := func() int {
		return ts.request(http.MethodPost, "/api/v1/scores/missing/unlock", nil, token.Token, string(competition.ID)).Code
	}

	// Burst of two, then refused until the clock moves
	assert.Equal(t, http.StatusNotFound, unlock())
	assert.Equal(t, http.StatusNotFound, unlock())
	assert.Equal(t, http.StatusTooManyRequests, unlock())

	ts.app.MockClock.Advance(time.Second)
	assert.Equal(t, http.StatusNotFound, unlock())

	// Reads are never limited
	for i := 0; i < 5; i++ {
		rr := ts.request(http.MethodGet, "/api/v1/scores", nil, token.Token, string(competition.ID))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestServerLifecycle(t *testing.T) {
	app := factory.NewTestApp()
	defer func() { _ = app.Close() }()

	cfg := api.DefaultServerConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.ShutdownTimeout = 2 * time.Second
	server := api.NewServer(app.Handler(), cfg, testutil.NopLogger())

	hooked := make(chan struct{})
	server.OnShutdown(func() { close(hooked) })

	ln, err := net.Listen("tcp", cfg.Addr)
	require.NoError(t, err)

	served := make(chan error, 1)
	go func() { served <- server.Serve(ln) }()

	require.Eventually(t, func() bool { return server.Addr() == ln.Addr().String() }, time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, server.Shutdown(context.Background()))
	require.NoError(t, <-served)

	select {
	case <-hooked:
	case <-time.After(time.Second):
		t.Fatal("shutdown hook did not run")
	}
}
