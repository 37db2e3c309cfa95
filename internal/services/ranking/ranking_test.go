package ranking

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/teamscore/internal/model"
)

func ps(id, name, time string, avg, senior, final float64) model.PlayerScore {
	return model.PlayerScore{
		PlayerID:     model.PlayerID(id),
		PlayerName:   name,
		Time:         time,
		Marks:        model.Marks{SeniorJudge: senior},
		AverageMarks: avg,
		FinalScore:   final,
	}
}

func record(teamID, teamName string, scores ...model.PlayerScore) *model.ScoreRecord {
	return &model.ScoreRecord{
		TeamID:   model.TeamID(teamID),
		TeamName: teamName,
		Gender:   model.GenderMale,
		AgeGroup: "U14",
		Scores:   scores,
	}
}

func playerIDs(entries []IndividualEntry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = string(e.PlayerID)
	}
	return ids
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1:05", 65},
		{"0:59", 59},
		{"10:00", 600},
		{"65", 65},
		{" 42 ", 42},
		{"", UnparsedTime},
		{"abc", UnparsedTime},
		{"1:05.5", UnparsedTime},
		{"1:2:3", UnparsedTime},
		{"-5", UnparsedTime},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTime(tt.in))
		})
	}
}

func TestIndividualOrdersByAverageThenSeniorThenTime(t *testing.T) {
	records := []*model.ScoreRecord{
		record("t1", "Alpha",
			ps("a", "A", "1:10", 8.0, 8.0, 8.0),
			ps("b", "B", "1:00", 8.0, 8.5, 8.0),
		),
		record("t2", "Beta",
			ps("c", "C", "1:05", 8.0, 8.0, 8.0),
			ps("d", "D", "", 9.0, 7.0, 9.0),
			ps("e", "E", "50", 7.0, 9.0, 7.0),
		),
	}

	got := Individual(records)

	// d: top average; b: senior tie-break; c before a: faster time; e: lowest average
	want := []string{"d", "b", "c", "a", "e"}
	if diff := cmp.Diff(want, playerIDs(got)); diff != "" {
		t.Errorf("individual order mismatch (-want +got):\n%s", diff)
	}
	for i, e := range got {
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, "Beta", got[0].TeamName)
}

func TestIndividualMalformedTimeSortsLast(t *testing.T) {
	records := []*model.ScoreRecord{
		record("t1", "Alpha",
			ps("bad", "Bad", "n/a", 8, 8, 8),
			ps("empty", "Empty", "", 8, 8, 8),
			ps("slow", "Slow", "9:59", 8, 8, 8),
		),
	}

	got := Individual(records)

	require.Len(t, got, 3)
	assert.Equal(t, model.PlayerID("slow"), got[0].PlayerID)
	// Both unparseable times tie; name decides
	assert.Equal(t, model.PlayerID("bad"), got[1].PlayerID)
	assert.Equal(t, model.PlayerID("empty"), got[2].PlayerID)
}

func TestIndividualEmpty(t *testing.T) {
	got := Individual(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestIndividualDoesNotMutateRecords(t *testing.T) {
	r := record("t1", "Alpha", ps("b", "B", "1:00", 7, 7, 7), ps("a", "A", "1:00", 9, 9, 9))
	before := r.Clone()

	_ = Individual([]*model.ScoreRecord{r})

	assert.Equal(t, before, r)
}

func TestTeamUsesTopThreeFinalScores(t *testing.T) {
	records := []*model.ScoreRecord{
		record("t1", "Alpha",
			ps("a1", "A1", "1:00", 9, 9, 9),
			ps("a2", "A2", "1:00", 8, 8, 8),
			ps("a3", "A3", "1:00", 7, 7, 7),
			ps("a4", "A4", "1:00", 6, 6, 6),
		),
		record("t2", "Beta",
			ps("b1", "B1", "1:00", 10, 10, 10),
			ps("b2", "B2", "1:00", 9.5, 9.5, 9.5),
		),
	}

	got := Team(records)

	require.Len(t, got, 2)
	assert.Equal(t, model.TeamID("t1"), got[0].TeamID)
	assert.Equal(t, 24.0, got[0].TeamTotalScore)
	assert.Equal(t, 8.0, got[0].AverageTeamScore)
	assert.Equal(t, 3, got[0].ContributingCount)
	assert.Equal(t, []string{"a1", "a2", "a3"}, playerIDs(got[0].TopPlayers))

	assert.Equal(t, model.TeamID("t2"), got[1].TeamID)
	assert.Equal(t, 19.5, got[1].TeamTotalScore)
	assert.Equal(t, 9.75, got[1].AverageTeamScore)
	assert.Equal(t, 2, got[1].Rank)
}

func TestTeamTieBreaksOnAverageThenCount(t *testing.T) {
	records := []*model.ScoreRecord{
		// total 18 over 3 players: average 6
		record("three", "Three",
			ps("x1", "X1", "1:00", 6, 6, 6),
			ps("x2", "X2", "1:00", 6, 6, 6),
			ps("x3", "X3", "1:00", 6, 6, 6),
		),
		// total 18 over 2 players: average 9
		record("two", "Two",
			ps("y1", "Y1", "1:00", 9, 9, 9),
			ps("y2", "Y2", "1:00", 9, 9, 9),
		),
	}

	got := Team(records)

	require.Len(t, got, 2)
	assert.Equal(t, model.TeamID("two"), got[0].TeamID)
	assert.Equal(t, model.TeamID("three"), got[1].TeamID)
}

func TestTeamSkipsTeamsWithoutScoredPlayers(t *testing.T) {
	unscored := ps("u1", "U1", "", 0, 0, 0)
	records := []*model.ScoreRecord{
		record("t1", "Alpha", unscored),
		record("t2", "Beta", ps("b1", "B1", "1:00", 5, 5, 5), unscored),
	}

	got := Team(records)

	require.Len(t, got, 1)
	assert.Equal(t, model.TeamID("t2"), got[0].TeamID)
	assert.Equal(t, 1, got[0].ContributingCount)
}

func TestTeamMergesRecordsOfSameTeam(t *testing.T) {
	records := []*model.ScoreRecord{
		record("t1", "Alpha", ps("a1", "A1", "1:00", 5, 5, 5)),
		record("t1", "Alpha", ps("a2", "A2", "1:00", 4, 4, 4)),
	}

	got := Team(records)

	require.Len(t, got, 1)
	assert.Equal(t, 9.0, got[0].TeamTotalScore)
	assert.Equal(t, 2, got[0].ContributingCount)
}

func TestTeamEmpty(t *testing.T) {
	got := Team(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
