// Package ranking builds individual and team leaderboards from score records.
// Rankings are always derived on demand; nothing here is cached or mutated.
package ranking

import (
	"cmp"
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/scoring"
)

// TeamContributors is the number of best final scores that count for a team
const TeamContributors = 3

// UnparsedTime sorts after every parseable elapsed time
var UnparsedTime = math.Inf(1)

var (
	minutesSeconds = regexp.MustCompile(`^(\d+):(\d+)$`)
	plainSeconds   = regexp.MustCompile(`^\d+$`)
)

// IndividualEntry is one row of the individual leaderboard
type IndividualEntry struct {
	Rank             int
	PlayerID         model.PlayerID
	PlayerName       string
	TeamID           model.TeamID
	TeamName         string
	AverageMarks     float64
	SeniorJudgeMarks float64
	Time             string
	TimeSeconds      float64
	FinalScore       float64
}

// TeamEntry is one row of the team leaderboard
type TeamEntry struct {
	Rank              int
	TeamID            model.TeamID
	TeamName          string
	TeamTotalScore    float64
	AverageTeamScore  float64
	ContributingCount int
	TopPlayers        []IndividualEntry
}

// NormalizeTime converts an elapsed time to total seconds.
// "m:ss" and plain digits parse; anything else returns UnparsedTime.
func NormalizeTime(s string) float64 {
	s = strings.TrimSpace(s)
	if m := minutesSeconds.FindStringSubmatch(s); m != nil {
		minutes, err1 := strconv.Atoi(m[1])
		seconds, err2 := strconv.Atoi(m[2])
		if err1 != nil || err2 != nil {
			return UnparsedTime
		}
		return float64(minutes*60 + seconds)
	}
	if plainSeconds.MatchString(s) {
		seconds, err := strconv.Atoi(s)
		if err != nil {
			return UnparsedTime
		}
		return float64(seconds)
	}
	return UnparsedTime
}

// Individual flattens every player score across the records and orders them by
// average desc, senior judge mark desc, then elapsed time asc.
func Individual(records []*model.ScoreRecord) []IndividualEntry {
	var entries []IndividualEntry
	for _, r := range records {
		for _, ps := range r.Scores {
			entries = append(entries, entryFor(r, ps))
		}
	}

	slices.SortStableFunc(entries, compareIndividual)
	for i := range entries {
		entries[i].Rank = i + 1
	}
	if entries == nil {
		entries = []IndividualEntry{}
	}
	return entries
}

func entryFor(r *model.ScoreRecord, ps model.PlayerScore) IndividualEntry {
	return IndividualEntry{
		PlayerID:         ps.PlayerID,
		PlayerName:       ps.PlayerName,
		TeamID:           r.TeamID,
		TeamName:         r.TeamName,
		AverageMarks:     ps.AverageMarks,
		SeniorJudgeMarks: ps.Marks.SeniorJudge,
		Time:             ps.Time,
		TimeSeconds:      NormalizeTime(ps.Time),
		FinalScore:       ps.FinalScore,
	}
}

func compareIndividual(a, b IndividualEntry) int {
	if c := cmp.Compare(b.AverageMarks, a.AverageMarks); c != 0 {
		return c
	}
	if c := cmp.Compare(b.SeniorJudgeMarks, a.SeniorJudgeMarks); c != 0 {
		return c
	}
	if c := cmp.Compare(a.TimeSeconds, b.TimeSeconds); c != 0 {
		return c
	}
	if c := strings.Compare(a.PlayerName, b.PlayerName); c != 0 {
		return c
	}
	return strings.Compare(string(a.PlayerID), string(b.PlayerID))
}

// Team groups scored players by team and sums each team's best three final
// scores. Teams with no scored players are left out.
func Team(records []*model.ScoreRecord) []TeamEntry {
	type group struct {
		name    string
		players []IndividualEntry
	}
	groups := make(map[model.TeamID]*group)
	var order []model.TeamID

	for _, r := range records {
		g, ok := groups[r.TeamID]
		if !ok {
			g = &group{name: r.TeamName}
			groups[r.TeamID] = g
			order = append(order, r.TeamID)
		}
		for _, ps := range r.Scores {
			if scoring.ScoredCount(ps.Marks) == 0 {
				continue
			}
			g.players = append(g.players, entryFor(r, ps))
		}
	}

	entries := make([]TeamEntry, 0, len(groups))
	for _, id := range order {
		g := groups[id]
		if len(g.players) == 0 {
			continue
		}

		slices.SortStableFunc(g.players, func(a, b IndividualEntry) int {
			if c := cmp.Compare(b.FinalScore, a.FinalScore); c != 0 {
				return c
			}
			return compareIndividual(a, b)
		})
		top := g.players[:min(TeamContributors, len(g.players))]

		var total float64
		for _, p := range top {
			total += p.FinalScore
		}
		total = scoring.Round2(total)

		entries = append(entries, TeamEntry{
			TeamID:            id,
			TeamName:          g.name,
			TeamTotalScore:    total,
			AverageTeamScore:  scoring.Round2(total / float64(len(top))),
			ContributingCount: len(top),
			TopPlayers:        slices.Clone(top),
		})
	}

	slices.SortStableFunc(entries, compareTeam)
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func compareTeam(a, b TeamEntry) int {
	if c := cmp.Compare(b.TeamTotalScore, a.TeamTotalScore); c != 0 {
		return c
	}
	if c := cmp.Compare(b.AverageTeamScore, a.AverageTeamScore); c != 0 {
		return c
	}
	if c := cmp.Compare(b.ContributingCount, a.ContributingCount); c != 0 {
		return c
	}
	if c := strings.Compare(a.TeamName, b.TeamName); c != 0 {
		return c
	}
	return strings.Compare(string(a.TeamID), string(b.TeamID))
}
