package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case TokenResult:
		o.printToken(v)
	case MarkResult:
		o.printMark(v)
	case SaveResult:
		o.printf("Saved %d players on %s (version %d, locked: %s)\n", v.PlayersScored, v.ScoreID, v.Version, yesNo(v.IsLocked))
	case UnlockResult:
		o.printf("Unlocked %s (version %d)\n", v.ScoreID, v.Version)
	case ScoreList:
		o.printScoreList(v)
	case ScoreRecord:
		o.printScoreRecord(v)
	case IndividualRanking:
		o.printIndividualRanking(v)
	case TeamRanking:
		o.printTeamRanking(v)
	case HealthResult:
		o.printf("Status: %s\nStorage: %s\n", v.Status, v.Storage)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// TokenResult response type
type TokenResult struct {
	Token         string    `json:"token"`
	Role          string    `json:"role"`
	Subject       string    `json:"subject"`
	CompetitionID string    `json:"competitionId,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// MarkResult response type
type MarkResult struct {
	ScoreID      string  `json:"scoreId"`
	PlayerID     string  `json:"playerId"`
	JudgeType    string  `json:"judgeType"`
	Score        float64 `json:"score"`
	AverageMarks float64 `json:"averageMarks"`
	FinalScore   float64 `json:"finalScore"`
	IsLocked     bool    `json:"isLocked"`
	Version      int64   `json:"version"`
}

// SaveResult response type
type SaveResult struct {
	ScoreID       string `json:"scoreId"`
	PlayersScored int    `json:"playersScored"`
	IsLocked      bool   `json:"isLocked"`
	Version       int64  `json:"version"`
}

// UnlockResult response type
type UnlockResult struct {
	ScoreID  string `json:"scoreId"`
	IsLocked bool   `json:"isLocked"`
	Version  int64  `json:"version"`
}

// Marks response type
type Marks struct {
	SeniorJudge float64 `json:"seniorJudge"`
	Judge1      float64 `json:"judge1"`
	Judge2      float64 `json:"judge2"`
	Judge3      float64 `json:"judge3"`
	Judge4      float64 `json:"judge4"`
}

// PlayerScore response type
type PlayerScore struct {
	PlayerID       string  `json:"playerId"`
	PlayerName     string  `json:"playerName"`
	Time           string  `json:"time"`
	Marks          Marks   `json:"marks"`
	AverageMarks   float64 `json:"averageMarks"`
	Deduction      float64 `json:"deduction"`
	OtherDeduction float64 `json:"otherDeduction"`
	FinalScore     float64 `json:"finalScore"`
}

// ScoreRecord response type
type ScoreRecord struct {
	ID        string        `json:"id"`
	TeamID    string        `json:"teamId"`
	TeamName  string        `json:"teamName"`
	Gender    string        `json:"gender"`
	AgeGroup  string        `json:"ageGroup"`
	IsLocked  bool          `json:"isLocked"`
	Scores    []PlayerScore `json:"scores"`
	Version   int64         `json:"version"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// ScoreList response type
type ScoreList struct {
	Scores []ScoreRecord `json:"scores"`
}

// IndividualRank response type
type IndividualRank struct {
	Rank             int      `json:"rank"`
	PlayerID         string   `json:"playerId"`
	PlayerName       string   `json:"playerName"`
	TeamName         string   `json:"teamName"`
	AverageMarks     float64  `json:"averageMarks"`
	SeniorJudgeMarks float64  `json:"seniorJudgeMarks"`
	Time             string   `json:"time"`
	TimeSeconds      *float64 `json:"timeSeconds"`
	FinalScore       float64  `json:"finalScore"`
}

// IndividualRanking response type
type IndividualRanking struct {
	Rankings []IndividualRank `json:"rankings"`
}

// TeamRank response type
type TeamRank struct {
	Rank              int              `json:"rank"`
	TeamID            string           `json:"teamId"`
	TeamName          string           `json:"teamName"`
	TeamTotalScore    float64          `json:"teamTotalScore"`
	AverageTeamScore  float64          `json:"averageTeamScore"`
	ContributingCount int              `json:"contributingCount"`
	TopPlayers        []IndividualRank `json:"topPlayers"`
}

// TeamRanking response type
type TeamRanking struct {
	Rankings []TeamRank `json:"rankings"`
}

// HealthResult response type
type HealthResult struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

func (o *Output) printToken(t TokenResult) {
	o.printf("Signed in as %s (%s)\n", t.Subject, t.Role)
	if t.CompetitionID != "" {
		o.printf("Competition: %s\n", t.CompetitionID)
	}
	o.printf("Expires: %s\n", t.ExpiresAt.Format(time.RFC3339))
}

func (o *Output) printMark(m MarkResult) {
	o.printf("%s gave %s %.2f\n", m.JudgeType, m.PlayerID, m.Score)
	o.printf("Average: %.2f  Final: %.2f\n", m.AverageMarks, m.FinalScore)
	if m.IsLocked {
		o.printf("Record %s is now locked\n", m.ScoreID)
	}
}

func (o *Output) printScoreList(l ScoreList) {
	if len(l.Scores) == 0 {
		o.printf("No score records\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ID\tTEAM\tCATEGORY\tPLAYERS\tLOCKED\tVERSION")
	for _, r := range l.Scores {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s %s\t%d\t%s\t%d\n", r.ID, r.TeamName, r.Gender, r.AgeGroup, len(r.Scores), yesNo(r.IsLocked), r.Version)
	}
	_ = tw.Flush()
}

func (o *Output) printScoreRecord(r ScoreRecord) {
	o.printf("Record: %s\n", r.ID)
	o.printf("Team: %s (%s)\n", r.TeamName, r.TeamID)
	o.printf("Category: %s %s\n", r.Gender, r.AgeGroup)
	o.printf("Locked: %s  Version: %d\n\n", yesNo(r.IsLocked), r.Version)

	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "PLAYER\tSJ\tJ1\tJ2\tJ3\tJ4\tAVG\tDED\tFINAL\tTIME")
	for _, p := range r.Scores {
		m := p.Marks
		_, _ = fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t%s\n",
			p.PlayerName, m.SeniorJudge, m.Judge1, m.Judge2, m.Judge3, m.Judge4,
			p.AverageMarks, p.Deduction+p.OtherDeduction, p.FinalScore, p.Time)
	}
	_ = tw.Flush()
}

func (o *Output) printIndividualRanking(r IndividualRanking) {
	if len(r.Rankings) == 0 {
		o.printf("No ranked players\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tPLAYER\tTEAM\tFINAL\tSJ\tTIME")
	for _, e := range r.Rankings {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%.2f\t%.2f\t%s\n", e.Rank, e.PlayerName, e.TeamName, e.FinalScore, e.SeniorJudgeMarks, e.Time)
	}
	_ = tw.Flush()
}

func (o *Output) printTeamRanking(r TeamRanking) {
	if len(r.Rankings) == 0 {
		o.printf("No ranked teams\n")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tTEAM\tTOTAL\tAVERAGE\tTOP PLAYERS")
	for _, e := range r.Rankings {
		names := make([]string, len(e.TopPlayers))
		for i, p := range e.TopPlayers {
			names[i] = p.PlayerName
		}
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%.2f\t%.2f\t%s\n", e.Rank, e.TeamName, e.TeamTotalScore, e.AverageTeamScore, strings.Join(names, ", "))
	}
	_ = tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
