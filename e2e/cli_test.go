package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/teamscore/internal/api"
	"github.com/mcoot/teamscore/internal/factory"
	"github.com/mcoot/teamscore/internal/seed"
	"github.com/mcoot/teamscore/internal/services/auth"
)

// Fixtures from data/seed.yaml
const (
	competitionID = "6f1c2d3e-4a5b-4c6d-8e7f-9a0b1c2d3e4f"
	falconsTeam   = "team-falcons"
	roomID        = "scoring_Male_U14"
)

var (
	buildOnce   sync.Once
	builtBinary string
	buildErr    error
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Build the CLI binary once per test run
	buildOnce.Do(func() {
		projectRoot := findProjectRoot(t)
		builtBinary = filepath.Join(projectRoot, "bin", "scorectl-test")
		cmd := exec.Command("go", "build", "-o", builtBinary, "./cmd/scorectl")
		cmd.Dir = projectRoot
		if output, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(output)}
		}
	})
	require.NoError(t, buildErr)

	return &cliRunner{
		binaryPath: builtBinary,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return "failed to build CLI: " + e.err.Error() + "\n" + e.output
}

func (r *cliRunner) args(args []string) []string {
	return append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--competition", competitionID,
		"--output", "json",
	}, args...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	cmd := exec.Command(r.binaryPath, r.args(args)...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

// start launches a long-running command, returning its stdout line by line
func (r *cliRunner) start(t *testing.T, args ...string) (*exec.Cmd, *bufio.Scanner) {
	t.Helper()

	cmd := exec.Command(r.binaryPath, r.args(args)...)
	stdout, err := cmd.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, cmd.Start())

	t.Cleanup(func() {
		if cmd.ProcessState == nil {
			_ = cmd.Process.Kill()
			_ = cmd.Wait()
		}
	})

	return cmd, bufio.NewScanner(stdout)
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs the full application on a loopback port with the
// development seed applied
func startTestServer(t *testing.T) string {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app, err := factory.New(factory.Config{
		AuthConfig:  auth.Config{Secret: factory.TestSecret},
		Logger:      logger,
		StorageType: factory.StorageTypeMemory,
		WriteRate:   1000,
		WriteBurst:  1000,
	})
	require.NoError(t, err)

	f, err := seed.LoadFile(filepath.Join(findProjectRoot(t), "data", "seed.yaml"))
	require.NoError(t, err)
	_, err = app.SeedLoader.Apply(context.Background(), f)
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := api.NewServer(app.Handler(), api.DefaultServerConfig(), logger)
	server.OnShutdown(app.HubManager.Shutdown)

	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	t.Cleanup(func() {
		_ = server.Shutdown(context.Background())
		_ = app.Close()
	})

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/health")
	return serverURL
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type tokenResponse struct {
	Token         string `json:"token"`
	Role          string `json:"role"`
	CompetitionID string `json:"competitionId"`
}

type markResponse struct {
	ScoreID      string  `json:"scoreId"`
	JudgeType    string  `json:"judgeType"`
	AverageMarks float64 `json:"averageMarks"`
	IsLocked     bool    `json:"isLocked"`
	Version      int64   `json:"version"`
}

type unlockResponse struct {
	ScoreID  string `json:"scoreId"`
	IsLocked bool   `json:"isLocked"`
}

type rankingResponse struct {
	Rankings []struct {
		Rank       int     `json:"rank"`
		PlayerID   string  `json:"playerId"`
		FinalScore float64 `json:"finalScore"`
	} `json:"rankings"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

type eventLine struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// panel signs in all five seeded judges, each with its own token file
func panel(t *testing.T, serverURL string) map[string]*cliRunner {
	t.Helper()

	judges := make(map[string]*cliRunner)
	for _, username := range []string{"sj", "j1", "j2", "j3", "j4"} {
		runner := newCLIRunner(t, serverURL)
		output, err := runner.run("judge-login", "--user", username, "--pass", username+"-pass")
		require.NoError(t, err, "output: %s", output)

		var token tokenResponse
		require.NoError(t, json.Unmarshal([]byte(output), &token))
		assert.Equal(t, "judge", token.Role)
		assert.Equal(t, competitionID, token.CompetitionID)

		judges[username] = runner
	}
	return judges
}

func mark(t *testing.T, judge *cliRunner, player string, score float64) markResponse {
	t.Helper()

	output, err := judge.run("mark",
		"--team", falconsTeam,
		"--player", player,
		"--gender", "Male",
		"--age-group", "U14",
		"--score", strconv.FormatFloat(score, 'f', -1, 64),
	)
	require.NoError(t, err, "output: %s", output)

	var resp markResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	return resp
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	serverURL := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp healthResponse
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "memory", resp.Storage)
}

func TestCLI_LoginRejectsBadPassword(t *testing.T) {
	serverURL := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	output, err := cli.run("login", "--user", "alice", "--pass", "wrong")
	require.Error(t, err)
	assert.Contains(t, output, "INVALID_CREDENTIALS")
}

func TestCLI_PanelScoringFlow(t *testing.T) {
	serverURL := startTestServer(t)
	judges := panel(t, serverURL)

	// Five marks complete the player and lock the record
	scores := []struct {
		judge string
		score float64
	}{
		{"sj", 8}, {"j1", 7.5}, {"j2", 8.5}, {"j3", 7}, {"j4", 9},
	}

	var last markResponse
	for _, s := range scores {
		last = mark(t, judges[s.judge], "falcons-1", s.score)
	}
	assert.True(t, last.IsLocked)
	assert.InDelta(t, 8.0, last.AverageMarks, 1e-9)
	assert.EqualValues(t, 5, last.Version)

	// Locked records refuse further marks
	output, err := judges["j1"].run("mark",
		"--team", falconsTeam, "--player", "falcons-2",
		"--gender", "Male", "--age-group", "U14", "--score", "6")
	require.Error(t, err)
	assert.Contains(t, output, "SCORE_LOCKED")

	// The assigned admin reopens it
	admin := newCLIRunner(t, serverURL)
	output, err = admin.run("login", "--user", "alice", "--pass", "alicepass")
	require.NoError(t, err, "output: %s", output)

	output, err = admin.run("unlock", last.ScoreID)
	require.NoError(t, err, "output: %s", output)

	var unlocked unlockResponse
	require.NoError(t, json.Unmarshal([]byte(output), &unlocked))
	assert.Equal(t, last.ScoreID, unlocked.ScoreID)
	assert.False(t, unlocked.IsLocked)

	mark(t, judges["j1"], "falcons-2", 6)

	// Anyone can read the leaderboard
	spectator := newCLIRunner(t, serverURL)
	output, err = spectator.run("rankings", "individual", "--gender", "Male", "--age-group", "U14")
	require.NoError(t, err, "output: %s", output)

	var ranking rankingResponse
	require.NoError(t, json.Unmarshal([]byte(output), &ranking))
	require.Len(t, ranking.Rankings, 2)
	assert.Equal(t, "falcons-1", ranking.Rankings[0].PlayerID)
	assert.InDelta(t, 8.0, ranking.Rankings[0].FinalScore, 1e-9)
	assert.Equal(t, "falcons-2", ranking.Rankings[1].PlayerID)
}

func TestCLI_EventsStream(t *testing.T) {
	serverURL := startTestServer(t)
	judges := panel(t, serverURL)

	spectator := newCLIRunner(t, serverURL)
	cmd, lines := spectator.start(t, "events", roomID, "--json", "--count", "1")

	// The stream opens with a connected event once the room is joined
	require.True(t, lines.Scan(), "stream closed before connecting")
	var connected eventLine
	require.NoError(t, json.Unmarshal(lines.Bytes(), &connected))
	require.Equal(t, "connected", connected.Event)

	mark(t, judges["sj"], "falcons-3", 7.25)

	require.True(t, lines.Scan(), "stream closed before the mark arrived")
	var updated eventLine
	require.NoError(t, json.Unmarshal(lines.Bytes(), &updated))
	assert.Equal(t, "score_updated", updated.Event)

	var event struct {
		Event string `json:"event"`
		Data  struct {
			PlayerID  string  `json:"playerId"`
			JudgeType string  `json:"judgeType"`
			Score     float64 `json:"score"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(updated.Data), &event))
	assert.Equal(t, "score_updated", event.Event)
	assert.Equal(t, "falcons-3", event.Data.PlayerID)
	assert.Equal(t, "seniorJudge", event.Data.JudgeType)
	assert.InDelta(t, 7.25, event.Data.Score, 1e-9)

	// --count 1 ends the stream after the first room event
	for lines.Scan() {
	}
	require.NoError(t, cmd.Wait())
}
