// Package seed loads competitions, teams, accounts and judge panels from a
// YAML file. It stands in for the registration tooling in development and
// tests.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/mcoot/teamscore/internal/dependencies/clock"
	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/services/auth"
	"github.com/mcoot/teamscore/internal/storage"
)

// File is the top level of a seed document
type File struct {
	Accounts     []Account     `yaml:"accounts"`
	Competitions []Competition `yaml:"competitions"`
}

// Account is an operator account with a plaintext password
type Account struct {
	ID          string `yaml:"id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	DisplayName string `yaml:"displayName"`
	Role        string `yaml:"role"`
}

// Competition lists its admins by username
type Competition struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Deleted bool     `yaml:"deleted"`
	Admins  []string `yaml:"admins"`
	Teams   []Team   `yaml:"teams"`
	Judges  []Judge  `yaml:"judges"`
}

// Team is a competition team and its roster
type Team struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name"`
	Players []Player `yaml:"players"`
}

// Player is one roster entry
type Player struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Gender   string `yaml:"gender"`
	AgeGroup string `yaml:"ageGroup"`
}

// Judge fills one panel seat
type Judge struct {
	Gender    string `yaml:"gender"`
	AgeGroup  string `yaml:"ageGroup"`
	JudgeType string `yaml:"judgeType"`
	Name      string `yaml:"name"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
}

// Summary counts what Apply wrote
type Summary struct {
	Accounts     int
	Competitions int
	Teams        int
	Judges       int
}

// ErrInvalidSeed is returned for documents that cannot be applied
var ErrInvalidSeed = errors.New("invalid seed")

// Parse decodes a seed document, rejecting unknown fields
func Parse(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return &f, nil
}

// LoadFile parses the seed document at path
func LoadFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = fh.Close() }()
	return Parse(fh)
}

// Loader writes seed documents into storage
type Loader struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger
}

// NewLoader creates a Loader
func NewLoader(storage storage.Storage, clock clock.Clock, logger *slog.Logger) *Loader {
	return &Loader{
		storage: storage,
		clock:   clock,
		logger:  logger.With(slog.String("component", "seed")),
	}
}

// Apply writes every entity in f. Accounts and judge seats that already exist
// are updated in place, so applying the same file twice is harmless.
func (l *Loader) Apply(ctx context.Context, f *File) (Summary, error) {
	var sum Summary

	accounts := make(map[string]model.AccountID, len(f.Accounts))
	for _, a := range f.Accounts {
		id, err := l.applyAccount(ctx, a)
		if err != nil {
			return sum, fmt.Errorf("account %q: %w", a.Username, err)
		}
		accounts[a.Username] = id
		sum.Accounts++
	}

	for _, c := range f.Competitions {
		teams, judges, err := l.applyCompetition(ctx, c, accounts)
		if err != nil {
			return sum, fmt.Errorf("competition %q: %w", c.Name, err)
		}
		sum.Competitions++
		sum.Teams += teams
		sum.Judges += judges
	}

	l.logger.InfoContext(ctx, "seed applied",
		slog.Int("accounts", sum.Accounts),
		slog.Int("competitions", sum.Competitions),
		slog.Int("teams", sum.Teams),
		slog.Int("judges", sum.Judges),
	)
	return sum, nil
}

func (l *Loader) applyAccount(ctx context.Context, a Account) (model.AccountID, error) {
	role := model.AccountRole(a.Role)
	if !role.Valid() {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidSeed, a.Role)
	}
	if a.Username == "" || a.Password == "" {
		return "", fmt.Errorf("%w: username and password are required", ErrInvalidSeed)
	}

	id := model.AccountID(a.ID)
	existing, err := l.storage.GetAccountByUsername(ctx, a.Username)
	switch {
	case err == nil:
		id = existing.ID
	case !errors.Is(err, model.ErrAccountNotFound):
		return "", err
	case id == "":
		id = model.AccountID(uuid.NewString())
	}

	hash, err := auth.HashPassword(a.Password)
	if err != nil {
		return "", err
	}

	displayName := a.DisplayName
	if displayName == "" {
		displayName = a.Username
	}

	return id, l.storage.SaveAccount(ctx, &model.Account{
		ID:           id,
		Username:     a.Username,
		DisplayName:  displayName,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    l.clock.Now(),
	})
}

func (l *Loader) applyCompetition(ctx context.Context, c Competition, accounts map[string]model.AccountID) (teams, judges int, err error) {
	if _, err := uuid.Parse(c.ID); err != nil {
		return 0, 0, fmt.Errorf("%w: competition id %q is not a uuid", ErrInvalidSeed, c.ID)
	}
	competitionID := model.CompetitionID(c.ID)

	admins := make([]model.AccountID, 0, len(c.Admins))
	for _, username := range c.Admins {
		id, ok := accounts[username]
		if !ok {
			return 0, 0, fmt.Errorf("%w: admin %q is not a seeded account", ErrInvalidSeed, username)
		}
		admins = append(admins, id)
	}

	now := l.clock.Now()
	if err := l.storage.SaveCompetition(ctx, &model.Competition{
		ID:             competitionID,
		Name:           c.Name,
		AssignedAdmins: admins,
		Deleted:        c.Deleted,
		CreatedAt:      now,
		UpdatedAt:      now,
	}); err != nil {
		return 0, 0, err
	}

	for _, t := range c.Teams {
		if err := l.applyTeam(ctx, competitionID, t); err != nil {
			return teams, judges, fmt.Errorf("team %q: %w", t.Name, err)
		}
		teams++
	}

	for _, j := range c.Judges {
		if err := l.applyJudge(ctx, competitionID, j); err != nil {
			return teams, judges, fmt.Errorf("judge %q: %w", j.Username, err)
		}
		judges++
	}

	return teams, judges, nil
}

func (l *Loader) applyTeam(ctx context.Context, competitionID model.CompetitionID, t Team) error {
	id := t.ID
	if id == "" {
		id = uuid.NewString()
	}

	players := make([]model.Player, len(t.Players))
	for i, p := range t.Players {
		category := model.Category{Gender: model.Gender(p.Gender), AgeGroup: model.AgeGroup(p.AgeGroup)}
		if err := category.Validate(); err != nil {
			return fmt.Errorf("%w: player %q: %v", ErrInvalidSeed, p.Name, err)
		}
		playerID := p.ID
		if playerID == "" {
			playerID = uuid.NewString()
		}
		players[i] = model.Player{
			ID:       model.PlayerID(playerID),
			Name:     p.Name,
			Gender:   category.Gender,
			AgeGroup: category.AgeGroup,
		}
	}

	return l.storage.SaveTeam(ctx, &model.Team{
		ID:            model.TeamID(id),
		CompetitionID: competitionID,
		Name:          t.Name,
		Players:       players,
	})
}

func (l *Loader) applyJudge(ctx context.Context, competitionID model.CompetitionID, j Judge) error {
	category := model.Category{Gender: model.Gender(j.Gender), AgeGroup: model.AgeGroup(j.AgeGroup)}
	if err := category.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	role := model.JudgeRole(j.JudgeType)
	if !role.Valid() {
		return fmt.Errorf("%w: unknown judge type %q", ErrInvalidSeed, j.JudgeType)
	}

	hash, err := auth.HashPassword(j.Password)
	if err != nil {
		return err
	}

	now := l.clock.Now()
	judge := &model.Judge{
		ID:            model.JudgeID(uuid.NewString()),
		CompetitionID: competitionID,
		Gender:        category.Gender,
		AgeGroup:      category.AgeGroup,
		Role:          role,
		JudgeNo:       role.Number(),
		CreatedAt:     now,
	}

	// Reuse the seat when the panel already has one for this role
	existing, err := l.storage.ListJudges(ctx, model.JudgeFilter{
		CompetitionID: competitionID,
		Gender:        category.Gender,
		AgeGroup:      category.AgeGroup,
	})
	if err != nil {
		return err
	}
	for _, e := range existing {
		if e.Role == role {
			judge = e
			break
		}
	}

	judge.Name = j.Name
	judge.Username = j.Username
	judge.PasswordHash = hash
	judge.IsActive = judge.Complete()
	judge.UpdatedAt = now

	return l.storage.SaveJudge(ctx, judge)
}
