package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/teamscore/internal/model"
	"github.com/mcoot/teamscore/internal/storage"
)

// ErrTooMuchContention is returned when a transaction keeps losing its watch
var ErrTooMuchContention = errors.New("redis: transaction retries exhausted")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConfig().ConnectTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	if cfg.MaxTxRetries <= 0 {
		cfg.MaxTxRetries = DefaultConfig().MaxTxRetries
	}
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ping checks the connection is alive
func (s *Storage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type multiGetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// getJSON loads and decodes the document at key, mapping a miss to notFound
func getJSON[T any](ctx context.Context, c getter, key string, notFound error) (*T, error) {
	data, err := c.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, notFound
		}
		return nil, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// mgetJSON decodes every present value for keys, skipping expired or invalid data
func mgetJSON[T any](ctx context.Context, c multiGetter, keys []string) ([]*T, error) {
	out := make([]*T, 0, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	values, err := c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue
		}
		var v T
		if err := json.Unmarshal([]byte(str), &v); err != nil {
			continue
		}
		out = append(out, &v)
	}
	return out, nil
}

// watch runs fn in an optimistic transaction, retrying when a watched key changes
func (s *Storage) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < s.cfg.MaxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrTooMuchContention
}

// Competition operations

func (s *Storage) SaveCompetition(ctx context.Context, c *model.Competition) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, competitionKey(c.ID), data, 0).Err()
}

func (s *Storage) GetCompetition(ctx context.Context, id model.CompetitionID) (*model.Competition, error) {
	return getJSON[model.Competition](ctx, s.client, competitionKey(id), model.ErrCompetitionNotFound)
}

// Team operations

func (s *Storage) SaveTeam(ctx context.Context, team *model.Team) error {
	data, err := json.Marshal(team)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, teamKey(team.ID), data, 0).Err()
}

func (s *Storage) GetTeam(ctx context.Context, id model.TeamID) (*model.Team, error) {
	return getJSON[model.Team](ctx, s.client, teamKey(id), model.ErrTeamNotFound)
}

// Account operations

func (s *Storage) SaveAccount(ctx context.Context, account *model.Account) error {
	data, err := json.Marshal(account)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, accountKey(account.ID), data, 0)
	pipe.Set(ctx, accountUsernameIndexKey(account.Username), string(account.ID), 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetAccount(ctx context.Context, id model.AccountID) (*model.Account, error) {
	return getJSON[model.Account](ctx, s.client, accountKey(id), model.ErrAccountNotFound)
}

func (s *Storage) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	// Look up account ID from username index
	id, err := s.client.Get(ctx, accountUsernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrAccountNotFound
		}
		return nil, err
	}
	return s.GetAccount(ctx, model.AccountID(id))
}

// Judge operations

func (s *Storage) SaveJudge(ctx context.Context, judge *model.Judge) error {
	data, err := json.Marshal(judge)
	if err != nil {
		return err
	}

	slotKey := judgeSlotIndexKey(judge.CompetitionID, judge.Category(), judge.Role)
	watched := []string{slotKey, judgeKey(judge.ID)}
	var userKey string
	if judge.Username != "" {
		userKey = judgeUsernameIndexKey(judge.CompetitionID, judge.Username)
		watched = append(watched, userKey)
	}

	return s.watch(ctx, func(tx *redis.Tx) error {
		if err := claimIndex(ctx, tx, slotKey, string(judge.ID), model.ErrJudgeSlotTaken); err != nil {
			return err
		}
		if userKey != "" {
			if err := claimIndex(ctx, tx, userKey, string(judge.ID), model.ErrUsernameExists); err != nil {
				return err
			}
		}

		// Release index entries the previous version of this judge held
		previous, err := getJSON[model.Judge](ctx, tx, judgeKey(judge.ID), model.ErrJudgeNotFound)
		if err != nil && !errors.Is(err, model.ErrJudgeNotFound) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if previous != nil {
				if oldSlot := judgeSlotIndexKey(previous.CompetitionID, previous.Category(), previous.Role); oldSlot != slotKey {
					pipe.Del(ctx, oldSlot)
				}
				if previous.Username != "" && previous.Username != judge.Username {
					pipe.Del(ctx, judgeUsernameIndexKey(previous.CompetitionID, previous.Username))
				}
			}
			pipe.Set(ctx, judgeKey(judge.ID), data, 0)
			pipe.Set(ctx, slotKey, string(judge.ID), 0)
			if userKey != "" {
				pipe.Set(ctx, userKey, string(judge.ID), 0)
			}
			pipe.SAdd(ctx, judgesForCompetitionIndexKey(judge.CompetitionID), string(judge.ID))
			return nil
		})
		return err
	}, watched...)
}

// claimIndex fails with conflict when key already points at a different owner
func claimIndex(ctx context.Context, tx *redis.Tx, key, owner string, conflict error) error {
	current, err := tx.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}
	if current != owner {
		return conflict
	}
	return nil
}

func (s *Storage) GetJudge(ctx context.Context, id model.JudgeID) (*model.Judge, error) {
	return getJSON[model.Judge](ctx, s.client, judgeKey(id), model.ErrJudgeNotFound)
}

func (s *Storage) GetJudgeByUsername(ctx context.Context, competitionID model.CompetitionID, username string) (*model.Judge, error) {
	if username == "" {
		return nil, model.ErrJudgeNotFound
	}
	id, err := s.client.Get(ctx, judgeUsernameIndexKey(competitionID, username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrJudgeNotFound
		}
		return nil, err
	}
	return s.GetJudge(ctx, model.JudgeID(id))
}

func (s *Storage) ListJudges(ctx context.Context, filter model.JudgeFilter) ([]*model.Judge, error) {
	if filter.CompetitionID == "" {
		return nil, fmt.Errorf("listing judges requires a competition id")
	}

	ids, err := s.client.SMembers(ctx, judgesForCompetitionIndexKey(filter.CompetitionID)).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = judgeKey(model.JudgeID(id))
	}

	all, err := mgetJSON[model.Judge](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}

	judges := make([]*model.Judge, 0, len(all))
	for _, j := range all {
		if filter.Matches(j) {
			judges = append(judges, j)
		}
	}
	return judges, nil
}

// Score record operations

func (s *Storage) GetScoreRecord(ctx context.Context, key model.ScoreKey) (*model.ScoreRecord, error) {
	id, err := s.client.Get(ctx, scoreNaturalKeyIndexKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrScoreNotFound
		}
		return nil, err
	}
	return s.GetScoreRecordByID(ctx, model.ScoreID(id))
}

func (s *Storage) GetScoreRecordByID(ctx context.Context, id model.ScoreID) (*model.ScoreRecord, error) {
	return getJSON[model.ScoreRecord](ctx, s.client, scoreKey(id), model.ErrScoreNotFound)
}

func (s *Storage) ListScoreRecords(ctx context.Context, filter model.ScoreFilter) ([]*model.ScoreRecord, error) {
	indexKey := allScoresIndexKey()
	if filter.CompetitionID != "" {
		indexKey = scoresForCompetitionIndexKey(filter.CompetitionID)
	}

	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, err
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = scoreKey(model.ScoreID(id))
	}

	all, err := mgetJSON[model.ScoreRecord](ctx, s.client, keys)
	if err != nil {
		return nil, err
	}

	records := make([]*model.ScoreRecord, 0, len(all))
	for _, r := range all {
		if filter.Matches(r) {
			records = append(records, r)
		}
	}
	return records, nil
}

func (s *Storage) MutateScoreRecord(ctx context.Context, key model.ScoreKey, create bool, fn storage.MutateFunc) (*model.ScoreRecord, bool, error) {
	idxKey := scoreNaturalKeyIndexKey(key)

	var (
		result  *model.ScoreRecord
		created bool
	)
	err := s.watch(ctx, func(tx *redis.Tx) error {
		created = false

		var working *model.ScoreRecord
		id, err := tx.Get(ctx, idxKey).Result()
		switch {
		case errors.Is(err, redis.Nil):
			if !create {
				return model.ErrScoreNotFound
			}
			working = storage.NewScoreRecord(key)
			created = true
		case err != nil:
			return err
		default:
			working, err = loadWatched(ctx, tx, model.ScoreID(id))
			if err != nil {
				return err
			}
		}

		if err := fn(working); err != nil {
			return err
		}

		if err := commitScore(ctx, tx, working); err != nil {
			return err
		}
		result = working
		return nil
	}, idxKey)
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

func (s *Storage) MutateScoreRecordByID(ctx context.Context, id model.ScoreID, fn storage.MutateFunc) (*model.ScoreRecord, error) {
	var result *model.ScoreRecord
	err := s.watch(ctx, func(tx *redis.Tx) error {
		working, err := getJSON[model.ScoreRecord](ctx, tx, scoreKey(id), model.ErrScoreNotFound)
		if err != nil {
			return err
		}
		if err := fn(working); err != nil {
			return err
		}
		if err := commitScore(ctx, tx, working); err != nil {
			return err
		}
		result = working
		return nil
	}, scoreKey(id))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// loadWatched adds the record document to the watch set before reading it
func loadWatched(ctx context.Context, tx *redis.Tx, id model.ScoreID) (*model.ScoreRecord, error) {
	if err := tx.Watch(ctx, scoreKey(id)).Err(); err != nil {
		return nil, err
	}
	return getJSON[model.ScoreRecord](ctx, tx, scoreKey(id), model.ErrScoreNotFound)
}

// commitScore bumps the version and writes the record with its indexes in MULTI/EXEC
func commitScore(ctx context.Context, tx *redis.Tx, record *model.ScoreRecord) error {
	record.Version++
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, scoreKey(record.ID), data, 0)
		pipe.Set(ctx, scoreNaturalKeyIndexKey(record.Key()), string(record.ID), 0)
		pipe.SAdd(ctx, scoresForCompetitionIndexKey(record.CompetitionID), string(record.ID))
		pipe.SAdd(ctx, allScoresIndexKey(), string(record.ID))
		return nil
	})
	return err
}

// Assignment change operations

func (s *Storage) RecordAssignmentChange(ctx context.Context, adminID model.AccountID, at time.Time, ttl time.Duration) error {
	return s.client.Set(ctx, assignmentChangeKey(adminID), at.UTC().Format(time.RFC3339Nano), ttl).Err()
}

func (s *Storage) GetAssignmentChange(ctx context.Context, adminID model.AccountID) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, assignmentChangeKey(adminID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}

	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse assignment change for %s: %w", adminID, err)
	}
	return at, true, nil
}
