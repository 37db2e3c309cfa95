package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func newMarkCmd(s *session) *cobra.Command {
	var (
		team, player, gender, ageGroup, elapsed string
		score                                   float64
	)

	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Submit the signed-in judge's mark for a player",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]any{
				"teamId":   team,
				"playerId": player,
				"gender":   gender,
				"ageGroup": ageGroup,
				"score":    score,
				"time":     elapsed,
			}

			var result MarkResult
			if err := s.client.Post("/api/v1/scores/marks", req, &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&team, "team", "", "Team ID (required)")
	cmd.Flags().StringVar(&player, "player", "", "Player ID (required)")
	cmd.Flags().StringVar(&gender, "gender", "", "Male or Female (required)")
	cmd.Flags().StringVar(&ageGroup, "age-group", "", "Age group, e.g. U14 (required)")
	cmd.Flags().Float64Var(&score, "score", 0, "Mark between 0 and 10 (required)")
	cmd.Flags().StringVar(&elapsed, "time", "", "Elapsed time, e.g. 1:30")
	for _, name := range []string{"team", "player", "gender", "age-group", "score"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func newSaveCmd(s *session) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a team's full score sheet from a JSON file",
		Long: `Save a team's full score sheet for one category. The file holds the
request body: teamId, gender, ageGroup, optional timeKeeperName, scorerName
and remarks, and a scores array of player rows.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}

			var sheet map[string]any
			if err := json.Unmarshal(data, &sheet); err != nil {
				return fmt.Errorf("invalid score sheet: %w", err)
			}

			var result SaveResult
			if err := s.client.Post("/api/v1/scores", sheet, &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Score sheet JSON file (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newUnlockCmd(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <scoreId>",
		Short: "Unlock a completed score record for editing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result UnlockResult
			if err := s.client.Post("/api/v1/scores/"+url.PathEscape(args[0])+"/unlock", nil, &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}
}

func newScoresCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scores",
		Short: "Read score records",
	}

	var filter categoryFilter
	list := &cobra.Command{
		Use:   "list",
		Short: "List score records of the competition",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ScoreList
			if err := s.client.Get("/api/v1/scores", filter.query(), &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}
	filter.register(list)
	list.Flags().StringVar(&filter.team, "team", "", "Only this team")

	get := &cobra.Command{
		Use:   "get <scoreId>",
		Short: "Show one score record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ScoreRecord
			if err := s.client.Get("/api/v1/scores/"+url.PathEscape(args[0]), nil, &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}

	cmd.AddCommand(list, get)
	return cmd
}

// categoryFilter holds the shared query flags of read commands
type categoryFilter struct {
	gender, ageGroup, team string
}

func (f *categoryFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.gender, "gender", "", "Only this gender")
	cmd.Flags().StringVar(&f.ageGroup, "age-group", "", "Only this age group (needs --gender)")
}

func (f *categoryFilter) query() url.Values {
	q := url.Values{}
	if f.gender != "" {
		q.Set("gender", f.gender)
	}
	if f.ageGroup != "" {
		q.Set("ageGroup", f.ageGroup)
	}
	if f.team != "" {
		q.Set("teamId", f.team)
	}
	return q
}
