package cli

import (
	"github.com/spf13/cobra"
)

func newRankingsCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rankings",
		Short: "Show leaderboards",
	}

	var individualFilter, teamFilter categoryFilter

	individual := &cobra.Command{
		Use:   "individual",
		Short: "Rank players by final score",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result IndividualRanking
			if err := s.client.Get("/api/v1/rankings/individual", individualFilter.query(), &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}
	individualFilter.register(individual)

	team := &cobra.Command{
		Use:   "team",
		Short: "Rank teams by their best players",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result TeamRanking
			if err := s.client.Get("/api/v1/rankings/team", teamFilter.query(), &result); err != nil {
				return err
			}

			s.output(cmd).Print(result)
			return nil
		},
	}
	teamFilter.register(team)

	cmd.AddCommand(individual, team)
	return cmd
}
