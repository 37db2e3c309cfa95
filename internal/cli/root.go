package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// session is the state shared by every subcommand of one invocation
type session struct {
	cfg    *Config
	client *Client
}

func (s *session) output(cmd *cobra.Command) *Output {
	return NewOutput(s.cfg.Output, cmd.OutOrStdout())
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	s := &session{cfg: DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "scorectl",
		Short: "CLI tool for the team scoring API",
		Long: `scorectl is a CLI tool for the live gymnastics scoring API.

It signs in operators and judges, submits marks and score sheets, unlocks
records, prints leaderboards and follows category rooms in real time.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := s.cfg.LoadToken(); err != nil {
				return err
			}

			// Create HTTP client
			s.client = NewClient(s.cfg.ServerURL, s.cfg.Token, s.cfg.CompetitionID)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&s.cfg.ServerURL, "server", s.cfg.ServerURL, "Server URL (env: SCORECTL_SERVER)")
	flags.StringVar(&s.cfg.Token, "token", s.cfg.Token, "Access token (env: SCORECTL_TOKEN)")
	flags.StringVar(&s.cfg.TokenFile, "token-file", s.cfg.TokenFile, "Token file path (env: SCORECTL_TOKEN_FILE)")
	flags.StringVarP(&s.cfg.CompetitionID, "competition", "c", s.cfg.CompetitionID, "Competition ID for tokens without one (env: SCORECTL_COMPETITION)")
	flags.StringVarP(&s.cfg.Output, "output", "o", s.cfg.Output, "Output format: text, json")

	// Add subcommands
	rootCmd.AddCommand(newLoginCmd(s))
	rootCmd.AddCommand(newJudgeLoginCmd(s))
	rootCmd.AddCommand(newMarkCmd(s))
	rootCmd.AddCommand(newSaveCmd(s))
	rootCmd.AddCommand(newUnlockCmd(s))
	rootCmd.AddCommand(newScoresCmd(s))
	rootCmd.AddCommand(newRankingsCmd(s))
	rootCmd.AddCommand(newEventsCmd(s))
	rootCmd.AddCommand(newHealthCmd(s))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
