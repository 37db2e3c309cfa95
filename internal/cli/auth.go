package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoginCmd(s *session) *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with an operator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]string{
				"username":      user,
				"password":      pass,
				"competitionId": s.cfg.CompetitionID,
			}
			return s.signIn(cmd, "/api/v1/auth/login", req)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newJudgeLoginCmd(s *session) *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "judge-login",
		Short: "Sign in as a judge of one competition",
		RunE: func(cmd *cobra.Command, args []string) error {
			if s.cfg.CompetitionID == "" {
				return fmt.Errorf("--competition is required")
			}
			req := map[string]string{
				"competitionId": s.cfg.CompetitionID,
				"username":      user,
				"password":      pass,
			}
			return s.signIn(cmd, "/api/v1/auth/judge/login", req)
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Judge username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Judge password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func (s *session) signIn(cmd *cobra.Command, path string, req any) error {
	var result TokenResult
	if err := s.client.Post(path, req, &result); err != nil {
		return err
	}

	// Save token
	if err := s.cfg.SaveToken(result.Token, result.CompetitionID); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	s.output(cmd).Print(result)
	return nil
}
