package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHealthCmd(s *session) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server and storage health",
		Long: `Check that the server is up and its storage is reachable. With --wait the
check is retried until it passes or the wait elapses, which suits start-up
scripts.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			deadline := time.Now().Add(wait)
			for {
				var result HealthResult
				err := s.client.Get("/health", nil, &result)
				if err == nil {
					s.output(cmd).Print(result)
					return nil
				}
				if time.Now().After(deadline) {
					return fmt.Errorf("server unhealthy: %w", err)
				}
				time.Sleep(min(time.Second, time.Until(deadline)))
			}
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 0, "Keep retrying for up to this long")

	return cmd
}
