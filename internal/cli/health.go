package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// HealthResult is the body served by /healthz
type HealthResult struct {
	Status string `json:"status"`
}

func newHealthCmd(e *env) *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serverURL == "" {
				serverURL = fmt.Sprintf("http://localhost:%d", e.cfg.Port)
			}

			client := &http.Client{Timeout: 5 * time.Second}
			req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, strings.TrimSuffix(serverURL, "/")+"/healthz", nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}

			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			var result HealthResult
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				return fmt.Errorf("failed to decode response: %w", err)
			}
			if resp.StatusCode != http.StatusOK || result.Status != "ok" {
				return fmt.Errorf("server unhealthy: %s", resp.Status)
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", "", "Server URL (default http://localhost:<port>)")
	return cmd
}
