// ABOUTME: Health command for the whoiswho CLI
// ABOUTME: Checks portal connectivity and upstream registry status

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaelxxl34/whoiswho-portal/cli/internal/client"
	"github.com/gaelxxl34/whoiswho-portal/cli/internal/styles"
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check portal connectivity",
	Long: `Check connectivity to the Who is Who portal and the verification
registry behind it.

Exit codes:
  0 - Portal and upstream registry healthy
  1 - Portal reachable but upstream registry degraded or unreachable
  2 - Error (cannot reach portal)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runHealth(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, w io.Writer) int {
	url := GetAPIURL()
	c := client.New(url)

	resp, err := c.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatHealthJSON(url, resp))
	} else {
		fmt.Fprintln(w, formatHealthHuman(url, resp))
	}

	if resp.Upstream != "ok" {
		return 1
	}
	return 0
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(url string, resp *client.HealthResponse) string {
	return fmt.Sprintf(`Portal:    %s
Status:    %s
Registry:  %s (%s)`,
		url,
		styles.Status(resp.Status),
		styles.Status(resp.Upstream),
		resp.UpstreamURL,
	)
}

// formatHealthJSON formats health response as JSON
func formatHealthJSON(url string, resp *client.HealthResponse) string {
	output := map[string]interface{}{
		"portal":       url,
		"status":       resp.Status,
		"upstream":     resp.Upstream,
		"upstream_url": resp.UpstreamURL,
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
