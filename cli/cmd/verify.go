// ABOUTME: Verify command for the whoiswho CLI
// ABOUTME: Checks a credential against the public verification endpoint

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gaelxxl34/whoiswho-portal/cli/internal/client"
	"github.com/gaelxxl34/whoiswho-portal/cli/internal/styles"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <credential-id>",
	Short: "Verify a credential",
	Long: `Verify a credential ID against the public verification endpoint.

No login is required; this is the same lookup employers use on the
public verification page.

Exit codes:
  0 - Credential verified
  1 - Credential not verified or unknown
  2 - Error (connectivity, invalid input)`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runVerify(ctx, os.Stdout, args[0])
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

// runVerify executes the credential lookup and returns exit code
func runVerify(ctx context.Context, w io.Writer, credentialID string) int {
	credentialID = strings.TrimSpace(credentialID)
	if credentialID == "" {
		fmt.Fprintln(w, "Error: credential ID is required")
		return 2
	}

	url := GetAPIURL()
	c := client.New(url)

	resp, err := c.Verify(ctx, &client.VerifyInput{CredentialID: credentialID})
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	if IsJSONOutput() {
		fmt.Fprintln(w, formatVerifyJSON(credentialID, resp))
	} else {
		fmt.Fprintln(w, formatVerifyHuman(credentialID, resp))
	}

	if !resp.Verified {
		return 1
	}
	return 0
}

// formatVerifyHuman formats a verification result for human readability
func formatVerifyHuman(credentialID string, resp *client.VerifyResponse) string {
	status := "not verified"
	if resp.Verified {
		status = "verified"
	}

	output := fmt.Sprintf("Credential: %s\nResult:     %s", credentialID, styles.Status(status))
	if resp.Message != "" {
		output += "\nMessage:    " + resp.Message
	}
	if len(resp.Credential) > 0 {
		pretty, err := json.MarshalIndent(json.RawMessage(resp.Credential), "", "  ")
		if err == nil {
			output += "\n" + string(pretty)
		}
	}
	return output
}

// formatVerifyJSON formats a verification result as JSON
func formatVerifyJSON(credentialID string, resp *client.VerifyResponse) string {
	output := map[string]interface{}{
		"credential_id": credentialID,
		"verified":      resp.Verified,
	}
	if resp.Message != "" {
		output["message"] = resp.Message
	}
	if len(resp.Credential) > 0 {
		output["credential"] = json.RawMessage(resp.Credential)
	}
	data, _ := json.MarshalIndent(output, "", "  ")
	return string(data)
}
