// ABOUTME: Entry point for the whoiswho CLI
// ABOUTME: Command-line tool for portal health checks and credential verification

package main

import (
	"fmt"
	"os"

	"github.com/gaelxxl34/whoiswho-portal/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
