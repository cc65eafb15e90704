package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show dashboard URL with access token",
	Long: `Show the dashboard URL with your access token.

Use this when you've scrolled past the startup message or need to
share the dashboard link. Only servers started with --require-token
write a token.

Example:
  abreport token`,
	Args: cobra.NoArgs,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(cfg.Server.TokenFile)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no token found. Start the server with: abreport serve --require-token")
		}
		return fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return fmt.Errorf("token file is empty. Restart the server with: abreport serve --require-token")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dashboard: http://localhost:%d/?token=%s\n", cfg.Server.Port, token)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Tip: Bookmark this URL or run 'abreport token' anytime.")
	return nil
}
