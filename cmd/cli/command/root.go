package command

// root.go defines the root command and the flags every subcommand shares.

import (
	"context"
	"fmt"
	"os"
	"time"

	"cookbook/cmd/cli/authentication"
	"cookbook/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var apiURL string // API base URL, including the /api prefix

var rootCmd = &cobra.Command{
	Use:   "cookbook",
	Short: "cookbook - command line client for the cookbook API",
	Long: `cookbook talks to a running cookbook API server. Use it to:
- Browse dishes and their recipes
- Manage units of measure
- Build and check off a grocery list

Use "cookbook [command] --help" for more information about a command.`,
	SilenceUsage: true,
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("COOKBOOK_API", "http://localhost:8080/api"), "API server URL")

	rootCmd.AddCommand(authCmd, dishCmd, unitCmd, ingredientCmd, groceryCmd)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// authedClient returns a client carrying the stored access token,
// refreshing it first when it has expired.
func authedClient(ctx context.Context) (*client.HTTPClient, error) {
	creds, err := authentication.GetTokens()
	if err != nil {
		return nil, err
	}

	httpClient := client.NewHTTPClient(apiURL)
	if creds.ExpiresAt > 0 && time.Now().Unix() >= creds.ExpiresAt && creds.RefreshToken != "" {
		resp, err := httpClient.RefreshToken(ctx, creds.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("session expired, please log in again: %w", err)
		}
		creds.AccessToken = resp.AccessToken
		creds.ExpiresAt = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second).Unix()
		if err := authentication.StoreTokens(creds); err != nil {
			return nil, err
		}
	}
	httpClient.SetToken(creds.AccessToken)
	return httpClient, nil
}
