package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"hookdeploy/internal/security"
)

var (
	registerRepo   string
	registerURL    string
	registerSecret string
	registerToken  string
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create the push webhook on a GitHub repository",
	Long: `Register the webhook on GitHub so pushes are delivered to this server.

Requires a GitHub token with admin access to the repository. When --secret is
omitted a fresh random secret is generated and printed; configure the same
value in hookdeploy.yaml.`,
	RunE: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&registerRepo, "repo", "", "Repository in owner/name form (required)")
	registerCmd.Flags().StringVar(&registerURL, "url", "", "Public webhook URL, e.g. https://deploy.example.com/githubwebhook (required)")
	registerCmd.Flags().StringVar(&registerSecret, "secret", os.Getenv("HOOKDEPLOY_SECRET"), "Webhook secret (generated when omitted)")
	registerCmd.Flags().StringVar(&registerToken, "token", os.Getenv("HOOKDEPLOY_GITHUB_TOKEN"), "GitHub API token")
	registerCmd.MarkFlagRequired("repo")
	registerCmd.MarkFlagRequired("url")
}

func runRegister(cmd *cobra.Command, args []string) error {
	if err := security.ValidateRepoName(registerRepo); err != nil {
		return fmt.Errorf("invalid --repo: %w", err)
	}
	if registerToken == "" {
		return fmt.Errorf("a GitHub token is required (--token or HOOKDEPLOY_GITHUB_TOKEN)")
	}

	generated := false
	if registerSecret == "" {
		s, err := security.GenerateSecret(32)
		if err != nil {
			return err
		}
		registerSecret = s
		generated = true
	}
	if err := security.ValidateSecret(registerSecret); err != nil {
		return fmt.Errorf("invalid secret: %w", err)
	}

	parts := strings.Split(registerRepo, "/")
	owner, repo := parts[0], parts[1]

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: registerToken})
	client := github.NewClient(oauth2.NewClient(ctx, ts))

	// Skip creation if a hook for this URL already exists
	hooks, _, err := client.Repositories.ListHooks(ctx, owner, repo, nil)
	if err != nil {
		return fmt.Errorf("listing webhooks: %w", err)
	}
	for _, hook := range hooks {
		if hook.Config != nil {
			if url, ok := hook.Config["url"].(string); ok && url == registerURL {
				fmt.Printf("Webhook already exists for %s\n", registerURL)
				return nil
			}
		}
	}

	active := true
	hookReq := &github.Hook{
		Events: []string{"push"},
		Active: &active,
		Config: map[string]interface{}{
			"url":          registerURL,
			"content_type": "json",
			"secret":       registerSecret,
			"insecure_ssl": "0",
		},
	}

	if _, _, err := client.Repositories.CreateHook(ctx, owner, repo, hookReq); err != nil {
		return fmt.Errorf("creating webhook: %w", err)
	}

	fmt.Printf("Webhook created on %s for push events\n", registerRepo)
	if generated {
		fmt.Printf("Generated secret (add to hookdeploy.yaml):\n  %s\n", registerSecret)
	}
	return nil
}
