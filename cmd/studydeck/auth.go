package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jask/studydeck/internal/api"
	"github.com/jask/studydeck/internal/secrets"
)

var loginCmd = &cobra.Command{
	Use:   "login [token]",
	Short: "Store an API token for the configured service",
	Long: `Store an API token for the configured service. The token is read from
the argument or, when omitted, from the first line of stdin.

The token is checked against the service before it is saved.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read token: %w", err)
			}
			token = line
		}
		token = strings.TrimSpace(token)
		if token == "" {
			return fmt.Errorf("token required")
		}

		probe, err := api.New(api.Options{
			BaseURL: cfg.API.BaseURL,
			Token:   token,
			Timeout: cfg.API.Timeout,
			Retries: cfg.API.Retries,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		sess, err := probe.Session(cmd.Context())
		if err != nil {
			return fmt.Errorf("check token: %w", err)
		}
		if sess.User == nil {
			return fmt.Errorf("token not accepted by %s", cfg.API.BaseURL)
		}

		store, err := secrets.Default()
		if err != nil {
			return err
		}
		if err := store.Save(cfg.API.BaseURL, token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "signed in as %s\n", color.New(color.Bold).Sprint("@"+sess.User.Username))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored API token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := secrets.Default()
		if err != nil {
			return err
		}
		if err := store.Delete(cfg.API.BaseURL); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}
