package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
)

func newOnboardCmd(serverURL *string) *cobra.Command {
	var profilePath string
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Start the consent flow from a profile JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(profilePath)
			if err != nil {
				return err
			}
			resp, err := http.Post(*serverURL+"/api/v1/onboarding", "application/json", bytes.NewReader(b))
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusCreated {
				var body struct {
					Error string `json:"error"`
				}
				_ = json.NewDecoder(resp.Body).Decode(&body)
				return fmt.Errorf("onboarding failed: %s (%s)", resp.Status, body.Error)
			}
			var consent struct {
				SessionID  string `json:"session_id"`
				ConsentURL string `json:"consent_url"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&consent); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "session: %s\n", consent.SessionID)
			fmt.Fprintf(cmd.OutOrStdout(), "open this URL to grant consent:\n%s\n", consent.ConsentURL)
			return nil
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "profile.json", "Path to the onboarding profile JSON")
	return cmd
}
