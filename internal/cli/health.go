package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"

	"social_gateway/internal/client"
	"social_gateway/internal/models"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check gateway and backend connectivity",
	Run: func(cmd *cobra.Command, args []string) {
		withClient(runHealth)
	},
}

var testCmd = &cobra.Command{
	Use:       "test [route|login|echo]",
	Short:     "Fire a diagnostic request and print the raw response",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"route", "login", "echo"},
	Run: func(cmd *cobra.Command, args []string) {
		action := "route"
		if len(args) == 1 {
			action = args[0]
		}
		withClient(func(ctx context.Context, c *client.Client, w io.Writer) int {
			return runTest(ctx, c, w, action)
		})
	},
}

func init() {
	rootCmd.AddCommand(healthCmd, testCmd)
}

// runHealth executes the health check and returns exit code
func runHealth(ctx context.Context, c *client.Client, w io.Writer) int {
	report, err := c.Health(ctx)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitSetup
	}

	if IsJSONOutput() {
		printJSON(w, report)
	} else {
		fmt.Fprintln(w, formatHealthHuman(report))
	}
	if report.Services.Backend != models.BackendHealthy {
		return exitFailure
	}
	return exitOK
}

// formatHealthHuman formats health response for human readability
func formatHealthHuman(r *models.HealthReport) string {
	return fmt.Sprintf(`Status:    %s
Frontend:  %s
Backend:   %s
Checked:   %s`, r.Status, r.Services.Frontend, r.Services.Backend, r.Timestamp.Format("2006-01-02 15:04:05 MST"))
}

// runTest prints status and body of one diagnostic call, whatever the status.
func runTest(ctx context.Context, c *client.Client, w io.Writer, action string) int {
	var (
		env *models.Envelope
		err error
	)
	switch action {
	case "route":
		env, err = c.Test(ctx, nil)
	case "echo":
		env, err = c.Test(ctx, map[string]string{"hello": "world"})
	case "login":
		env, err = c.Send(ctx, http.MethodPost, "/login", models.Credentials{Username: "testuser", Password: "password123"})
	default:
		fmt.Fprintf(w, "Error: unknown test %q (want route, login or echo)\n", action)
		return exitFailure
	}
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return exitSetup
	}
	fmt.Fprintln(w, client.Describe("", env))
	return exitOK
}
