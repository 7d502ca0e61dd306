package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"social_gateway/internal/client"
	"social_gateway/internal/logger"
	"social_gateway/internal/repository"
	"social_gateway/internal/repository/db"
	"social_gateway/internal/session"
)

func cliLogger() *logger.Logger {
	if verbose {
		return logger.Get(logger.DebugLevel, logger.ConsoleFormat).Named("socialctl")
	}
	return logger.Nop()
}

// openClient opens the session database and returns a client bound to it.
// The returned func closes the database.
func openClient() (*client.Client, func(), error) {
	path := GetDBPath()
	database, err := db.InitDB(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open session store %s: %w", path, err)
	}
	log := cliLogger()
	store := session.NewPersistentStore(repository.NewRepository(database).Tokens, log)
	c := client.New(GetAPIURL(), store, client.WithLogger(log))
	return c, func() { _ = database.Close() }, nil
}

// withClient is the common Run body: signal-aware context, opened session
// store, and os.Exit with the code run returns.
func withClient(run func(ctx context.Context, c *client.Client, w io.Writer) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, closeStore, err := openClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitSetup)
	}
	code := run(ctx, c, os.Stdout)
	closeStore()
	if code != exitOK {
		os.Exit(code)
	}
}

// reloginHint is the CLI's Navigator: it cannot move the user, so it says where to go.
func reloginHint(w io.Writer) client.Navigator {
	return client.NavigatorFunc(func(string) {
		fmt.Fprintln(w, "Session rejected by the server and cleared. Run `socialctl login <username>` to sign in again.")
	})
}

// reportError prints err and maps it to an exit code.
func reportError(w io.Writer, err error) int {
	if client.HandleUnauthenticated(err, reloginHint(w)) {
		return exitUnauthenticated
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return exitFailure
}

func printJSON(w io.Writer, v any) {
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(w, string(data))
}
