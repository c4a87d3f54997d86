package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Roderick111/auror/internal/e2etest"
	"github.com/Roderick111/auror/internal/errors"
	"github.com/Roderick111/auror/internal/logging"
)

// testInvestigation plays a minimal scenario against whatever case the
// deployment lists first: browse the roster, open the case, question the
// first witness, then reset so the smoke run leaves no progress behind. It
// only relies on the API shape, never on specific case content.
func testInvestigation(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second) //nolint:mnd // 30 seconds
	defer cancel()
	var err error

	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		return errors.Wrap(err, "wait for ready")
	}

	var roster struct {
		Cases []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"cases"`
	}
	if err = client.GetJSON(ctx, "/api/cases", &roster); err != nil {
		return errors.Wrap(err, "list cases")
	}
	if len(roster.Cases) == 0 {
		return errors.New("no cases in roster")
	}
	caseID := roster.Cases[0].ID

	var view struct {
		PointsRemaining int `json:"pointsRemaining"`
		Witnesses       []struct {
			ID string `json:"id"`
		} `json:"witnesses"`
	}
	if err = client.GetJSON(ctx, "/api/cases/"+caseID, &view); err != nil {
		return errors.Wrap(err, "show case")
	}

	if len(view.Witnesses) > 0 {
		var statement struct {
			Answer string `json:"answer"`
		}
		status, postErr := client.PostJSON(ctx,
			"/api/cases/"+caseID+"/witnesses/"+view.Witnesses[0].ID+"/statements",
			map[string]string{"question": "Good evening. Could you walk me through that night, please?"},
			&statement)
		if postErr != nil {
			return errors.Wrap(postErr, "question witness")
		}
		if status != http.StatusOK {
			return errors.New("unexpected statement status", slog.Int("status", status))
		}
		if statement.Answer == "" {
			return errors.New("witness answered nothing")
		}
	}

	status, err := client.PostJSON(ctx, "/api/cases/"+caseID+"/reset", nil, nil)
	if err != nil {
		return errors.Wrap(err, "reset case")
	}
	if status != http.StatusOK {
		return errors.New("unexpected reset status", slog.Int("status", status))
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only the server URL to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <url>")
		os.Exit(1)
	}

	var (
		url    = os.Args[1]
		client *e2etest.Client
		err    error
	)
	ctx = logging.WithAttrs(ctx, slog.String("url", url))

	if client, err = e2etest.NewClient(url); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", errors.SlogError(err))
		os.Exit(1)
	}
	if err = testInvestigation(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing investigation", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
