package main

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Roderick111/auror/internal/e2etest"
)

// startTestServer boots the full application on a random port with an
// in-memory database and the bundled test case, and tears it down with the
// test.
func startTestServer(t *testing.T, logSink io.Writer) *e2etest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server, err := e2etest.StartServer(ctx, logSink, testLookupEnv, run)
	require.NoError(t, err)
	return server
}

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "AUROR_ADDR":
		return "localhost:0", true
	case "AUROR_SQLITE_URL":
		return ":memory:", true
	case "AUROR_CASE_DIR":
		return "./testdata/cases", true
	default:
		return "", false
	}
}
