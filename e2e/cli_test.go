package e2e_test

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/stroopgame/internal/api/response"
	"github.com/mcoot/stroopgame/internal/cli"
	"github.com/mcoot/stroopgame/internal/factory"
)

// cliRunner runs stroopctl commands in-process against a test server
type cliRunner struct {
	serverURL string
	userFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()
	return &cliRunner{
		serverURL: serverURL,
		userFile:  filepath.Join(t.TempDir(), "user"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--user-file", r.userFile,
		"--output", "json",
	}, args...)

	var out bytes.Buffer
	cmd := cli.NewRootCmd()
	cmd.SetArgs(fullArgs)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	app := factory.NewTestApp()
	srv := httptest.NewServer(app.Handler(""))
	t.Cleanup(func() {
		app.HubManager.Close()
		srv.Close()
		_ = app.Close()
	})
	return srv
}

func parse[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func TestCLI_HealthCheck(t *testing.T) {
	srv := startTestServer(t)
	runner := newCLIRunner(t, srv.URL)

	out, err := runner.run("health")
	require.NoError(t, err, out)
	assert.Contains(t, out, `"status": "ok"`)
}

func TestCLI_UserCommands(t *testing.T) {
	srv := startTestServer(t)
	runner := newCLIRunner(t, srv.URL)

	out, err := runner.run("user", "login", "alice")
	require.NoError(t, err, out)
	user := parse[response.User](t, out)
	assert.Equal(t, "alice", user.Username)

	// The saved user ID is used by later commands
	out, err = runner.run("user", "me")
	require.NoError(t, err, out)
	assert.Equal(t, user.ID, parse[response.User](t, out).ID)

	out, err = runner.run("user", "stats")
	require.NoError(t, err, out)
	assert.Equal(t, user.ID, parse[response.UserStats](t, out).UserID)

	out, err = runner.run("user", "register", "ALICE")
	assert.Error(t, err)
	assert.Contains(t, out, "USERNAME_EXISTS")
}

func TestCLI_FullGameFlow(t *testing.T) {
	srv := startTestServer(t)
	alice := newCLIRunner(t, srv.URL)
	bob := newCLIRunner(t, srv.URL)

	_, err := alice.run("user", "login", "alice")
	require.NoError(t, err)
	_, err = bob.run("user", "login", "bob")
	require.NoError(t, err)

	out, err := alice.run("room", "create")
	require.NoError(t, err, out)
	code := parse[response.Room](t, out).Code

	out, err = bob.run("room", "join", code)
	require.NoError(t, err, out)
	assert.Len(t, parse[response.Room](t, out).Players, 2)

	out, err = alice.run("game", "start", code, "--rounds", "1")
	require.NoError(t, err, out)
	started := parse[response.StartGame](t, out)
	require.NotNil(t, started.Round)

	// Bob cannot answer Alice's round
	out, err = bob.run("game", "answer", code, "1")
	assert.Error(t, err)
	assert.Contains(t, out, "NOT_YOUR_TURN")

	out, err = alice.run("game", "answer", code, "1", "--time", "0.5")
	require.NoError(t, err, out)
	first := parse[response.AnswerResult](t, out)
	assert.False(t, first.GameFinished)
	require.NotNil(t, first.NextPlayer)
	assert.Equal(t, "bob", first.NextPlayer.Username)

	out, err = bob.run("game", "current", code)
	require.NoError(t, err, out)
	assert.Equal(t, "bob", parse[response.Player](t, out).Username)

	out, err = bob.run("game", "answer", code, "1", "--time", "0.7")
	require.NoError(t, err, out)
	assert.True(t, parse[response.AnswerResult](t, out).GameFinished)

	out, err = alice.run("game", "scoreboard", code)
	require.NoError(t, err, out)
	assert.Len(t, parse[response.Scoreboard](t, out).Rows, 2)

	out, err = alice.run("game", "winner", code)
	require.NoError(t, err, out)
	assert.NotEmpty(t, parse[response.Winner](t, out).UserID)

	out, err = alice.run("leaderboard")
	require.NoError(t, err, out)
	assert.Len(t, parse[[]response.LeaderboardEntry](t, out), 2)

	out, err = alice.run("room", "reset", code)
	require.NoError(t, err, out)
	assert.False(t, parse[response.Room](t, out).Started)
}

func TestCLI_Chat(t *testing.T) {
	srv := startTestServer(t)
	runner := newCLIRunner(t, srv.URL)

	_, err := runner.run("user", "login", "alice")
	require.NoError(t, err)
	out, err := runner.run("room", "create")
	require.NoError(t, err, out)
	code := parse[response.Room](t, out).Code

	out, err = runner.run("chat", "send", code, "good", "luck")
	require.NoError(t, err, out)
	assert.Equal(t, "good luck", parse[response.ChatMessage](t, out).Text)

	out, err = runner.run("chat", "list", code)
	require.NoError(t, err, out)
	assert.Len(t, parse[[]response.ChatMessage](t, out), 1)
}

func TestCLI_ErrorHandling(t *testing.T) {
	srv := startTestServer(t)
	runner := newCLIRunner(t, srv.URL)

	t.Run("not logged in", func(t *testing.T) {
		out, err := runner.run("room", "create")
		assert.Error(t, err)
		assert.Contains(t, out, "UNAUTHORIZED")
	})

	t.Run("unknown room", func(t *testing.T) {
		_, err := runner.run("user", "login", "alice")
		require.NoError(t, err)

		out, err := runner.run("room", "show", "99999")
		assert.Error(t, err)
		assert.Contains(t, out, "ROOM_NOT_FOUND")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, err := runner.run("room", "join")
		assert.Error(t, err)
	})
}
