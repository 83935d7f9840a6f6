package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracker/internal/core"
	"tracker/internal/storage"
)

func setupEnv(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tracker.db")
	t.Setenv("SQLITE_DB_PATH", dbPath)
	t.Setenv("AMQP_URL", "")
	t.Setenv("PARTICIPANT_A", "artem")
	t.Setenv("PARTICIPANT_B", "nikita")
	t.Setenv("ADMINS", "")
	t.Setenv("LOG_LEVEL", "error")
	return dbPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(&rootOptions{logOutput: io.Discard})
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, dbPath string, entries ...core.Entry) []int64 {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	defer repo.Close()

	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i], err = repo.Insert(context.Background(), e)
		require.NoError(t, err)
	}
	return ids
}

func project(content string, num int) core.Entry {
	return core.Entry{
		Category: core.Projects, Subcat: core.NoSubcat, Content: content,
		Owner: "artem", CreatedAt: "02.03 10:00", TaskNumber: num,
	}
}

func money(content string, owner core.Owner) core.Entry {
	return core.Entry{
		Category: core.Money, Subcat: core.NoSubcat, Content: content,
		Owner: owner, CreatedAt: "05.04 12:00", TaskNumber: 1,
	}
}

func TestMigrate(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "schema migrated from version 0 to 2\n", out)

	out, err = run(t, "migrate")
	require.NoError(t, err)
	assert.Equal(t, "schema is up to date at version 2\n", out)
}

func TestMigrateDBFlag(t *testing.T) {
	setupEnv(t)
	other := filepath.Join(t.TempDir(), "nested", "other.db")

	out, err := run(t, "--db", other, "--json", "migrate")
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &body))
	assert.EqualValues(t, 2, body["version"])
	assert.Equal(t, false, body["dirty"])

	version, _, err := storage.MigrationVersion(storage.DSN(other))
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
}

func TestListCompactRenumber(t *testing.T) {
	dbPath := setupEnv(t)
	ids := seed(t, dbPath, project("alpha", 4), project("beta", 9), project("gamma\nsecond line", 12))

	out, err := run(t, "list", "projects")
	require.NoError(t, err)
	assert.Contains(t, out, "Projects")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "gamma ...")
	assert.NotContains(t, out, "second line")

	out, err = run(t, "compact", "projects", "none")
	require.NoError(t, err)
	assert.Equal(t, "projects/none: 3 active entries renumbered\n", out)

	out, err = run(t, "renumber", formatInt(ids[2]), "1")
	require.NoError(t, err)
	assert.Equal(t, "entry "+formatInt(ids[2])+" in projects/none is now #1\n", out)

	out, err = run(t, "--json", "list", "projects")
	require.NoError(t, err)
	var view struct {
		Items []struct {
			Entry core.Entry
		}
	}
	require.NoError(t, json.Unmarshal([]byte(out), &view))
	require.Len(t, view.Items, 3)
	got := []string{view.Items[0].Entry.Content, view.Items[1].Entry.Content, view.Items[2].Entry.Content}
	assert.Equal(t, []string{"gamma\nsecond line", "alpha", "beta"}, got)
}

func TestCommandErrors(t *testing.T) {
	setupEnv(t)

	tests := []struct {
		name string
		args []string
		is   error
	}{
		{name: "unknown category", args: []string{"list", "chores"}, is: core.ErrInvalidCategory},
		{name: "plans without period", args: []string{"compact", "plans"}, is: core.ErrInvalidSubcat},
		{name: "bad number", args: []string{"renumber", "1", "zero"}, is: core.ErrInvalidNumber},
		{name: "missing entry", args: []string{"renumber", "42", "1"}, is: core.ErrNotFound},
		{name: "unknown participant", args: []string{"report", "--owner", "bob"}, is: core.ErrInvalidOwner},
		{name: "watch without broker", args: []string{"watch"}, is: errNoBroker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			assert.ErrorIs(t, err, tt.is)
		})
	}

	_, err := run(t, "renumber", "abc", "1")
	assert.ErrorContains(t, err, `invalid entry id "abc"`)
}

func TestReport(t *testing.T) {
	dbPath := setupEnv(t)
	seed(t, dbPath, money("100", core.Common), money("20", "artem"), money("n/a", "nikita"))

	out, err := run(t, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 120.00 (2 entries, 1 without amount)")
	assert.Contains(t, out, "Common balance: 100.00")
	assert.Regexp(t, `artem\s+20.00\s+50.00\s+70.00`, out)
	assert.Regexp(t, `nikita\s+0.00\s+50.00\s+50.00`, out)
	assert.Regexp(t, `\d{4}-04\s+120.00\s+50.00`, out)

	out, err = run(t, "report", "--owner", "nikita")
	require.NoError(t, err)
	assert.Contains(t, out, "Statement for nikita")
	assert.Contains(t, out, "From common: 50.00")
	assert.Contains(t, out, "Total: 50.00")
}

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}
