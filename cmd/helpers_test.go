package cmd

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/iksnae/standup-bot/internal"
	"github.com/iksnae/standup-bot/testutil"
)

type testEnv struct {
	dir        string
	configPath string
	dbPath     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("STANDUP_DB", "")
	t.Setenv("STANDUP_CONFIG", "")
	dir := testutil.CreateTempDir(t)
	dbFile := filepath.Join(dir, "standup.db")
	cfg := fmt.Sprintf(`channel: standup
participants: [alice, bob]
questions: [Q1, Q2]
pacing_delay: 1ms
database: %q
`, dbFile)
	return &testEnv{
		dir:        dir,
		configPath: testutil.WriteConfigFixture(t, dir, cfg),
		dbPath:     dbFile,
	}
}

// seed creates a standup on date where alice answered and bob did not reply.
func (e *testEnv) seed(t *testing.T, date string) {
	t.Helper()
	ctx := context.Background()
	db, err := internal.OpenDatabase(e.dbPath)
	if err != nil {
		t.Fatalf("OpenDatabase() error = %v", err)
	}
	store, err := internal.NewStore(db, internal.SystemClock{})
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	defer store.Close()

	sess, _, err := store.GetOrCreateSession(ctx, date)
	if err != nil {
		t.Fatal(err)
	}
	alice, err := store.CreateResponseRecord(ctx, sess.ID, internal.Participant{ID: "alice", DisplayName: "alice"}, []string{"Q1", "Q2"})
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range []string{"Shipped the importer", "Reviews"} {
		if _, err := store.AppendAnswer(ctx, alice.ID, a); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.SetStatus(ctx, alice.ID, internal.StatusAnswered); err != nil {
		t.Fatal(err)
	}
	if _, err := store.CreateResponseRecord(ctx, sess.ID, internal.Participant{ID: "bob", DisplayName: "bob"}, []string{"Q1", "Q2"}); err != nil {
		t.Fatal(err)
	}
}

func resetFlags() {
	verbose = false
	configPath = ""
	dbPath = ""
	runNow = false
	sessionsLimit = 30
	format = "jsonl"
	outputDir = "./exports"
	exportDate = ""
	exportAll = 0
	healthcheckVerbose = false
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(&bytes.Buffer{})
	err := rootCmd.Execute()
	return out.String(), err
}
