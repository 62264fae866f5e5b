package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/CTAG07/namegen/pkg/namegen"

	_ "github.com/mattn/go-sqlite3"
)

// setupTestStore creates a new SQLite database and a Store for testing.
// It uses t.Cleanup to ensure resources are released.
func setupTestStore(t *testing.T) (*sql.DB, *Store) {
	dbFile := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite3", dbFile+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := SetupSchema(db); err != nil {
		t.Fatalf("failed to set up schema: %v", err)
	}
	// Calling it twice must be harmless.
	if err := SetupSchema(db); err != nil {
		t.Fatalf("second SetupSchema() failed: %v", err)
	}

	s, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(s.Close)

	clock := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return db, s
}

func newTestName(t *testing.T, words ...string) *namegen.Name {
	t.Helper()
	cfg := namegen.NameConfig{
		Parts:   []namegen.PartConfig{{Name: "given", Kind: namegen.KindMarkov}},
		Formats: []namegen.FormatInfo{{Name: "default", Template: "{given}"}},
		Learn:   []namegen.SampleSetConfig{{Part: "given", Samples: wordSamples(words)}},
	}
	n, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return n
}

func wordSamples(words []string) []namegen.Sample {
	samples := make([]namegen.Sample, len(words))
	for i, w := range words {
		samples[i] = namegen.Word(w)
	}
	return samples
}

func TestCreateAndGet(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	name := newTestName(t, "aria", "bella", "carina")
	info, err := s.Create(ctx, "ladies", name)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if info.ID != "ladies" || info.Version != 1 {
		t.Errorf("Create() info = %+v", info)
	}

	loaded, got, err := s.Get(ctx, "ladies")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != info.ID || got.Version != info.Version || !got.Modified.Equal(info.Modified) {
		t.Errorf("Get() info = %+v, want %+v", got, info)
	}

	want, _ := name.Generator(3, "").Take(20)
	have, _ := loaded.Generator(3, "").Take(20)
	if !slices.Equal(want, have) {
		t.Error("loaded name generates different names")
	}
}

func TestCreateDuplicate(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, "a", newTestName(t, "aria")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Create(ctx, "a", newTestName(t, "bella")); !errors.Is(err, ErrNameExists) {
		t.Fatalf("second Create() error = %v, want %v", err, ErrNameExists)
	}
	if _, err := s.Create(ctx, "", newTestName(t, "bella")); err == nil {
		t.Error("Create() with empty id succeeded")
	}
}

func TestGetMissing(t *testing.T) {
	_, s := setupTestStore(t)
	if _, _, err := s.Get(context.Background(), "nope"); !errors.Is(err, ErrNameNotFound) {
		t.Errorf("Get() error = %v, want %v", err, ErrNameNotFound)
	}
}

func TestGetRejectsCorruptData(t *testing.T) {
	db, s := setupTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		data string
	}{
		{name: "Not JSON", data: "not json"},
		{name: "Broken weights", data: `{"parts":[{"name":"w","kind":"wordlist","engine":{"words":[{"word":"a","weight":0}]}}],"formats":[]}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := db.Exec(`INSERT OR REPLACE INTO namegen_names (name_id, version, mtime, data) VALUES ('bad', 1, 0, ?)`, tc.data); err != nil {
				t.Fatalf("failed to insert corrupt row: %v", err)
			}
			if _, _, err := s.Get(ctx, "bad"); err == nil {
				t.Error("Get() succeeded on corrupt data")
			}
		})
	}
}

func TestUpdate(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "a", newTestName(t, "aria"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := s.Update(ctx, "a", created.Version, newTestName(t, "bella"))
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Version != 2 || !updated.Modified.After(created.Modified) {
		t.Errorf("Update() info = %+v after %+v", updated, created)
	}

	loaded, _, err := s.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got, _ := loaded.Generator(1, "").Take(5)
	for _, name := range got {
		if name != "bella" {
			t.Fatalf("loaded name generated %q, want bella", name)
		}
	}

	if _, err := s.Update(ctx, "a", created.Version, newTestName(t, "carina")); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("stale Update() error = %v, want %v", err, ErrVersionConflict)
	}
	if _, err := s.Update(ctx, "missing", 1, newTestName(t, "carina")); !errors.Is(err, ErrNameNotFound) {
		t.Errorf("Update() of missing name error = %v, want %v", err, ErrNameNotFound)
	}
}

func TestListAndDelete(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		if _, err := s.Create(ctx, id, newTestName(t, "aria")); err != nil {
			t.Fatalf("Create(%q) error = %v", id, err)
		}
	}

	infos, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	ids := make([]string, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	if !slices.Equal(ids, []string{"a", "b", "c"}) {
		t.Errorf("List() ids = %v, want [a b c]", ids)
	}

	if err := s.Delete(ctx, "b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, "b"); !errors.Is(err, ErrNameNotFound) {
		t.Errorf("second Delete() error = %v, want %v", err, ErrNameNotFound)
	}
	if infos, _ := s.List(ctx); len(infos) != 2 {
		t.Errorf("List() after delete returned %d names, want 2", len(infos))
	}
}

func TestExportImport(t *testing.T) {
	_, src := setupTestStore(t)
	_, dst := setupTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		if _, err := src.Create(ctx, id, newTestName(t, "aria", "dorian")); err != nil {
			t.Fatalf("Create(%q) error = %v", id, err)
		}
	}
	if _, err := dst.Create(ctx, "a", newTestName(t, "zelda")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	var buf bytes.Buffer
	if err := src.Export(ctx, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	var exported []ExportedName
	if err := json.Unmarshal(buf.Bytes(), &exported); err != nil || len(exported) != 2 {
		t.Fatalf("Export() wrote %d names, err = %v", len(exported), err)
	}

	n, err := dst.Import(ctx, &buf)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Import() = %d, want 2", n)
	}

	infos, err := dst.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(infos) != 2 || infos[0].Version != 2 || infos[1].Version != 1 {
		t.Errorf("List() after import = %+v, want a at version 2 and b at version 1", infos)
	}

	loaded, _, err := dst.Get(ctx, "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	names, _ := loaded.Generator(9, "").Take(10)
	for _, name := range names {
		if strings.Contains(name, "z") {
			t.Fatalf("imported name still generates %q from the replaced definition", name)
		}
	}
}

func TestImportRejectsInvalid(t *testing.T) {
	_, s := setupTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		name  string
		input string
	}{
		{name: "Not JSON", input: "{"},
		{name: "Empty id", input: `[{"id":"","version":1,"data":{"parts":[],"formats":[]}}]`},
		{name: "Invalid name", input: `[{"id":"x","version":1,"data":{"parts":[{"name":"w","kind":"bogus","engine":{}}]}}]`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Import(ctx, strings.NewReader(tc.input)); err == nil {
				t.Fatal("Import() succeeded, want error")
			}
			if infos, _ := s.List(ctx); len(infos) != 0 {
				t.Errorf("failed Import() stored %d names", len(infos))
			}
		})
	}
}
