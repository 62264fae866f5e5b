/*
Package store persists namegen.Name definitions, including everything their
engines have learned, in a SQL database.

Names are stored as JSON documents keyed by a string id, together with a
version that increases on every update and a modification time. Updates are
optimistic: the caller passes the version it read, and the update fails with
ErrVersionConflict if another writer got there first.

Any database/sql driver for SQLite works. The package's tests use
github.com/mattn/go-sqlite3; the namegen binary uses modernc.org/sqlite unless
built with the cgo_sqlite tag.

	db, _ := sql.Open("sqlite", "names.db")
	if err := store.SetupSchema(db); err != nil { ... }
	s, err := store.NewStore(db)
	if err != nil { ... }
	defer s.Close()

	info, err := s.Create(ctx, "elves", name)
*/
package store
