package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/CTAG07/namegen/pkg/namegen"
)

var (
	// ErrNameNotFound is returned when no name has the requested id.
	ErrNameNotFound = errors.New("name not found")
	// ErrNameExists is returned by Create when the id is taken.
	ErrNameExists = errors.New("name already exists")
	// ErrVersionConflict is returned by Update when the stored version is not
	// the one the caller expected.
	ErrVersionConflict = errors.New("name version conflict")
)

// SetupSchema creates the names table. It is idempotent and safe to call on
// an already-initialized database.
func SetupSchema(db *sql.DB) error {
	const schemaNames = `
CREATE TABLE IF NOT EXISTS namegen_names (
    name_id TEXT PRIMARY KEY,
    version INTEGER NOT NULL DEFAULT 1,
    mtime INTEGER NOT NULL,
    data TEXT NOT NULL
);
`

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	if _, err = tx.Exec(schemaNames); err != nil {
		return fmt.Errorf("could not create schema: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// NameInfo is the metadata stored with every name.
type NameInfo struct {
	ID       string    `json:"id"`
	Version  int       `json:"version"`
	Modified time.Time `json:"mtime"`
}

// ExportedName is the serializable form of a stored name used by Export and
// Import.
type ExportedName struct {
	NameInfo
	Data json.RawMessage `json:"data"`
}

// Store reads and writes names using prepared statements.
type Store struct {
	db             *sql.DB
	stmtList       *sql.Stmt
	stmtGet        *sql.Stmt
	stmtGetVersion *sql.Stmt
	stmtInsert     *sql.Stmt
	stmtUpdate     *sql.Stmt
	stmtDelete     *sql.Stmt
	logger         *slog.Logger
	now            func() time.Time
}

// NewStore prepares every statement the store needs. SetupSchema must have
// been called on db first.
func NewStore(db *sql.DB) (*Store, error) {
	stmtList, err := db.Prepare(`SELECT name_id, version, mtime FROM namegen_names ORDER BY name_id;`)
	if err != nil {
		return nil, err
	}

	stmtGet, err := db.Prepare(`SELECT version, mtime, data FROM namegen_names WHERE name_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtGetVersion, err := db.Prepare(`SELECT version FROM namegen_names WHERE name_id = ?;`)
	if err != nil {
		return nil, err
	}

	stmtInsert, err := db.Prepare(`INSERT INTO namegen_names (name_id, version, mtime, data) VALUES (?, 1, ?, ?) ON CONFLICT(name_id) DO NOTHING;`)
	if err != nil {
		return nil, err
	}

	stmtUpdate, err := db.Prepare(`UPDATE namegen_names SET version = version + 1, mtime = ?, data = ? WHERE name_id = ? AND version = ?;`)
	if err != nil {
		return nil, err
	}

	stmtDelete, err := db.Prepare(`DELETE FROM namegen_names WHERE name_id = ?;`)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:             db,
		stmtList:       stmtList,
		stmtGet:        stmtGet,
		stmtGetVersion: stmtGetVersion,
		stmtInsert:     stmtInsert,
		stmtUpdate:     stmtUpdate,
		stmtDelete:     stmtDelete,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:            time.Now,
	}, nil
}

// Close releases the prepared statements.
func (s *Store) Close() {
	_ = s.stmtList.Close()
	_ = s.stmtGet.Close()
	_ = s.stmtGetVersion.Close()
	_ = s.stmtInsert.Close()
	_ = s.stmtUpdate.Close()
	_ = s.stmtDelete.Close()
}

// SetLogger sets the logger for the store. By default, all logs are discarded.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// List returns the metadata of every stored name, ordered by id.
func (s *Store) List(ctx context.Context) ([]NameInfo, error) {
	rows, err := s.stmtList.QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	infos := make([]NameInfo, 0)
	for rows.Next() {
		var info NameInfo
		var mtime int64
		if err = rows.Scan(&info.ID, &info.Version, &mtime); err != nil {
			return nil, err
		}
		info.Modified = time.UnixMilli(mtime).UTC()
		infos = append(infos, info)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return infos, nil
}

// Get loads and validates the name stored under id.
func (s *Store) Get(ctx context.Context, id string) (*namegen.Name, NameInfo, error) {
	info := NameInfo{ID: id}
	var mtime int64
	var data []byte
	err := s.stmtGet.QueryRowContext(ctx, id).Scan(&info.Version, &mtime, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, NameInfo{}, fmt.Errorf("%w: %q", ErrNameNotFound, id)
	} else if err != nil {
		return nil, NameInfo{}, fmt.Errorf("failed to query name %q: %w", id, err)
	}
	info.Modified = time.UnixMilli(mtime).UTC()

	name, err := decodeName(data)
	if err != nil {
		return nil, NameInfo{}, fmt.Errorf("stored name %q: %w", id, err)
	}
	return name, info, nil
}

// Create stores a new name under id at version 1.
func (s *Store) Create(ctx context.Context, id string, name *namegen.Name) (NameInfo, error) {
	if id == "" {
		return NameInfo{}, errors.New("name id is empty")
	}
	data, err := json.Marshal(name)
	if err != nil {
		return NameInfo{}, fmt.Errorf("failed to encode name %q: %w", id, err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	res, err := s.stmtInsert.ExecContext(ctx, id, now.UnixMilli(), string(data))
	if err != nil {
		return NameInfo{}, fmt.Errorf("failed to insert name %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return NameInfo{}, err
	} else if n == 0 {
		return NameInfo{}, fmt.Errorf("%w: %q", ErrNameExists, id)
	}

	s.logger.InfoContext(ctx, "Name created",
		slog.String("name_id", id),
		slog.Int("bytes", len(data)),
	)
	return NameInfo{ID: id, Version: 1, Modified: now}, nil
}

// Update replaces the name stored under id if its version is still version.
// On success the returned info carries the new version.
func (s *Store) Update(ctx context.Context, id string, version int, name *namegen.Name) (NameInfo, error) {
	data, err := json.Marshal(name)
	if err != nil {
		return NameInfo{}, fmt.Errorf("failed to encode name %q: %w", id, err)
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	res, err := s.stmtUpdate.ExecContext(ctx, now.UnixMilli(), string(data), id, version)
	if err != nil {
		return NameInfo{}, fmt.Errorf("failed to update name %q: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NameInfo{}, err
	}
	if n == 0 {
		var current int
		err = s.stmtGetVersion.QueryRowContext(ctx, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return NameInfo{}, fmt.Errorf("%w: %q", ErrNameNotFound, id)
		} else if err != nil {
			return NameInfo{}, err
		}
		return NameInfo{}, fmt.Errorf("%w: %q is at version %d, not %d", ErrVersionConflict, id, current, version)
	}

	s.logger.InfoContext(ctx, "Name updated",
		slog.String("name_id", id),
		slog.Int("version", version+1),
		slog.Int("bytes", len(data)),
	)
	return NameInfo{ID: id, Version: version + 1, Modified: now}, nil
}

// Delete removes the name stored under id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.stmtDelete.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete name %q: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("%w: %q", ErrNameNotFound, id)
	}

	s.logger.InfoContext(ctx, "Name removed", slog.String("name_id", id))
	return nil
}

// Export writes every stored name as an indented JSON array.
func (s *Store) Export(ctx context.Context, w io.Writer) error {
	rows, err := s.db.QueryContext(ctx, "SELECT name_id, version, mtime, data FROM namegen_names ORDER BY name_id")
	if err != nil {
		return fmt.Errorf("could not query names for export: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	exported := make([]ExportedName, 0)
	for rows.Next() {
		var e ExportedName
		var mtime int64
		var data []byte
		if err := rows.Scan(&e.ID, &e.Version, &mtime, &data); err != nil {
			return err
		}
		e.Modified = time.UnixMilli(mtime).UTC()
		e.Data = json.RawMessage(data)
		exported = append(exported, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Names exported", slog.Int("names_exported", len(exported)))

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exported)
}

// Import reads names written by Export. Every name is validated before
// anything is written. Names whose id already exists are replaced and their
// version is increased. The whole import runs in one transaction.
func (s *Store) Import(ctx context.Context, r io.Reader) (int, error) {
	var imported []ExportedName
	if err := json.NewDecoder(r).Decode(&imported); err != nil {
		return 0, fmt.Errorf("failed to decode json names: %w", err)
	}
	for _, e := range imported {
		if e.ID == "" {
			return 0, errors.New("imported name has an empty id")
		}
		if _, err := decodeName(e.Data); err != nil {
			return 0, fmt.Errorf("imported name %q: %w", e.ID, err)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction for import: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	stmtUpsert, err := tx.PrepareContext(ctx, `
		INSERT INTO namegen_names (name_id, version, mtime, data) VALUES (?, 1, ?, ?)
		ON CONFLICT(name_id) DO UPDATE SET version = version + 1, mtime = excluded.mtime, data = excluded.data;
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import statement: %w", err)
	}
	defer func(stmtUpsert *sql.Stmt) {
		_ = stmtUpsert.Close()
	}(stmtUpsert)

	now := s.now().UTC().UnixMilli()
	for _, e := range imported {
		if _, err = stmtUpsert.ExecContext(ctx, e.ID, now, string(e.Data)); err != nil {
			return 0, fmt.Errorf("failed to import name %q: %w", e.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "Names imported successfully", slog.Int("names_imported", len(imported)))
	return len(imported), nil
}

func decodeName(data []byte) (*namegen.Name, error) {
	name := namegen.NewName()
	if err := json.Unmarshal(data, name); err != nil {
		return nil, fmt.Errorf("failed to decode: %w", err)
	}
	if err := name.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate: %w", err)
	}
	return name, nil
}
