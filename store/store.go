// Package store keeps packed TextGrid documents in a SQLite archive.
//
// Each row holds the packed bytes (see package pack), the document
// fingerprint and a BLAKE3 digest of the packed bytes. The digest is checked
// on every Get, so a damaged row is reported instead of decoded.
//
// The archive uses the pure Go modernc.org/sqlite driver; no cgo is needed.
//
//	s, err := store.Open(ctx, "annotations.db")
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	entry, err := s.Put(ctx, "speaker01", doc)
package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/zeebo/blake3"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/arloliu/textgrid/compress"
	"github.com/arloliu/textgrid/errs"
	"github.com/arloliu/textgrid/format"
	"github.com/arloliu/textgrid/grid"
	"github.com/arloliu/textgrid/internal/options"
	"github.com/arloliu/textgrid/pack"
)

// DriverName is the database/sql driver the store opens.
const DriverName = "sqlite"

// MemoryDSN opens a private in-memory archive.
const MemoryDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	name        TEXT PRIMARY KEY,
	fingerprint TEXT NOT NULL,
	digest      TEXT NOT NULL,
	tiers       INTEGER NOT NULL,
	xmin        REAL NOT NULL,
	xmax        REAL NOT NULL,
	packed      BLOB NOT NULL,
	updated     INTEGER NOT NULL
)`

// Entry describes a stored document without decoding it.
type Entry struct {
	Name        string
	Fingerprint uint64
	Digest      string // hex BLAKE3-256 of the packed bytes
	Tiers       int
	XMin        float64
	XMax        float64
	Size        int // packed size in bytes
	Updated     time.Time
}

// Store is a SQLite-backed document archive. It is safe for concurrent use.
type Store struct {
	db          *sql.DB
	logger      *slog.Logger
	compression format.CompressionType
	now         func() time.Time
}

// Option configures a Store.
type Option = options.Option[*Store]

// WithLogger sets the logger for archive events. A nil logger is ignored.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	})
}

// WithCompression sets the pack compression used by Put.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(s *Store) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		s.compression = ct

		return nil
	})
}

// Open opens (creating if needed) the archive at dsn and prepares its schema.
//
// Parameters:
//   - ctx: Context for the schema setup
//   - dsn: SQLite data source name, a file path or MemoryDSN
//   - opts: WithLogger, WithCompression
//
// Returns:
//   - *Store: Open archive; call Close when done
//   - error: Option errors, or an errs.ErrIO failure from the database
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	s := &Store{
		logger:      slog.New(slog.DiscardHandler),
		compression: pack.DefaultCompression,
		now:         time.Now,
	}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, errs.IO(err)
	}
	// every connection to ":memory:" would get its own database
	if dsn == MemoryDSN {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errs.IO(fmt.Errorf("create schema: %w", err))
	}
	s.db = db
	s.logger.Debug("archive opened", "dsn", dsn)

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return errs.IO(s.db.Close())
}

// Put packs doc and stores it under name, replacing any previous document.
// doc is stored as is; validate it first if that matters.
func (s *Store) Put(ctx context.Context, name string, doc *grid.Document) (Entry, error) {
	if err := checkName(name); err != nil {
		return Entry{}, err
	}

	packed, err := pack.Encode(doc, pack.WithCompression(s.compression))
	if err != nil {
		return Entry{}, err
	}

	sum := blake3.Sum256(packed)
	e := Entry{
		Name:        name,
		Fingerprint: doc.Fingerprint(),
		Digest:      hex.EncodeToString(sum[:]),
		Tiers:       doc.NumTiers(),
		XMin:        doc.XMin(),
		XMax:        doc.XMax(),
		Size:        len(packed),
		Updated:     s.now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, fingerprint, digest, tiers, xmin, xmax, packed, updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			digest = excluded.digest,
			tiers = excluded.tiers,
			xmin = excluded.xmin,
			xmax = excluded.xmax,
			packed = excluded.packed,
			updated = excluded.updated`,
		e.Name, formatFingerprint(e.Fingerprint), e.Digest, e.Tiers, e.XMin, e.XMax, packed, e.Updated.UnixNano(),
	)
	if err != nil {
		return Entry{}, errs.IO(fmt.Errorf("put %q: %w", name, err))
	}

	s.logger.Debug("document stored", "name", name, "size", e.Size, "digest", e.Digest)

	return e, nil
}

// Get loads and decodes the document stored under name. opts are passed to
// grid.New.
//
// Returns errs.ErrNotFound for an unknown name and errs.ErrChecksumMismatch
// when the stored bytes no longer match their digest.
func (s *Store) Get(ctx context.Context, name string, opts ...grid.Option) (*grid.Document, error) {
	var digest string
	var packed []byte

	err := s.db.QueryRowContext(ctx, `SELECT digest, packed FROM documents WHERE name = ?`, name).Scan(&digest, &packed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: document %q", errs.ErrNotFound, name)
	}
	if err != nil {
		return nil, errs.IO(fmt.Errorf("get %q: %w", name, err))
	}

	sum := blake3.Sum256(packed)
	if got := hex.EncodeToString(sum[:]); got != digest {
		return nil, fmt.Errorf("%w: document %q has digest %s, row says %s", errs.ErrChecksumMismatch, name, got, digest)
	}

	return pack.Decode(packed, opts...)
}

// Stat returns the entry stored under name without decoding it.
func (s *Store) Stat(ctx context.Context, name string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM documents WHERE name = ?`, name)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: document %q", errs.ErrNotFound, name)
	}
	if err != nil {
		return Entry{}, errs.IO(fmt.Errorf("stat %q: %w", name, err))
	}

	return e, nil
}

// List returns every entry ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM documents ORDER BY name`)
	if err != nil {
		return nil, errs.IO(fmt.Errorf("list: %w", err))
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errs.IO(fmt.Errorf("list: %w", err))
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.IO(fmt.Errorf("list: %w", err))
	}

	return entries, nil
}

// Delete removes the document stored under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE name = ?`, name)
	if err != nil {
		return errs.IO(fmt.Errorf("delete %q: %w", name, err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return errs.IO(fmt.Errorf("delete %q: %w", name, err))
	}
	if n == 0 {
		return fmt.Errorf("%w: document %q", errs.ErrNotFound, name)
	}

	s.logger.Debug("document deleted", "name", name)

	return nil
}

const entryColumns = `name, fingerprint, digest, tiers, xmin, xmax, length(packed), updated`

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e       Entry
		fp      string
		updated int64
	)
	if err := row.Scan(&e.Name, &fp, &e.Digest, &e.Tiers, &e.XMin, &e.XMax, &e.Size, &updated); err != nil {
		return Entry{}, err
	}

	v, err := strconv.ParseUint(fp, 16, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("fingerprint %q: %w", fp, err)
	}
	e.Fingerprint = v
	e.Updated = time.Unix(0, updated).UTC()

	return e, nil
}

// fingerprints are kept as hex text; SQLite integers are signed
func formatFingerprint(v uint64) string {
	return fmt.Sprintf("%016x", v)
}

func checkName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: document name must not be empty", errs.ErrValidation)
	}

	return nil
}
