// Package docstore keeps revision-tagged documents in collections backed
// by a single sqlite file.
//
// The contract is intentionally close to a CouchDB database: documents get
// a generated id and an opaque revision on insert, every update must carry
// the revision it read and advances it, and lookups go through a secondary
// index on the collection's natural key. A stale revision fails the write
// instead of overwriting.
package docstore

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

type (
	// Store is a handle to one sqlite file holding any number of
	// collections. It is safe for concurrent use.
	Store struct {
		db *sql.DB
	}

	// Document is one revision-tagged record. ID and Rev are assigned
	// by the store, Key is the collection's natural lookup key and Body
	// holds whatever the caller serialized.
	Document struct {
		ID   string
		Rev  string
		Key  string
		Body []byte
	}
)

var validCollection = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Open opens (or creates) the sqlite file backing the store.
func Open(ctx context.Context, path string) (*Store, error) {
	connstr := fmt.Sprintf("file:%v?_journal=wal&_busy_timeout=5000&mode=rwc", path)
	conn, err := sql.Open("sqlite3", connstr)
	if err != nil {
		return nil, fmt.Errorf("unable to open store at %v, cause %w", path, err)
	}
	err = conn.PingContext(ctx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to ping store at %v, cause %w", path, err)
	}
	return &Store{db: conn}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureCollection creates the table and secondary index for the given
// collection. It is idempotent and must run before the first read or
// write against that collection.
func (s *Store) EnsureCollection(ctx context.Context, name string) error {
	if !validCollection.MatchString(name) {
		return fmt.Errorf("invalid collection name %q", name)
	}
	for _, cmd := range []string{
		fmt.Sprintf(`create table if not exists %v(
			doc_id text not null primary key,
			rev text not null,
			doc_key text not null,
			key_hash64 integer not null,
			body blob not null
		)`, name),
		fmt.Sprintf(`create index if not exists idx_%v_key_hash64
			on %v(key_hash64)`, name, name),
	} {
		_, err := s.db.ExecContext(ctx, cmd)
		if err != nil {
			return fmt.Errorf("unable to setup collection %v, cause %w", name, err)
		}
	}
	return nil
}

// Insert stores a new document under key and returns it with a fresh id
// and first revision.
func (s *Store) Insert(ctx context.Context, collection, key string, body []byte) (Document, error) {
	if !validCollection.MatchString(collection) {
		return Document{}, fmt.Errorf("invalid collection name %q", collection)
	}
	doc := Document{
		ID:   uuid.NewString(),
		Key:  key,
		Body: body,
	}
	var err error
	doc.Rev, err = firstRev()
	if err != nil {
		return Document{}, err
	}
	_, err = s.db.ExecContext(ctx,
		fmt.Sprintf(`insert into %v(doc_id, rev, doc_key, key_hash64, body) values (?, ?, ?, ?, ?)`, collection),
		doc.ID, doc.Rev, doc.Key, keyHash(key), doc.Body)
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return Document{}, Conflict{Collection: collection, ID: doc.ID}
	} else if err != nil {
		return Document{}, fmt.Errorf("unable to insert document into %v, cause %w", collection, err)
	}
	return doc, nil
}

// Update replaces the stored document by compare-and-swap on (id, rev).
// The returned document carries the advanced revision. A stale revision
// fails with RevisionMismatch and the caller decides whether to reread
// and retry, Update never retries on its own.
func (s *Store) Update(ctx context.Context, collection string, doc Document) (Document, error) {
	if !validCollection.MatchString(collection) {
		return Document{}, fmt.Errorf("invalid collection name %q", collection)
	}
	if doc.ID == "" || doc.Rev == "" {
		return Document{}, fmt.Errorf("update in %v requires the id and revision that were read", collection)
	}
	next, err := nextRev(doc.Rev)
	if err != nil {
		return Document{}, err
	}
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`update %v set rev = ?, doc_key = ?, key_hash64 = ?, body = ? where doc_id = ? and rev = ?`, collection),
		next, doc.Key, keyHash(doc.Key), doc.Body, doc.ID, doc.Rev)
	if err != nil {
		return Document{}, fmt.Errorf("unable to update document %v in %v, cause %w", doc.ID, collection, err)
	}
	changed, err := res.RowsAffected()
	if err != nil {
		return Document{}, fmt.Errorf("unable to update document %v in %v, cause %w", doc.ID, collection, err)
	}
	if changed == 0 {
		var cur string
		err := s.db.QueryRowContext(ctx,
			fmt.Sprintf(`select rev from %v where doc_id = ?`, collection), doc.ID).Scan(&cur)
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, NotFound{Collection: collection, Key: doc.Key}
		} else if err != nil {
			return Document{}, fmt.Errorf("unable to update document %v in %v, cause %w", doc.ID, collection, err)
		}
		return Document{}, RevisionMismatch{Collection: collection, ID: doc.ID, Rev: doc.Rev}
	}
	doc.Rev = next
	return doc, nil
}

// FindByKey looks up a document through the collection's secondary index.
// Zero matches fail with NotFound, more than one match means the index
// broke its uniqueness promise and fails with InconsistentIndex.
func (s *Store) FindByKey(ctx context.Context, collection, key string) (Document, error) {
	if !validCollection.MatchString(collection) {
		return Document{}, fmt.Errorf("invalid collection name %q", collection)
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`select doc_id, rev, doc_key, body from %v where key_hash64 = ? and doc_key = ?`, collection),
		keyHash(key), key)
	if err != nil {
		return Document{}, fmt.Errorf("unable to lookup key in %v, cause %w", collection, err)
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		var doc Document
		err = rows.Scan(&doc.ID, &doc.Rev, &doc.Key, &doc.Body)
		if err != nil {
			return Document{}, fmt.Errorf("unable to scan document from %v, cause %w", collection, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return Document{}, fmt.Errorf("unable to lookup key in %v, cause %w", collection, err)
	}
	switch len(out) {
	case 0:
		return Document{}, NotFound{Collection: collection, Key: key}
	case 1:
		return out[0], nil
	default:
		return Document{}, InconsistentIndex{Collection: collection, Key: key, Rows: len(out)}
	}
}

func keyHash(key string) int64 {
	return int64(xxhash.Sum64String(key))
}

// Revisions follow the CouchDB shape <generation>-<suffix> so a stale
// write is cheap to spot and tests can assert the generation advanced.
func firstRev() (string, error) {
	return revWithGen(1)
}

func nextRev(cur string) (string, error) {
	gen, _, found := cut(cur, "-")
	if !found {
		return "", fmt.Errorf("malformed revision %q", cur)
	}
	n, err := strconv.Atoi(gen)
	if err != nil {
		return "", fmt.Errorf("malformed revision %q", cur)
	}
	return revWithGen(n + 1)
}

func revWithGen(gen int) (string, error) {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		return "", fmt.Errorf("unable to generate revision, cause %w", err)
	}
	return fmt.Sprintf("%v-%v", gen, hex.EncodeToString(buf[:])), nil
}

func cut(s, sep string) (before, after string, found bool) {
	idx := strings.Index(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}
