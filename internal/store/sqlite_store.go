package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
)

const (
	nextIDQuery = `
		INSERT INTO document_sequences (collection, last_id) VALUES (?, 1)
		ON CONFLICT (collection) DO UPDATE SET last_id = last_id + 1
		RETURNING last_id
	`
	insertDocumentQuery = `
		INSERT INTO documents (collection, id, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	listDocumentsQuery = `
		SELECT id, body, created_at, updated_at FROM documents
		WHERE collection = ?
		ORDER BY id ASC
	`
	getDocumentQuery = `
		SELECT id, body, created_at, updated_at FROM documents
		WHERE collection = ? AND id = ?
	`
	updateDocumentQuery = `
		UPDATE documents SET body = ?, updated_at = ?
		WHERE collection = ? AND id = ?
	`
	deleteDocumentQuery = "DELETE FROM documents WHERE collection = ? AND id = ?"
)

type documentRow struct {
	ID        int64     `db:"id"`
	Body      string    `db:"body"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r documentRow) envelope() Envelope {
	return Envelope{ID: r.ID, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Body: []byte(r.Body)}
}

// SQLiteStore is a DocumentStore backed by the documents table. Run the migrations first.
type SQLiteStore struct {
	db *sqlx.DB
}

func NewSQLiteStore(db *sqlx.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Insert(ctx context.Context, collection string, body []byte) (Envelope, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Envelope{}, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var id int64
	if err := tx.GetContext(ctx, &id, nextIDQuery, collection); err != nil {
		return Envelope{}, errors.Wrap(err, "failed to allocate document id")
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, insertDocumentQuery, collection, id, string(body), now, now); err != nil {
		return Envelope{}, errors.Wrap(err, "failed to insert document")
	}

	if err := tx.Commit(); err != nil {
		return Envelope{}, errors.Wrap(err, "failed to commit document")
	}
	return Envelope{ID: id, CreatedAt: now, UpdatedAt: now, Body: body}, nil
}

func (s *SQLiteStore) List(ctx context.Context, collection string) ([]Envelope, error) {
	var rows []documentRow
	if err := s.db.SelectContext(ctx, &rows, listDocumentsQuery, collection); err != nil {
		return nil, err
	}

	out := make([]Envelope, len(rows))
	for i, row := range rows {
		out[i] = row.envelope()
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection string, id int64) (Envelope, error) {
	return getDocument(ctx, s.db, collection, id)
}

func (s *SQLiteStore) Modify(ctx context.Context, collection string, id int64, fn func(Envelope) ([]byte, error)) (Envelope, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return Envelope{}, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	env, err := getDocument(ctx, tx, collection, id)
	if err != nil {
		return Envelope{}, err
	}

	body, err := fn(env)
	if err != nil {
		return Envelope{}, err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, updateDocumentQuery, string(body), now, collection, id); err != nil {
		return Envelope{}, errors.Wrap(err, "failed to update document")
	}

	if err := tx.Commit(); err != nil {
		return Envelope{}, errors.Wrap(err, "failed to commit document")
	}

	env.Body = body
	env.UpdatedAt = now
	return env, nil
}

func (s *SQLiteStore) Remove(ctx context.Context, collection string, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, deleteDocumentQuery, collection, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func getDocument(ctx context.Context, q sqlx.QueryerContext, collection string, id int64) (Envelope, error) {
	var row documentRow
	err := sqlx.GetContext(ctx, q, &row, getDocumentQuery, collection, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Envelope{}, ErrNotFound
	}
	if err != nil {
		return Envelope{}, err
	}
	return row.envelope(), nil
}
