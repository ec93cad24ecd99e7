package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vbonduro/homeclean/internal/metrics"
)

// Mode is the access a transaction holds on the collections it names.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "readwrite"
	}
	return "readonly"
}

// Tx is a unit of work over a fixed set of collections. It is only valid
// inside the function passed to Store.Transaction.
type Tx struct {
	tx      *sql.Tx
	scope   map[string]*Collection
	mode    Mode
	metrics *metrics.Metrics
}

func (t *Tx) collection(name string, write bool) (*Collection, error) {
	c, ok := lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCollection, name)
	}
	if _, ok := t.scope[name]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrOutOfScope, name)
	}
	if write && t.mode != ReadWrite {
		return nil, fmt.Errorf("%w: %q", ErrReadOnly, name)
	}
	return c, nil
}

// Add inserts record and returns its key, generating one when the collection
// auto-increments and the record has none. A collision on the primary key or
// a unique index returns a *domain.ConstraintError.
func (t *Tx) Add(ctx context.Context, collection string, record any) (key Key, err error) {
	defer func() { t.metrics.ObserveOperation(collection, "add", err) }()

	c, err := t.collection(collection, true)
	if err != nil {
		return nil, err
	}
	d, err := newDocument(c, record)
	if err != nil {
		return nil, err
	}
	return t.insert(ctx, c, d, false)
}

// Put inserts record or replaces the record with the same primary key.
func (t *Tx) Put(ctx context.Context, collection string, record any) (key Key, err error) {
	defer func() { t.metrics.ObserveOperation(collection, "put", err) }()

	c, err := t.collection(collection, true)
	if err != nil {
		return nil, err
	}
	d, err := newDocument(c, record)
	if err != nil {
		return nil, err
	}
	return t.insert(ctx, c, d, true)
}

func (t *Tx) insert(ctx context.Context, c *Collection, d *document, upsert bool) (Key, error) {
	var cols []string
	var args []any
	if d.key != nil {
		for i, field := range c.KeyPath {
			cols = append(cols, field)
			args = append(args, d.key[i])
		}
	}
	valueFields := c.valueFields()
	for _, field := range valueFields {
		cols = append(cols, field)
		args = append(args, d.column(field))
	}
	data, err := d.data()
	if err != nil {
		return nil, err
	}
	cols = append(cols, "data")
	args = append(args, data)

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(c.Name), quoteList(cols), placeholders(len(cols)))
	if upsert && d.key != nil {
		sets := make([]string, 0, len(valueFields)+1)
		for _, field := range append(valueFields, "data") {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", quote(field), quote(field)))
		}
		query += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
			quoteList(c.KeyPath), strings.Join(sets, ", "))
	}

	result, err := t.tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(c.Name, err)
	}
	if d.key != nil {
		return d.key, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	d.setKey(c, Key{id})
	if data, err = d.data(); err != nil {
		return nil, err
	}
	if _, err := t.tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", quote(c.Name), quote("data"), quote(c.KeyPath[0])),
		data, id,
	); err != nil {
		return nil, fmt.Errorf("failed to store generated key: %w", err)
	}
	return d.key, nil
}

// Get returns the record stored under key, or nil if there is none.
func (t *Tx) Get(ctx context.Context, collection string, key Key) (doc json.RawMessage, err error) {
	defer func() { t.metrics.ObserveOperation(collection, "get", err) }()

	c, err := t.collection(collection, false)
	if err != nil {
		return nil, err
	}
	where, args, err := keyClause(c, key)
	if err != nil {
		return nil, err
	}

	var data string
	err = t.tx.QueryRowContext(ctx,
		fmt.Sprintf("SELECT %s FROM %s WHERE %s", quote("data"), quote(c.Name), where), args...,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s %s: %w", c.Name, key, err)
	}
	return json.RawMessage(data), nil
}

// GetAll returns every record in primary-key order.
func (t *Tx) GetAll(ctx context.Context, collection string) (docs []json.RawMessage, err error) {
	defer func() { t.metrics.ObserveOperation(collection, "get_all", err) }()

	c, err := t.collection(collection, false)
	if err != nil {
		return nil, err
	}
	return t.query(ctx, c, fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		quote("data"), quote(c.Name), quoteList(c.KeyPath)))
}

// GetByIndex returns the records whose indexed field equals value, in
// primary-key order.
func (t *Tx) GetByIndex(ctx context.Context, collection, index string, value any) (docs []json.RawMessage, err error) {
	defer func() { t.metrics.ObserveOperation(collection, "get_by_index", err) }()

	c, err := t.collection(collection, false)
	if err != nil {
		return nil, err
	}
	idx, ok := c.index(index)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownIndex, collection, index)
	}
	if value == nil {
		return nil, fmt.Errorf("%w: nil lookup value for %s.%s", ErrInvalidKey, collection, index)
	}
	return t.query(ctx, c, fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s",
		quote("data"), quote(c.Name), quote(idx.Field), quoteList(c.KeyPath)), indexValue(value))
}

// Delete removes the record stored under key. It reports whether a record
// was removed; a missing key is not an error.
func (t *Tx) Delete(ctx context.Context, collection string, key Key) (deleted bool, err error) {
	defer func() { t.metrics.ObserveOperation(collection, "delete", err) }()

	c, err := t.collection(collection, true)
	if err != nil {
		return false, err
	}
	where, args, err := keyClause(c, key)
	if err != nil {
		return false, err
	}

	result, err := t.tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE %s", quote(c.Name), where), args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s %s: %w", c.Name, key, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// Clear removes every record in the collection. Generated keys keep counting
// from where they were.
func (t *Tx) Clear(ctx context.Context, collection string) (err error) {
	defer func() { t.metrics.ObserveOperation(collection, "clear", err) }()

	c, err := t.collection(collection, true)
	if err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", quote(c.Name))); err != nil {
		return fmt.Errorf("failed to clear %s: %w", c.Name, err)
	}
	return nil
}

func (t *Tx) query(ctx context.Context, c *Collection, query string, args ...any) ([]json.RawMessage, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", c.Name, err)
	}
	defer func() { _ = rows.Close() }()

	docs := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", c.Name, err)
		}
		docs = append(docs, json.RawMessage(data))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", c.Name, err)
	}
	return docs, nil
}

func keyClause(c *Collection, key Key) (string, []any, error) {
	if len(key) != len(c.KeyPath) {
		return "", nil, fmt.Errorf("%w: %s expects %d key fields, got %d", ErrInvalidKey, c.Name, len(c.KeyPath), len(key))
	}
	conds := make([]string, len(key))
	args := make([]any, len(key))
	for i, field := range c.KeyPath {
		conds[i] = quote(field) + " = ?"
		args[i] = key[i]
	}
	return strings.Join(conds, " AND "), args, nil
}

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteList(idents []string) string {
	quoted := make([]string, len(idents))
	for i, ident := range idents {
		quoted[i] = quote(ident)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
