// Package memdb is a small transactional in-memory store shared by the memory
// adapters so that one unit of work can span several bounded contexts.
//
// Writers are serialized by a single lock. The outermost Update snapshots all
// registered tables before running and restores them when the callback fails,
// so a failed unit of work leaves no partial writes behind. Nested Update calls
// join the outer transaction and take no snapshot of their own: a nested
// callback must check before it writes, and its error only undoes work once the
// outer callback returns it.
package memdb

import (
	"context"
	"errors"
	"maps"
	"sync"
)

// ErrReadOnly is returned when Update is attempted from inside View.
var ErrReadOnly = errors.New("memdb: write inside read-only view")

// DB owns the lock and the set of tables taking part in transactions.
type DB struct {
	mu     sync.RWMutex
	regMu  sync.Mutex
	tables []snapshotter
}

type snapshotter interface {
	snapshot() (restore func())
}

type txKey struct{}

type txState struct {
	db       *DB
	writable bool
}

// New returns an empty database.
func New() *DB {
	return &DB{}
}

// View runs fn with shared access. Reads issued from fn through the same DB do
// not lock again.
func (db *DB) View(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := db.active(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.RLock()
	defer db.mu.RUnlock()
	return fn(context.WithValue(ctx, txKey{}, &txState{db: db}))
}

// Update runs fn with exclusive access. When fn returns an error, or ctx is
// cancelled before commit, every table is restored to its state before the
// outermost Update.
func (db *DB) Update(ctx context.Context, fn func(ctx context.Context) error) error {
	if st, ok := db.active(ctx); ok {
		if !st.writable {
			return ErrReadOnly
		}
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	db.mu.Lock()
	defer db.mu.Unlock()
	txCtx := context.WithValue(ctx, txKey{}, &txState{db: db, writable: true})
	return db.run(txCtx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		return ctx.Err()
	})
}

func (db *DB) run(ctx context.Context, fn func(ctx context.Context) error) error {
	db.regMu.Lock()
	tables := append([]snapshotter(nil), db.tables...)
	db.regMu.Unlock()

	restores := make([]func(), 0, len(tables))
	for _, t := range tables {
		restores = append(restores, t.snapshot())
	}
	if err := fn(ctx); err != nil {
		for i := len(restores) - 1; i >= 0; i-- {
			restores[i]()
		}
		return err
	}
	return nil
}

func (db *DB) active(ctx context.Context) (*txState, bool) {
	st, ok := ctx.Value(txKey{}).(*txState)
	if !ok || st.db != db {
		return nil, false
	}
	return st, true
}

func (db *DB) register(t snapshotter) {
	db.regMu.Lock()
	defer db.regMu.Unlock()
	db.tables = append(db.tables, t)
}

// Table is a keyed collection. Access it only from inside View or Update.
type Table[K comparable, V any] struct {
	rows  map[K]V
	clone func(V) V
}

// NewTable registers a table with db. clone, when set, is applied to values on
// the way in and out so callers never share memory with stored rows.
func NewTable[K comparable, V any](db *DB, clone func(V) V) *Table[K, V] {
	t := &Table[K, V]{rows: map[K]V{}, clone: clone}
	db.register(t)
	return t
}

func (t *Table[K, V]) snapshot() func() {
	saved := maps.Clone(t.rows)
	return func() { t.rows = saved }
}

func (t *Table[K, V]) Get(key K) (V, bool) {
	v, ok := t.rows[key]
	if !ok {
		return v, false
	}
	return t.copy(v), true
}

func (t *Table[K, V]) Put(key K, value V) {
	t.rows[key] = t.copy(value)
}

func (t *Table[K, V]) Delete(key K) bool {
	if _, ok := t.rows[key]; !ok {
		return false
	}
	delete(t.rows, key)
	return true
}

// Scan calls fn for each row in unspecified order until fn returns false.
func (t *Table[K, V]) Scan(fn func(key K, value V) bool) {
	for k, v := range t.rows {
		if !fn(k, t.copy(v)) {
			return
		}
	}
}

func (t *Table[K, V]) Len() int {
	return len(t.rows)
}

func (t *Table[K, V]) copy(v V) V {
	if t.clone == nil {
		return v
	}
	return t.clone(v)
}

// Log is an append-only sequence. Access it only from inside View or Update.
type Log[V any] struct {
	rows []V
}

// NewLog registers an append-only log with db.
func NewLog[V any](db *DB) *Log[V] {
	l := &Log[V]{}
	db.register(l)
	return l
}

func (l *Log[V]) snapshot() func() {
	n := len(l.rows)
	return func() { l.rows = l.rows[:n] }
}

func (l *Log[V]) Append(v V) {
	l.rows = append(l.rows, v)
}

// Scan calls fn for each entry in insertion order until fn returns false.
func (l *Log[V]) Scan(fn func(value V) bool) {
	for _, v := range l.rows {
		if !fn(v) {
			return
		}
	}
}
