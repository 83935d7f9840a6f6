package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"tracker/internal/core"
	"tracker/internal/store"

	_ "modernc.org/sqlite"
)

const entriesTable = "entries"

var entryColumns = []string{"id", "category", "subcat", "content", "owner", "status", "created_at", "task_number"}

var builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

type entryRow struct {
	ID         int64  `db:"id"`
	Category   string `db:"category"`
	Subcat     string `db:"subcat"`
	Content    string `db:"content"`
	Owner      string `db:"owner"`
	Status     int    `db:"status"`
	CreatedAt  string `db:"created_at"`
	TaskNumber int    `db:"task_number"`
}

func (r entryRow) toCore() core.Entry {
	return core.Entry{
		ID:         r.ID,
		Category:   core.Category(r.Category),
		Subcat:     r.Subcat,
		Content:    r.Content,
		Owner:      core.Owner(r.Owner),
		Status:     core.Status(r.Status),
		CreatedAt:  r.CreatedAt,
		TaskNumber: r.TaskNumber,
	}
}

// SQLiteRepository implements store.Store on SQLite.
type SQLiteRepository struct {
	db *sqlx.DB
	queries
}

// DSN returns the connection string used for dbPath.
func DSN(dbPath string) string {
	return dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := DSN(dbPath)
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One writer at a time; renumbering relies on it
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return newRepository(db), nil
}

func newRepository(db *sqlx.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, queries: queries{ext: db}}
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithinTx implements store.Store
func (r *SQLiteRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("commit transaction: %w", cErr)
		}
	}()

	return fn(ctx, &txStore{queries{ext: tx}})
}

// txStore is the store handed to WithinTx callbacks. Nested calls join the outer transaction.
type txStore struct {
	queries
}

func (t *txStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, t)
}

// queries holds the statements shared by the pool and transactions.
type queries struct {
	ext sqlx.ExtContext
}

// Insert implements store.Store
func (q queries) Insert(ctx context.Context, e core.Entry) (int64, error) {
	query, args, err := builder.Insert(entriesTable).
		Columns("category", "subcat", "content", "owner", "status", "created_at", "task_number").
		Values(string(e.Category), e.Subcat, e.Content, string(e.Owner), int(e.Status), e.CreatedAt, e.TaskNumber).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read inserted id: %w", err)
	}

	slog.DebugContext(ctx, "Entry saved to SQLite",
		"id", id,
		"category", e.Category,
		"subcat", e.Subcat,
		"task_number", e.TaskNumber)

	return id, nil
}

// Update implements store.Store
func (q queries) Update(ctx context.Context, id int64, f store.Fields) error {
	set := map[string]any{}
	if f.Category != nil {
		set["category"] = string(*f.Category)
	}
	if f.Subcat != nil {
		set["subcat"] = *f.Subcat
	}
	if f.Content != nil {
		set["content"] = *f.Content
	}
	if f.Owner != nil {
		set["owner"] = string(*f.Owner)
	}
	if f.Status != nil {
		set["status"] = int(*f.Status)
	}
	if f.TaskNumber != nil {
		set["task_number"] = *f.TaskNumber
	}

	if len(set) == 0 {
		_, err := store.Get(ctx, q, id)
		return err
	}

	query, args, err := builder.Update(entriesTable).SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update entry %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// Delete implements store.Store
func (q queries) Delete(ctx context.Context, f store.Filter) (int64, error) {
	query, args, err := builder.Delete(entriesTable).Where(where(f)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}

	res, err := q.ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete entries: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	return n, nil
}

// Query implements store.Store
func (q queries) Query(ctx context.Context, f store.Filter, o store.Order) ([]core.Entry, error) {
	query, args, err := builder.Select(entryColumns...).
		From(entriesTable).
		Where(where(f)).
		OrderBy(orderBy(o)...).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []entryRow
	if err := sqlx.SelectContext(ctx, q.ext, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select entries: %w", err)
	}

	entries := make([]core.Entry, len(rows))
	for i, row := range rows {
		entries[i] = row.toCore()
	}
	return entries, nil
}

// WithinTx lets queries satisfy store.Store when used on its own inside a transaction.
func (q queries) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Store) error) error {
	return fn(ctx, q)
}

func where(f store.Filter) sq.And {
	cond := sq.And{}
	if f.ID != 0 {
		cond = append(cond, sq.Eq{"id": f.ID})
	}
	if f.ExcludeID != 0 {
		cond = append(cond, sq.NotEq{"id": f.ExcludeID})
	}
	if f.Category != "" {
		cond = append(cond, sq.Eq{"category": string(f.Category)})
	}
	if f.Subcat != "" {
		cond = append(cond, sq.Eq{"subcat": f.Subcat})
	}
	if f.Owner != "" {
		cond = append(cond, sq.Eq{"owner": string(f.Owner)})
	}
	if f.Status != nil {
		cond = append(cond, sq.Eq{"status": int(*f.Status)})
	}
	return cond
}

func orderBy(o store.Order) []string {
	switch o {
	case store.OrderForDisplay:
		return []string{"status ASC", "task_number ASC", "id DESC"}
	case store.OrderByNumber:
		return []string{"task_number ASC", "id ASC"}
	default:
		return []string{"id ASC"}
	}
}
