// Package courseindex keeps every course seen while searching the portal so
// later lookups can be answered without logging in.
package courseindex

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"sikola-tools/internal/components/assert"
	"sikola-tools/internal/components/chrono"
	"sikola-tools/internal/courseindex/db"
	"sikola-tools/internal/sikola"
	"sikola-tools/pkg/migrations"
)

type Entry struct {
	sikola.CourseRef
	SeenAt time.Time
}

type Store struct {
	db    *sql.DB
	clock chrono.API
}

// Open opens (or creates) the index at `path`, ":memory:" keeps it in memory.
func Open(path string, clock chrono.API) (Store, error) {
	assert.NotEmptyStr(path)

	database, err := migrations.OpenAndApplySchema(db.Schema, path)
	if err != nil {
		return Store{}, err
	}
	return NewStore(database, clock), nil
}

func NewStore(database *sql.DB, clock chrono.API) Store {
	assert.NotNil(database)
	assert.NotNil(clock)
	return Store{db: database, clock: clock}
}

func (s Store) Close() error {
	return s.db.Close()
}

// Record upserts the courses, a course already known on the same page only
// has its link and last seen time updated.
func (s Store) Record(ctx context.Context, courses []sikola.CourseRef) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
insert into course(title, href, page, page_url, seen_at) values (?, ?, ?, ?, ?)
on conflict(title, page) do update set
    href = excluded.href,
    page_url = excluded.page_url,
    seen_at = excluded.seen_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := s.clock.Now().Unix()
	for _, c := range courses {
		_, err = stmt.ExecContext(ctx, c.Title, c.Href, c.Page, c.PageUrl, now)
		if err != nil {
			return fmt.Errorf("record %q: %w", c.Title, err)
		}
	}
	return tx.Commit()
}

// Find returns the indexed courses whose title contains `query`, ignoring case.
func (s Store) Find(ctx context.Context, query string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
select title, href, page, page_url, seen_at from course
where instr(lower(title), lower(?)) > 0
order by page, title`, query)
	if err != nil {
		return nil, err
	}
	return s.scan(rows)
}

func (s Store) All(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
select title, href, page, page_url, seen_at from course
order by page, title`)
	if err != nil {
		return nil, err
	}
	return s.scan(rows)
}

func (s Store) scan(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var result []Entry
	for rows.Next() {
		var e Entry
		var seenAt int64
		err := rows.Scan(&e.Title, &e.Href, &e.Page, &e.PageUrl, &seenAt)
		if err != nil {
			return nil, err
		}
		e.SeenAt = time.Unix(seenAt, 0).In(s.clock.Location())
		result = append(result, e)
	}
	return result, rows.Err()
}
