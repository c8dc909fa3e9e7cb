// testing fake driver

package iceaxe

import (
	"database/sql"
	sqldriver "database/sql/driver"
	"fmt"
	"io"
	"sync"

	"github.com/piercefreeman/iceaxe/driver"
)

func init() {
	sql.Register("fake", &fakeDriver{})
}

var (
	fakeMu       sync.Mutex
	fakeFixtures = make(map[string]*fakeResultSet)
	fakeLastID   int64
)

type fakeResultSet struct {
	columns []string
	rows    [][]sqldriver.Value
}

// registerFakeQuery binds an exact query string to the rows the fake driver
// returns for it.
func registerFakeQuery(query string, columns []string, rows [][]sqldriver.Value) {
	fakeMu.Lock()
	defer fakeMu.Unlock()
	fakeFixtures[query] = &fakeResultSet{columns: columns, rows: rows}
}

// fakeDriver is a fake database driver for testing.
type fakeDriver struct{}

func (d *fakeDriver) Open(name string) (sqldriver.Conn, error) {
	return &fakeConn{}, nil
}

type fakeConn struct {
	closed bool
}

func (c *fakeConn) Prepare(query string) (sqldriver.Stmt, error) {
	if c.closed {
		return nil, sqldriver.ErrBadConn
	}
	return &fakeStmt{query: query}, nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) Begin() (sqldriver.Tx, error) {
	if c.closed {
		return nil, sqldriver.ErrBadConn
	}
	return &fakeTx{}, nil
}

type fakeStmt struct {
	query  string
	closed bool
}

func (s *fakeStmt) Close() error {
	s.closed = true
	return nil
}

func (s *fakeStmt) NumInput() int {
	return -1 // driver doesn't know how many parameters there are
}

func (s *fakeStmt) Exec(args []sqldriver.Value) (sqldriver.Result, error) {
	if s.closed {
		return nil, sqldriver.ErrBadConn
	}
	fakeMu.Lock()
	fakeLastID++
	id := fakeLastID
	fakeMu.Unlock()
	return &fakeResult{lastID: id}, nil
}

func (s *fakeStmt) Query(args []sqldriver.Value) (sqldriver.Rows, error) {
	if s.closed {
		return nil, sqldriver.ErrBadConn
	}
	fakeMu.Lock()
	fixture, ok := fakeFixtures[s.query]
	fakeMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no fixture for query %q", s.query)
	}
	return &fakeRows{fixture: fixture}, nil
}

type fakeRows struct {
	fixture *fakeResultSet
	cursor  int
}

func (r *fakeRows) Columns() []string {
	return r.fixture.columns
}

func (r *fakeRows) Close() error { return nil }

func (r *fakeRows) Next(dest []sqldriver.Value) error {
	if r.cursor >= len(r.fixture.rows) {
		return io.EOF
	}
	copy(dest, r.fixture.rows[r.cursor])
	r.cursor++
	return nil
}

type fakeResult struct {
	lastID int64
}

func (r *fakeResult) LastInsertId() (int64, error) { return r.lastID, nil }

func (r *fakeResult) RowsAffected() (int64, error) { return 1, nil }

type fakeTx struct{}

func (t *fakeTx) Commit() error   { return nil }
func (t *fakeTx) Rollback() error { return nil }

// fakeDialect is the plainest possible dialect: ? placeholders, no RETURNING.
type fakeDialect struct{}

func (fakeDialect) Translator() driver.Translator {
	return driver.TranslateFunc(func(matched string) string { return "?" })
}
