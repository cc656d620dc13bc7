// Package testutil provides a scriptable in-memory db.Pool for handler and
// catalog tests.
package testutil

import (
	"context"
	"strings"
	"sync"

	"github.com/tabrest/tabrest/pkg/db"
)

// Call records one statement as executed against the fake pool.
type Call struct {
	SQL  string
	Args []any
}

// Response is a canned answer matched by SQL substring.
type Response struct {
	Match    string
	Result   *db.ResultSet
	Affected int64
	Err      error
}

// FakePool implements db.Pool against canned responses. Statements are
// matched by substring against Response.Match, first match wins; unmatched
// queries return an empty ResultSet.
type FakePool struct {
	mu        sync.Mutex
	dialect   db.Dialect
	responses []Response
	calls     []Call
	acquired  int
	PingErr   error
}

// NewFakePool returns a fake pool speaking the given dialect.
func NewFakePool(dialect db.Dialect) *FakePool {
	return &FakePool{dialect: dialect}
}

// Stub registers a canned response for statements containing match.
func (p *FakePool) Stub(match string, result *db.ResultSet) *FakePool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, Response{Match: match, Result: result})
	return p
}

// StubExec registers an affected-rows answer for statements containing match.
func (p *FakePool) StubExec(match string, affected int64) *FakePool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, Response{Match: match, Affected: affected})
	return p
}

// StubErr registers an error for statements containing match.
func (p *FakePool) StubErr(match string, err error) *FakePool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.responses = append(p.responses, Response{Match: match, Err: err})
	return p
}

// Calls returns every statement executed so far.
func (p *FakePool) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// AcquireCount reports how many connections were checked out.
func (p *FakePool) AcquireCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.acquired
}

func (p *FakePool) lookup(sql string, args []any) Response {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, Call{SQL: sql, Args: args})
	for _, resp := range p.responses {
		if strings.Contains(sql, resp.Match) {
			return resp
		}
	}
	return Response{Result: &db.ResultSet{}}
}

func (p *FakePool) Query(_ context.Context, sql string, args ...any) (*db.ResultSet, error) {
	resp := p.lookup(sql, args)
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Result == nil {
		return &db.ResultSet{}, nil
	}
	return cloneResultSet(resp.Result), nil
}

// cloneResultSet copies rows so callers that mutate results cannot corrupt
// the canned response for later statements.
func cloneResultSet(rs *db.ResultSet) *db.ResultSet {
	out := &db.ResultSet{Columns: append([]string(nil), rs.Columns...)}
	for _, row := range rs.Rows {
		copied := make(map[string]any, len(row))
		for k, v := range row {
			copied[k] = v
		}
		out.Rows = append(out.Rows, copied)
	}
	return out
}

func (p *FakePool) Exec(_ context.Context, sql string, args ...any) (int64, error) {
	resp := p.lookup(sql, args)
	if resp.Err != nil {
		return 0, resp.Err
	}
	return resp.Affected, nil
}

func (p *FakePool) Acquire(_ context.Context) (db.Conn, error) {
	p.mu.Lock()
	p.acquired++
	p.mu.Unlock()
	return &fakeConn{pool: p}, nil
}

func (p *FakePool) Ping(_ context.Context) error { return p.PingErr }

func (p *FakePool) Dialect() db.Dialect { return p.dialect }

func (p *FakePool) Close() {}

type fakeConn struct {
	pool *FakePool
}

func (c *fakeConn) Query(ctx context.Context, sql string, args ...any) (*db.ResultSet, error) {
	return c.pool.Query(ctx, sql, args...)
}

func (c *fakeConn) Exec(ctx context.Context, sql string, args ...any) (int64, error) {
	return c.pool.Exec(ctx, sql, args...)
}

func (c *fakeConn) Release() {}
