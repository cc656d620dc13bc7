package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tabrest/tabrest/pkg/catalog"
	"github.com/tabrest/tabrest/pkg/db"
	"github.com/tabrest/tabrest/pkg/httputil"
	"github.com/tabrest/tabrest/pkg/metrics"
	"github.com/tabrest/tabrest/pkg/query"
)

// ListEnvelope is the response wrapper for list operations. Count is the
// filtered total independent of limit/skip, reported best-effort: the count
// and page statements run on one connection but not in one transaction.
type ListEnvelope struct {
	Data  []map[string]any `json:"data"`
	Count int64            `json:"count"`
	Limit int              `json:"limit"`
	Skip  int              `json:"skip"`
}

// handleList serves GET /{entity}: filtered, projected, ordered, paginated
// rows plus the total count. All validation happens before any connection
// checkout.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entity := r.PathValue("entity")

	spec, err := query.Parse(r.URL.Query(), s.opts.DefaultPageSize)
	if err != nil {
		s.writeError(w, err)
		return
	}

	table, err := s.cat.Table(ctx, s.opts.Schema, entity)
	if err != nil {
		s.writeError(w, err)
		return
	}

	page, count, err := s.builder.List(table, spec)
	if err != nil {
		s.writeError(w, err)
		return
	}

	// One connection for both statements so count and page observe the
	// same pool member.
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		s.writeError(w, err)
		return
	}
	defer conn.Release()

	countRS, err := conn.Query(ctx, count.SQL, count.Args...)
	if err != nil {
		s.writeError(w, &db.StorageError{Table: entity, Op: "count", Err: err})
		return
	}
	pageRS, err := conn.Query(ctx, page.SQL, page.Args...)
	if err != nil {
		s.writeError(w, &db.StorageError{Table: entity, Op: "list", Err: err})
		return
	}
	metrics.StatementsTotal.WithLabelValues("list").Add(2)

	data := pageRS.Rows
	if data == nil {
		data = []map[string]any{}
	}
	httputil.JSON(w, http.StatusOK, ListEnvelope{
		Data:  data,
		Count: scalarInt64(countRS),
		Limit: spec.Limit,
		Skip:  spec.Skip,
	})
}

// handleGet serves GET /{entity}/{id}.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entity, id := r.PathValue("entity"), r.PathValue("id")

	table, err := s.cat.Table(ctx, s.opts.Schema, entity)
	if err != nil {
		s.writeError(w, err)
		return
	}

	stmt, err := s.builder.Get(table, id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	rs, err := s.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		s.writeError(w, &db.StorageError{Table: entity, Op: "get", Err: err})
		return
	}
	metrics.StatementsTotal.WithLabelValues("get").Inc()

	if len(rs.Rows) == 0 {
		s.recordNotFound(w, entity, id)
		return
	}
	httputil.JSON(w, http.StatusOK, rs.Rows[0])
}

// handleCreate serves POST /{entity}.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entity := r.PathValue("entity")

	var record map[string]any
	if err := httputil.BindOrError(r, w, &record); err != nil {
		return
	}

	table, err := s.cat.Table(ctx, s.opts.Schema, entity)
	if err != nil {
		s.writeError(w, err)
		return
	}

	stmt, err := s.builder.Insert(table, record)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.builder.SupportsReturning() {
		rs, err := s.pool.Query(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			s.writeError(w, &db.StorageError{Table: entity, Op: "create", Err: err})
			return
		}
		metrics.StatementsTotal.WithLabelValues("create").Inc()
		if len(rs.Rows) == 0 {
			httputil.Error(w, http.StatusInternalServerError, "failed to create record")
			return
		}
		httputil.JSON(w, http.StatusCreated, rs.Rows[0])
		return
	}

	if _, err := s.pool.Exec(ctx, stmt.SQL, stmt.Args...); err != nil {
		s.writeError(w, &db.StorageError{Table: entity, Op: "create", Err: err})
		return
	}
	metrics.StatementsTotal.WithLabelValues("create").Inc()
	// Without RETURNING the only recoverable identity is a key the caller
	// supplied; fall back to echoing the payload.
	if row, ok := s.reread(ctx, table, record); ok {
		httputil.JSON(w, http.StatusCreated, row)
		return
	}
	httputil.JSON(w, http.StatusCreated, record)
}

// handleReplace serves PUT /{entity}/{id}: full-replace semantics, columns
// absent from the body are set to NULL.
func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	s.applyUpdate(w, r, "replace", s.builder.Replace)
}

// handleUpdate serves PATCH /{entity}/{id}: only fields present in the body
// are touched.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	s.applyUpdate(w, r, "update", s.builder.Update)
}

func (s *Server) applyUpdate(
	w http.ResponseWriter, r *http.Request, op string,
	build func(catalog.Table, string, map[string]any) (query.Statement, error),
) {
	ctx := r.Context()
	entity, id := r.PathValue("entity"), r.PathValue("id")

	var record map[string]any
	if err := httputil.BindOrError(r, w, &record); err != nil {
		return
	}

	table, err := s.cat.Table(ctx, s.opts.Schema, entity)
	if err != nil {
		s.writeError(w, err)
		return
	}

	stmt, err := build(table, id, record)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.builder.SupportsReturning() {
		rs, err := s.pool.Query(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			s.writeError(w, &db.StorageError{Table: entity, Op: op, Err: err})
			return
		}
		metrics.StatementsTotal.WithLabelValues(op).Inc()
		if len(rs.Rows) == 0 {
			s.recordNotFound(w, entity, id)
			return
		}
		httputil.JSON(w, http.StatusOK, rs.Rows[0])
		return
	}

	affected, err := s.pool.Exec(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		s.writeError(w, &db.StorageError{Table: entity, Op: op, Err: err})
		return
	}
	metrics.StatementsTotal.WithLabelValues(op).Inc()
	if affected == 0 {
		s.recordNotFound(w, entity, id)
		return
	}
	if get, err := s.builder.Get(table, id); err == nil {
		if rs, err := s.pool.Query(ctx, get.SQL, get.Args...); err == nil && len(rs.Rows) > 0 {
			httputil.JSON(w, http.StatusOK, rs.Rows[0])
			return
		}
	}
	httputil.JSON(w, http.StatusOK, record)
}

// handleDelete serves DELETE /{entity}/{id}.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	entity, id := r.PathValue("entity"), r.PathValue("id")

	table, err := s.cat.Table(ctx, s.opts.Schema, entity)
	if err != nil {
		s.writeError(w, err)
		return
	}

	stmt, err := s.builder.Delete(table, id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if s.builder.SupportsReturning() {
		rs, err := s.pool.Query(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			s.writeError(w, &db.StorageError{Table: entity, Op: "delete", Err: err})
			return
		}
		metrics.StatementsTotal.WithLabelValues("delete").Inc()
		if len(rs.Rows) == 0 {
			s.recordNotFound(w, entity, id)
			return
		}
	} else {
		affected, err := s.pool.Exec(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			s.writeError(w, &db.StorageError{Table: entity, Op: "delete", Err: err})
			return
		}
		metrics.StatementsTotal.WithLabelValues("delete").Inc()
		if affected == 0 {
			s.recordNotFound(w, entity, id)
			return
		}
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("record %s deleted from %s.%s", id, s.opts.Schema, entity),
	})
}

func (s *Server) recordNotFound(w http.ResponseWriter, entity, id string) {
	httputil.Error(w, http.StatusNotFound,
		fmt.Sprintf("record %s not found in %s.%s", id, s.opts.Schema, entity))
}

// reread fetches the row back by the primary-key value the caller supplied,
// when there is one. Used on engines without RETURNING support.
func (s *Server) reread(ctx context.Context, table catalog.Table, record map[string]any) (map[string]any, bool) {
	pk, err := table.PrimaryKey()
	if err != nil {
		return nil, false
	}
	value, ok := record[pk.Name]
	if !ok {
		return nil, false
	}

	stmt, err := s.builder.Get(table, fmt.Sprint(value))
	if err != nil {
		return nil, false
	}
	rs, err := s.pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil || len(rs.Rows) == 0 {
		return nil, false
	}
	return rs.Rows[0], true
}

func scalarInt64(rs *db.ResultSet) int64 {
	if len(rs.Rows) == 0 || len(rs.Columns) == 0 {
		return 0
	}
	switch v := rs.Rows[0][rs.Columns[0]].(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}
