package rest

import (
	"net/http"
	"strings"

	"github.com/tabrest/tabrest/pkg/db"
	"github.com/tabrest/tabrest/pkg/httputil"
	"github.com/tabrest/tabrest/pkg/metrics"
	"github.com/tabrest/tabrest/pkg/query"
)

type sqlRequest struct {
	Query string `json:"query"`
}

// handleExecuteSQL serves POST /execute/sql. The blacklist guard runs before
// anything touches a connection; SELECT-leading statements go through the
// read path, everything else through exec.
func (s *Server) handleExecuteSQL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sqlRequest
	if err := httputil.BindOrError(r, w, &req); err != nil {
		return
	}

	sqlText := strings.TrimSpace(req.Query)
	if sqlText == "" {
		httputil.Error(w, http.StatusBadRequest, "no SQL provided")
		return
	}

	if err := query.CheckBlacklist(sqlText, s.opts.Blacklist); err != nil {
		s.writeError(w, err)
		return
	}

	if isSelect(sqlText) {
		rs, err := s.pool.Query(ctx, sqlText)
		if err != nil {
			s.writeError(w, &db.StorageError{Op: "execute", Err: err})
			return
		}
		metrics.StatementsTotal.WithLabelValues("execute").Inc()
		rows := rs.Rows
		if rows == nil {
			rows = []map[string]any{}
		}
		httputil.JSON(w, http.StatusOK, map[string]any{
			"data":  rows,
			"count": len(rows),
		})
		return
	}

	if _, err := s.pool.Exec(ctx, sqlText); err != nil {
		s.writeError(w, &db.StorageError{Op: "execute", Err: err})
		return
	}
	metrics.StatementsTotal.WithLabelValues("execute").Inc()
	httputil.JSON(w, http.StatusOK, map[string]string{"message": "statement executed successfully"})
}

func isSelect(sqlText string) bool {
	first := strings.ToLower(strings.TrimSpace(sqlText))
	return strings.HasPrefix(first, "select") || strings.HasPrefix(first, "with")
}
