package rest

import (
	"encoding/json"
	"net/http"
	"slices"

	pg_query "github.com/pganalyze/pg_query_go/v5"
	"github.com/tabrest/tabrest/pkg/httputil"
)

type parseRequest struct {
	SQL string `json:"sql"`
}

func (s *Server) bindSQL(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req parseRequest
	if err := httputil.BindOrError(r, w, &req); err != nil {
		return "", false
	}
	if req.SQL == "" {
		httputil.Error(w, http.StatusBadRequest, "no SQL provided")
		return "", false
	}
	return req.SQL, true
}

// handleSQLPrettify serves POST /sql/prettify: parse and deparse the
// statement into canonical form.
func (s *Server) handleSQLPrettify(w http.ResponseWriter, r *http.Request) {
	sqlText, ok := s.bindSQL(w, r)
	if !ok {
		return
	}

	parsed, err := pg_query.Parse(sqlText)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	out, err := pg_query.Deparse(parsed)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{"result_sql": out})
}

// handleSQLExtractTables serves POST /sql/extract/tables.
func (s *Server) handleSQLExtractTables(w http.ResponseWriter, r *http.Request) {
	s.extractFromTree(w, r, collectTables)
}

// handleSQLExtractColumns serves POST /sql/extract/columns.
func (s *Server) handleSQLExtractColumns(w http.ResponseWriter, r *http.Request) {
	s.extractFromTree(w, r, collectColumns)
}

// handleSQLExtractProjections serves POST /sql/extract/projections.
func (s *Server) handleSQLExtractProjections(w http.ResponseWriter, r *http.Request) {
	s.extractFromTree(w, r, collectProjections)
}

func (s *Server) extractFromTree(w http.ResponseWriter, r *http.Request, collect func(any, *[]string)) {
	sqlText, ok := s.bindSQL(w, r)
	if !ok {
		return
	}

	treeJSON, err := pg_query.ParseToJSON(sqlText)
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	var tree any
	if err := json.Unmarshal([]byte(treeJSON), &tree); err != nil {
		httputil.Error(w, http.StatusInternalServerError, "failed to decode parse tree")
		return
	}

	var names []string
	collect(tree, &names)
	if names == nil {
		names = []string{}
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"data": names})
}

// collectTables walks the parse tree gathering RangeVar relation names.
func collectTables(node any, out *[]string) {
	switch n := node.(type) {
	case map[string]any:
		if rv, ok := n["RangeVar"].(map[string]any); ok {
			if name, ok := rv["relname"].(string); ok && !slices.Contains(*out, name) {
				*out = append(*out, name)
			}
		}
		for _, v := range n {
			collectTables(v, out)
		}
	case []any:
		for _, v := range n {
			collectTables(v, out)
		}
	}
}

// collectProjections walks the parse tree gathering the output names of
// select-list entries: the alias when one is set, else the referenced column.
func collectProjections(node any, out *[]string) {
	switch n := node.(type) {
	case map[string]any:
		if rt, ok := n["ResTarget"].(map[string]any); ok {
			if name := projectionName(rt); name != "" && !slices.Contains(*out, name) {
				*out = append(*out, name)
			}
		}
		for _, v := range n {
			collectProjections(v, out)
		}
	case []any:
		for _, v := range n {
			collectProjections(v, out)
		}
	}
}

func projectionName(rt map[string]any) string {
	if name, ok := rt["name"].(string); ok && name != "" {
		return name
	}
	val, ok := rt["val"].(map[string]any)
	if !ok {
		return ""
	}
	ref, ok := val["ColumnRef"].(map[string]any)
	if !ok {
		return ""
	}
	fields, ok := ref["fields"].([]any)
	if !ok || len(fields) == 0 {
		return ""
	}
	fm, ok := fields[len(fields)-1].(map[string]any)
	if !ok {
		return ""
	}
	sv, ok := fm["String"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := sv["sval"].(string)
	return name
}

// collectColumns walks the parse tree gathering ColumnRef field names.
func collectColumns(node any, out *[]string) {
	switch n := node.(type) {
	case map[string]any:
		if cr, ok := n["ColumnRef"].(map[string]any); ok {
			if fields, ok := cr["fields"].([]any); ok {
				for _, f := range fields {
					fm, ok := f.(map[string]any)
					if !ok {
						continue
					}
					sv, ok := fm["String"].(map[string]any)
					if !ok {
						continue
					}
					if name, ok := sv["sval"].(string); ok && !slices.Contains(*out, name) {
						*out = append(*out, name)
					}
				}
			}
		}
		for _, v := range n {
			collectColumns(v, out)
		}
	case []any:
		for _, v := range n {
			collectColumns(v, out)
		}
	}
}
