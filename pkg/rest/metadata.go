package rest

import (
	"net/http"
	"strings"

	"github.com/tabrest/tabrest/pkg/httputil"
)

// Flat metadata listings use the configured schema context; the
// hierarchical /metadata/{catalog}/... variants name their path explicitly.

func (s *Server) handleListDatabases(w http.ResponseWriter, r *http.Request) {
	names, err := s.cat.Databases(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stringList(names))
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	names, err := s.cat.Schemas(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stringList(names))
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	names, err := s.cat.Tables(r.Context(), s.schemaParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stringList(names))
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	names, err := s.cat.Views(r.Context(), s.schemaParam(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stringList(names))
}

func (s *Server) handleListColumns(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		httputil.Error(w, http.StatusBadRequest, "table query parameter required")
		return
	}
	cols, err := s.cat.Columns(r.Context(), s.schemaParam(r), table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, cols)
}

func (s *Server) handleListConstraints(w http.ResponseWriter, r *http.Request) {
	table := r.URL.Query().Get("table")
	if table == "" {
		httputil.Error(w, http.StatusBadRequest, "table query parameter required")
		return
	}
	constraints, err := s.cat.Constraints(r.Context(), s.schemaParam(r), table)
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, constraints)
}

func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	s.cat.Refresh()
	httputil.JSON(w, http.StatusOK, map[string]string{"message": "schema cache refreshed"})
}

func (s *Server) handleMetadataCatalog(w http.ResponseWriter, r *http.Request) {
	names, err := s.cat.Schemas(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stringList(names))
}

func (s *Server) handleMetadataSchema(w http.ResponseWriter, r *http.Request) {
	names, err := s.cat.Tables(r.Context(), r.PathValue("schema"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stringList(names))
}

func (s *Server) handleMetadataTable(w http.ResponseWriter, r *http.Request) {
	cols, err := s.cat.Columns(r.Context(), r.PathValue("schema"), r.PathValue("table"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, cols)
}

func (s *Server) handleSummarizeTable(w http.ResponseWriter, r *http.Request) {
	stats, err := s.profiler.SummarizeTable(r.Context(), r.PathValue("schema"), r.PathValue("table"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stats)
}

func (s *Server) handleSummarizeColumn(w http.ResponseWriter, r *http.Request) {
	stats, err := s.profiler.SummarizeColumn(r.Context(),
		r.PathValue("schema"), r.PathValue("table"), r.PathValue("column"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stats)
}

// handleProfile serves GET /profile?object=db.schema.table[.column].
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	parts, ok := objectParam(w, r, 3, 4)
	if !ok {
		return
	}

	if len(parts) == 4 {
		stats, err := s.profiler.SummarizeColumn(r.Context(), parts[1], parts[2], parts[3])
		if err != nil {
			s.writeError(w, err)
			return
		}
		httputil.JSON(w, http.StatusOK, stats)
		return
	}

	stats, err := s.profiler.SummarizeTable(r.Context(), parts[1], parts[2])
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, stats)
}

// handleDescribe serves GET /describe?object=db.schema.table.
func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	parts, ok := objectParam(w, r, 3, 3)
	if !ok {
		return
	}

	desc, err := s.profiler.Describe(r.Context(), parts[1], parts[2])
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, desc)
}

func (s *Server) schemaParam(r *http.Request) string {
	if schema := r.URL.Query().Get("schema"); schema != "" {
		return schema
	}
	return s.opts.Schema
}

func objectParam(w http.ResponseWriter, r *http.Request, minParts, maxParts int) ([]string, bool) {
	object := r.URL.Query().Get("object")
	if object == "" {
		httputil.Error(w, http.StatusBadRequest, "object query parameter required")
		return nil, false
	}
	parts := strings.Split(object, ".")
	if len(parts) < minParts || len(parts) > maxParts {
		httputil.Error(w, http.StatusBadRequest, "object must be of form db.schema.table[.column]")
		return nil, false
	}
	return parts, true
}

func stringList(names []string) []string {
	if names == nil {
		return []string{}
	}
	return names
}
