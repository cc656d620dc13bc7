package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/tabrest/tabrest/pkg/catalog"
	"github.com/tabrest/tabrest/pkg/db"
	"github.com/tabrest/tabrest/pkg/httputil"
	"github.com/tabrest/tabrest/pkg/metrics"
	"github.com/tabrest/tabrest/pkg/profile"
	"github.com/tabrest/tabrest/pkg/query"
	"go.uber.org/zap"
)

// Options configures the proxy core: the schema context entities resolve
// against, the default page size, and the raw-SQL keyword blacklist.
type Options struct {
	Schema          string
	DefaultPageSize int
	Blacklist       []string
	Logger          *zap.Logger
}

type Server struct {
	pool     db.Pool
	cat      *catalog.Catalog
	builder  *query.Builder
	profiler *profile.Service
	router   *httputil.Router
	opts     Options
	logger   *zap.Logger
}

func NewServer(pool db.Pool, opts Options) *Server {
	if opts.DefaultPageSize <= 0 {
		opts.DefaultPageSize = 100
	}
	if opts.Schema == "" {
		opts.Schema = "public"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	cat := catalog.New(pool)
	cat.OnMiss(metrics.SchemaCacheMisses.Inc)

	s := &Server{
		pool:     pool,
		cat:      cat,
		builder:  query.NewBuilder(pool.Dialect()),
		profiler: profile.New(pool, cat),
		router:   httputil.NewRouter(),
		opts:     opts,
		logger:   opts.Logger,
	}
	s.routes()
	return s
}

// Catalog exposes the server's schema catalog, mainly for cache refresh.
func (s *Server) Catalog() *catalog.Catalog { return s.cat }

// AddMiddleware appends middleware to the router chain.
func (s *Server) AddMiddleware(mw ...httputil.Middleware) {
	s.router.Use(mw...)
}

// Handler returns the full handler with middleware applied, for tests and
// embedding.
func (s *Server) Handler() http.Handler { return s.router.Handler() }

func (s *Server) routes() {
	s.router.HandleFunc("GET /{$}", s.handleRoot)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /debug/connection", s.handleDebugConnection)

	s.router.HandleFunc("POST /execute/sql", s.handleExecuteSQL)
	s.router.HandleFunc("POST /sql/prettify", s.handleSQLPrettify)
	s.router.HandleFunc("POST /sql/extract/tables", s.handleSQLExtractTables)
	s.router.HandleFunc("POST /sql/extract/columns", s.handleSQLExtractColumns)
	s.router.HandleFunc("POST /sql/extract/projections", s.handleSQLExtractProjections)

	s.router.HandleFunc("GET /metadata/databases", s.handleListDatabases)
	s.router.HandleFunc("GET /metadata/schemas", s.handleListSchemas)
	s.router.HandleFunc("GET /metadata/tables", s.handleListTables)
	s.router.HandleFunc("GET /metadata/views", s.handleListViews)
	s.router.HandleFunc("GET /metadata/columns", s.handleListColumns)
	s.router.HandleFunc("GET /metadata/constraints", s.handleListConstraints)
	s.router.HandleFunc("POST /metadata/refresh", s.handleRefresh)
	s.router.HandleFunc("GET /metadata/{catalog}", s.handleMetadataCatalog)
	s.router.HandleFunc("GET /metadata/{catalog}/{schema}", s.handleMetadataSchema)
	s.router.HandleFunc("GET /metadata/{catalog}/{schema}/{table}", s.handleMetadataTable)
	s.router.HandleFunc("GET /metadata/{catalog}/{schema}/{table}/summarize", s.handleSummarizeTable)
	s.router.HandleFunc("GET /metadata/{catalog}/{schema}/{table}/column/{column}/summarize", s.handleSummarizeColumn)

	s.router.HandleFunc("GET /profile", s.handleProfile)
	s.router.HandleFunc("GET /describe", s.handleDescribe)

	s.router.HandleFunc("GET /{entity}", s.handleList)
	s.router.HandleFunc("POST /{entity}", s.handleCreate)
	s.router.HandleFunc("GET /{entity}/{id}", s.handleGet)
	s.router.HandleFunc("PUT /{entity}/{id}", s.handleReplace)
	s.router.HandleFunc("PATCH /{entity}/{id}", s.handleUpdate)
	s.router.HandleFunc("DELETE /{entity}/{id}", s.handleDelete)
}

// Start serves HTTP on addr.
func (s *Server) Start(addr string) error {
	s.logger.Info("server starting", zap.String("addr", addr))
	return s.router.ListenAndServe(addr)
}

// Shutdown gracefully stops the HTTP server and closes the pool.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	err := s.router.Shutdown(ctx)
	s.pool.Close()
	return err
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"message": "tabrest data proxy"})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDebugConnection(w http.ResponseWriter, r *http.Request) {
	if _, err := s.pool.Query(r.Context(), "SELECT 1"); err != nil {
		httputil.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}
	httputil.JSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"message": "database connection established successfully",
	})
}

// writeError maps the error taxonomy onto HTTP statuses. Parameter values
// never appear in responses; offending column and keyword names do.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		notFound    *catalog.NotFoundError
		unsupported *catalog.UnsupportedSchemaError
		invalidQ    *query.InvalidQueryError
		invalidCol  *query.InvalidColumnError
		mismatch    *query.TypeMismatchError
		rejected    *query.RejectedError
		connErr     *db.ConnectionError
		storageErr  *db.StorageError
	)

	switch {
	case errors.As(err, &notFound):
		httputil.Error(w, http.StatusNotFound, err.Error())
	case errors.As(err, &unsupported):
		httputil.Error(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &invalidQ), errors.As(err, &invalidCol), errors.As(err, &mismatch):
		httputil.Error(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &rejected):
		httputil.Error(w, http.StatusForbidden, err.Error())
	case errors.As(err, &connErr):
		httputil.Error(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &storageErr):
		httputil.Error(w, http.StatusInternalServerError, err.Error())
	default:
		s.logger.Error("unhandled error", zap.Error(err))
		httputil.Error(w, http.StatusInternalServerError, "internal error")
	}
}
