// Package sheet serves the remote job-sheet protocol backed by SQLite. It stands in for the
// spreadsheet web app: one path, GET for read, POST for create/update/delete, every
// request serialized under a single lock.
package sheet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/didip/tollbooth/v8"
	"github.com/didip/tollbooth/v8/limiter"
	log "github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"

	"github.com/umputun/jobtrack/app/enums"
	"github.com/umputun/jobtrack/app/remote"
)

// DefaultSheet is used when a request names no sheet
const DefaultSheet = "Didil"

// Path is the single endpoint of the protocol
const Path = "/exec"

// Server answers protocol requests. Protocol errors are reported with HTTP 200 and success=false.
type Server struct {
	store     *Store
	version   string
	rateLimit float64
	lock      sync.Mutex // held for the whole of every request
}

// Config holds sheet server configuration
type Config struct {
	Store     *Store
	Version   string
	RateLimit float64 // max POST requests per second per client, 0 disables the limit
}

// postBody is decoded loosely so an unknown action or a textual row index reach the handler
type postBody struct {
	Action   string `json:"action"`
	Sheet    string `json:"sheet"`
	RowIndex any    `json:"rowIndex"`
	remote.Fields
}

// NewServer makes a sheet server on top of the store
func NewServer(cfg Config) *Server {
	return &Server{store: cfg.Store, version: cfg.Version, rateLimit: cfg.RateLimit}
}

// Run starts the server and blocks until ctx is canceled
func (s *Server) Run(ctx context.Context, address string) error {
	server := &http.Server{
		Addr:              address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] failed to shutdown sheet server: %v", err)
		}
	}()

	log.Printf("[INFO] starting sheet server on %s%s", address, Path)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("sheet server failed: %w", err)
	}
	return nil
}

// Handler returns the protocol handler with middlewares
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) routes() http.Handler {
	router := routegroup.New(http.NewServeMux())
	router.Use(
		rest.RealIP,
		rest.Recoverer(log.Default()),
		rest.Throttle(1000),
		rest.AppInfo("jobtrack-sheet", "umputun", s.version),
		rest.Ping,
		rest.SizeLimit(64*1024),
		logger.New(logger.Log(log.Default()), logger.Prefix("[DEBUG]")).Handler,
		rest.NoCache,
		corsHeaders,
	)

	router.HandleFunc("GET "+Path, s.handleRead)
	router.HandleFunc("OPTIONS "+Path, func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })
	if s.rateLimit > 0 {
		lmt := tollbooth.NewLimiter(s.rateLimit, &limiter.ExpirableOptions{DefaultExpirationTTL: time.Minute})
		lmt.SetIPLookup(limiter.IPLookup{Name: "RemoteAddr"})
		router.With(tollbooth.HTTPMiddleware(lmt)).HandleFunc("POST "+Path, s.handleWrite)
	} else {
		router.HandleFunc("POST "+Path, s.handleWrite)
	}
	return router
}

// handleRead serves action=read, creating the sheet on first access
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	act, err := enums.ParseAction(r.URL.Query().Get("action"))
	if err != nil || act != enums.ActionRead {
		s.fail(w, "Invalid GET request action")
		return
	}
	sheet := sheetName(r.URL.Query().Get("sheet"))
	if _, err := s.store.Ensure(r.Context(), sheet); err != nil {
		log.Printf("[WARN] read %s: %v", sheet, err)
		s.fail(w, "Sheet Read Error: "+err.Error())
		return
	}
	rows, err := s.store.Rows(r.Context(), sheet)
	if err != nil {
		log.Printf("[WARN] read %s: %v", sheet, err)
		s.fail(w, "Sheet Read Error: "+err.Error())
		return
	}
	// empty data is sent as [] and not omitted
	rest.RenderJSON(w, struct {
		Success bool         `json:"success"`
		Data    []remote.Row `json:"data"`
	}{Success: true, Data: rows})
}

// handleWrite serves create, update and delete
func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	s.lock.Lock()
	defer s.lock.Unlock()

	var body postBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.fail(w, "Sheet Write Error: "+err.Error())
		return
	}
	act, err := enums.ParseAction(body.Action)
	if err != nil || act == enums.ActionRead {
		s.fail(w, "Invalid action in POST body")
		return
	}
	sheet := sheetName(body.Sheet)
	if _, err := s.store.Ensure(r.Context(), sheet); err != nil {
		s.fail(w, "Sheet Write Error: "+err.Error())
		return
	}

	switch act {
	case enums.ActionCreate:
		pos, err := s.store.Append(r.Context(), sheet, body.Fields)
		if err != nil {
			s.fail(w, "Sheet Write Error: "+err.Error())
			return
		}
		log.Printf("[DEBUG] appended row %d to %s", pos, sheet)
	case enums.ActionUpdate, enums.ActionDelete:
		pos, ok := rowIndex(body.RowIndex)
		if !ok {
			s.fail(w, fmt.Sprintf("Invalid Row Index for %s", act))
			return
		}
		if act == enums.ActionUpdate {
			err = s.store.Update(r.Context(), sheet, pos, body.Fields)
		} else {
			err = s.store.Delete(r.Context(), sheet, pos)
		}
		if errors.Is(err, ErrNoRow) {
			s.fail(w, fmt.Sprintf("Invalid Row Index for %s", act))
			return
		}
		if err != nil {
			s.fail(w, "Sheet Write Error: "+err.Error())
			return
		}
		log.Printf("[DEBUG] %s row %d of %s", act, pos, sheet)
	}
	rest.RenderJSON(w, remote.Response{Success: true})
}

func (s *Server) fail(w http.ResponseWriter, msg string) {
	log.Printf("[DEBUG] sheet request rejected: %s", msg)
	rest.RenderJSON(w, remote.Response{Success: false, Error: msg})
}

func corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		next.ServeHTTP(w, r)
	})
}

func sheetName(s string) string {
	if s == "" {
		return DefaultSheet
	}
	return s
}

// rowIndex accepts whole numbers and numeric strings, anything below the first data row is invalid
func rowIndex(v any) (int, bool) {
	var idx int
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		idx = int(val)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		idx = n
	default:
		return 0, false
	}
	return idx, idx >= remote.MinRowIndex
}
