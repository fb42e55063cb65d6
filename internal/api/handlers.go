package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Nomadcxx/teamsort/internal/history"
	"github.com/Nomadcxx/teamsort/internal/reorganize"
	"github.com/Nomadcxx/teamsort/internal/roster"
	"github.com/Nomadcxx/teamsort/internal/service"
	"github.com/go-chi/chi/v5"
)

type healthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	History bool   `json:"history"`
}

type presetsResponse struct {
	Team         string   `json:"team"`
	Photo        string   `json:"photo"`
	TeamPresets  []string `json:"team_presets"`
	PhotoPresets []string `json:"photo_presets"`
}

// runRequest is the body of POST /runs. Unset options fall back to config.
type runRequest struct {
	reorganize.Request
	DryRun          *bool  `json:"dry_run,omitempty"`
	ContinueOnError *bool  `json:"continue_on_error,omitempty"`
	CreateTeamDirs  *bool  `json:"create_team_dirs,omitempty"`
	Names           string `json:"names,omitempty"`
	Backend         string `json:"backend,omitempty"`
}

type rowError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type runResponse struct {
	RunID  string             `json:"run_id,omitempty"`
	Report *reorganize.Report `json:"report,omitempty"`
	Errors []rowError         `json:"errors,omitempty"`
	Code   string             `json:"code,omitempty"`
	Error  string             `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Uptime:  time.Since(s.startTime).Round(time.Second).String(),
		History: s.runner.History() != nil,
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, presetsResponse{
		Team:         s.cfg.Columns.Team,
		Photo:        s.cfg.Columns.Photo,
		TeamPresets:  s.cfg.Columns.TeamPresets,
		PhotoPresets: s.cfg.Columns.PhotoPresets,
	})
}

func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var body runRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	opts := s.runner.Defaults()
	if body.DryRun != nil {
		opts.DryRun = *body.DryRun
	}
	if body.ContinueOnError != nil {
		opts.ContinueOnError = *body.ContinueOnError
	}
	if body.CreateTeamDirs != nil {
		opts.EagerDirs = *body.CreateTeamDirs
	}
	if body.Names != "" {
		opts.NamePolicy = body.Names
	}
	if body.Backend != "" {
		opts.Backend = body.Backend
	}

	res, err := s.runner.Run(history.TriggerAPI, body.Request, opts)

	resp := runResponse{}
	if res != nil {
		resp.RunID = res.RunID
		resp.Report = res.Report
	}
	if err == nil {
		writeJSON(w, http.StatusOK, resp)
		return
	}

	status, code := classify(err, resp.Report)
	resp.Code = code
	resp.Error = err.Error()
	if resp.Report != nil {
		for _, o := range resp.Report.Outcomes {
			if o.Err != nil {
				resp.Errors = append(resp.Errors, rowError{Line: o.Row.Line, Error: o.Err.Error()})
			}
		}
	}
	writeJSON(w, status, resp)
}

// classify maps a run error to an HTTP status and error code
func classify(err error, report *reorganize.Report) (int, string) {
	switch {
	case errors.Is(err, service.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, roster.ErrSchema):
		return http.StatusBadRequest, "schema"
	case errors.Is(err, roster.ErrDataAccess):
		return http.StatusBadRequest, "data_access"
	case errors.Is(err, reorganize.ErrInvalidName):
		return http.StatusUnprocessableEntity, "invalid_name"
	case errors.Is(err, reorganize.ErrFilesystem):
		if report == nil {
			// the photo directory itself is unusable
			return http.StatusUnprocessableEntity, "filesystem"
		}
		return http.StatusInternalServerError, "filesystem"
	case report == nil:
		return http.StatusBadRequest, "invalid_request"
	default:
		return http.StatusInternalServerError, "run_failed"
	}
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	store := s.runner.History()
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "history_disabled", "run history is disabled")
		return
	}

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := store.RecentRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history_failed", err.Error())
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	store := s.runner.History()
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "history_disabled", "run history is disabled")
		return
	}

	run, err := store.GetRun(chi.URLParam(r, "id"))
	if errors.Is(err, history.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "history_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
