package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/qweave/metalize/pkg/buildinfo"
	"github.com/qweave/metalize/pkg/design"
	"github.com/qweave/metalize/pkg/errors"
	"github.com/qweave/metalize/pkg/pipeline"
	"github.com/qweave/metalize/pkg/session"
)

// maxBodySize caps request bodies at 8 MiB. Designs are small.
const maxBodySize = 8 << 20

// asyncRenderTimeout bounds background render passes.
const asyncRenderTimeout = 5 * time.Minute

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// =============================================================================
// Render
// =============================================================================

// renderRequest is the body of POST /render.
type renderRequest struct {
	DesignName string `json:"design_name"`
	Backend    string `json:"backend,omitempty"`
	Selection  []int  `json:"selection,omitempty"`
	Refresh    bool   `json:"refresh,omitempty"`
}

// renderResponse is the body of a successful render.
type renderResponse struct {
	PassID       string `json:"pass_id"`
	DesignName   string `json:"design_name"`
	DesignHash   string `json:"design_hash"`
	Backend      string `json:"backend"`
	Cached       bool   `json:"cached"`
	OpCount      int    `json:"op_count"`
	ElementCount int    `json:"element_count"`
	Artifact     string `json:"artifact"`
}

func (s *Server) renderOptions(req renderRequest) pipeline.Options {
	return pipeline.Options{
		DesignName: req.DesignName,
		Backend:    req.Backend,
		Selection:  req.Selection,
		Refresh:    req.Refresh,
		Store:      s.designs,
		Logger:     s.logger,
	}
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), s.renderOptions(req))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, renderResponse{
		PassID:       result.PassID,
		DesignName:   result.Design.Name,
		DesignHash:   result.DesignHash,
		Backend:      result.Backend,
		Cached:       result.CacheInfo.RenderHit,
		OpCount:      result.Stats.OpCount,
		ElementCount: result.Stats.ElementCount,
		Artifact:     string(result.Artifact),
	})
}

func (s *Server) handleRenderAsync(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	opts := s.renderOptions(req)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid render request"))
		return
	}

	sess := session.New(req.DesignName, opts.Backend)
	if err := s.sessions.Set(r.Context(), sess); err != nil {
		writeError(w, err)
		return
	}

	// Capture the response before handing the session to the background
	// pass, which mutates it.
	accepted := map[string]string{
		"session_id": sess.ID,
		"status":     string(sess.Status),
	}
	go s.runAsync(sess, opts)

	writeJSON(w, http.StatusAccepted, accepted)
}

// runAsync executes a render pass in the background and records the outcome
// on the session. The render must outlive the request context.
func (s *Server) runAsync(sess *session.Session, opts pipeline.Options) {
	ctx, cancel := context.WithTimeout(context.Background(), asyncRenderTimeout)
	defer cancel()

	sess.Status = session.StatusRunning
	_ = s.sessions.Set(ctx, sess)

	result, err := s.runner.Execute(ctx, opts)
	if err != nil {
		s.logger.Error("async render failed", "session", sess.ID, "error", err)
		sess.Fail(err)
	} else {
		sess.Complete(result.Artifact)
	}
	if err := s.sessions.Set(ctx, sess); err != nil {
		s.logger.Error("failed to store session", "session", sess.ID, "error", err)
	}
}

func (s *Server) handleRenderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if sess == nil {
		writeError(w, errors.New(errors.ErrCodeNotFound, "no render pass %q", id))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// =============================================================================
// Designs
// =============================================================================

func (s *Server) handleListDesigns(w http.ResponseWriter, r *http.Request) {
	names, err := s.designs.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"designs": names})
}

func (s *Server) handleGetDesign(w http.ResponseWriter, r *http.Request) {
	d, err := s.designs.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	data, err := design.Marshal(d)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/toml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handlePutDesign(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read request body"))
		return
	}

	d, err := design.Read(bytes.NewReader(body))
	if err != nil {
		writeError(w, err)
		return
	}
	if d.Name != name {
		writeError(w, errors.New(errors.ErrCodeInvalidInput,
			"design name %q does not match URL %q", d.Name, name))
		return
	}

	if err := s.designs.Put(r.Context(), d); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": d.Name})
}

func (s *Server) handleDeleteDesign(w http.ResponseWriter, r *http.Request) {
	if err := s.designs.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Helpers
// =============================================================================

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps error codes to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDesign, errors.ErrCodeInvalidGeometry,
		errors.ErrCodeInvalidUnits, errors.ErrCodeInvalidName, errors.ErrCodeInvalidFormat:
		status = http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeDesignNotFound, errors.ErrCodeFileNotFound,
		errors.ErrCodeUnknownChip, errors.ErrCodeUnknownObject:
		status = http.StatusNotFound
	case errors.ErrCodeDuplicateName:
		status = http.StatusConflict
	case errors.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	}
	writeJSON(w, status, map[string]string{"error": errors.UserMessage(err)})
}
