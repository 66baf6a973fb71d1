package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fanflow-app/fanflow/internal/cooldown"
	"github.com/fanflow-app/fanflow/internal/dialog"
	"github.com/fanflow-app/fanflow/internal/graph"
	"github.com/fanflow-app/fanflow/internal/models"
)

// createSessionRequest is the body of POST /api/v1/sessions.
type createSessionRequest struct {
	Locale      string `json:"locale,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Email       string `json:"email,omitempty"`
}

// sessionResponse is the snapshot shape returned for session reads.
type sessionResponse struct {
	SessionID string               `json:"session_id"`
	Locale    string               `json:"locale"`
	Messages  []models.ChatMessage `json:"messages"`
}

// actionRequest is the body of the option and input endpoints.
type actionRequest struct {
	MessageInstanceID string `json:"message_instance_id"`
	OptionInstanceID  string `json:"option_instance_id,omitempty"`
	Value             string `json:"value,omitempty"`
}

func (s *Server) createSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.createSessionHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	actorID, authenticated := s.actor(r)
	sess := s.registry.Create(dialog.Config{
		ActorID:       actorID,
		Authenticated: authenticated,
		Locale:        req.Locale,
		DisplayName:   req.DisplayName,
		Email:         req.Email,
		TypingDelay:   s.opts.TypingDelay,
		Profiles:      s.accounts,
		Clips:         s.clips,
	})
	// Session effects outlive the creating request.
	sess.Start(context.Background())

	slog.Info("Server.createSessionHandler: session started", "sessionID", sess.ID(), "authenticated", authenticated)
	writeJSONResponse(w, http.StatusCreated, models.Success(sessionResponse{
		SessionID: sess.ID(),
		Locale:    sess.Locale(),
		Messages:  sess.Snapshot(),
	}))
}

// lookupSession resolves the path session and enforces ownership. A
// session owned by another actor reads as not found.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) *dialog.Session {
	id := chi.URLParam(r, "sessionID")
	sess, err := s.registry.Get(id)
	if err != nil {
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return nil
	}
	actorID, _ := s.actor(r)
	if sess.ActorID() != actorID {
		slog.Warn("Server.lookupSession: actor mismatch", "sessionID", id, "actorID", actorID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Session not found"))
		return nil
	}
	return sess
}

func (s *Server) getSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(sessionResponse{
		SessionID: sess.ID(),
		Locale:    sess.Locale(),
		Messages:  sess.Snapshot(),
	}))
}

func (s *Server) deleteSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	s.registry.Remove(sess.ID())
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session closed", nil))
}

func (s *Server) selectOptionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.selectOptionHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.MessageInstanceID == "" || req.OptionInstanceID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing message or option instance id"))
		return
	}
	res := sess.SelectOption(context.Background(), req.MessageInstanceID, req.OptionInstanceID)
	writeJSONResponse(w, http.StatusOK, models.Success(res))
}

func (s *Server) submitInputHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.submitInputHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	if req.MessageInstanceID == "" {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Missing message instance id"))
		return
	}
	res := sess.SubmitInput(context.Background(), req.MessageInstanceID, req.Value)
	writeJSONResponse(w, http.StatusOK, models.Success(res))
}

func (s *Server) restartSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess := s.lookupSession(w, r)
	if sess == nil {
		return
	}
	sess.Restart(context.Background())
	writeJSONResponse(w, http.StatusOK, models.Success(sessionResponse{
		SessionID: sess.ID(),
		Locale:    sess.Locale(),
		Messages:  sess.Snapshot(),
	}))
}

func (s *Server) listClipsHandler(w http.ResponseWriter, r *http.Request) {
	actorID, _ := s.actor(r)
	clips, err := s.clips.ListClips(r.Context(), actorID)
	if err != nil {
		slog.Error("Server.listClipsHandler: list failed", "error", err, "actorID", actorID)
		writeJSONResponse(w, http.StatusInternalServerError, models.Error("Failed to fetch clips"))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(clips))
}

func (s *Server) localesHandler(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, models.Success(graph.Locales()))
}

// loginPrecheckHandler throttles password attempts per client IP before
// the auth layer is hit at all.
func (s *Server) loginPrecheckHandler(w http.ResponseWriter, r *http.Request) {
	ip := cooldown.ClientIP(r)
	res := s.accounts.CheckLoginRate(r.Context(), ip)
	if !res.Allowed {
		slog.Warn("Server.loginPrecheckHandler: throttled", "ip", ip)
		writeJSONResponse(w, http.StatusTooManyRequests, models.Error(res.Message))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(res))
}
