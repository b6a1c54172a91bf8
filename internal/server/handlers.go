package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jordan/content-optimizer/internal/types"
	"github.com/jordan/content-optimizer/internal/workflow"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type documentPayload struct {
	ContentHTML       string   `json:"contentHtml"`
	MetaTitle         string   `json:"metaTitle"`
	MetaDescription   string   `json:"metaDescription"`
	PrimaryKeyword    string   `json:"primaryKeyword"`
	SecondaryKeywords []string `json:"secondaryKeywords"`
}

type createSessionRequest struct {
	// PostID loads the document from persistence; Document seeds it
	// directly. Exactly one of the two is required.
	PostID   string           `json:"postId,omitempty" validate:"omitempty,uuid"`
	Document *documentPayload `json:"document,omitempty"`
}

type sessionResponse struct {
	SessionID string         `json:"sessionId"`
	State     workflow.State `json:"state"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if (req.PostID == "") == (req.Document == nil) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exactly one of postId or document is required"})
		return
	}

	var doc types.DocumentState
	var postID *uuid.UUID
	if req.PostID != "" {
		if s.posts == nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "post persistence is not configured"})
			return
		}
		id, err := uuid.Parse(req.PostID)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid postId"})
			return
		}
		loaded, err := s.posts.Load(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		doc = *loaded
		postID = &id
	} else {
		doc = types.DocumentState{
			ContentHTML:       req.Document.ContentHTML,
			MetaTitle:         req.Document.MetaTitle,
			MetaDescription:   req.Document.MetaDescription,
			PrimaryKeyword:    req.Document.PrimaryKeyword,
			SecondaryKeywords: req.Document.SecondaryKeywords,
		}
	}

	postRef := ""
	if postID != nil {
		postRef = postID.String()
	}
	oracleClient, err := s.newOracle(postRef)
	if err != nil {
		writeError(w, fmt.Errorf("failed to create oracle client: %w", err))
		return
	}

	controller, err := workflow.New(workflow.Options{
		Oracle:       oracleClient,
		Document:     doc,
		Location:     s.cfg.Location,
		Language:     s.cfg.Language,
		RescoreDelay: s.cfg.RescoreDelay,
		Logger:       s.log,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	sess := &editingSession{
		ID:         uuid.New(),
		PostID:     postID,
		Controller: controller,
	}
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.Info("editing session created",
		zap.String("session_id", sess.ID.String()),
		zap.String("post_id", postRef))

	writeJSON(w, http.StatusCreated, sessionResponse{
		SessionID: sess.ID.String(),
		State:     controller.State(),
	})
}

// withSession resolves the {id} path value to an editing session.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request) (*editingSession, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session id"})
		return nil, false
	}
	sess, ok := s.lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID.String(), State: sess.Controller.State()})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	sess.Controller.Close()
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

type updateDocumentRequest struct {
	ContentHTML       *string   `json:"contentHtml,omitempty"`
	MetaTitle         *string   `json:"metaTitle,omitempty"`
	MetaDescription   *string   `json:"metaDescription,omitempty"`
	PrimaryKeyword    *string   `json:"primaryKeyword,omitempty"`
	SecondaryKeywords *[]string `json:"secondaryKeywords,omitempty"`
}

func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}

	var req updateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	// One setter call per request keeps the edit signal to a single pulse.
	sess.Controller.Doc().Update(func(d *types.DocumentState) {
		if req.ContentHTML != nil {
			d.ContentHTML = *req.ContentHTML
		}
		if req.MetaTitle != nil {
			d.MetaTitle = *req.MetaTitle
		}
		if req.MetaDescription != nil {
			d.MetaDescription = *req.MetaDescription
		}
		if req.PrimaryKeyword != nil {
			d.PrimaryKeyword = *req.PrimaryKeyword
		}
		if req.SecondaryKeywords != nil {
			d.SecondaryKeywords = *req.SecondaryKeywords
		}
	})

	writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID.String(), State: sess.Controller.State()})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	if err := sess.Controller.RunAnalysis(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID.String(), State: sess.Controller.State()})
}

func (s *Server) handleRescore(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	if err := sess.Controller.Rescore(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID.String(), State: sess.Controller.State()})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	if _, err := sess.Controller.RequestSuggestions(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID.String(), State: sess.Controller.State()})
}

func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	if err := sess.Controller.ApplyFixes(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID.String(), State: sess.Controller.State()})
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	sess.Controller.Undo()
	writeJSON(w, http.StatusOK, sessionResponse{SessionID: sess.ID.String(), State: sess.Controller.State()})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}
	if s.posts == nil || sess.PostID == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session has no persistent post"})
		return
	}
	if err := s.posts.Save(r.Context(), *sess.PostID, sess.Controller.Doc().Snapshot()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.withSession(w, r)
	if !ok {
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// Buffered so a slow client drops intermediate states instead of
	// blocking the controller's notify path.
	updates := make(chan workflow.State, 16)
	cancel := sess.Controller.Subscribe(func(state workflow.State) {
		select {
		case updates <- state:
		default:
		}
	})
	defer cancel()

	if err := sse.WriteEvent("state", sess.Controller.State()); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case state := <-updates:
			if err := sse.WriteEvent("state", state); err != nil {
				return
			}
		}
	}
}
