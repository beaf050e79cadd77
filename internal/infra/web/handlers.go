package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"scenario-quiz/internal/domain"
	"scenario-quiz/internal/domain/model"
	"scenario-quiz/internal/infra/logging"
	"scenario-quiz/internal/infra/metrics"
)

const maxBodyBytes = 1 << 16

type tokenView struct {
	ID        string            `json:"id"`
	Limit     int               `json:"limit"`
	Used      int               `json:"used"`
	Remaining int               `json:"remaining"`
	Status    model.TokenStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}

func toTokenView(t *model.Token) tokenView {
	return tokenView{
		ID:        t.ID,
		Limit:     t.Limit,
		Used:      t.Used,
		Remaining: t.Remaining(),
		Status:    t.Status(),
		CreatedAt: t.CreatedAt,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidArgument)
	}
	return nil
}

func (s *Server) handleSubjects(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Subjects     []model.Subject    `json:"subjects"`
		Difficulties []model.Difficulty `json:"difficulties"`
	}{Subjects: model.Subjects, Difficulties: model.Difficulties})
}

// ===== Session =====

type redeemRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	var req redeemRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, log, err)
		return
	}
	tok, err := s.sessionUC.Redeem(ctx, sessionID(ctx), req.Token)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Status model.TokenStatus `json:"status"`
		Token  tokenView         `json:"token"`
	}{Status: tok.Status(), Token: toTokenView(tok)})
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tok, err := s.sessionUC.Active(ctx, sessionID(ctx))
	if err != nil {
		writeError(w, logging.With(ctx, s.log), err)
		return
	}
	writeJSON(w, http.StatusOK, toTokenView(tok))
}

func (s *Server) handleExit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := s.sessionUC.Exit(ctx, sessionID(ctx)); err != nil {
		writeError(w, logging.With(ctx, s.log), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ===== Questions =====

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	var req model.GenerationRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, log, err)
		return
	}
	batch, err := s.generationUC.Generate(ctx, sessionID(ctx), req)
	if err != nil {
		writeError(w, log, err)
		return
	}
	writeJSON(w, http.StatusCreated, batch)
}

func (s *Server) handleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	batch, err := s.generationUC.Current(ctx, sessionID(ctx))
	if err != nil {
		writeError(w, logging.With(ctx, s.log), err)
		return
	}
	writeJSON(w, http.StatusOK, batch)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := s.exportUC.Export(ctx, sessionID(ctx))
	if err != nil {
		writeError(w, logging.With(ctx, s.log), err)
		return
	}
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name))
	w.Header().Set("Content-Length", fmt.Sprint(len(doc.Bytes)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Bytes)
}

// ===== Admin =====

type loginRequest struct {
	Password string `json:"password"`
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	log := logging.With(r.Context(), s.log)

	var req loginRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, log, err)
		return
	}
	if !passwordMatches(req.Password, s.adminPass) {
		metrics.IncAdminAction("login", "unauthorized")
		log.Warn().Msg("admin login rejected")
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Incorrect password."})
		return
	}
	if _, err := s.auth.Mint(w); err != nil {
		writeError(w, log, err)
		return
	}
	metrics.IncAdminAction("login", "authorized")
	log.Info().Msg("admin login")
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	tokens := s.ledgerUC.List(r.Context())
	items := make([]tokenView, 0, len(tokens))
	for i := range tokens {
		items = append(items, toTokenView(&tokens[i]))
	}
	writeJSON(w, http.StatusOK, struct {
		Items []tokenView `json:"items"`
	}{Items: items})
}

type issueRequest struct {
	Limit int `json:"limit"`
}

func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.With(ctx, s.log)

	var req issueRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, log, err)
		return
	}
	tok, err := s.ledgerUC.Issue(ctx, req.Limit)
	if err != nil {
		writeError(w, log, err)
		return
	}
	metrics.IncAdminAction("issue_token", "authorized")
	log.Info().Str("token", logging.Redact(tok.ID, s.dev)).Int("limit", tok.Limit).Msg("token issued")
	writeJSON(w, http.StatusCreated, toTokenView(tok))
}
