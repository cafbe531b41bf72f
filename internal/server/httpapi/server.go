// Package httpapi exposes the sales-intel HTTP/JSON API.
package httpapi

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/model"
	"github.com/and161185/sales-intel/internal/service"
	"go.uber.org/zap"
)

const maxBody = 1 << 20

// Server wires services into HTTP handlers.
type Server struct {
	auth     service.AuthService
	analysis service.AnalysisService
	log      *zap.Logger
}

// New constructs the handler set with injected services.
func New(auth service.AuthService, analysis service.AnalysisService, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{auth: auth, analysis: analysis, log: log}
}

// --- Auth ---

// Login exchanges form-encoded username/password for an access token.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Formulário inválido")
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		writeDetail(w, http.StatusBadRequest, "Informe usuário e senha")
		return
	}
	tok, err := s.auth.Login(r.Context(), username, password, remoteIP(r))
	if err != nil {
		if errors.Is(err, errs.ErrUnauthorized) {
			unauthorized(w, "Credenciais inválidas")
			return
		}
		writeError(w, err, s.log)
		return
	}
	writeJSON(w, http.StatusOK, tok)
}

// Register creates an account. Admin only.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if !s.decode(w, r, &req) {
		return
	}
	u, err := s.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, err, s.log)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// ListUsers returns every account. Admin only.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		writeError(w, err, s.log)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// --- Analysis ---

// Scrape analyzes {"url": ...}, served from cache while fresh.
func (s *Server) Scrape(w http.ResponseWriter, r *http.Request) {
	var req model.AnalysisRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.analysis.Analyze(r.Context(), req.URL)
	if err != nil {
		writeError(w, err, s.log)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Pages lists analyzed URLs.
func (s *Server) Pages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.analysis.Pages(r.Context())
	if err != nil {
		writeError(w, err, s.log)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

// Stats returns cache usage totals. Admin only.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := s.analysis.Stats(r.Context())
	if err != nil {
		writeError(w, err, s.log)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Recent lists the latest analyses; ?limit is optional. Admin only.
func (s *Server) Recent(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "Parâmetro limit inválido")
			return
		}
		limit = n
	}
	recent, err := s.analysis.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, err, s.log)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analyses": recent, "count": len(recent)})
}

// Health is the liveness probe.
func (s *Server) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- helpers ---

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusBadRequest, "Corpo da requisição inválido")
		return false
	}
	return true
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeError maps service sentinels to a status and a {"detail"} body.
func writeError(w http.ResponseWriter, err error, log *zap.Logger) {
	var ie *service.InputError
	switch {
	case errors.As(err, &ie):
		writeDetail(w, http.StatusBadRequest, ie.Detail)
	case errors.Is(err, errs.ErrInvalidInput):
		writeDetail(w, http.StatusBadRequest, "Dados inválidos")
	case errors.Is(err, errs.ErrAlreadyExists):
		writeDetail(w, http.StatusBadRequest, "Usuário já registrado")
	case errors.Is(err, errs.ErrUnauthorized):
		unauthorized(w, "Não autenticado")
	case errors.Is(err, errs.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "Acesso restrito a administradores")
	case errors.Is(err, errs.ErrRateLimited):
		writeDetail(w, http.StatusTooManyRequests, "Muitas tentativas. Tente novamente em alguns minutos")
	case errors.Is(err, errs.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Não encontrado")
	default:
		if log != nil {
			log.Error("request failed", zap.Error(err))
		}
		writeDetail(w, http.StatusInternalServerError, "internal")
	}
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
