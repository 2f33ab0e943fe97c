package main

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/walletgate/internal/auth"
	"github.com/dropDatabas3/walletgate/internal/domain"
	"github.com/dropDatabas3/walletgate/internal/session"
	"github.com/go-chi/chi/v5"
)

// handlers expone el coordinator por HTTP para desarrollo. Esto es un
// harness para ejercitar el ciclo de vida desde curl, no una API de
// producto.
type handlers struct {
	coord *auth.Coordinator
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return false
	}
	return true
}

func writeResult(w http.ResponseWriter, res domain.AuthResult) {
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, res)
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type sessionView struct {
	Authenticated bool                `json:"authenticated"`
	AuthLoading   bool                `json:"auth_loading"`
	ElapsedMs     int64               `json:"elapsed_ms"`
	Elapsed       string              `json:"elapsed"`
	Expired       bool                `json:"expired"`
	Identity      *domain.Identity    `json:"identity,omitempty"`
	User          *domain.DerivedUser `json:"user,omitempty"`
}

func (h *handlers) session(w http.ResponseWriter, _ *http.Request) {
	s := h.coord.Snapshot()
	writeJSON(w, http.StatusOK, sessionView{
		Authenticated: s.Authenticated(),
		AuthLoading:   s.AuthLoading,
		ElapsedMs:     s.SessionElapsed.Milliseconds(),
		Elapsed:       session.FormatElapsed(s.SessionElapsed),
		Expired:       s.Expired(),
		Identity:      s.Identity,
		User:          s.User,
	})
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) signup(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if !readJSON(w, r, &in) {
		return
	}
	writeResult(w, h.coord.SignUp(r.Context(), in.Email, in.Password))
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var in credentialsRequest
	if !readJSON(w, r, &in) {
		return
	}
	writeResult(w, h.coord.SignIn(r.Context(), in.Email, in.Password))
}

func (h *handlers) federated(w http.ResponseWriter, r *http.Request) {
	provider := domain.Provider(chi.URLParam(r, "provider"))
	writeResult(w, h.coord.SignInWithFederated(r.Context(), provider))
}

func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.coord.SignOut(r.Context()))
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if !readJSON(w, r, &in) {
		return
	}
	writeResult(w, h.coord.ResetPassword(r.Context(), in.Email))
}

func (h *handlers) refresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		UserID string `json:"user_id"`
	}
	// body opcional: sin user_id usa la identidad activa
	_ = json.NewDecoder(r.Body).Decode(&in)
	writeResult(w, h.coord.RefreshSessionTime(r.Context(), in.UserID))
}

func (h *handlers) sendVerification(w http.ResponseWriter, r *http.Request) {
	writeResult(w, h.coord.SendEmailVerification(r.Context()))
}

func (h *handlers) checkVerification(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"email_verified": h.coord.CheckEmailVerified(r.Context()),
	})
}

func (h *handlers) submitKYC(w http.ResponseWriter, r *http.Request) {
	var in domain.KYCRecord
	if !readJSON(w, r, &in) {
		return
	}
	writeResult(w, h.coord.SubmitKYC(r.Context(), in))
}

func (h *handlers) updateProfile(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if !readJSON(w, r, &in) {
		return
	}
	writeResult(w, h.coord.UpdateProfile(r.Context(), in))
}
