// Package httpx exposes the service over HTTP, mapping requests to the auth
// and account services and serializing their results.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"log/slog"

	"github.com/iguajardo/serenity-api/internal/service/account"
	"github.com/iguajardo/serenity-api/internal/service/auth"
	"github.com/iguajardo/serenity-api/pkg/token"
)

// Router wires HTTP endpoints to services.
type Router struct {
	mux            *http.ServeMux
	logger         *slog.Logger
	auth           auth.Service
	account        account.Service
	clientFrontURL string
}

// NewRouter assembles routes with dependencies.
func NewRouter(logger *slog.Logger, authSvc auth.Service, accountSvc account.Service, clientFrontURL string) *Router {
	r := &Router{
		mux:            http.NewServeMux(),
		logger:         logger,
		auth:           authSvc,
		account:        accountSvc,
		clientFrontURL: strings.TrimRight(clientFrontURL, "/"),
	}
	r.register()
	return r
}

// ServeHTTP applies CORS and delegates to the underlying mux.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if corsHeaders(w, req) {
		return
	}
	r.mux.ServeHTTP(w, req)
}

func (r *Router) register() {
	r.mux.HandleFunc("/", r.handleHome)
	r.mux.HandleFunc("/api/auth", r.handleLogin)
	r.mux.HandleFunc("/api/register", r.handleRegister)
	r.mux.HandleFunc("/confirm_email/", r.handleConfirmEmail)
	r.mux.HandleFunc("/api/users", r.handleUsers)
	r.mux.HandleFunc("/api/profile", r.requireAuth(r.handleProfile))
	r.mux.HandleFunc("/api/note", r.requireAuth(r.handleNoteCreate))
	r.mux.HandleFunc("/api/note/", r.requireAuth(r.handleNoteDelete))
	r.mux.HandleFunc("/api/calendar", r.requireAuth(r.handleCalendar))
	r.mux.HandleFunc("/api/tokencheck", r.requireAuth(r.handleTokenCheck))
	r.mux.HandleFunc("/api/reset-password", r.handleResetPassword)
	r.mux.HandleFunc("/api/reset-by-mail", r.handleResetByMail)
}

func (r *Router) methodNotAllowed(w http.ResponseWriter) {
	writeMessage(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (r *Router) notFound(w http.ResponseWriter) {
	writeMessage(w, http.StatusNotFound, "not found")
}

// serviceError maps service failures onto the client's expected status
// codes: token problems and domain rejections are 400, unverified email
// is 403, everything unexpected is 500.
func (r *Router) serviceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrEmailNotVerified):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, token.ErrExpired):
		writeMessage(w, http.StatusBadRequest, "the token is expired")
	case errors.Is(err, token.ErrInvalid):
		writeMessage(w, http.StatusBadRequest, "invalid token")
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, auth.ErrUsernameTaken),
		errors.Is(err, auth.ErrEmailTaken),
		errors.Is(err, auth.ErrBadCredentials),
		errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, account.ErrUserNotFound),
		errors.Is(err, account.ErrInvalidInput):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		r.logger.Error("request failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func (r *Router) handleHome(w http.ResponseWriter, req *http.Request) {
	if req.URL.Path != "/" {
		r.notFound(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<h1>Serenity REST API</h1>"))
}

func (r *Router) handleLogin(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Username string `json:"nombre_usuario"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	accessToken, err := r.auth.Login(req.Context(), payload.Username, payload.Password)
	if err != nil {
		r.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

func (r *Router) handleRegister(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Username string `json:"nombre_usuario"`
		Password string `json:"password"`
		Email    string `json:"email"`
		UserImg  string `json:"user_img"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	result, err := r.auth.Register(req.Context(), auth.RegisterInput{
		Username: payload.Username,
		Password: payload.Password,
		Email:    payload.Email,
		Avatar:   payload.UserImg,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidInput),
			errors.Is(err, auth.ErrUsernameTaken),
			errors.Is(err, auth.ErrEmailTaken):
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"message": err.Error(),
				"status":  "error",
			})
		default:
			r.serviceError(w, err)
		}
		return
	}
	resp := map[string]any{
		"user":   marshalUser(result.User),
		"status": "ok",
	}
	if !result.MailSent {
		resp["warning"] = "confirmation email could not be sent"
	}
	writeJSON(w, http.StatusOK, resp)
}

func (r *Router) handleConfirmEmail(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	confirmToken := strings.TrimPrefix(req.URL.Path, "/confirm_email/")
	if confirmToken == "" || strings.Contains(confirmToken, "/") {
		r.notFound(w)
		return
	}
	user, err := r.auth.ConfirmEmail(req.Context(), confirmToken)
	if err != nil {
		r.serviceError(w, err)
		return
	}
	target := fmt.Sprintf("%s/confirm-email/%s", r.clientFrontURL, user.Email)
	http.Redirect(w, req, target, http.StatusFound)
}

func (r *Router) handleUsers(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		r.methodNotAllowed(w)
		return
	}
	users, err := r.account.ListUsers(req.Context())
	if err != nil {
		r.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": marshalUsers(users)})
}

func (r *Router) handleProfile(w http.ResponseWriter, req *http.Request) {
	userID, ok := userIDFromContext(req.Context())
	if !ok {
		r.logger.Error("auth context missing", "path", req.URL.Path)
		writeMessage(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	switch req.Method {
	case http.MethodGet:
		user, err := r.account.Get(req.Context(), userID)
		if err != nil {
			r.serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, marshalUser(user))
	case http.MethodPut:
		var payload struct {
			Name string `json:"nombre"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		user, err := r.account.UpdateName(req.Context(), userID, payload.Name)
		if err != nil {
			r.serviceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, marshalUser(user))
	default:
		r.methodNotAllowed(w)
	}
}

func (r *Router) handleNoteCreate(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	userID, ok := userIDFromContext(req.Context())
	if !ok {
		writeMessage(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	var payload struct {
		Title    string `json:"titulo"`
		Content  string `json:"contenido"`
		Category string `json:"categoria"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	note, err := r.account.CreateNote(req.Context(), userID, account.NoteInput{
		Title:    payload.Title,
		Content:  payload.Content,
		Category: payload.Category,
	})
	if err != nil {
		r.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, marshalNote(*note))
}

func (r *Router) handleNoteDelete(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodDelete {
		r.methodNotAllowed(w)
		return
	}
	noteID := strings.TrimPrefix(req.URL.Path, "/api/note/")
	if noteID == "" || strings.Contains(noteID, "/") {
		r.notFound(w)
		return
	}
	userID, ok := userIDFromContext(req.Context())
	if !ok {
		writeMessage(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	user, err := r.account.DeleteNote(req.Context(), userID, noteID)
	if err != nil {
		r.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, marshalUser(user))
}

func (r *Router) handleCalendar(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	userID, ok := userIDFromContext(req.Context())
	if !ok {
		writeMessage(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	var payload map[string]string
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := r.account.SaveCalendar(req.Context(), userID, payload); err != nil {
		r.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "added_calendar"})
}

func (r *Router) handleTokenCheck(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	userID, ok := userIDFromContext(req.Context())
	if !ok {
		writeMessage(w, http.StatusInternalServerError, "authorization context missing")
		return
	}
	accessToken, err := r.auth.Refresh(userID)
	if err != nil {
		r.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": accessToken})
}

func (r *Router) handleResetPassword(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		EmailToken string `json:"emailToken"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := r.auth.ResetPassword(req.Context(), payload.EmailToken, payload.Password); err != nil {
		r.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "succeed changing password"})
}

func (r *Router) handleResetByMail(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		r.methodNotAllowed(w)
		return
	}
	var payload struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := r.auth.RequestPasswordReset(req.Context(), payload.Email); err != nil {
		r.serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "email sent"})
}
