package cargo_api

import (
	"log/slog"
	"net/http"

	"github.com/BearBump/CargoFlow/internal/apperr"
	"github.com/BearBump/CargoFlow/internal/auth"
	"github.com/BearBump/CargoFlow/internal/models"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type userBody struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *models.User `json:"user,omitempty"`
}

// requireAdmin writes the error response itself when the caller is not an admin.
func (a *API) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		a.writeError(w, r, apperr.Forbidden(""))
		return false
	}
	if _, err := a.Accounts.RequireAdmin(r.Context(), id.UserID); err != nil {
		a.writeError(w, r, err)
		return false
	}
	return true
}

func (a *API) pendingUsers(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	users, err := a.Accounts.ListPending(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

func (a *API) allUsers(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	users, err := a.Accounts.ListAll(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(users))
}

func (a *API) approveUser(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.Accounts.Approve(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userBody{Success: true, Message: "User approved successfully", User: u})
}

func (a *API) rejectUser(w http.ResponseWriter, r *http.Request) {
	if !a.requireAdmin(w, r) {
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if err := a.Accounts.Reject(r.Context(), id); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Success: true, Message: "User rejected and deleted successfully"})
}

func (a *API) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.Accounts.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, userBody{
		Success: true,
		Message: "Registration successful. Your account is pending admin approval.",
		User:    u,
	})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := a.decode(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, ok, err := a.Accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageBody{Success: false, Message: "Invalid email or password"})
		return
	}
	if a.Sessions != nil {
		if err := a.Sessions.Login(w, r, u); err != nil {
			a.writeError(w, r, err)
			return
		}
	}
	slog.Info("user logged in", "user_id", u.ID)
	writeJSON(w, http.StatusOK, userBody{Success: true, Message: "Login successful", User: u})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) {
	if a.Sessions != nil {
		if err := a.Sessions.Logout(w, r); err != nil {
			a.writeError(w, r, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, messageBody{Success: true, Message: "Logged out successfully"})
}

func (a *API) currentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, messageBody{Success: false, Message: "Not authenticated"})
		return
	}
	u, err := a.Accounts.GetByID(r.Context(), id.UserID)
	if apperr.Is(err, apperr.KindNotFound) {
		writeJSON(w, http.StatusUnauthorized, messageBody{Success: false, Message: "Not authenticated"})
		return
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, userBody{Success: true, User: u})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
