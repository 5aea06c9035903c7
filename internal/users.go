package internal

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"campus-assets-api/internal/auth"
	"campus-assets-api/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// registerUser handles self-registration. Viewer accounts are usable
// immediately; admin accounts are created pending and the master email is
// asked to verify them.
func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.FullName == "" {
		sendError(w, http.StatusBadRequest, "email, password and full_name are required")
		return
	}
	if len(req.Password) < 8 {
		sendError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}
	if !models.IsValidRole(req.Role) {
		sendError(w, http.StatusBadRequest, "role must be admin or viewer")
		return
	}

	var exists bool
	if err := s.DB.QueryRowContext(r.Context(),
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, req.Email).Scan(&exists); err != nil {
		sendError(w, http.StatusInternalServerError, "database error")
		return
	}
	if exists {
		sendError(w, http.StatusConflict, "an account with this email already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	status := models.StatusApproved
	if req.Role == models.RoleAdmin {
		status = models.StatusPending
	}

	var user models.User
	err = s.DB.QueryRowContext(r.Context(), `
		INSERT INTO users (email, password_hash, full_name, role, status, department, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING id, email, full_name, role, status, department, created_at, updated_at`,
		req.Email, string(hash), req.FullName, req.Role, status, req.Department).Scan(
		&user.ID, &user.Email, &user.FullName, &user.Role, &user.Status,
		&user.Department, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	message := "registration successful"
	if status == models.StatusPending {
		message = "registration received, awaiting admin verification"
		if s.Mailer != nil {
			// Verification email failure must not lose the signup; the
			// master can still approve from the pending list.
			if err := s.Mailer.SendAdminVerification(user.Email, user.FullName, user.ID); err != nil {
				s.Logger.Error("send verification email", "err", err, "user_id", user.ID)
			}
		}
	}

	sendJSON(w, http.StatusCreated, user.Redacted(), message)
}

// loginUser handles user authentication
func (s *Server) loginUser(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		sendError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	var user models.User
	var lastLoginAt sql.NullTime
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT id, email, password_hash, full_name, role, status, department,
		       created_at, updated_at, last_login_at
		FROM users WHERE email = $1`, req.Email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName, &user.Role,
		&user.Status, &user.Department, &user.CreatedAt, &user.UpdatedAt, &lastLoginAt)
	if err == sql.ErrNoRows {
		sendError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		sendError(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		sendError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !user.CanLogin() {
		switch user.Status {
		case models.StatusPending:
			sendError(w, http.StatusForbidden, "account is awaiting verification")
		default:
			sendError(w, http.StatusForbidden, "account has been rejected")
		}
		return
	}

	sessionID := uuid.NewString()
	expiresAt := time.Now().Add(s.JWTManager.Expiry())
	if _, err := s.DB.ExecContext(r.Context(), `
		INSERT INTO sessions (id, user_id, created_at, expires_at)
		VALUES ($1, $2, now(), $3)`, sessionID, user.ID, expiresAt); err != nil {
		sendError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	if _, err := s.DB.ExecContext(r.Context(),
		`UPDATE users SET last_login_at = now() WHERE id = $1`, user.ID); err != nil {
		s.Logger.Warn("update last_login_at", "err", err, "user_id", user.ID)
	}

	token, err := s.JWTManager.GenerateToken(user.ID, user.Email, user.Role, sessionID)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}

	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}

	sendJSON(w, http.StatusOK, models.LoginResponse{
		Token:     token,
		SessionID: sessionID,
		User:      user.Redacted(),
	}, "login successful")
}

// logoutUser deletes the caller's session, invalidating the token
func (s *Server) logoutUser(w http.ResponseWriter, r *http.Request) {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil || claims.SessionID == "" {
		sendError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if _, err := s.DB.ExecContext(r.Context(),
		`DELETE FROM sessions WHERE id = $1 AND user_id = $2`, claims.SessionID, claims.UserID); err != nil {
		sendError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}

	sendJSON(w, http.StatusOK, nil, "logged out")
}

// getProfile returns the caller's account
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	var user models.User
	var lastLoginAt sql.NullTime
	err := s.DB.QueryRowContext(r.Context(), `
		SELECT id, email, full_name, role, status, department, created_at, updated_at, last_login_at
		FROM users WHERE id = $1`, userID).Scan(
		&user.ID, &user.Email, &user.FullName, &user.Role, &user.Status,
		&user.Department, &user.CreatedAt, &user.UpdatedAt, &lastLoginAt)
	if err == sql.ErrNoRows {
		sendError(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		sendError(w, http.StatusInternalServerError, "database error")
		return
	}
	if lastLoginAt.Valid {
		user.LastLoginAt = &lastLoginAt.Time
	}

	sendJSON(w, http.StatusOK, user.Redacted(), "")
}

// verifyAdmin resolves a pending admin signup. The link in the
// verification email carries the user id and the decision.
func (s *Server) verifyAdmin(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	decision := strings.TrimSpace(r.URL.Query().Get("decision"))
	if userID == "" {
		sendError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	status := models.StatusApproved
	if decision == "reject" {
		status = models.StatusRejected
	}

	result, err := s.DB.ExecContext(r.Context(), `
		UPDATE users SET status = $1, updated_at = now()
		WHERE id = $2 AND role = $3 AND status = $4`,
		status, userID, models.RoleAdmin, models.StatusPending)
	if err != nil {
		sendError(w, http.StatusInternalServerError, "database error")
		return
	}
	affected, err := result.RowsAffected()
	if err != nil {
		sendError(w, http.StatusInternalServerError, "database error")
		return
	}
	if affected == 0 {
		sendError(w, http.StatusNotFound, "no pending admin account with that id")
		return
	}

	sendJSON(w, http.StatusOK, map[string]string{"status": status}, "account "+status)
}
