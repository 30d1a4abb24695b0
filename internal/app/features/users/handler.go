// Package users implements account registration, email verification with
// one-time codes, password reset and sign-in.
package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/popcornpal/popcornpal/internal/app/store/emailverify"
	"github.com/popcornpal/popcornpal/internal/app/store/passwordreset"
	"github.com/popcornpal/popcornpal/internal/app/store/userstore"
	"github.com/popcornpal/popcornpal/internal/app/system/auth"
	"github.com/popcornpal/popcornpal/internal/app/system/httpjson"
	"github.com/popcornpal/popcornpal/internal/app/system/mailer"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLen = 3
	minPasswordLen = 8
	bcryptCost     = 10
)

// UserStore is the slice of the user store the handlers need.
type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetVerified(ctx context.Context, id primitive.ObjectID) error
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
}

// OTPStore issues and checks email verification codes.
type OTPStore interface {
	Create(ctx context.Context, userID primitive.ObjectID) (string, error)
	VerifyCode(ctx context.Context, userID primitive.ObjectID, code string) error
	Expiry() time.Duration
}

// ResetStore issues and checks password reset tokens.
type ResetStore interface {
	Create(ctx context.Context, userID primitive.ObjectID) (string, error)
	VerifyToken(ctx context.Context, userID primitive.ObjectID, token string) error
	DeleteByUser(ctx context.Context, userID primitive.ObjectID) error
}

// MailQueue enqueues outbound email for background delivery.
type MailQueue interface {
	Enqueue(e mailer.Email)
}

// Handler holds the dependencies of the user endpoints.
type Handler struct {
	Users   UserStore
	OTPs    OTPStore
	Resets  ResetStore
	Tokens  *auth.Manager
	Mail    MailQueue
	BaseURL string
	Log     *zap.Logger
}

func NewHandler(users UserStore, otps OTPStore, resets ResetStore, tokens *auth.Manager, mailq MailQueue, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Users:   users,
		OTPs:    otps,
		Resets:  resets,
		Tokens:  tokens,
		Mail:    mailq,
		BaseURL: baseURL,
		Log:     logger,
	}
}

// userInfo is the public shape of a user in responses.
type userInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"isVerified"`
}

func publicUser(u *models.User) userInfo {
	return userInfo{
		ID:         u.ID.Hex(),
		Name:       u.Username,
		Email:      u.Email,
		Role:       u.Role,
		IsVerified: u.IsVerified,
	}
}

// HandleCreate handles POST /user/create.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if msg := validateSignup(req.Username, req.Email, req.Password); msg != "" {
		httpjson.Error(w, http.StatusBadRequest, msg)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user, err := h.Users.Create(r.Context(), models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		httpjson.Error(w, http.StatusConflict, "This email is already in use!")
		return
	case errors.Is(err, userstore.ErrDuplicateUsername):
		httpjson.Error(w, http.StatusConflict, "This username is already taken!")
		return
	case err != nil:
		h.Log.Error("create user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.sendVerificationOTP(r.Context(), user.ID, user.Email)

	httpjson.Respond(w, http.StatusCreated, map[string]any{
		"user":    publicUser(&user),
		"message": "Please verify your email. OTP has been sent to your email!",
	})
}

// HandleVerifyEmail handles POST /user/verify-email.
func (h *Handler) HandleVerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"userId"`
		OTP    string `json:"OTP"`
	}
	if !httpjson.Decode(w, r, &req) {
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	user, err := h.Users.GetByID(r.Context(), userID)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("load user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user.IsVerified {
		httpjson.Error(w, http.StatusConflict, "User is already verified!")
		return
	}

	switch err := h.OTPs.VerifyCode(r.Context(), userID, strings.TrimSpace(req.OTP)); {
	case errors.Is(err, emailverify.ErrNotFound):
		httpjson.Error(w, http.StatusNotFound, "Verification code not found")
		return
	case errors.Is(err, emailverify.ErrInvalidCode):
		httpjson.Error(w, http.StatusUnauthorized, "Invalid or expired OTP")
		return
	case err != nil:
		h.Log.Error("verify otp", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.Users.SetVerified(r.Context(), userID); err != nil {
		h.Log.Error("set verified", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	user.IsVerified = true

	token, err := h.Tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		h.Log.Error("issue token", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.Mail.Enqueue(mailer.WelcomeEmail(user.Email))

	httpjson.Respond(w, http.StatusOK, map[string]any{
		"user":    publicUser(user),
		"token":   token,
		"message": "Your email is verified!",
	})
}

// HandleResendOTP handles POST /user/resend-otp. The account is looked up
// by email, so a user who lost the first code only needs the address they
// registered with.
func (h *Handler) HandleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		httpjson.Error(w, http.StatusBadRequest, "Invalid email")
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("load user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if user.IsVerified {
		httpjson.Error(w, http.StatusConflict, "User is already verified!")
		return
	}

	h.sendVerificationOTP(r.Context(), user.ID, user.Email)

	httpjson.Message(w, http.StatusOK, "New OTP has been sent to your registered email!")
}

// HandleForgetPassword handles POST /user/forget-password.
func (h *Handler) HandleForgetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if !validEmail(req.Email) {
		httpjson.Error(w, http.StatusBadRequest, "Invalid email")
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("load user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.Resets.Create(r.Context(), user.ID)
	if errors.Is(err, passwordreset.ErrAlreadyRequested) {
		httpjson.Error(w, http.StatusConflict, "Only after one hour you can request another token!")
		return
	}
	if err != nil {
		h.Log.Error("create reset token", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	resetURL := fmt.Sprintf("%s/auth/reset-password?token=%s&id=%s",
		strings.TrimRight(h.BaseURL, "/"), url.QueryEscape(token), user.ID.Hex())
	h.Mail.Enqueue(mailer.PasswordResetEmail(user.Email, resetURL))

	httpjson.Message(w, http.StatusOK, "Link sent to your email!")
}

// HandleResetPassword handles POST /user/reset-password.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   string `json:"userId"`
		Token    string `json:"token"`
		Password string `json:"newPassword"`
	}
	if !httpjson.Decode(w, r, &req) {
		return
	}
	userID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "Invalid user id")
		return
	}
	if len(req.Password) < minPasswordLen {
		httpjson.Error(w, http.StatusBadRequest, fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
		return
	}

	if err := h.Resets.VerifyToken(r.Context(), userID, req.Token); err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Unauthorized access, invalid token!")
		return
	}

	user, err := h.Users.GetByID(r.Context(), userID)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("load user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) == nil {
		httpjson.Error(w, http.StatusConflict, "New password must be different from the old one!")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.Users.UpdatePassword(r.Context(), userID, string(hash)); err != nil {
		h.Log.Error("update password", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := h.Resets.DeleteByUser(r.Context(), userID); err != nil {
		h.Log.Error("delete reset tokens", zap.Error(err))
	}

	h.Mail.Enqueue(mailer.ResetConfirmationEmail(user.Email))

	httpjson.Message(w, http.StatusOK, "Password reset successfully, now you can use your new password!")
}

// HandleSignIn handles POST /user/sign-in.
func (h *Handler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !httpjson.Decode(w, r, &req) {
		return
	}

	user, err := h.Users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusUnauthorized, "Email/Password mismatch!")
		return
	}
	if err != nil {
		h.Log.Error("load user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Email/Password mismatch!")
		return
	}
	if !user.IsVerified {
		httpjson.Error(w, http.StatusUnauthorized, "Please verify your email first!")
		return
	}

	token, err := h.Tokens.Issue(user.ID.Hex(), user.Role)
	if err != nil {
		h.Log.Error("issue token", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	httpjson.Respond(w, http.StatusOK, map[string]any{
		"user":  publicUser(user),
		"token": token,
	})
}

// HandleIsAuth handles GET /user/is-auth, returning the profile behind the
// presented token.
func (h *Handler) HandleIsAuth(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, err := primitive.ObjectIDFromHex(su.ID)
	if err != nil {
		httpjson.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	user, err := h.Users.GetByID(r.Context(), userID)
	if errors.Is(err, userstore.ErrNotFound) {
		httpjson.Error(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.Log.Error("load user", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpjson.Respond(w, http.StatusOK, map[string]any{"user": publicUser(user)})
}

// sendVerificationOTP issues a fresh OTP and queues the verification email.
// Failures are logged; registration still succeeds and the user can ask for
// a resend.
func (h *Handler) sendVerificationOTP(ctx context.Context, userID primitive.ObjectID, email string) {
	code, err := h.OTPs.Create(ctx, userID)
	if err != nil {
		h.Log.Error("create verification otp", zap.Error(err))
		return
	}
	expiresIn := fmt.Sprintf("%d minutes", int(h.OTPs.Expiry().Minutes()))
	h.Mail.Enqueue(mailer.VerificationEmail(email, code, expiresIn))
}

func validateSignup(username, email, password string) string {
	if len(strings.TrimSpace(username)) < minUsernameLen {
		return fmt.Sprintf("Username must be at least %d characters", minUsernameLen)
	}
	if !validEmail(email) {
		return "Invalid email"
	}
	if len(password) < minPasswordLen {
		return fmt.Sprintf("Password must be at least %d characters", minPasswordLen)
	}
	return ""
}

func validEmail(email string) bool {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	return err == nil && addr.Address == strings.TrimSpace(email)
}
