package users_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/popcornpal/popcornpal/internal/app/features/users"
	"github.com/popcornpal/popcornpal/internal/app/store/emailverify"
	"github.com/popcornpal/popcornpal/internal/app/store/userstore"
	"github.com/popcornpal/popcornpal/internal/app/system/auth"
	"github.com/popcornpal/popcornpal/internal/app/system/mailer"
	"github.com/popcornpal/popcornpal/internal/domain/models"
	"github.com/popcornpal/popcornpal/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	createErr error
	users     map[primitive.ObjectID]*models.User
	byEmail   map[string]*models.User
	verified  []primitive.ObjectID
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:   map[primitive.ObjectID]*models.User{},
		byEmail: map[string]*models.User{},
	}
}

func (f *fakeUserStore) add(u models.User) *models.User {
	if u.ID == primitive.NilObjectID {
		u.ID = primitive.NewObjectID()
	}
	f.users[u.ID] = &u
	f.byEmail[u.Email] = &u
	return &u
}

func (f *fakeUserStore) Create(ctx context.Context, u models.User) (models.User, error) {
	if f.createErr != nil {
		return models.User{}, f.createErr
	}
	u.ID = primitive.NewObjectID()
	u.Role = models.RoleUser
	return u, nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, userstore.ErrNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, userstore.ErrNotFound
}

func (f *fakeUserStore) SetVerified(ctx context.Context, id primitive.ObjectID) error {
	f.verified = append(f.verified, id)
	return nil
}

func (f *fakeUserStore) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return nil
}

type fakeOTPStore struct {
	code      string
	verifyErr error
}

func (f *fakeOTPStore) Create(ctx context.Context, userID primitive.ObjectID) (string, error) {
	if f.code == "" {
		f.code = "123456"
	}
	return f.code, nil
}

func (f *fakeOTPStore) VerifyCode(ctx context.Context, userID primitive.ObjectID, code string) error {
	return f.verifyErr
}

func (f *fakeOTPStore) Expiry() time.Duration { return 10 * time.Minute }

type fakeResetStore struct {
	createErr error
	verifyErr error
}

func (f *fakeResetStore) Create(ctx context.Context, userID primitive.ObjectID) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return "resettoken", nil
}

func (f *fakeResetStore) VerifyToken(ctx context.Context, userID primitive.ObjectID, token string) error {
	return f.verifyErr
}

func (f *fakeResetStore) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	return nil
}

type fakeMailQueue struct {
	sent []mailer.Email
}

func (f *fakeMailQueue) Enqueue(e mailer.Email) { f.sent = append(f.sent, e) }

func newHandler(t *testing.T, store *fakeUserStore, otps *fakeOTPStore, resets *fakeResetStore, mailq *fakeMailQueue) *users.Handler {
	t.Helper()
	tokens, err := auth.NewManager("0123456789abcdef0123456789abcdef", time.Hour, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return users.NewHandler(store, otps, resets, tokens, mailq, "http://localhost:3000", zap.NewNop())
}

func TestHandleCreate_Success(t *testing.T) {
	store := newFakeUserStore()
	mailq := &fakeMailQueue{}
	h := newHandler(t, store, &fakeOTPStore{}, &fakeResetStore{}, mailq)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/create", map[string]string{
		"username": "filmfan",
		"email":    "fan@example.com",
		"password": "supersecret",
	})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	testutil.RequireStatus(t, rec, http.StatusCreated)
	if len(mailq.sent) != 1 {
		t.Fatalf("expected 1 queued email, got %d", len(mailq.sent))
	}
	if mailq.sent[0].To != "fan@example.com" {
		t.Errorf("verification email to %q", mailq.sent[0].To)
	}
}

func TestHandleCreate_DuplicateEmail(t *testing.T) {
	store := newFakeUserStore()
	store.createErr = userstore.ErrDuplicateEmail
	h := newHandler(t, store, &fakeOTPStore{}, &fakeResetStore{}, &fakeMailQueue{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/create", map[string]string{
		"username": "filmfan",
		"email":    "dup@example.com",
		"password": "supersecret",
	})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	testutil.RequireStatus(t, rec, http.StatusConflict)
}

func TestHandleCreate_ShortPassword(t *testing.T) {
	h := newHandler(t, newFakeUserStore(), &fakeOTPStore{}, &fakeResetStore{}, &fakeMailQueue{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/create", map[string]string{
		"username": "filmfan",
		"email":    "fan@example.com",
		"password": "short",
	})
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	testutil.RequireStatus(t, rec, http.StatusBadRequest)
}

func TestHandleVerifyEmail_Success(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(models.User{Username: "fan", Email: "fan@example.com", Role: models.RoleUser})
	mailq := &fakeMailQueue{}
	h := newHandler(t, store, &fakeOTPStore{}, &fakeResetStore{}, mailq)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/verify-email", map[string]string{
		"userId": u.ID.Hex(),
		"OTP":    "123456",
	})
	rec := httptest.NewRecorder()
	h.HandleVerifyEmail(rec, req)

	testutil.RequireStatus(t, rec, http.StatusOK)

	var body struct {
		Token string `json:"token"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.Token == "" {
		t.Error("expected a session token")
	}
	if len(mailq.sent) != 1 || mailq.sent[0].Subject != "Welcome to PopcornPal!🍿" {
		t.Errorf("expected a welcome email, got %+v", mailq.sent)
	}
}

func TestHandleVerifyEmail_AlreadyVerified(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(models.User{Username: "fan", Email: "fan@example.com", IsVerified: true})
	h := newHandler(t, store, &fakeOTPStore{}, &fakeResetStore{}, &fakeMailQueue{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/verify-email", map[string]string{
		"userId": u.ID.Hex(),
		"OTP":    "123456",
	})
	rec := httptest.NewRecorder()
	h.HandleVerifyEmail(rec, req)

	testutil.RequireStatus(t, rec, http.StatusConflict)
}

func TestHandleVerifyEmail_WrongCode(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(models.User{Username: "fan", Email: "fan@example.com"})
	h := newHandler(t, store, &fakeOTPStore{verifyErr: emailverify.ErrInvalidCode}, &fakeResetStore{}, &fakeMailQueue{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/verify-email", map[string]string{
		"userId": u.ID.Hex(),
		"OTP":    "654321",
	})
	rec := httptest.NewRecorder()
	h.HandleVerifyEmail(rec, req)

	testutil.RequireStatus(t, rec, http.StatusUnauthorized)
	if len(store.verified) != 0 {
		t.Error("user must not be verified with a wrong code")
	}
}

func TestHandleVerifyEmail_NoOutstandingCode(t *testing.T) {
	store := newFakeUserStore()
	u := store.add(models.User{Username: "fan", Email: "fan@example.com"})
	h := newHandler(t, store, &fakeOTPStore{verifyErr: emailverify.ErrNotFound}, &fakeResetStore{}, &fakeMailQueue{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/verify-email", map[string]string{
		"userId": u.ID.Hex(),
		"OTP":    "123456",
	})
	rec := httptest.NewRecorder()
	h.HandleVerifyEmail(rec, req)

	testutil.RequireStatus(t, rec, http.StatusNotFound)
}

func TestHandleResendOTP_ByEmail(t *testing.T) {
	store := newFakeUserStore()
	store.add(models.User{Username: "fan", Email: "fan@example.com"})
	mailq := &fakeMailQueue{}
	h := newHandler(t, store, &fakeOTPStore{}, &fakeResetStore{}, mailq)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/resend-otp", map[string]string{
		"email": "fan@example.com",
	})
	rec := httptest.NewRecorder()
	h.HandleResendOTP(rec, req)

	testutil.RequireStatus(t, rec, http.StatusOK)
	if len(mailq.sent) != 1 || mailq.sent[0].To != "fan@example.com" {
		t.Errorf("expected a fresh code emailed, got %+v", mailq.sent)
	}
}

func TestHandleResendOTP_AlreadyVerified(t *testing.T) {
	store := newFakeUserStore()
	store.add(models.User{Username: "fan", Email: "fan@example.com", IsVerified: true})
	h := newHandler(t, store, &fakeOTPStore{}, &fakeResetStore{}, &fakeMailQueue{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/resend-otp", map[string]string{
		"email": "fan@example.com",
	})
	rec := httptest.NewRecorder()
	h.HandleResendOTP(rec, req)

	testutil.RequireStatus(t, rec, http.StatusConflict)
}

func TestHandleSignIn_WrongPassword(t *testing.T) {
	store := newFakeUserStore()
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpassword"), 10)
	store.add(models.User{Username: "fan", Email: "fan@example.com", PasswordHash: string(hash)})
	h := newHandler(t, store, &fakeOTPStore{}, &fakeResetStore{}, &fakeMailQueue{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/sign-in", map[string]string{
		"email":    "fan@example.com",
		"password": "wrongpassword",
	})
	rec := httptest.NewRecorder()
	h.HandleSignIn(rec, req)

	testutil.RequireStatus(t, rec, http.StatusUnauthorized)
}

func TestHandleSignIn_Unverified(t *testing.T) {
	store := newFakeUserStore()
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpassword"), 10)
	store.add(models.User{Username: "fan", Email: "fan@example.com", PasswordHash: string(hash), Role: models.RoleUser})
	h := newHandler(t, store, &fakeOTPStore{}, &fakeResetStore{}, &fakeMailQueue{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/sign-in", map[string]string{
		"email":    "fan@example.com",
		"password": "rightpassword",
	})
	rec := httptest.NewRecorder()
	h.HandleSignIn(rec, req)

	testutil.RequireStatus(t, rec, http.StatusUnauthorized)
}

func TestHandleSignIn_Success(t *testing.T) {
	store := newFakeUserStore()
	hash, _ := bcrypt.GenerateFromPassword([]byte("rightpassword"), 10)
	store.add(models.User{Username: "fan", Email: "fan@example.com", PasswordHash: string(hash), Role: models.RoleUser, IsVerified: true})
	h := newHandler(t, store, &fakeOTPStore{}, &fakeResetStore{}, &fakeMailQueue{})

	req := testutil.NewJSONRequest(t, http.MethodPost, "/user/sign-in", map[string]string{
		"email":    "fan@example.com",
		"password": "rightpassword",
	})
	rec := httptest.NewRecorder()
	h.HandleSignIn(rec, req)

	testutil.RequireStatus(t, rec, http.StatusOK)
	var body struct {
		Token string `json:"token"`
	}
	testutil.DecodeJSON(t, rec, &body)
	if body.Token == "" {
		t.Error("expected a session token")
	}
}
