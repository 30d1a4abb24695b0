package users

import (
	"github.com/go-chi/chi/v5"
	"github.com/popcornpal/popcornpal/internal/app/system/auth"
)

// Routes mounts the user endpoints under the base path (typically "/user"
// from bootstrap).
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/create", h.HandleCreate)
	r.Post("/verify-email", h.HandleVerifyEmail)
	r.Post("/resend-otp", h.HandleResendOTP)
	r.Post("/forget-password", h.HandleForgetPassword)
	r.Post("/reset-password", h.HandleResetPassword)
	r.Post("/sign-in", h.HandleSignIn)

	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/is-auth", h.HandleIsAuth)
	})

	return r
}
