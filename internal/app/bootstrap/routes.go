package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	chatfeature "github.com/popcornpal/popcornpal/internal/app/features/chat"
	healthfeature "github.com/popcornpal/popcornpal/internal/app/features/health"
	moviesfeature "github.com/popcornpal/popcornpal/internal/app/features/movies"
	reviewsfeature "github.com/popcornpal/popcornpal/internal/app/features/reviews"
	usersfeature "github.com/popcornpal/popcornpal/internal/app/features/users"
	"github.com/popcornpal/popcornpal/internal/app/store/emailverify"
	"github.com/popcornpal/popcornpal/internal/app/store/moviestore"
	"github.com/popcornpal/popcornpal/internal/app/store/passwordreset"
	"github.com/popcornpal/popcornpal/internal/app/store/reviewstore"
	"github.com/popcornpal/popcornpal/internal/app/store/userstore"
	"github.com/popcornpal/popcornpal/internal/app/store/votestore"
	"github.com/popcornpal/popcornpal/internal/app/system/auth"
	"github.com/popcornpal/popcornpal/internal/app/system/gemini"
	"github.com/popcornpal/popcornpal/internal/app/system/httpjson"
	"github.com/popcornpal/popcornpal/internal/app/system/mailer"
	"github.com/popcornpal/popcornpal/internal/app/system/media"
	"github.com/popcornpal/popcornpal/internal/app/system/txn"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connection, schema setup, and
// Startup have completed. It wires the stores, the external collaborators
// (Cloudinary, SendGrid, Gemini), and mounts the feature routers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	movies := moviestore.New(db)
	reviews := reviewstore.New(db)
	votes := votestore.New(db)
	otps := emailverify.New(db, appCfg.EmailVerifyExpiry)
	resets := passwordreset.New(db, appCfg.PasswordResetExpiry)

	tokens, err := auth.NewManager(appCfg.JWTSecret, appCfg.JWTExpiry, logger)
	if err != nil {
		logger.Error("token manager init failed", zap.Error(err))
		return nil, err
	}

	mediaStore, err := media.NewCloudinary(appCfg.CloudinaryCloudName, appCfg.CloudinaryAPIKey, appCfg.CloudinaryAPISecret, logger)
	if err != nil {
		logger.Error("cloudinary init failed", zap.Error(err))
		return nil, err
	}

	sender, err := mailer.NewSendGrid(appCfg.SendGridAPIKey, appCfg.MailFromName, appCfg.MailFrom)
	if err != nil {
		logger.Error("sendgrid init failed", zap.Error(err))
		return nil, err
	}
	dispatcher = mailer.NewDispatcher(sender, logger, 0)
	dispatcher.Start()

	// The Gemini client is optional: without it, sentiment falls back to
	// Neutral and the chat endpoint answers with its canned apology.
	var tagger gemini.Tagger
	var chatter gemini.Chatter
	if appCfg.GeminiAPIKey != "" {
		client, err := gemini.New(context.Background(), appCfg.GeminiAPIKey, logger)
		if err != nil {
			logger.Error("gemini init failed", zap.Error(err))
			return nil, err
		}
		geminiClient = client
		tagger = client
		chatter = client
	}

	runTxn := func(ctx context.Context, fn func(ctx context.Context) error) error {
		return txn.Run(ctx, deps.MongoClient, fn)
	}

	userHandler := usersfeature.NewHandler(users, otps, resets, tokens, dispatcher, appCfg.BaseURL, logger)
	movieHandler := moviesfeature.NewHandler(movies, reviews, votes, users, mediaStore, runTxn, logger)
	reviewHandler := reviewsfeature.NewHandler(reviews, movies, votes, tagger, runTxn, logger)
	chatHandler := chatfeature.NewHandler(chatter, movies, logger)
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads the bearer token's user into context so
	// auth.CurrentUser(r) works everywhere.
	r.Use(tokens.LoadSessionUser)

	r.Get("/health", healthHandler.Serve)
	r.Mount("/user", usersfeature.Routes(userHandler))
	r.Mount("/movie", moviesfeature.Routes(movieHandler))
	r.Mount("/review", reviewsfeature.Routes(reviewHandler))
	r.Mount("/chat", chatfeature.Routes(chatHandler))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		httpjson.Error(w, http.StatusNotFound, "Not found")
	})

	return r, nil
}

// Shared between BuildHandler and Shutdown.
var (
	dispatcher   *mailer.Dispatcher
	geminiClient *gemini.Client
)
