package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"creator-app/config"
	"creator-app/database"
	adminapi "creator-app/internal/api/admin"
	authapi "creator-app/internal/api/auth"
	billingapi "creator-app/internal/api/billing"
	"creator-app/internal/api/onboarding"
	plansapi "creator-app/internal/api/plans"
	stripewebhooks "creator-app/internal/api/stripewebhook"
	usersapi "creator-app/internal/api/users"
	routes "creator-app/internal/app/http"
	"creator-app/internal/app/http/middleware"
	"creator-app/internal/infra/checkoutfn"
	"creator-app/internal/infra/mailer"
	"creator-app/internal/infra/stripe"
	"creator-app/internal/logger"
	"creator-app/internal/repository"
	"creator-app/internal/service/checkout"
	"creator-app/internal/service/identity"
	"creator-app/internal/service/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("startup")
	}
	log := logger.New(cfg.AppEnv)
	if !cfg.DotEnvLoaded {
		log.Info().Msg("no .env file found, using process environment")
	}

	db, err := database.Open(cfg.DBURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("close database")
		}
	}()

	userRepo := repository.NewUserRepo(db)
	profileRepo := repository.NewProfileRepo(db)
	subRepo := repository.NewSubscriptionRepo(db)
	checkoutRepo := repository.NewCheckoutRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	eventRepo := repository.NewWebhookEventRepo(db)

	prices := checkout.PriceTableFrom(cfg.PriceIDs)
	for _, pair := range prices.Missing() {
		log.Warn().Str("pair", pair).Msg("no Stripe price configured; checkout for it will be rejected")
	}

	stripeClient := stripe.NewClient(cfg.StripeSecretKey)

	var gateway checkout.Gateway = stripeClient
	classify := stripe.Classify
	if cfg.CheckoutFunctionURL != "" {
		gateway = checkoutfn.New(cfg.CheckoutFunctionURL, cfg.CheckoutFunctionKey)
		classify = checkout.DefaultClassify
		log.Info().Str("url", cfg.CheckoutFunctionURL).Msg("checkout via hosted function")
	}

	var mail mailer.Mailer = mailer.NewLog(log)
	if cfg.PostmarkEnabled() {
		mail = mailer.NewPostmark(cfg.PostmarkServerToken, cfg.PostmarkAccountToken, cfg.MailFrom)
	}

	ids := identity.New(identity.Options{
		Users:           userRepo,
		Tokens:          tokenRepo,
		Mailer:          mail,
		Secret:          cfg.JWTSecret,
		SiteURL:         cfg.SiteURL,
		SignInPerMinute: cfg.LoginRatePerMinute,
		Logger:          log,
	})
	sessions := session.New(profileRepo, subRepo, log)
	checkouts := checkout.New(checkout.Options{
		Gateway:       gateway,
		Prices:        prices,
		Subscriptions: subRepo,
		Sessions:      checkoutRepo,
		Classify:      classify,
		SiteURL:       cfg.SiteURL,
		Logger:        log,
	})

	var google *authapi.Google
	if cfg.GoogleEnabled() {
		google = authapi.NewGoogle(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL,
			cfg.GoogleFrontendRedirect, !cfg.IsDevelopment())
	}
	validate := authapi.NewValidator()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	origin := cfg.CORSOrigin
	if origin == "" {
		origin = cfg.SiteURL
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{origin},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		Authenticator: ids,
		Subscriptions: subRepo,
		Now:           time.Now,

		Auth:       authapi.NewHandler(ids, sessions, validate, google, log),
		Users:      usersapi.NewHandler(sessions, log),
		Onboarding: onboarding.NewHandler(profileRepo, sessions, validate, log),
		Plans:      plansapi.NewHandler(subRepo, prices, log),
		Billing:    billingapi.NewHandler(checkouts, stripeClient, checkoutRepo, cfg.SiteURL, log),
		Webhook: stripewebhooks.NewHandler(stripewebhooks.Options{
			Secret:        cfg.StripeWebhookSecret,
			Fetcher:       stripeClient,
			Canceler:      stripeClient,
			Subscriptions: subRepo,
			Sessions:      checkoutRepo,
			Events:        eventRepo,
			Prices:        prices,
			Logger:        log,
		}),
		Admin: adminapi.NewHandler(userRepo, subRepo, checkoutRepo, log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown")
	}
}
