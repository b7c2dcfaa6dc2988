package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/photo-fundraising/api"
	"github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/auth"
	"github.com/frahmantamala/photo-fundraising/internal/campaign"
	campaignpostgres "github.com/frahmantamala/photo-fundraising/internal/campaign/postgres"
	"github.com/frahmantamala/photo-fundraising/internal/campaign/tally"
	"github.com/frahmantamala/photo-fundraising/internal/checkout"
	"github.com/frahmantamala/photo-fundraising/internal/comment"
	commentpostgres "github.com/frahmantamala/photo-fundraising/internal/comment/postgres"
	"github.com/frahmantamala/photo-fundraising/internal/core/events"
	"github.com/frahmantamala/photo-fundraising/internal/donation"
	donationpostgres "github.com/frahmantamala/photo-fundraising/internal/donation/postgres"
	"github.com/frahmantamala/photo-fundraising/internal/payment"
	paymentpostgres "github.com/frahmantamala/photo-fundraising/internal/payment/postgres"
	"github.com/frahmantamala/photo-fundraising/internal/payment/stripe"
	"github.com/frahmantamala/photo-fundraising/internal/photo"
	photopostgres "github.com/frahmantamala/photo-fundraising/internal/photo/postgres"
	"github.com/frahmantamala/photo-fundraising/internal/transport"
	"github.com/frahmantamala/photo-fundraising/internal/transport/rest"
	"github.com/frahmantamala/photo-fundraising/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server serving the campaign API, checkout and the Stripe webhook`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Bus    *events.EventBus
	Tally  *tally.Tally
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("server failed", "error", err)
			deps.close()
			os.Exit(1)
		}
	}

	deps.close()
	deps.Logger.Info("server stopped")
}

// close drains in-flight handlers and workers before the pool goes away.
func (d *Dependencies) close() {
	d.Bus.Wait()
	d.Tally.Shutdown()
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	cfg, err := loadConfig(configPath, internal.AllSections...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	if _, err := api.Load(ctx); err != nil {
		return nil, err
	}

	sqlxDB, gormDB, err := openDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	bus := events.NewEventBus(lg)
	base := transport.NewBaseHandler(lg)

	campaignRepo := campaignpostgres.NewCampaignRepository(gormDB)
	statsRepo := campaignpostgres.NewStatsRepository(sqlxDB)
	photoRepo := photopostgres.NewPhotoRepository(gormDB)
	donationRepo := donationpostgres.NewDonationRepository(gormDB)
	intentRepo := paymentpostgres.NewPaymentIntentRepository(gormDB)
	commentRepo := commentpostgres.NewCommentRepository(gormDB)

	storage, err := photo.NewS3Storage(ctx, cfg.Storage.Bucket, cfg.Storage.Region, cfg.Storage.PublicBaseURL)
	if err != nil {
		_ = sqlxDB.Close()
		return nil, err
	}

	campaignService := campaign.NewService(campaignRepo, statsRepo, bus, cfg.Cache.CampaignViewTTL, lg)
	photoService := photo.NewService(photoRepo, campaignRepo, storage, bus, lg)
	donationService := donation.NewService(donationRepo, campaignRepo, lg)
	commentService := comment.NewService(commentRepo, campaignRepo, lg)

	provider := stripe.NewProvider(cfg.Stripe.SecretKey)
	issuer := payment.NewIssuer(campaignRepo, intentRepo, provider, lg)
	relay := payment.NewRelay(stripe.NewVerifier(cfg.Stripe.WebhookSecret), intentRepo, donationService, bus, lg)

	flow := checkout.NewFlow(campaignRepo, photoService, issuer, bus, checkout.Keys{
		PublishableKey: cfg.Stripe.PublishableKey,
		AnonKey:        cfg.Client.AnonKey,
	}, lg)

	raised := tally.New(campaignpostgres.RaisedStore{StatsRepository: statsRepo, CampaignRepository: campaignRepo}, bus, tally.Config{
		MaxWorkers:   cfg.Tally.MaxWorkers,
		JobQueueSize: cfg.Tally.JobQueueSize,
		JobTimeout:   cfg.Tally.JobTimeout,
	}, lg)

	bus.Subscribe(events.EventTypeDonationRecorded, raised.OnDonationRecorded)
	bus.Subscribe(events.EventTypeCampaignInvalidated, campaignService.OnCampaignInvalidated)

	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, sqlxDB.DB, rest.Handlers{
		Docs:     api.Handler(cfg.Server.BaseURL),
		Auth:     auth.NewMiddleware(base, verifier),
		Payment:  payment.NewHandler(base, issuer),
		Webhook:  payment.NewWebhookHandler(base, relay),
		Campaign: campaign.NewHandler(base, campaignService),
		Photo:    photo.NewHandler(base, photoService, cfg.Storage.MaxUploadMB),
		Donation: donation.NewHandler(base, donationService),
		Checkout: checkout.NewHandler(base, flow),
		Comment:  comment.NewHandler(base, commentService),
		HealthChecks: []rest.Check{
			{Name: "storage", Run: storage.Ping},
		},
	}, cfg.Server.AllowedOriginList(), lg)

	return &Dependencies{
		Config: cfg,
		DB:     sqlxDB,
		Bus:    bus,
		Tally:  raised,
		Router: router,
		Logger: lg,
	}, nil
}
