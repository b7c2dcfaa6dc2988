package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/photo-fundraising/internal"
	campaignpostgres "github.com/frahmantamala/photo-fundraising/internal/campaign/postgres"
	"github.com/frahmantamala/photo-fundraising/internal/campaign/tally"
	"github.com/frahmantamala/photo-fundraising/internal/core/events"
	"github.com/frahmantamala/photo-fundraising/internal/donation"
	donationpostgres "github.com/frahmantamala/photo-fundraising/internal/donation/postgres"
	"github.com/frahmantamala/photo-fundraising/internal/payment"
	paymentpostgres "github.com/frahmantamala/photo-fundraising/internal/payment/postgres"
	"github.com/frahmantamala/photo-fundraising/internal/payment/stripe"
	"github.com/frahmantamala/photo-fundraising/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	reconcileOlderThan time.Duration
	reconcileLimit     int
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Settle payment intents the webhook never confirmed",
	Long: `Ask Stripe about local payment intents still pending after --older-than
and apply what it reports: record donations for succeeded intents and mirror
failed or canceled ones.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().DurationVar(&reconcileOlderThan, "older-than", time.Hour, "only revisit intents created before now minus this")
	reconcileCmd.Flags().IntVar(&reconcileLimit, "limit", 100, "maximum number of intents to revisit")
}

func runReconcile(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(configPath, internal.SectionDatabase, internal.SectionStripeAPI)
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	sqlxDB, gormDB, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer sqlxDB.Close()

	bus := events.NewEventBus(lg)
	campaignRepo := campaignpostgres.NewCampaignRepository(gormDB)
	raised := tally.New(campaignpostgres.RaisedStore{
		StatsRepository:    campaignpostgres.NewStatsRepository(sqlxDB),
		CampaignRepository: campaignRepo,
	}, nil, tally.Config{MaxWorkers: 1, JobQueueSize: reconcileLimit, JobTimeout: cfg.Tally.JobTimeout}, lg)
	defer raised.Shutdown()

	touched := newCampaignSet()
	bus.Subscribe(events.EventTypeDonationRecorded, func(_ context.Context, event events.Event) error {
		if e, ok := event.(*events.DonationRecordedEvent); ok {
			touched.add(e.CampaignID)
		}
		return nil
	})

	intentRepo := paymentpostgres.NewPaymentIntentRepository(gormDB)
	donations := donation.NewService(donationpostgres.NewDonationRepository(gormDB), campaignRepo, lg)
	relay := payment.NewRelay(stripe.NewVerifier(cfg.Stripe.WebhookSecret), intentRepo, donations, bus, lg)
	reconciler := payment.NewReconciler(intentRepo, stripe.NewProvider(cfg.Stripe.SecretKey), relay, lg)

	report, err := reconciler.Run(ctx, reconcileOlderThan, reconcileLimit)
	bus.Wait()
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}

	recomputeRaised(ctx, raised, touched.list(), lg)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
