package payment_test

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	errors "github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/core/datamodel/paymentintent"
	"github.com/frahmantamala/photo-fundraising/internal/core/events"
	"github.com/frahmantamala/photo-fundraising/internal/core/money"
	"github.com/frahmantamala/photo-fundraising/internal/donation"
	"github.com/frahmantamala/photo-fundraising/internal/payment"
	stripeprovider "github.com/frahmantamala/photo-fundraising/internal/payment/stripe"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Relay", func() {
	const (
		campaignID = "3f6c1e2a-5b7d-4c8e-9f01-23456789abcd"
		intentID   = "pi_3Pabc123"
	)

	var (
		repo      *MockIntentRepository
		ledger    *MemoryDonations
		publisher *RecordingPublisher
		relay     *payment.Relay
		ctx       context.Context
		metadata  map[string]string
	)

	BeforeEach(func() {
		repo = NewMockIntentRepository()
		ledger = &MemoryDonations{}
		publisher = &RecordingPublisher{}
		donations := donation.NewService(ledger, nil, quietLogger())
		relay = payment.NewRelay(stripeprovider.NewVerifier(webhookSecret), repo, donations, publisher, quietLogger())
		ctx = context.Background()
		metadata = payment.IntentMetadata{
			CampaignID: campaignID,
			DonorEmail: "donor@example.com",
			DonorName:  "Dana Donor",
			PhotoIDs:   []string{"1b4e28ba-2fa1-41d2-883f-0016d3cca427"},
		}.Encode()
	})

	deliver := func(payload []byte) (payment.Ack, error) {
		return relay.HandleWebhook(ctx, payload, sign(payload, webhookSecret))
	}

	Context("signature verification", func() {
		It("rejects a payload signed with another secret and writes nothing", func() {
			payload := intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata)

			_, err := relay.HandleWebhook(ctx, payload, sign(payload, "whsec_attacker"))

			Expect(errors.IsType(err, errors.ErrorTypeSignatureInvalid)).To(BeTrue())
			Expect(ledger.All()).To(BeEmpty())
			Expect(publisher.Types()).To(BeEmpty())
		})

		It("rejects a missing signature header", func() {
			payload := intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata)

			_, err := relay.HandleWebhook(ctx, payload, "")

			Expect(errors.IsType(err, errors.ErrorTypeSignatureInvalid)).To(BeTrue())
			Expect(ledger.All()).To(BeEmpty())
		})

		It("rejects a payload altered after signing", func() {
			payload := intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata)
			header := sign(payload, webhookSecret)
			tampered := intentEvent(payment.EventIntentSucceeded, intentID, 999999, metadata)

			_, err := relay.HandleWebhook(ctx, tampered, header)

			Expect(errors.IsType(err, errors.ErrorTypeSignatureInvalid)).To(BeTrue())
			Expect(ledger.All()).To(BeEmpty())
		})
	})

	Context("payment_intent.succeeded", func() {
		It("records exactly one donation in major units", func() {
			ack, err := deliver(intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata))

			Expect(err).NotTo(HaveOccurred())
			Expect(ack.Received).To(BeTrue())

			rows := ledger.All()
			Expect(rows).To(HaveLen(1))
			Expect(rows[0].Amount).To(Equal(25.50))
			Expect(rows[0].CampaignID).To(Equal(campaignID))
			Expect(rows[0].DonorEmail).To(Equal("donor@example.com"))
			Expect(rows[0].StripePaymentID).To(Equal(intentID))
			Expect([]string(rows[0].PhotoIDs)).To(ConsistOf("1b4e28ba-2fa1-41d2-883f-0016d3cca427"))
		})

		It("records a redelivered event only once", func() {
			payload := intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata)

			for i := 0; i < 3; i++ {
				ack, err := deliver(payload)
				Expect(err).NotTo(HaveOccurred())
				Expect(ack.Received).To(BeTrue())
			}

			Expect(ledger.All()).To(HaveLen(1))
			Expect(publisher.Types()).To(Equal([]string{
				events.EventTypeDonationRecorded,
				events.EventTypeCampaignInvalidated,
			}))
		})

		It("defaults photo ids to an empty list", func() {
			delete(metadata, "photoIds")

			_, err := deliver(intentEvent(payment.EventIntentSucceeded, intentID, 1000, metadata))

			Expect(err).NotTo(HaveOccurred())
			Expect(ledger.All()[0].PhotoIDs).To(BeEmpty())
		})

		It("marks the pending record as succeeded", func() {
			Expect(repo.Create(ctx, &paymentintent.PaymentIntent{
				StripePaymentIntentID: intentID,
				CampaignID:            campaignID,
				Amount:                25.50,
				Status:                paymentintent.StatusRequiresPaymentMethod,
			})).To(Succeed())

			_, err := deliver(intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Status(intentID)).To(Equal(paymentintent.StatusSucceeded))
		})

		It("records the provider-confirmed amount when it differs from the request", func() {
			Expect(repo.Create(ctx, &paymentintent.PaymentIntent{
				StripePaymentIntentID: intentID,
				CampaignID:            campaignID,
				Amount:                20,
				Status:                paymentintent.StatusProcessing,
			})).To(Succeed())

			_, err := deliver(intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata))

			Expect(err).NotTo(HaveOccurred())
			Expect(ledger.All()[0].Amount).To(Equal(25.50))
		})

		It("acknowledges but drops events without a campaign id", func() {
			delete(metadata, "campaignId")

			ack, err := deliver(intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata))

			Expect(err).NotTo(HaveOccurred())
			Expect(ack.Received).To(BeTrue())
			Expect(ledger.All()).To(BeEmpty())
		})

		It("acknowledges but drops events with malformed photo ids", func() {
			metadata["photoIds"] = "not-json"

			ack, err := deliver(intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata))

			Expect(err).NotTo(HaveOccurred())
			Expect(ack.Received).To(BeTrue())
			Expect(ledger.All()).To(BeEmpty())
		})

		It("does not acknowledge when the donation cannot be written", func() {
			ledger.failError = stderrors.New("connection refused")

			ack, err := deliver(intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata))

			Expect(err).To(HaveOccurred())
			Expect(errors.IsType(err, errors.ErrorTypeUpstreamFailure)).To(BeTrue())
			Expect(ack.Received).To(BeFalse())

			By("recording it when the provider redelivers")
			ledger.failError = nil
			ack, err = deliver(intentEvent(payment.EventIntentSucceeded, intentID, 2550, metadata))
			Expect(err).NotTo(HaveOccurred())
			Expect(ack.Received).To(BeTrue())
			Expect(ledger.All()).To(HaveLen(1))
		})
	})

	Context("other event types", func() {
		DescribeTable("write nothing and still acknowledge",
			func(eventType string) {
				ack, err := deliver(intentEvent(eventType, intentID, 2550, metadata))

				Expect(err).NotTo(HaveOccurred())
				Expect(ack.Received).To(BeTrue())
				Expect(ledger.All()).To(BeEmpty())
				Expect(publisher.Types()).To(BeEmpty())
			},
			Entry("created", "payment_intent.created"),
			Entry("processing", "payment_intent.processing"),
			Entry("failed", payment.EventIntentPaymentFailed),
			Entry("canceled", payment.EventIntentCanceled),
			Entry("charge", "charge.succeeded"),
		)

		It("mirrors a failure onto the pending record", func() {
			Expect(repo.Create(ctx, &paymentintent.PaymentIntent{
				StripePaymentIntentID: intentID,
				Status:                paymentintent.StatusProcessing,
			})).To(Succeed())

			_, err := deliver(intentEvent(payment.EventIntentPaymentFailed, intentID, 2550, metadata))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Status(intentID)).To(Equal(paymentintent.StatusFailed))
		})

		It("never downgrades a succeeded record", func() {
			Expect(repo.Create(ctx, &paymentintent.PaymentIntent{
				StripePaymentIntentID: intentID,
				Status:                paymentintent.StatusSucceeded,
			})).To(Succeed())

			_, err := deliver(intentEvent(payment.EventIntentCanceled, intentID, 2550, metadata))

			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Status(intentID)).To(Equal(paymentintent.StatusSucceeded))
		})
	})

	It("round-trips every two-decimal amount between issuer and relay", func() {
		for cents := int64(1); cents <= 1000000; cents += 997 {
			amount := float64(cents) / 100
			minor := money.ToMinor(amount)
			Expect(minor).To(Equal(cents))
			Expect(money.ToMajor(minor)).To(Equal(amount))
		}
	})
})

var _ = Describe("Reconciler", func() {
	var (
		campaigns  *MockCampaigns
		repo       *MockIntentRepository
		provider   *MockProvider
		ledger     *MemoryDonations
		relay      *payment.Relay
		reconciler *payment.Reconciler
		ctx        context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		campaigns = NewMockCampaigns()
		repo = NewMockIntentRepository()
		provider = NewMockProvider()
		ledger = &MemoryDonations{}
		donations := donation.NewService(ledger, nil, quietLogger())
		relay = payment.NewRelay(stripeprovider.NewVerifier(webhookSecret), repo, donations, &RecordingPublisher{}, quietLogger())
		reconciler = payment.NewReconciler(repo, provider, relay, quietLogger())
	})

	issue := func() *payment.IntentResult {
		c := campaigns.Add("active")
		issuer := payment.NewIssuer(campaigns, repo, provider, quietLogger())
		result, err := issuer.CreatePaymentIntent(ctx, payment.CreatePaymentIntentRequest{
			CampaignID: c.ID,
			Amount:     12.34,
			DonorEmail: "donor@example.com",
		})
		Expect(err).NotTo(HaveOccurred())
		return result
	}

	It("records donations for intents the webhook missed", func() {
		result := issue()
		provider.intents[result.ID].Status = paymentintent.StatusSucceeded

		report, err := reconciler.Run(ctx, -time.Minute, 10)

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Checked).To(Equal(1))
		Expect(report.Recorded).To(Equal(1))
		Expect(ledger.All()).To(HaveLen(1))
		Expect(ledger.All()[0].Amount).To(Equal(12.34))
		Expect(repo.Status(result.ID)).To(Equal(paymentintent.StatusSucceeded))

		By("finding nothing left on the next run")
		report, err = reconciler.Run(ctx, -time.Minute, 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(report.Checked).To(BeZero())
	})

	It("mirrors cancellations", func() {
		result := issue()
		provider.intents[result.ID].Status = paymentintent.StatusCanceled

		report, err := reconciler.Run(ctx, -time.Minute, 10)

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Canceled).To(Equal(1))
		Expect(repo.Status(result.ID)).To(Equal(paymentintent.StatusCanceled))
		Expect(ledger.All()).To(BeEmpty())
	})

	It("leaves recent intents alone", func() {
		issue()

		report, err := reconciler.Run(ctx, time.Hour, 10)

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Checked).To(BeZero())
	})

	It("reaches newer intents when more stale intents stay pending than one run checks", func() {
		c := campaigns.Add("active")
		meta := payment.IntentMetadata{CampaignID: c.ID, DonorEmail: "donor@example.com"}.Encode()
		seed := func(id, status string, createdAt time.Time) {
			Expect(repo.Create(ctx, &paymentintent.PaymentIntent{
				StripePaymentIntentID: id,
				CampaignID:            c.ID,
				Amount:                10,
				Currency:              "usd",
				Status:                paymentintent.StatusRequiresPaymentMethod,
				DonorEmail:            "donor@example.com",
				CreatedAt:             createdAt,
			})).To(Succeed())
			provider.intents[id] = &payment.ProviderIntent{ID: id, AmountMinor: 1000, Currency: "usd", Status: status, Metadata: meta}
		}

		now := time.Now()
		for i := 0; i < 3; i++ {
			seed(fmt.Sprintf("pi_abandoned_%d", i), paymentintent.StatusRequiresPaymentMethod, now.Add(-time.Duration(5+i)*time.Hour))
		}
		seed("pi_missed", paymentintent.StatusSucceeded, now.Add(-2*time.Hour))

		first, err := reconciler.Run(ctx, time.Hour, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Unchanged).To(Equal(3))
		Expect(ledger.All()).To(BeEmpty())

		second, err := reconciler.Run(ctx, time.Hour, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Recorded).To(Equal(1))
		Expect(ledger.All()).To(HaveLen(1))
		Expect(ledger.All()[0].StripePaymentID).To(Equal("pi_missed"))
		Expect(repo.Status("pi_missed")).To(Equal(paymentintent.StatusSucceeded))
	})

	It("counts provider failures and keeps going", func() {
		issue()
		provider.failError = stderrors.New("rate limited")

		report, err := reconciler.Run(ctx, -time.Minute, 10)

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Failed).To(Equal(1))
	})
})
