package payment_test

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"

	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/donation"
	"github.com/frahmantamala/photo-fundraising/internal/payment"
	stripeprovider "github.com/frahmantamala/photo-fundraising/internal/payment/stripe"
	"github.com/frahmantamala/photo-fundraising/internal/transport"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Payment Handlers", func() {
	var (
		campaigns *MockCampaigns
		repo      *MockIntentRepository
		provider  *MockProvider
		ledger    *MemoryDonations
		handler   *payment.Handler
		webhooks  *payment.WebhookHandler
		active    *campaignmodel.Campaign
	)

	BeforeEach(func() {
		campaigns = NewMockCampaigns()
		repo = NewMockIntentRepository()
		provider = NewMockProvider()
		ledger = &MemoryDonations{}
		active = campaigns.Add(campaignmodel.StatusActive)

		base := transport.NewBaseHandler(quietLogger())
		handler = payment.NewHandler(base, payment.NewIssuer(campaigns, repo, provider, quietLogger()))

		donations := donation.NewService(ledger, nil, quietLogger())
		relay := payment.NewRelay(stripeprovider.NewVerifier(webhookSecret), repo, donations, &RecordingPublisher{}, quietLogger())
		webhooks = payment.NewWebhookHandler(base, relay)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/create-payment-intent", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.CreatePaymentIntent(w, req)
		return w
	}

	errorOf := func(w *httptest.ResponseRecorder) string {
		var body map[string]string
		Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
		return body["error"]
	}

	Describe("POST /create-payment-intent", func() {
		It("returns the client secret for a valid request", func() {
			w := post(`{"campaignId":"` + active.ID + `","amount":25.5,"donorEmail":"donor@example.com","photoIds":[]}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			var body payment.IntentResult
			Expect(json.NewDecoder(w.Body).Decode(&body)).To(Succeed())
			Expect(body.ClientSecret).To(Equal(provider.intents[body.ID].ClientSecret))
			Expect(body.Amount).To(Equal(25.5))
			Expect(body.Currency).To(Equal("usd"))
		})

		It("answers 400 with a flat error for missing fields", func() {
			w := post(`{"amount":10}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorOf(w)).To(Equal("Missing required payment data"))
		})

		It("answers 400 for an unknown campaign", func() {
			w := post(`{"campaignId":"9b2f0c1e-1234-4abc-9def-0123456789ab","amount":10,"donorEmail":"donor@example.com"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorOf(w)).To(Equal("campaign not found"))
		})

		It("answers 400 for an inactive campaign", func() {
			paused := campaigns.Add(campaignmodel.StatusPaused)
			w := post(`{"campaignId":"` + paused.ID + `","amount":10,"donorEmail":"donor@example.com"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorOf(w)).To(Equal("campaign is not active"))
		})

		It("answers 400 for a body that is not JSON", func() {
			w := post(`campaignId=1`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(errorOf(w)).To(Equal("invalid request body"))
		})

		It("answers 502 when the provider fails", func() {
			provider.failError = stderrors.New("api down")
			w := post(`{"campaignId":"` + active.ID + `","amount":10,"donorEmail":"donor@example.com"}`)

			Expect(w.Code).To(Equal(http.StatusBadGateway))
			Expect(errorOf(w)).NotTo(ContainSubstring("api down"))
		})
	})

	Describe("POST /stripe-webhook", func() {
		deliver := func(payload []byte, signature string) *httptest.ResponseRecorder {
			req := httptest.NewRequest(http.MethodPost, "/stripe-webhook", bytes.NewReader(payload))
			req.Header.Set(payment.SignatureHeader, signature)
			w := httptest.NewRecorder()
			webhooks.HandleStripeWebhook(w, req)
			return w
		}

		It("acknowledges a verified event with {received:true}", func() {
			payload := intentEvent(payment.EventIntentSucceeded, "pi_handler", 2550, payment.IntentMetadata{
				CampaignID: active.ID,
				DonorEmail: "donor@example.com",
			}.Encode())

			w := deliver(payload, sign(payload, webhookSecret))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(MatchJSON(`{"received":true}`))
			Expect(ledger.All()).To(HaveLen(1))
		})

		It("answers 400 on a bad signature", func() {
			payload := intentEvent(payment.EventIntentSucceeded, "pi_handler", 2550, nil)

			w := deliver(payload, "t=1,v1=deadbeef")

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Header().Get("Content-Type")).To(HavePrefix("application/json"))
			Expect(w.Body.String()).To(MatchJSON(`{"error":"Webhook signature verification failed"}`))
			Expect(ledger.All()).To(BeEmpty())
		})

		It("answers 500 so the provider retries when the ledger is down", func() {
			ledger.failError = stderrors.New("db down")
			payload := intentEvent(payment.EventIntentSucceeded, "pi_handler", 2550, payment.IntentMetadata{
				CampaignID: active.ID,
				DonorEmail: "donor@example.com",
			}.Encode())

			w := deliver(payload, sign(payload, webhookSecret))

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})

		It("rejects oversized bodies", func() {
			payload := bytes.Repeat([]byte("a"), payment.MaxWebhookBody+1)

			w := deliver(payload, sign(payload, webhookSecret))

			Expect(w.Code).To(Equal(http.StatusRequestEntityTooLarge))
		})
	})
})
