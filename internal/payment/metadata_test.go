package payment_test

import (
	stderrors "errors"

	"github.com/frahmantamala/photo-fundraising/internal/payment"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("IntentMetadata", func() {
	It("survives an encode/parse cycle", func() {
		in := payment.IntentMetadata{
			CampaignID: "3f6c1e2a-5b7d-4c8e-9f01-23456789abcd",
			DonorEmail: "donor@example.com",
			DonorName:  "Dana",
			PhotoIDs:   []string{"a", "b"},
		}

		out, err := payment.ParseIntentMetadata(in.Encode())

		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(in))
	})

	It("encodes photo ids as a JSON array string", func() {
		encoded := payment.IntentMetadata{CampaignID: "c"}.Encode()
		Expect(encoded["photoIds"]).To(Equal("[]"))
	})

	DescribeTable("declares malformed metadata",
		func(raw map[string]string) {
			_, err := payment.ParseIntentMetadata(raw)
			Expect(stderrors.Is(err, payment.ErrMalformedMetadata)).To(BeTrue())
		},
		Entry("nil map", nil),
		Entry("missing campaign", map[string]string{"donorEmail": "d@example.com"}),
		Entry("blank campaign", map[string]string{"campaignId": "  "}),
		Entry("photo ids not JSON", map[string]string{"campaignId": "c", "photoIds": "a,b"}),
		Entry("photo ids not strings", map[string]string{"campaignId": "c", "photoIds": "[1,2]"}),
		Entry("photo ids an object", map[string]string{"campaignId": "c", "photoIds": `{"a":1}`}),
	)

	It("treats absent or null photo ids as empty", func() {
		for _, raw := range []string{"", "null"} {
			out, err := payment.ParseIntentMetadata(map[string]string{"campaignId": "c", "photoIds": raw})
			Expect(err).NotTo(HaveOccurred())
			Expect(out.PhotoIDs).To(BeEmpty())
			Expect(out.PhotoIDs).NotTo(BeNil())
		}
	})
})
