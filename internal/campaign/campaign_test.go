package campaign_test

import (
	"github.com/frahmantamala/photo-fundraising/internal/campaign"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Campaign", func() {
	DescribeTable("status transitions",
		func(from, to string, allowed bool) {
			c := &campaign.Campaign{Status: from}
			Expect(c.CanTransitionTo(to)).To(Equal(allowed))
		},
		Entry("draft to active", campaign.StatusDraft, campaign.StatusActive, true),
		Entry("draft to completed", campaign.StatusDraft, campaign.StatusCompleted, false),
		Entry("active to paused", campaign.StatusActive, campaign.StatusPaused, true),
		Entry("paused to active", campaign.StatusPaused, campaign.StatusActive, true),
		Entry("paused to completed", campaign.StatusPaused, campaign.StatusCompleted, true),
		Entry("completed to active", campaign.StatusCompleted, campaign.StatusActive, false),
		Entry("active to draft", campaign.StatusActive, campaign.StatusDraft, false),
		Entry("unchanged", campaign.StatusCompleted, campaign.StatusCompleted, true),
	)

	DescribeTable("fee split",
		func(platform, photographer, charity float64, valid bool) {
			err := campaign.ValidateFeeSplit(platform, photographer, charity)
			if valid {
				Expect(err).NotTo(HaveOccurred())
			} else {
				Expect(err).To(MatchError(campaign.ErrInvalidFeeSplit))
			}
		},
		Entry("defaults", 10.0, 20.0, 70.0, true),
		Entry("all to charity", 0.0, 0.0, 100.0, true),
		Entry("fractional", 7.5, 22.5, 70.0, true),
		Entry("under 100", 10.0, 20.0, 60.0, false),
		Entry("over 100", 10.0, 30.0, 70.0, false),
		Entry("negative share", -10.0, 40.0, 70.0, false),
	)

	It("treats organizer and photographer as participants", func() {
		photographer := "photographer-1"
		c := &campaign.Campaign{OrganizerID: "organizer-1", PhotographerID: &photographer}

		Expect(c.IsOwnedBy("organizer-1")).To(BeTrue())
		Expect(c.IsOwnedBy("photographer-1")).To(BeFalse())
		Expect(c.IsParticipant("photographer-1")).To(BeTrue())
		Expect(c.IsParticipant("donor-1")).To(BeFalse())
		Expect(c.IsParticipant("")).To(BeFalse())
	})

	It("is payable only while active", func() {
		Expect((&campaign.Campaign{Status: campaign.StatusActive}).IsPayable()).To(BeTrue())
		Expect((&campaign.Campaign{Status: campaign.StatusPaused}).IsPayable()).To(BeFalse())
		Expect((&campaign.Campaign{Status: campaign.StatusDraft}).IsPayable()).To(BeFalse())
	})

	It("falls back to the default photo price", func() {
		Expect((&campaign.Campaign{}).UnitPhotoPrice()).To(Equal(campaign.DefaultPhotoPrice))
		Expect((&campaign.Campaign{PhotoPrice: 8}).UnitPhotoPrice()).To(Equal(8.0))
	})
})
