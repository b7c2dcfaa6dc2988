package campaign

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("viewCache", func() {
	var (
		cache *viewCache
		clock time.Time
	)

	BeforeEach(func() {
		clock = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		cache = newViewCache(time.Minute)
		cache.now = func() time.Time { return clock }
	})

	It("serves a view until its ttl passes", func() {
		cache.put(CampaignResponse{Campaign: Campaign{ID: "c1", Title: "Harbour lights"}})

		view, ok := cache.get("c1")
		Expect(ok).To(BeTrue())
		Expect(view.Title).To(Equal("Harbour lights"))

		clock = clock.Add(2 * time.Minute)
		_, ok = cache.get("c1")
		Expect(ok).To(BeFalse())
	})

	It("evicts an expired entry when it is read", func() {
		cache.put(CampaignResponse{Campaign: Campaign{ID: "c1"}})
		clock = clock.Add(2 * time.Minute)

		_, _ = cache.get("c1")
		Expect(cache.len()).To(Equal(0))
	})

	It("sweeps expired entries nobody reads again", func() {
		for _, id := range []string{"c1", "c2", "c3"} {
			cache.put(CampaignResponse{Campaign: Campaign{ID: id}})
		}
		Expect(cache.len()).To(Equal(3))

		clock = clock.Add(2 * time.Minute)
		cache.put(CampaignResponse{Campaign: Campaign{ID: "c4"}})

		Expect(cache.len()).To(Equal(1))
		_, ok := cache.get("c4")
		Expect(ok).To(BeTrue())
	})

	It("stores nothing when caching is disabled", func() {
		off := newViewCache(0)
		off.put(CampaignResponse{Campaign: Campaign{ID: "c1"}})
		Expect(off.len()).To(Equal(0))
	})
})
