package photo_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	errors "github.com/frahmantamala/photo-fundraising/internal"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	"github.com/frahmantamala/photo-fundraising/internal/photo"
	"github.com/frahmantamala/photo-fundraising/internal/transport"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Service", func() {
	var (
		repo         *MockRepository
		storage      *MockStorage
		publisher    *RecordingPublisher
		service      *photo.Service
		campaign     *campaignmodel.Campaign
		photographer string
		organizerCtx context.Context
	)

	BeforeEach(func() {
		photographer = uuid.NewString()
		campaign = &campaignmodel.Campaign{
			ID:             uuid.NewString(),
			OrganizerID:    uuid.NewString(),
			PhotographerID: &photographer,
			Status:         campaignmodel.StatusActive,
		}
		repo = NewMockRepository()
		storage = NewMockStorage()
		publisher = &RecordingPublisher{}
		campaigns := &MockCampaigns{campaigns: map[string]*campaignmodel.Campaign{campaign.ID: campaign}}
		service = photo.NewService(repo, campaigns, storage, publisher, quietLogger())
		organizerCtx = errors.ContextWithViewer(context.Background(), &errors.Viewer{ID: campaign.OrganizerID})
	})

	upload := func(ctx context.Context) (*photo.Photo, error) {
		return service.Upload(ctx, campaign.ID, photo.UploadInput{
			Filename:    "finish.JPG",
			ContentType: "image/jpeg",
			Size:        5,
			Body:        strings.NewReader("bytes"),
			Tags:        []string{"finish", " finish ", "", "harbour"},
			BibNumber:   " 1042 ",
		})
	}

	Describe("Upload", func() {
		It("stores the object and records a pending photo", func() {
			p, err := upload(organizerCtx)

			Expect(err).NotTo(HaveOccurred())
			Expect(p.ModerationStatus).To(Equal(photo.ModerationPending))
			Expect(p.Tags).To(Equal([]string{"finish", "harbour"}))
			Expect(*p.BibNumber).To(Equal("1042"))
			Expect(p.URL).To(HavePrefix("https://cdn.example.com/campaigns/" + campaign.ID + "/"))
			Expect(p.URL).To(HaveSuffix(".jpg"))
			Expect(storage.objects).To(HaveLen(1))
		})

		It("lets the photographer upload", func() {
			ctx := errors.ContextWithViewer(context.Background(), &errors.Viewer{ID: photographer})
			_, err := upload(ctx)
			Expect(err).NotTo(HaveOccurred())
		})

		It("refuses other users", func() {
			ctx := errors.ContextWithViewer(context.Background(), &errors.Viewer{ID: uuid.NewString()})
			_, err := upload(ctx)
			Expect(err).To(MatchError(photo.ErrNotUploader))
			Expect(storage.objects).To(BeEmpty())
		})

		It("refuses non-images", func() {
			_, err := service.Upload(organizerCtx, campaign.ID, photo.UploadInput{
				Filename: "notes.txt", ContentType: "text/plain", Body: strings.NewReader("x"),
			})
			Expect(err).To(MatchError(photo.ErrNotAnImage))
		})

		It("removes the object when the row cannot be written", func() {
			repo.failError = stderrors.New("db down")

			_, err := upload(organizerCtx)

			Expect(errors.IsType(err, errors.ErrorTypeUpstreamFailure)).To(BeTrue())
			Expect(storage.deleted).To(HaveLen(1))
			Expect(storage.objects).To(BeEmpty())
		})

		It("reports storage failures as upstream errors", func() {
			storage.failError = errStorageDown
			_, err := upload(organizerCtx)
			appErr, ok := errors.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(errors.ErrCodeStorageFailed))
		})
	})

	Describe("Moderate", func() {
		It("approves a photo and invalidates the campaign view", func() {
			p := repo.Add(campaign.ID, photo.ModerationPending)

			got, err := service.Moderate(organizerCtx, p.ID, photo.ModerationApproved)

			Expect(err).NotTo(HaveOccurred())
			Expect(got.ModerationStatus).To(Equal(photo.ModerationApproved))
			Expect(publisher.Count()).To(Equal(1))
		})

		It("is reserved to the organizer", func() {
			p := repo.Add(campaign.ID, photo.ModerationPending)
			ctx := errors.ContextWithViewer(context.Background(), &errors.Viewer{ID: photographer})

			_, err := service.Moderate(ctx, p.ID, photo.ModerationApproved)

			Expect(err).To(MatchError(errors.ErrNotCampaignOwner))
		})

		It("rejects unknown decisions", func() {
			p := repo.Add(campaign.ID, photo.ModerationPending)
			_, err := service.Moderate(organizerCtx, p.ID, "maybe")
			Expect(errors.IsType(err, errors.ErrorTypeInvalidRequest)).To(BeTrue())
		})
	})

	Describe("listing", func() {
		It("shows only approved photos publicly", func() {
			approved := repo.Add(campaign.ID, photo.ModerationApproved)
			repo.Add(campaign.ID, photo.ModerationPending)
			repo.Add(campaign.ID, photo.ModerationRejected)

			photos, err := service.ListApproved(context.Background(), campaign.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(photos).To(HaveLen(1))
			Expect(photos[0].ID).To(Equal(approved.ID))

			all, err := service.ListForModeration(organizerCtx, campaign.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
		})

		It("returns only approved photos of the campaign for checkout", func() {
			approved := repo.Add(campaign.ID, photo.ModerationApproved)
			pending := repo.Add(campaign.ID, photo.ModerationPending)
			foreign := repo.Add(uuid.NewString(), photo.ModerationApproved)

			photos, err := service.ApprovedPhotos(context.Background(), campaign.ID,
				[]string{approved.ID, pending.ID, foreign.ID, "junk"})

			Expect(err).NotTo(HaveOccurred())
			Expect(photos).To(HaveLen(1))
			Expect(photos[0].ID).To(Equal(approved.ID))
		})
	})
})

var _ = Describe("S3Storage", func() {
	It("puts the object and returns the bucket URL", func() {
		api := &FakeObjectAPI{}
		storage := photo.NewS3StorageWithClient(api, "campaign-photos", "us-east-1", "")

		url, err := storage.Put(context.Background(), "campaigns/c/p.jpg", strings.NewReader("x"), 1, "image/jpeg")

		Expect(err).NotTo(HaveOccurred())
		Expect(url).To(Equal("https://campaign-photos.s3.us-east-1.amazonaws.com/campaigns/c/p.jpg"))
		Expect(api.puts).To(HaveLen(1))
		Expect(aws.ToString(api.puts[0].Bucket)).To(Equal("campaign-photos"))
		Expect(aws.ToString(api.puts[0].ContentType)).To(Equal("image/jpeg"))
	})

	It("prefers the public base URL", func() {
		storage := photo.NewS3StorageWithClient(&FakeObjectAPI{}, "campaign-photos", "us-east-1", "https://cdn.example.com/")
		Expect(storage.URL("a/b.jpg")).To(Equal("https://cdn.example.com/a/b.jpg"))
	})

	It("pings the bucket", func() {
		Expect(photo.NewS3StorageWithClient(&FakeObjectAPI{}, "b", "us-east-1", "").Ping(context.Background())).To(Succeed())
		err := photo.NewS3StorageWithClient(&FakeObjectAPI{failErr: errStorageDown}, "b", "us-east-1", "").Ping(context.Background())
		Expect(err).To(MatchError(ContainSubstring("bucket b unreachable")))
	})

	It("wraps upload failures", func() {
		storage := photo.NewS3StorageWithClient(&FakeObjectAPI{failErr: errStorageDown}, "b", "us-east-1", "")
		_, err := storage.Put(context.Background(), "k", strings.NewReader("x"), 1, "image/png")
		Expect(err).To(MatchError(ContainSubstring("storage down")))
	})
})

var _ = Describe("Handler", func() {
	var (
		campaign *campaignmodel.Campaign
		storage  *MockStorage
		router   chi.Router
	)

	BeforeEach(func() {
		campaign = &campaignmodel.Campaign{ID: uuid.NewString(), OrganizerID: uuid.NewString()}
		storage = NewMockStorage()
		service := photo.NewService(NewMockRepository(),
			&MockCampaigns{campaigns: map[string]*campaignmodel.Campaign{campaign.ID: campaign}},
			storage, nil, quietLogger())
		handler := photo.NewHandler(transport.NewBaseHandler(quietLogger()), service, 1)

		router = chi.NewRouter()
		router.Post("/api/v1/campaigns/{id}/photos", func(w http.ResponseWriter, r *http.Request) {
			ctx := errors.ContextWithViewer(r.Context(), &errors.Viewer{ID: campaign.OrganizerID})
			handler.UploadPhoto(w, r.WithContext(ctx))
		})
	})

	It("accepts a multipart upload", func() {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Disposition": {`form-data; name="file"; filename="finish.png"`},
			"Content-Type":        {"image/png"},
		})
		Expect(err).NotTo(HaveOccurred())
		_, _ = part.Write([]byte("png-bytes"))
		Expect(mw.WriteField("tags", "finish,harbour")).To(Succeed())
		Expect(mw.WriteField("width", "1200")).To(Succeed())
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/"+campaign.ID+"/photos", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusCreated))
		Expect(rec.Body.String()).To(ContainSubstring(`"moderation_status":"pending"`))
		Expect(rec.Body.String()).To(ContainSubstring(`"width":1200`))
	})

	It("requires a file part", func() {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		Expect(mw.WriteField("tags", "finish")).To(Succeed())
		Expect(mw.Close()).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/campaigns/"+campaign.ID+"/photos", body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})
})
