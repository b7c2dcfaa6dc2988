package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/frahmantamala/photo-fundraising/internal"
	"github.com/frahmantamala/photo-fundraising/internal/auth"
	campaignmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/campaign"
	commentmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/comment"
	donationmodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/donation"
	"github.com/frahmantamala/photo-fundraising/internal/core/datamodel/paymentintent"
	photomodel "github.com/frahmantamala/photo-fundraising/internal/core/datamodel/photo"
	"github.com/frahmantamala/photo-fundraising/pkg/logger"
	"github.com/spf13/cobra"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Fixed ids so a reseed produces the same demo accounts.
const (
	demoOrganizerID    = "0b0e6c0a-1f2d-4c3b-9a8e-7d6f5e4c3b2a"
	demoPhotographerID = "1c1f7d1b-2a3e-4d4c-8b9f-8e7a6f5d4c3b"
)

var clearData bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed a demo campaign with approved photos",
	Long:  `Insert a demo organizer campaign with a few approved photos and print bearer tokens for the demo accounts`,
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Clear existing data before seeding")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(configPath, internal.SectionDatabase, internal.SectionAuth)
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	sqlxDB, gormDB, err := openDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer sqlxDB.Close()

	err = gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if clearData {
			if err := clearDemoData(tx); err != nil {
				return err
			}
		}
		return seedDemoCampaign(tx)
	})
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	lg.Info("demo data seeded", "organizer_id", demoOrganizerID, "photographer_id", demoPhotographerID)

	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	for name, id := range map[string]string{"organizer": demoOrganizerID, "photographer": demoPhotographerID} {
		token, err := verifier.Sign(id, name+"@example.com", 24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s token: %s\n", name, token)
	}
	return nil
}

func clearDemoData(tx *gorm.DB) error {
	for _, model := range []interface{}{
		&commentmodel.Comment{},
		&donationmodel.Donation{},
		&paymentintent.PaymentIntent{},
		&photomodel.Photo{},
		&campaignmodel.Campaign{},
	} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedDemoCampaign(tx *gorm.DB) error {
	photographer := demoPhotographerID
	cause := "health"
	charity := "Harbour Children's Hospital"
	eventDate := time.Now().AddDate(0, 0, -3).Truncate(24 * time.Hour)

	c := &campaignmodel.Campaign{
		Title:           "Harbour 10K Fun Run",
		Description:     "Race day photos from the Harbour 10K. Every download funds the children's ward.",
		CauseType:       &cause,
		CharityName:     &charity,
		EventDate:       &eventDate,
		GoalAmount:      2500,
		PhotographerID:  &photographer,
		OrganizerID:     demoOrganizerID,
		Visibility:      campaignmodel.VisibilityPublic,
		Status:          campaignmodel.StatusActive,
		PhotoPrice:      5,
		PlatformFee:     10,
		PhotographerFee: 20,
		CharityFee:      70,
	}
	if err := tx.Create(c).Error; err != nil {
		return err
	}

	for i, tags := range [][]string{{"start", "crowd"}, {"finish"}, {"finish", "podium"}} {
		bib := fmt.Sprintf("%d", 1040+i)
		p := &photomodel.Photo{
			CampaignID:       c.ID,
			URL:              fmt.Sprintf("https://picsum.photos/seed/harbour-%d/1600/1067", i+1),
			Filename:         fmt.Sprintf("harbour-%d.jpg", i+1),
			Width:            1600,
			Height:           1067,
			UploadedBy:       demoPhotographerID,
			ModerationStatus: photomodel.ModerationApproved,
			Tags:             datatypes.NewJSONSlice(tags),
			BibNumber:        &bib,
		}
		if err := tx.Create(p).Error; err != nil {
			return err
		}
	}

	organizer := "Demo Organizer"
	update := &commentmodel.Comment{
		CampaignID: c.ID,
		UserID:     demoOrganizerID,
		AuthorName: &organizer,
		Content:    "Race photos are up. Find yours by bib number.",
		IsUpdate:   true,
	}
	if err := tx.Create(update).Error; err != nil {
		return err
	}

	return tx.Model(c).Update("photo_count", 3).Error
}
