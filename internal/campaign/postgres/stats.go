package postgres

import (
	"context"
	"fmt"

	"github.com/frahmantamala/photo-fundraising/internal/campaign"
	"github.com/jmoiron/sqlx"
)

// StatsRepository is the read model behind campaign totals. It queries the
// donations and photos tables directly instead of loading rows.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type statsRow struct {
	CampaignID string `db:"campaign_id"`
	campaign.Stats
}

const statsQuery = `
SELECT c.id AS campaign_id,
       COALESCE((SELECT SUM(d.amount) FROM donations d WHERE d.campaign_id = c.id), 0) AS total_donations,
       (SELECT COUNT(*) FROM donations d WHERE d.campaign_id = c.id) AS donation_count,
       (SELECT COUNT(DISTINCT NULLIF(LOWER(d.donor_email), '')) FROM donations d WHERE d.campaign_id = c.id) AS donor_count,
       (SELECT COUNT(*) FROM photos p WHERE p.campaign_id = c.id AND p.moderation_status = 'approved') AS approved_photos
FROM campaigns c
WHERE c.id IN (?)`

// StatsFor returns aggregates keyed by campaign id. Unknown ids are absent.
func (r *StatsRepository) StatsFor(ctx context.Context, campaignIDs []string) (map[string]campaign.Stats, error) {
	out := make(map[string]campaign.Stats, len(campaignIDs))
	if len(campaignIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(statsQuery, campaignIDs)
	if err != nil {
		return nil, fmt.Errorf("build stats query: %w", err)
	}

	var rows []statsRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("query campaign stats: %w", err)
	}
	for _, row := range rows {
		out[row.CampaignID] = row.Stats
	}
	return out, nil
}

// SumDonations is the authoritative raised amount of a campaign.
func (r *StatsRepository) SumDonations(ctx context.Context, campaignID string) (float64, error) {
	var total float64
	query := r.db.Rebind(`SELECT COALESCE(SUM(amount), 0) FROM donations WHERE campaign_id = ?`)
	if err := r.db.GetContext(ctx, &total, query, campaignID); err != nil {
		return 0, fmt.Errorf("sum donations: %w", err)
	}
	return total, nil
}

// RaisedStore pairs the ledger sum with the campaign row update for the
// raised-amount tally.
type RaisedStore struct {
	*StatsRepository
	*CampaignRepository
}
