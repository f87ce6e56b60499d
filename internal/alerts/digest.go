package alerts

import (
	"context"
	"fmt"
	"log/slog"

	"lmia/compare-service/internal/jobs"
	"lmia/compare-service/internal/notify"
)

// QueryProvider is the slice of the dataset provider the digest needs.
type QueryProvider interface {
	Query(ctx context.Context, req jobs.QueryRequest) (*jobs.QueryResult, error)
}

// Digest evaluates the persisted daily/weekly alerts against both datasets
// and notifies users whose criteria match postings. Instant alerts are out
// of scope here; those fire on the ingestion path, not on a timer.
type Digest struct {
	store    Store
	provider QueryProvider
	notifier notify.Notifier
}

// NewDigest constructs a Digest.
func NewDigest(store Store, provider QueryProvider, notifier notify.Notifier) *Digest {
	return &Digest{store: store, provider: provider, notifier: notifier}
}

// Run evaluates every active alert once. Per-alert failures are logged and
// skipped so one bad alert cannot stall the cycle.
func (d *Digest) Run(ctx context.Context) error {
	active, err := d.store.Active(ctx)
	if err != nil {
		return fmt.Errorf("load active alerts: %w", err)
	}
	if len(active) == 0 {
		slog.Info("digest cycle: no active alerts")
		return nil
	}

	slog.Info("digest cycle started", "alerts", len(active))
	for _, a := range active {
		matches, err := d.evaluate(ctx, a.Criteria)
		if err != nil {
			slog.Warn("alert evaluation failed", "alertId", a.ID, "err", err)
			continue
		}
		if matches == 0 {
			continue
		}
		d.notifier.Notify(ctx, a.UserID, notify.Notification{
			Title:       fmt.Sprintf("%d postings match %q", matches, a.Name),
			Description: "Open your alerts to review new matches.",
			Variant:     notify.VariantDefault,
		})
	}
	slog.Info("digest cycle complete")
	return nil
}

// evaluate counts postings matching the criteria across both datasets.
// Each (title × dataset) pair runs its own query; the raw location variant
// cannot map to a column so those alerts match on title alone.
func (d *Digest) evaluate(ctx context.Context, c Criteria) (int, error) {
	titles := c.Titles
	if len(titles) == 0 {
		titles = []string{""}
	}

	total := 0
	for _, dataset := range []string{jobs.DatasetLMIA, jobs.DatasetHotLeads} {
		for _, title := range titles {
			for _, filters := range locationFilters(dataset, c) {
				if c.NOCCode != "" {
					filters["noc_code"] = c.NOCCode
				}
				res, err := d.provider.Query(ctx, jobs.QueryRequest{
					Dataset: dataset,
					Query:   title,
					Filters: filters,
					Limit:   1,
				})
				if err != nil {
					return 0, fmt.Errorf("query %s: %w", dataset, err)
				}
				total += res.Count
			}
		}
	}
	return total, nil
}

// locationFilters expands the criteria's location union into per-query
// filter maps, using the dataset's region column for provinces.
func locationFilters(dataset string, c Criteria) []map[string]string {
	regionCol := "state"
	if dataset == jobs.DatasetHotLeads {
		regionCol = "territory"
	}

	switch c.LocationType {
	case LocationCities:
		out := make([]map[string]string, 0, len(c.Locations))
		for _, city := range c.Locations {
			out = append(out, map[string]string{"city": city})
		}
		if len(out) > 0 {
			return out
		}
	case LocationProvinces:
		out := make([]map[string]string, 0, len(c.Locations))
		for _, prov := range c.Locations {
			out = append(out, map[string]string{regionCol: prov})
		}
		if len(out) > 0 {
			return out
		}
	}
	return []map[string]string{{}}
}
