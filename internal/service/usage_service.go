// internal/service/usage_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ajmalkv/rollsops/internal/api"
	"github.com/ajmalkv/rollsops/internal/cache"
	"github.com/ajmalkv/rollsops/internal/domain"
	"github.com/ajmalkv/rollsops/internal/viewmodel"
)

// UsageView is the derived rolls-usage screen: fleet totals plus filtered,
// badge-annotated owner rows.
type UsageView struct {
	Totals domain.UsageTotals   `json:"totals"`
	Owners []viewmodel.OwnerRow `json:"owners"`
}

// UsageService composes the API client, query cache, and view-model for the
// rolls-usage screens and the bus-wise report flow.
type UsageService struct {
	client     *api.Client
	queries    *cache.Queries
	districts  func(ctx context.Context) domain.DistrictList
	summaryTTL time.Duration
}

func NewUsageService(client *api.Client, queries *cache.Queries, districts func(ctx context.Context) domain.DistrictList, summaryTTL time.Duration) *UsageService {
	return &UsageService{
		client:     client,
		queries:    queries,
		districts:  districts,
		summaryTTL: summaryTTL,
	}
}

// SummaryTTL exposes the staleness window for refresher registration.
func (s *UsageService) SummaryTTL() time.Duration { return s.summaryTTL }

// SummaryKey is the cache key for the rolls-usage summary.
func (s *UsageService) SummaryKey() string {
	return cache.Key(cache.KeyPrefixSummary)
}

// FetchSummary is the upstream loader for the summary, used by both Summary
// and the background refresher.
func (s *UsageService) FetchSummary() cache.FetchFunc {
	return func(ctx context.Context) ([]byte, error) {
		summary, err := s.client.RollsUsageSummary(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(summary)
	}
}

// Summary returns the rolls-usage view through the cache. The owner rows are
// filtered by the search string with the district-disambiguation rule and
// annotated with usage badges.
func (s *UsageService) Summary(ctx context.Context, search string) (*UsageView, error) {
	summary, err := s.cachedSummary(ctx)
	if err != nil {
		return nil, err
	}

	owners := viewmodel.FilterOwners(summary.Owners, s.districts(ctx), search)
	return &UsageView{
		Totals: summary.Totals,
		Owners: viewmodel.AnnotateOwners(owners),
	}, nil
}

// Vehicles fetches the per-vehicle breakdown for one owner. This data is not
// cached beyond the call: it is fetched on demand per owner.
func (s *UsageService) Vehicles(ctx context.Context, ownerID int64) ([]domain.VehicleUsage, error) {
	return s.client.OwnerVehicleUsage(ctx, ownerID)
}

// NewReportForm builds the bus-wise report form over the cached summary.
func (s *UsageService) NewReportForm(ctx context.Context) (*viewmodel.ReportForm, error) {
	summary, err := s.cachedSummary(ctx)
	if err != nil {
		return nil, err
	}
	return viewmodel.NewReportForm(summary.Owners), nil
}

// TicketReport validates the form, resolves the owner locally, and fetches
// the ticket-count report. A form that does not validate, or an owner that
// cannot be resolved, fails before any network call.
func (s *UsageService) TicketReport(ctx context.Context, form *viewmodel.ReportForm) (*domain.TicketCountReport, error) {
	if errs := form.Validate(); len(errs) > 0 {
		for _, msg := range errs {
			return nil, fmt.Errorf("%s", msg)
		}
	}

	ownerID, err := form.ResolveOwner()
	if err != nil {
		return nil, err
	}

	return s.client.OwnerTicketCount(ctx, ownerID, form.StartDate, form.EndDate)
}

func (s *UsageService) cachedSummary(ctx context.Context) (*api.RollsUsageSummary, error) {
	payload, err := s.queries.Fetch(ctx, s.SummaryKey(), s.summaryTTL, s.FetchSummary())
	if err != nil {
		return nil, fmt.Errorf("load rolls usage summary: %w", err)
	}

	var summary api.RollsUsageSummary
	if err := json.Unmarshal(payload, &summary); err != nil {
		return nil, fmt.Errorf("decode cached summary: %w", err)
	}
	return &summary, nil
}
