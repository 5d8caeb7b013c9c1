// internal/service/po_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/ajmalkv/rollsops/internal/api"
	"github.com/ajmalkv/rollsops/internal/cache"
	"github.com/ajmalkv/rollsops/internal/domain"
	"github.com/ajmalkv/rollsops/internal/storage"
	"github.com/ajmalkv/rollsops/internal/viewmodel"
	"github.com/rs/zerolog/log"
)

// POService composes the API client, query cache, and view-model for
// purchase-order operations. Mutations invalidate the cached list so the
// next read refetches.
type POService struct {
	client  *api.Client
	queries *cache.Queries
	sink    storage.ExportSink
	listTTL time.Duration
}

func NewPOService(client *api.Client, queries *cache.Queries, sink storage.ExportSink, listTTL time.Duration) *POService {
	return &POService{
		client:  client,
		queries: queries,
		sink:    sink,
		listTTL: listTTL,
	}
}

// ListTTL exposes the staleness window for refresher registration.
func (s *POService) ListTTL() time.Duration { return s.listTTL }

// ListKey is the cache key for one page of the purchase-order list.
func (s *POService) ListKey(page, limit int) string {
	return cache.Key(cache.KeyPrefixPOList, "page="+strconv.Itoa(page), "limit="+strconv.Itoa(limit))
}

// FetchList is the upstream loader for one list page, used by both List and
// the background refresher.
func (s *POService) FetchList(page, limit int) cache.FetchFunc {
	return func(ctx context.Context) ([]byte, error) {
		orders, err := s.client.ListPurchaseOrders(ctx, page, limit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(orders)
	}
}

// List returns one page of purchase orders through the cache, filtered by the
// search string and annotated with display flags.
func (s *POService) List(ctx context.Context, page, limit int, search string) ([]viewmodel.PurchaseOrderRow, error) {
	payload, err := s.queries.Fetch(ctx, s.ListKey(page, limit), s.listTTL, s.FetchList(page, limit))
	if err != nil {
		return nil, fmt.Errorf("load purchase orders: %w", err)
	}

	var orders []domain.PurchaseOrder
	if err := json.Unmarshal(payload, &orders); err != nil {
		return nil, fmt.Errorf("decode cached purchase orders: %w", err)
	}

	return viewmodel.AnnotatePurchaseOrders(viewmodel.FilterPurchaseOrders(orders, search)), nil
}

// Get fetches a single purchase order, bypassing the cache.
func (s *POService) Get(ctx context.Context, id int64) (*domain.PurchaseOrder, error) {
	return s.client.GetPurchaseOrder(ctx, id)
}

// Create validates and submits the add-PO form. A business-rule rejection
// (duplicate PO number) comes back in the result, not as an error; only a
// created order invalidates the list cache.
func (s *POService) Create(ctx context.Context, form *viewmodel.POForm) (*api.CreatePOResult, error) {
	input, err := form.Build()
	if err != nil {
		return nil, err
	}

	result, err := s.client.CreatePurchaseOrder(ctx, input)
	if err != nil {
		return nil, err
	}

	if result.Created {
		s.invalidateList(ctx)
	}
	return result, nil
}

// Update saves an inline edit and invalidates the list cache.
func (s *POService) Update(ctx context.Context, id int64, input domain.CreatePurchaseOrderInput) (*domain.PurchaseOrder, error) {
	order, err := s.client.UpdatePurchaseOrder(ctx, id, input)
	if err != nil {
		return nil, err
	}
	s.invalidateList(ctx)
	return order, nil
}

// Delete removes a purchase order and invalidates the list cache.
func (s *POService) Delete(ctx context.Context, id int64) error {
	if err := s.client.DeletePurchaseOrder(ctx, id); err != nil {
		return err
	}
	s.invalidateList(ctx)
	return nil
}

// Districts returns the shared district lookup through the cache, falling
// back to the built-in table when the endpoint cannot be reached.
func (s *POService) Districts(ctx context.Context) domain.DistrictList {
	key := cache.Key(cache.KeyPrefixDistricts)
	payload, err := s.queries.Fetch(ctx, key, 24*time.Hour, func(ctx context.Context) ([]byte, error) {
		districts, err := s.client.Districts(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(districts)
	})
	if err != nil {
		log.Warn().Err(err).Msg("districts endpoint unavailable, using built-in list")
		return domain.DefaultDistricts()
	}

	var districts domain.DistrictList
	if err := json.Unmarshal(payload, &districts); err != nil || len(districts) == 0 {
		return domain.DefaultDistricts()
	}
	return districts
}

// ExportPOExcel downloads the purchase-order spreadsheet and saves it through
// the export sink, returning where it landed.
func (s *POService) ExportPOExcel(ctx context.Context) (string, error) {
	blob, err := s.client.DownloadPOExcel(ctx)
	if err != nil {
		return "", fmt.Errorf("download po export: %w", err)
	}
	name := fmt.Sprintf("purchase-orders-%s.xlsx", time.Now().Format("20060102-150405"))
	return s.sink.Save(ctx, name, blob)
}

// ExportHandoverExcel downloads the handover-details spreadsheet for a date
// range and saves it through the export sink.
func (s *POService) ExportHandoverExcel(ctx context.Context, fromDate, toDate string) (string, error) {
	blob, err := s.client.DownloadHandoverExcel(ctx, fromDate, toDate)
	if err != nil {
		return "", fmt.Errorf("download handover export: %w", err)
	}
	name := fmt.Sprintf("handover-details-%s-to-%s.xlsx", fromDate, toDate)
	return s.sink.Save(ctx, name, blob)
}

func (s *POService) invalidateList(ctx context.Context) {
	if err := s.queries.Invalidate(ctx, cache.KeyPrefixPOList); err != nil {
		log.Warn().Err(err).Msg("could not invalidate purchase-order list cache")
	}
}
