package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ajmalkv/rollsops/internal/domain"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

func newTestClient(t *testing.T, handler http.Handler, tokens TokenSource) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, tokens), srv
}

func TestSendAttachesTokenHeader(t *testing.T) {
	var gotToken string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("token")
		w.Write([]byte(`{"message":"ok","data":{"purchase_orders":[]}}`))
	}), staticToken("tok-abc"))

	if _, err := client.ListPurchaseOrders(context.Background(), 1, 25); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if gotToken != "tok-abc" {
		t.Fatalf("expected token header %q, got %q", "tok-abc", gotToken)
	}
}

func TestSendOmitsEmptyToken(t *testing.T) {
	var hadHeader bool
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadHeader = r.Header["Token"]
		w.Write([]byte(`{"message":"ok","data":{"purchase_orders":[]}}`))
	}), staticToken(""))

	if _, err := client.ListPurchaseOrders(context.Background(), 1, 25); err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if hadHeader {
		t.Fatalf("no token header expected when unauthenticated")
	}
}

func TestLoginSendsCredentialsAsQueryParams(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/auth/operations/login" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("employee_id") != "EMP42" || q.Get("password") != "secret" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"message":"ok","data":{"token":"tok-1","userDetails":{"name":"Ajmal"}}}`))
	}), nil)

	result, err := client.Login(context.Background(), "EMP42", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token != "tok-1" {
		t.Fatalf("unexpected token %q", result.Token)
	}
	if string(result.UserDetails) != `{"name":"Ajmal"}` {
		t.Fatalf("unexpected user details %s", result.UserDetails)
	}
}

func TestLoginRejectsMissingToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok","data":{"userDetails":{}}}`))
	}), nil)

	if _, err := client.Login(context.Background(), "EMP42", "secret"); err == nil {
		t.Fatalf("expected error for login response without token")
	}
}

func TestListPurchaseOrdersDecodesRows(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("page") != "2" || q.Get("limit") != "10" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"message":"ok","data":{"purchase_orders":[
			{"id":1,"po_no":"PO-1001","district_name":"Kollam","purchased_count":50,"received_date":"2025-01-10","stock_percentage":80},
			{"id":2,"po_no":"PO-1002","district_name":"Idukki","purchased_count":20,"received_date":"2025-01-12","stock_percentage":15}
		]}}`))
	}), staticToken("tok"))

	orders, err := client.ListPurchaseOrders(context.Background(), 2, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].PONo != "PO-1001" || orders[1].DistrictName != "Idukki" {
		t.Fatalf("unexpected rows: %+v", orders)
	}
}

func TestCreatePurchaseOrderRejectionIsNotAnError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message":"PO number already exists","data":null}`))
	}), staticToken("tok"))

	result, err := client.CreatePurchaseOrder(context.Background(), domain.CreatePurchaseOrderInput{
		PONo: "PO-1001",
	})
	if err != nil {
		t.Fatalf("a rejection must not surface as an error: %v", err)
	}
	if result.Created {
		t.Fatalf("expected Created=false")
	}
	if result.Message != "PO number already exists" {
		t.Fatalf("unexpected message %q", result.Message)
	}
}

func TestCreatePurchaseOrderSuccess(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"created","data":{"id":7,"po_no":"PO-2001","district_name":"Kozhikode"}}`))
	}), staticToken("tok"))

	result, err := client.CreatePurchaseOrder(context.Background(), domain.CreatePurchaseOrderInput{
		PONo: "PO-2001",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !result.Created || result.Order == nil || result.Order.ID != 7 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCreatePurchaseOrderServerErrorPropagates(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"message":"boom","data":null}`))
	}), staticToken("tok"))

	if _, err := client.CreatePurchaseOrder(context.Background(), domain.CreatePurchaseOrderInput{}); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestNonSuccessStatusIsAnError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"unauthorized","data":null}`))
	}), staticToken("expired"))

	_, err := client.ListPurchaseOrders(context.Background(), 1, 25)
	if err == nil {
		t.Fatalf("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Fatalf("error should carry the status, got %v", err)
	}
}

func TestMissingDataFieldIsRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok"}`))
	}), staticToken("tok"))

	if _, err := client.ListPurchaseOrders(context.Background(), 1, 25); err == nil {
		t.Fatalf("expected error for response without data field")
	}
}

func TestRollsUsageSummaryDecodes(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rolls_usage/summary" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"message":"ok","data":{
			"summary":{"total_owners":12,"owners_needing_rolls":4,"owners_not_needing_rolls":8},
			"owners":[{"owner_id":3,"owner_name":"Anil Kumar","district_name":"Kollam","avg_usage_percentage":55}]
		}}`))
	}), staticToken("tok"))

	summary, err := client.RollsUsageSummary(context.Background())
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.Totals.TotalOwners != 12 || summary.Totals.OwnersNeedingRolls != 4 {
		t.Fatalf("unexpected totals: %+v", summary.Totals)
	}
	if len(summary.Owners) != 1 || summary.Owners[0].OwnerName != "Anil Kumar" {
		t.Fatalf("unexpected owners: %+v", summary.Owners)
	}
}

func TestRollsUsageSummaryRequiresOwners(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":"ok","data":{"summary":{"total_owners":0}}}`))
	}), staticToken("tok"))

	if _, err := client.RollsUsageSummary(context.Background()); err == nil {
		t.Fatalf("expected error when owners list is absent")
	}
}

func TestOwnerTicketCountSendsDateRange(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rolls_usage/3/ticket-count" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("from_date") != "2025-01-01" || q.Get("to_date") != "2025-01-31" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"message":"ok","data":{"owner_name":"Anil Kumar","vehicles":[]}}`))
	}), staticToken("tok"))

	report, err := client.OwnerTicketCount(context.Background(), 3, "2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatalf("ticket count failed: %v", err)
	}
	if report.OwnerName != "Anil Kumar" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestDownloadReturnsRawBlob(t *testing.T) {
	blob := []byte("PK\x03\x04fake-xlsx")
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/purchase_orders/po-excel" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write(blob)
	}), staticToken("tok"))

	got, err := client.DownloadPOExcel(context.Background())
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if string(got) != string(blob) {
		t.Fatalf("blob mismatch")
	}
}
