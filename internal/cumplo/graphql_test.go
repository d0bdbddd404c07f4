package cumplo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mfigueroa/spotter/configs"
)

const listingFixture = `{
	"data": {
		"fundingRequests": {
			"count": 2,
			"allCompleted": false,
			"results": [
				{
					"empresa": {"id": 555},
					"operacion": {
						"id": 1001,
						"score": "4.5",
						"tir": "19.5",
						"moneda": "CLP",
						"porcentaje_inversion": 87,
						"plazo": {"type": "day", "value": 45},
						"producto": {"codigo": "anticipo_factura"},
						"tipo_respaldo": ""
					}
				},
				{
					"empresa": {"id": 0},
					"operacion": {
						"id": 1002,
						"score": "3.2",
						"tir": "22.0",
						"moneda": "CLP",
						"porcentaje_inversion": 100,
						"plazo": {"type": "month", "value": 2},
						"producto": {"codigo": ""},
						"tipo_respaldo": "simple"
					}
				}
			]
		}
	}
}`

func newTestGraphQLAPI(serverURL string) *GraphQLAPI {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewGraphQLAPI(configs.CumploConfig{
		GraphQLURL:           serverURL,
		RetryAttempts:        2,
		RetryDelay:           time.Millisecond,
		ListingRatePerSecond: 1000,
	}, logger)
}

func TestGraphQLAPIFundingRequests(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	listing, err := newTestGraphQLAPI(server.URL).FundingRequests(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("FundingRequests returned error: %v", err)
	}

	if listing.AllCompleted {
		t.Error("Expected allCompleted false")
	}
	if len(listing.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(listing.Items))
	}

	first := listing.Items[0]
	if first.ID != 1001 || first.CreditTypeCode != "anticipo_factura" {
		t.Errorf("Unexpected first item: %+v", first)
	}
	if !first.RaisedPercentage.Equal(decimal.NewFromFloat(0.87)) {
		t.Errorf("Expected raised percentage 0.87, got %v", first.RaisedPercentage)
	}
	if first.BorrowerID == nil || *first.BorrowerID != 555 {
		t.Errorf("Expected borrower id 555, got %v", first.BorrowerID)
	}
	if first.IsCompleted() {
		t.Error("87% raised should not be completed")
	}

	second := listing.Items[1]
	if second.CreditTypeCode != "simple" {
		t.Errorf("Expected fallback credit code, got %q", second.CreditTypeCode)
	}
	if second.BorrowerID != nil {
		t.Error("Zero empresa id should leave borrower id absent")
	}
	if !second.IsCompleted() {
		t.Error("100% raised should be completed")
	}
	if second.DurationUnit != "month" || second.DurationValue != 2 {
		t.Errorf("Unexpected duration: %s %d", second.DurationUnit, second.DurationValue)
	}
}

func TestGraphQLAPIFundingRequestsMalformedResponseRetried(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.Write([]byte(`{"data": {}}`))
			return
		}
		w.Write([]byte(listingFixture))
	}))
	defer server.Close()

	listing, err := newTestGraphQLAPI(server.URL).FundingRequests(context.Background(), 1, 50)
	if err != nil {
		t.Fatalf("Expected retry to recover, got %v", err)
	}
	if attempts != 2 {
		t.Errorf("Expected 2 attempts, got %d", attempts)
	}
	if len(listing.Items) != 2 {
		t.Errorf("Expected recovered listing, got %d items", len(listing.Items))
	}
}

func TestGraphQLAPIFundingRequestsExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	if _, err := newTestGraphQLAPI(server.URL).FundingRequests(context.Background(), 1, 50); err == nil {
		t.Fatal("Expected error after exhausting the retry budget")
	}
}
