package cumplo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/mfigueroa/spotter/configs"
	"github.com/mfigueroa/spotter/internal/model"
	"github.com/mfigueroa/spotter/pkg/faulttolerance"
)

const (
	listingPageSize = 50
	requestTimeout  = 10 * time.Second
)

// ListingItem is one lightweight funding-request summary from the listing API.
// Credit type and duration keep their source codes; translation happens at
// merge time so an unmapped code only drops its own item.
type ListingItem struct {
	ID               int64
	Score            decimal.Decimal
	IRR              decimal.Decimal
	Currency         string
	CreditTypeCode   string
	DurationUnit     string
	DurationValue    int
	RaisedPercentage decimal.Decimal
	BorrowerID       *int64
}

// IsCompleted reports whether the summary is already fully funded.
func (i ListingItem) IsCompleted() bool {
	return i.RaisedPercentage.Equal(decimal.NewFromInt(1))
}

// Listing is one page of funding-request summaries.
type Listing struct {
	Items        []ListingItem
	AllCompleted bool
}

// GraphQLAPI is the client for Cumplo's GraphQL listing API.
type GraphQLAPI struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryer    *faulttolerance.Retryer
	logger     *logrus.Logger
}

// NewGraphQLAPI creates a listing client with its own retry policy and rate
// limiter.
func NewGraphQLAPI(cfg configs.CumploConfig, logger *logrus.Logger) *GraphQLAPI {
	return &GraphQLAPI{
		url:        cfg.GraphQLURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.ListingRatePerSecond), 1),
		retryer: faulttolerance.NewRetryer(faulttolerance.RetryConfig{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Name:        "cumplo-graphql",
		}, logger),
		logger: logger,
	}
}

type graphqlResponse struct {
	Data struct {
		FundingRequests *struct {
			Count        int  `json:"count"`
			AllCompleted bool `json:"allCompleted"`
			Results      []struct {
				Empresa struct {
					ID int64 `json:"id"`
				} `json:"empresa"`
				Operacion rawOperation `json:"operacion"`
			} `json:"results"`
		} `json:"fundingRequests"`
	} `json:"data"`
}

type rawOperation struct {
	ID               int64           `json:"id"`
	Score            decimal.Decimal `json:"score"`
	IRR              decimal.Decimal `json:"tir"`
	Currency         string          `json:"moneda"`
	RaisedPercentage model.Percent   `json:"porcentaje_inversion"`
	Duration         rawDuration     `json:"plazo"`
	Product          struct {
		Code string `json:"codigo"`
	} `json:"producto"`
	BackupType string `json:"tipo_respaldo"`
}

type rawDuration struct {
	Unit  string `json:"type"`
	Value int    `json:"value"`
}

// FundingRequests queries the listing API for one page of summaries.
// Malformed responses are retried; exhausting the budget is fatal for the
// aggregation cycle.
func (a *GraphQLAPI) FundingRequests(ctx context.Context, page, limit int) (*Listing, error) {
	a.logger.Debug("Getting funding requests from Cumplo's GraphQL API")

	var listing *Listing
	err := a.retryer.Execute(ctx, func() error {
		if err := a.limiter.Wait(ctx); err != nil {
			return err
		}

		response, err := a.post(ctx, buildFundingRequestsQuery(page, limit))
		if err != nil {
			return err
		}

		parsed, err := parseListing(response)
		if err != nil {
			return err
		}
		listing = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.logger.Infof("Found %d existing funding requests", len(listing.Items))
	return listing, nil
}

func (a *GraphQLAPI) post(ctx context.Context, payload map[string]any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Accept-Language", "es-CL")

	response, err := a.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing API returned status %d", response.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(response.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func parseListing(body []byte) (*Listing, error) {
	var response graphqlResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("malformed listing response: %w", err)
	}

	data := response.Data.FundingRequests
	if data == nil {
		return nil, fmt.Errorf("malformed listing response: missing fundingRequests")
	}

	listing := &Listing{AllCompleted: data.AllCompleted}
	for _, result := range data.Results {
		operation := result.Operacion

		creditType := operation.Product.Code
		if creditType == "" {
			// Older listing revisions carried the credit code in tipo_respaldo.
			creditType = operation.BackupType
		}

		item := ListingItem{
			ID:               operation.ID,
			Score:            operation.Score,
			IRR:              operation.IRR,
			Currency:         operation.Currency,
			CreditTypeCode:   creditType,
			DurationUnit:     operation.Duration.Unit,
			DurationValue:    operation.Duration.Value,
			RaisedPercentage: operation.RaisedPercentage.Round(2),
		}
		if result.Empresa.ID != 0 {
			borrowerID := result.Empresa.ID
			item.BorrowerID = &borrowerID
		}
		listing.Items = append(listing.Items, item)
	}

	return listing, nil
}

func buildFundingRequestsQuery(page, limit int) map[string]any {
	return map[string]any{
		"operationName": "FundingRequests",
		"variables":     map[string]any{"page": page, "limit": limit},
		"query": `
			query FundingRequests($page: Int!, $limit: Int!, $state: Int, $ordering: String) {
				fundingRequests(page: $page, limit: $limit, state: $state, ordering: $ordering) {
					count allCompleted results {
						empresa {
							id
						}
						operacion {
							id
							score
							tir
							moneda
							porcentaje_inversion
							plazo {
								type
								value
							}
							producto {
								codigo
							}
							tipo_respaldo
						}
					}
				}
			}
		`,
	}
}
