package cumplo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mfigueroa/spotter/configs"
	"github.com/mfigueroa/spotter/internal/model"
	"github.com/mfigueroa/spotter/pkg/faulttolerance"
	"github.com/mfigueroa/spotter/utils"
)

// Cleaned substrings identifying the platform costs inside a simulation.
const (
	cumploPointsKey = "PUNTOS CUMPLO"
	platformFeeKey  = "COMISION"
)

// GlobalAPI is the client for Cumplo's REST (Global) API, which serves the
// per-item credit history and the payment simulation.
type GlobalAPI struct {
	url              string
	simulationAmount int
	httpClient       *http.Client
	retryer          *faulttolerance.Retryer
	logger           *logrus.Logger
}

// NewGlobalAPI creates a detail client with its own retry policy.
func NewGlobalAPI(cfg configs.CumploConfig, logger *logrus.Logger) *GlobalAPI {
	return &GlobalAPI{
		url:              strings.TrimRight(cfg.GlobalAPIURL, "/"),
		simulationAmount: cfg.SimulationAmount,
		httpClient:       &http.Client{Timeout: requestTimeout},
		retryer: faulttolerance.NewRetryer(faulttolerance.RetryConfig{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Name:        "cumplo-global",
		}, logger),
		logger: logger,
	}
}

// DetailPayload is the raw per-item detail shape. Source field names are
// resolved here, at the construction boundary, and nowhere downstream.
type DetailPayload struct {
	ID                  int64                 `json:"id_operacion"`
	Amount              int64                 `json:"monto_financiar"`
	CreditTypeCode      string                `json:"codigo_producto"`
	DueDate             string                `json:"fecha_vencimiento"`
	RaisedAmount        int64                 `json:"total_inversion"`
	MaximumInvestment   int64                 `json:"max_inversion"`
	Investors           int                   `json:"cantidad_inversionistas"`
	SupportingDocuments []string              `json:"tipo_respaldo"`
	Borrower            rawBorrower           `json:"solicitante"`
	Debtors             []rawDebtor           `json:"pagadores"`
	BorrowerDescription string                `json:"vitrina_descripcion_empresa_solicitante"`
	DebtorDescription   string                `json:"vitrina_descripcion_empresa_deudora"`
}

type rawBorrower struct {
	Name           string                `json:"nombre_solicitante"`
	EconomicSector string                `json:"giro_detalle"`
	Description    string                `json:"descripcion"`
	FirstOperation string                `json:"fecha_primera_operacion"`
	History        []model.PortfolioItem `json:"historial"`
}

type rawDebtor struct {
	Name           string                `json:"nombre_pagador"`
	Sector         string                `json:"giro_detalle"`
	Description    string                `json:"descripcion"`
	Amount         int64                 `json:"monto_total"`
	Share          model.Percent         `json:"participacion"`
	FirstOperation string                `json:"fecha_primera_operacion"`
	History        []model.PortfolioItem `json:"historial"`
}

type detailEnvelope struct {
	Data struct {
		Attributes *DetailPayload `json:"attributes"`
	} `json:"data"`
}

// FundingRequest fetches the full detail payload for one item.
// JSON decode failures are retried under the adapter's policy.
func (a *GlobalAPI) FundingRequest(ctx context.Context, id int64) (*DetailPayload, error) {
	a.logger.Debugf("Getting funding request %d from Cumplo's Global API", id)

	var payload *DetailPayload
	err := a.retryer.Execute(ctx, func() error {
		body, err := a.request(ctx, http.MethodGet, fmt.Sprintf("/funding-requests/%d", id), nil)
		if err != nil {
			return err
		}

		var envelope detailEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("malformed detail response: %w", err)
		}
		if envelope.Data.Attributes == nil {
			return fmt.Errorf("malformed detail response: missing attributes")
		}

		payload = envelope.Data.Attributes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// SimulationPayload is the raw shape of a payment simulation.
type SimulationPayload struct {
	NetReturns      int64            `json:"ganancia_liquida"`
	PaymentSchedule []rawInstallment `json:"forma_pago"`
	Costs           struct {
		Values []rawCost `json:"valores"`
	} `json:"costos"`
}

type rawInstallment struct {
	Interest int64  `json:"interes"`
	Amount   int64  `json:"monto_cuota"`
	DueDate  string `json:"fecha_vencimiento"`
}

type rawCost struct {
	Name  string `json:"nombre"`
	Value int64  `json:"valor"`
}

type simulationEnvelope struct {
	Data struct {
		Attributes *SimulationPayload `json:"attributes"`
	} `json:"data"`
}

// Simulate requests a payment simulation for one listing item.
// The payload only depends on the item's terms and the configured amount.
func (a *GlobalAPI) Simulate(ctx context.Context, item ListingItem) (*SimulationPayload, error) {
	a.logger.Debugf("Simulating funding request %d from Cumplo's Global API", item.ID)

	dueDate := time.Now().AddDate(0, 0, durationDays(item)).Format("2006-01-02")
	irr, _ := item.IRR.Float64()
	payload := map[string]any{
		"data": map[string]any{
			"cuotas":            1,
			"id_operacion":      item.ID,
			"monto_simulacion":  a.simulationAmount,
			"plazo":             item.DurationValue,
			"tasa_anual":        irr,
			"fecha_vencimiento": dueDate,
		},
	}

	endpoint := fmt.Sprintf("/simulations/%s/%s",
		strings.ToLower(item.CreditTypeCode), strings.ToLower(item.Currency))

	var simulation *SimulationPayload
	err := a.retryer.Execute(ctx, func() error {
		body, err := a.request(ctx, http.MethodPost, endpoint, payload)
		if err != nil {
			return err
		}

		var envelope simulationEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return fmt.Errorf("malformed simulation response: %w", err)
		}
		if envelope.Data.Attributes == nil {
			return fmt.Errorf("malformed simulation response: missing attributes")
		}

		simulation = envelope.Data.Attributes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return simulation, nil
}

func (a *GlobalAPI) request(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var body *bytes.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	} else {
		body = bytes.NewReader(nil)
	}

	request, err := http.NewRequestWithContext(ctx, method, a.url+endpoint, body)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := a.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("detail API returned status %d", response.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(response.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToModel converts the raw simulation into the canonical shape, matching the
// platform costs by their cleaned names. Unknown cost names are ignored.
func (s *SimulationPayload) ToModel() model.Simulation {
	simulation := model.Simulation{NetReturns: s.NetReturns}

	for _, cost := range s.Costs.Values {
		name := utils.CleanText(cost.Name)
		switch {
		case strings.Contains(name, cumploPointsKey):
			simulation.CumploPoints = cost.Value
		case strings.Contains(name, platformFeeKey):
			simulation.PlatformFee = cost.Value
		}
	}

	for _, installment := range s.PaymentSchedule {
		simulation.PaymentSchedule = append(simulation.PaymentSchedule, model.Installment{
			DueDate:  parseUpstreamTime(installment.DueDate),
			Amount:   installment.Amount,
			Interest: installment.Interest,
		})
	}

	return simulation
}

func durationDays(item ListingItem) int {
	if strings.EqualFold(strings.TrimSpace(item.DurationUnit), "month") {
		return item.DurationValue * 30
	}
	return item.DurationValue
}

var upstreamTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// parseUpstreamTime parses the timestamp formats the marketplace has been
// observed to emit. Unparseable values yield a zero time rather than an error.
func parseUpstreamTime(value string) time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range upstreamTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
