package cumplo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/mfigueroa/spotter/configs"
	"github.com/mfigueroa/spotter/internal/model"
	"github.com/mfigueroa/spotter/pkg/faulttolerance"
	"github.com/mfigueroa/spotter/utils"
)

// Marker phrases indicating a DICOM blemish anywhere in the page text.
var dicomStrings = []string{"CON DICOM", "CONDICOM", "PRESENTA DICOM"}

// SupplementalData carries the derived and legacy fields only available on
// the server-rendered detail page.
type SupplementalData struct {
	Dicom                 bool
	AverageDaysDelinquent *int
	EconomicSector        *string
	PaidRequestsCount     *int
	PaidInTimePercentage  *decimal.Decimal
	TotalAmountRequested  *int64
	SupportingDocuments   []string
}

// HTMLAPI is the client for Cumplo's server-rendered detail pages. Fields are
// located by structural position; a page missing the credit-detail title is
// reported as not found, which is an expected condition, not an error.
type HTMLAPI struct {
	baseURL     string
	markerTitle string
	httpClient  *http.Client
	retryer     *faulttolerance.Retryer
	logger      *logrus.Logger
}

// NewHTMLAPI creates a supplemental client. Its retry policy covers malformed
// pages only; "not found" is never retried.
func NewHTMLAPI(cfg configs.CumploConfig, logger *logrus.Logger) *HTMLAPI {
	return &HTMLAPI{
		baseURL:     strings.TrimRight(cfg.HTMLBaseURL, "/"),
		markerTitle: utils.CleanText(cfg.CreditDetailTitle),
		httpClient:  &http.Client{Timeout: requestTimeout},
		retryer: faulttolerance.NewRetryer(faulttolerance.RetryConfig{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Name:        "cumplo-html",
			Retryable: func(err error) bool {
				return !errors.Is(err, ErrNotFound)
			},
		}, logger),
		logger: logger,
	}
}

// FundingRequest fetches and scrapes the detail page for one item.
// Returns ErrNotFound when the page lacks the credit-detail marker (item too
// new, deleted, or inaccessible).
func (a *HTMLAPI) FundingRequest(ctx context.Context, id int64) (*SupplementalData, error) {
	a.logger.Debugf("Getting funding request %d from Cumplo's HTML API", id)

	var data *SupplementalData
	err := a.retryer.Execute(ctx, func() error {
		request, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%d", a.baseURL, id), nil)
		if err != nil {
			return err
		}

		response, err := a.httpClient.Do(request)
		if err != nil {
			return err
		}
		defer response.Body.Close()

		if response.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("HTML API returned status %d", response.StatusCode)
		}

		document, err := html.Parse(response.Body)
		if err != nil {
			return fmt.Errorf("malformed detail page: %w", err)
		}

		pageText := utils.CleanText(textContent(document))
		if !strings.Contains(pageText, a.markerTitle) {
			return ErrNotFound
		}

		data = extractSupplementalData(document, pageText)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// extractSupplementalData pulls the known fields out of a detail page by
// structural position. Selectors are positional on purpose: the page carries
// no stable ids, only layout classes.
func extractSupplementalData(document *html.Node, pageText string) *SupplementalData {
	data := &SupplementalData{Dicom: containsAny(pageText, dicomStrings)}

	// Credit-history block: 1st span holds the paid-requests count, 3rd the
	// average days delinquent, 5th the paid-in-time percentage.
	if item := findFirst(document, byTagClass("div", "loan-view-item")); item != nil {
		spans := findAll(item, byTag("span"))
		if value, ok := historyInt(spans, 0); ok {
			data.PaidRequestsCount = &value
		}
		if value, ok := historyInt(spans, 2); ok {
			data.AverageDaysDelinquent = &value
		}
		if value, ok := historyPercent(spans, 4); ok {
			data.PaidInTimePercentage = &value
		}
	}

	if strong := findFirst(document, byTagClass("strong", "loan-view-primary-color")); strong != nil {
		if span := nextElementSibling(strong, "span"); span != nil {
			data.EconomicSector = model.CleanSectorField(textContent(span))
		}
	}

	if subtitle := findFirst(document, byTagClass("div", "loan-view-page-subtitle")); subtitle != nil {
		if paragraph := nextElementSibling(subtitle, "p"); paragraph != nil {
			if amount, ok := parseAmount(textContent(paragraph)); ok {
				data.TotalAmountRequested = &amount
			}
		}
	}

	if section := findFirst(document, byTagClass("div", "loan-view-documents-section")); section != nil {
		for _, image := range findAll(section, byTag("img")) {
			if image.Parent == nil || image.Parent.Data != "span" {
				continue
			}
			if name := nextElementSibling(image.Parent, "span"); name != nil {
				if cleaned := utils.CleanText(textContent(name)); cleaned != "" {
					data.SupportingDocuments = append(data.SupportingDocuments, cleaned)
				}
			}
		}
	}

	return data
}

// historyValue extracts the data out of a "title: data" credit-history span.
func historyValue(spans []*html.Node, index int) (string, bool) {
	if index >= len(spans) {
		return "", false
	}
	text := strings.ReplaceAll(textContent(spans[index]), "\n", "")
	text = strings.ReplaceAll(text, "%(*)", "")
	parts := strings.Split(text, ":")
	return strings.TrimSpace(parts[len(parts)-1]), true
}

func historyInt(spans []*html.Node, index int) (int, bool) {
	text, ok := historyValue(spans, index)
	if !ok {
		return 0, false
	}
	value, err := strconv.Atoi(text)
	if err != nil {
		return 0, false
	}
	return value, true
}

func historyPercent(spans []*html.Node, index int) (decimal.Decimal, bool) {
	text, ok := historyValue(spans, index)
	if !ok {
		return decimal.Zero, false
	}
	value, err := decimal.NewFromString(strings.TrimSuffix(text, "%"))
	if err != nil {
		return decimal.Zero, false
	}
	if value.GreaterThan(decimal.NewFromInt(1)) {
		value = value.Div(decimal.NewFromInt(100))
	}
	return value.Round(3), true
}

// parseAmount extracts an integer amount from a formatted money string
// (e.g. "$ 12.345.678").
func parseAmount(text string) (int64, bool) {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return 0, false
	}
	value, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func containsAny(text string, markers []string) bool {
	for _, marker := range markers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// --- structural traversal helpers ---

func findFirst(node *html.Node, match func(*html.Node) bool) *html.Node {
	if node.Type == html.ElementNode && match(node) {
		return node
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

func findAll(node *html.Node, match func(*html.Node) bool) []*html.Node {
	var found []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && match(n) {
			found = append(found, n)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return found
}

func byTag(tag string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag }
}

func byTagClass(tag, class string) func(*html.Node) bool {
	return func(n *html.Node) bool { return n.Data == tag && hasClass(n, class) }
}

func hasClass(node *html.Node, class string) bool {
	for _, attr := range node.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, candidate := range strings.Fields(attr.Val) {
			if candidate == class {
				return true
			}
		}
	}
	return false
}

func nextElementSibling(node *html.Node, tag string) *html.Node {
	for sibling := node.NextSibling; sibling != nil; sibling = sibling.NextSibling {
		if sibling.Type == html.ElementNode {
			if sibling.Data == tag {
				return sibling
			}
			return nil
		}
	}
	return nil
}

func textContent(node *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(node)
	return b.String()
}
