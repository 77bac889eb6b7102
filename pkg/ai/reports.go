// Package ai builds sales reports over placed orders, optionally narrated
// by Azure OpenAI.
package ai

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Daviipontes/Dev-Web/pkg/models"
)

const topProductsLimit = 5

type AIReportResponse struct {
	Status      string     `json:"status"`
	Data        ReportData `json:"data"`
	GeneratedAt time.Time  `json:"generated_at"`
	AIEnabled   bool       `json:"ai_enabled"`
}

type ReportData struct {
	RawData    SalesSummary `json:"raw_data"`
	AIInsights string       `json:"ai_insights,omitempty"`
	Summary    string       `json:"summary"`
	Error      string       `json:"error,omitempty"`
}

type TopProduct struct {
	ProductID int     `json:"product_id"`
	Name      string  `json:"name"`
	Units     int     `json:"units"`
	Revenue   float64 `json:"revenue"`
}

type SalesSummary struct {
	OrderCount   int            `json:"order_count"`
	Revenue      float64        `json:"revenue"`
	UnitsSold    int            `json:"units_sold"`
	AverageOrder float64        `json:"average_order"`
	TopProducts  []TopProduct   `json:"top_products"`
	ByStatus     map[string]int `json:"by_status"`
}

// Summarize aggregates orders. Top products are ranked by units sold, then
// by revenue, then by id.
func Summarize(orders []models.Order) SalesSummary {
	revenue := decimal.Zero
	summary := SalesSummary{ByStatus: map[string]int{}, TopProducts: []TopProduct{}}

	type acc struct {
		name    string
		units   int
		revenue decimal.Decimal
	}
	perProduct := map[int]*acc{}

	for _, o := range orders {
		summary.OrderCount++
		summary.ByStatus[o.Status]++
		revenue = revenue.Add(decimal.NewFromFloat(o.Total))
		for _, item := range o.Items {
			summary.UnitsSold += item.Quantity
			a, ok := perProduct[item.Product.ID]
			if !ok {
				a = &acc{name: item.Product.Name, revenue: decimal.Zero}
				perProduct[item.Product.ID] = a
			}
			a.units += item.Quantity
			a.revenue = a.revenue.Add(decimal.NewFromFloat(item.Product.Price).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
	}

	summary.Revenue = revenue.Round(2).InexactFloat64()
	if summary.OrderCount > 0 {
		summary.AverageOrder = revenue.Div(decimal.NewFromInt(int64(summary.OrderCount))).Round(2).InexactFloat64()
	}

	for id, a := range perProduct {
		summary.TopProducts = append(summary.TopProducts, TopProduct{
			ProductID: id,
			Name:      a.name,
			Units:     a.units,
			Revenue:   a.revenue.Round(2).InexactFloat64(),
		})
	}
	slices.SortFunc(summary.TopProducts, func(a, b TopProduct) int {
		return cmp.Or(
			cmp.Compare(b.Units, a.Units),
			cmp.Compare(b.Revenue, a.Revenue),
			cmp.Compare(a.ProductID, b.ProductID),
		)
	})
	if len(summary.TopProducts) > topProductsLimit {
		summary.TopProducts = summary.TopProducts[:topProductsLimit]
	}
	return summary
}

// GenerateSalesReport always returns the raw summary. AI insights are added
// when the client is enabled; an AI failure is reported in the payload and
// does not fail the report.
func (c *Client) GenerateSalesReport(ctx context.Context, orders []models.Order) *AIReportResponse {
	summary := Summarize(orders)
	response := &AIReportResponse{
		Status:      "success",
		GeneratedAt: time.Now().UTC(),
		AIEnabled:   c.IsEnabled(),
		Data: ReportData{
			RawData: summary,
			Summary: "Sales data retrieved successfully",
		},
	}

	if !c.IsEnabled() {
		response.Data.Summary = "Raw sales data (AI insights unavailable)"
		return response
	}

	insights, err := c.generateCompletion(ctx, SalesReportSystemPrompt, formatSalesDataPrompt(summary))
	if err != nil {
		response.Data.Error = "AI analysis failed: " + err.Error()
		return response
	}
	response.Data.AIInsights = insights
	response.Data.Summary = "AI-generated sales insights and recommendations"
	return response
}
