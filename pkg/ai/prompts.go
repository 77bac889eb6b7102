package ai

import (
	"fmt"
	"strings"
)

const SalesReportSystemPrompt = `You are a business analyst for an online musical instrument store.
Generate concise, actionable insights from the sales summary. Focus on:
- Revenue and order volume
- Best-selling products and what they suggest about demand
- Specific recommendations for sellers
Keep responses to 3-4 paragraphs maximum.`

func formatSalesDataPrompt(s SalesSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Orders: %d\n", s.OrderCount)
	fmt.Fprintf(&b, "Revenue: %.2f\n", s.Revenue)
	fmt.Fprintf(&b, "Units sold: %d\n", s.UnitsSold)
	fmt.Fprintf(&b, "Average order value: %.2f\n", s.AverageOrder)
	if len(s.TopProducts) > 0 {
		b.WriteString("Top products by units sold:\n")
		for _, p := range s.TopProducts {
			fmt.Fprintf(&b, "- %s (id %d): %d units, %.2f revenue\n", p.Name, p.ProductID, p.Units, p.Revenue)
		}
	}
	if len(s.ByStatus) > 0 {
		b.WriteString("Orders by status:\n")
		for status, n := range s.ByStatus {
			fmt.Fprintf(&b, "- %s: %d\n", status, n)
		}
	}
	return b.String()
}
