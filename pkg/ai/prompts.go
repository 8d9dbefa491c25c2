package ai

import (
	"fmt"
	"strings"

	"logikalmart.ca/storefront/api/pkg/models"
)

const SalesReportSystemPrompt = `You are a professional business analyst specializing in e-commerce sales data analysis.
Generate concise, actionable insights from storefront order data. Focus on:
- Order volume and revenue trends
- Fulfilment health (orders stuck in Pending or Shipped)
- Best-selling products and categories
- Specific recommendations for business decisions
Keep responses to 3-4 paragraphs maximum.`

// formatSalesDataPrompt renders the order summary and a capped sample
// of recent orders into a prompt the model can work with.
func formatSalesDataPrompt(summary SalesSummary, orders []models.OrderView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Storefront order snapshot:\n")
	fmt.Fprintf(&b, "- Total orders: %d\n", summary.TotalOrders)
	fmt.Fprintf(&b, "- Total revenue: %.2f\n", summary.TotalRevenue)
	fmt.Fprintf(&b, "- Pending: %d, Shipped: %d, Delivered: %d\n\n",
		summary.PendingCount, summary.ShippedCount, summary.DeliveredCount)

	b.WriteString("Most recent orders:\n")
	limit := len(orders)
	if limit > 25 {
		limit = 25
	}
	for _, o := range orders[:limit] {
		fmt.Fprintf(&b, "- %s x%d (%s) total %.2f status %s\n",
			o.Product.Name, o.Quantity, o.Product.Category, o.TotalPrice, o.Status)
	}
	return b.String()
}
