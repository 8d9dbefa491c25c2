package ai

import (
	"context"
	"time"

	"logikalmart.ca/storefront/api/pkg/models"
)

// AIReportResponse represents the structure of AI-generated reports
type AIReportResponse struct {
	Status      string     `json:"status"`
	Data        ReportData `json:"data"`
	GeneratedAt time.Time  `json:"generated_at"`
	AIEnabled   bool       `json:"ai_enabled"`
}

type ReportData struct {
	RawData    interface{} `json:"raw_data"`
	AIInsights string      `json:"ai_insights,omitempty"`
	Summary    string      `json:"summary"`
	Error      string      `json:"error,omitempty"`
}

// SalesSummary is the aggregate handed to the model alongside the raw
// order views.
type SalesSummary struct {
	TotalOrders    int     `json:"total_orders"`
	TotalRevenue   float64 `json:"total_revenue"`
	PendingCount   int     `json:"pending_count"`
	ShippedCount   int     `json:"shipped_count"`
	DeliveredCount int     `json:"delivered_count"`
}

func summarize(orders []models.OrderView) SalesSummary {
	s := SalesSummary{TotalOrders: len(orders)}
	for _, o := range orders {
		s.TotalRevenue += o.TotalPrice
		switch o.Status {
		case models.StatusPending:
			s.PendingCount++
		case models.StatusShipped:
			s.ShippedCount++
		case models.StatusDelivered:
			s.DeliveredCount++
		}
	}
	return s
}

// GenerateSalesReport generates AI-powered insights over the manager's
// all-orders view. The raw summary is always returned; the insights
// are attached only when the AI service is configured.
func GenerateSalesReport(ctx context.Context, orders []models.OrderView) *AIReportResponse {
	summary := summarize(orders)

	response := &AIReportResponse{
		Status:      "success",
		GeneratedAt: time.Now(),
		AIEnabled:   IsEnabled(),
		Data: ReportData{
			RawData: summary,
			Summary: "Sales data retrieved successfully",
		},
	}

	if IsEnabled() {
		userPrompt := formatSalesDataPrompt(summary, orders)
		aiInsights, err := generateCompletion(ctx, SalesReportSystemPrompt, userPrompt)
		if err != nil {
			response.Data.Error = "AI analysis failed: " + err.Error()
		} else {
			response.Data.AIInsights = aiInsights
			response.Data.Summary = "AI-generated sales insights and recommendations"
		}
	} else {
		response.Data.Summary = "Raw sales data (AI insights unavailable)"
	}

	return response
}
