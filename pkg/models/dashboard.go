package models

import "rmsbilling/internal/money"

// Dashboard read models. All aggregation happens server-side; the console
// only renders these figures and performs no local computation on them.

// DashboardMetrics is the headline financial summary.
type DashboardMetrics struct {
	TotalReceivables        money.Amount `json:"totalReceivables"`
	TotalRevenue            money.Amount `json:"totalRevenue"`
	AverageCollectionPeriod float64      `json:"averageCollectionPeriod"`
	PendingInvoices         int          `json:"pendingInvoices"`
	TotalCreditNotes        int          `json:"totalCreditNotes"`
	Currency                string       `json:"currency"`
}

// RevenueTrendPoint is one point on the revenue-over-time chart.
type RevenueTrendPoint struct {
	Date                Date         `json:"date"`
	Revenue             money.Amount `json:"revenue"`
	PreviousYearRevenue money.Amount `json:"previousYearRevenue"`
}

// AgingBucket is one band of the receivables aging analysis.
type AgingBucket struct {
	Range  string       `json:"range"`
	Amount money.Amount `json:"amount"`
}

// CustomerRevenue is revenue grouped by customer type.
type CustomerRevenue struct {
	Type    string       `json:"type"`
	Revenue money.Amount `json:"revenue"`
}
