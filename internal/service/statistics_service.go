package service

import (
	"context"

	"shopledger-backend/internal/analytics"
	"shopledger-backend/internal/domain"
	"shopledger-backend/internal/ledger"
)

type StatisticsService struct {
	Ledger ledger.Service
}

// Report computes KPIs and section statistics over the records the caller may see in
// [from, to]. Dates are DD.MM.YYYY.
func (s StatisticsService) Report(ctx context.Context, p domain.Principal, from, to, shopID string) (analytics.Report, error) {
	records, err := s.Ledger.RangeRecords(ctx, p, from, to, shopID)
	if err != nil {
		return analytics.Report{}, err
	}
	return analytics.Build(records), nil
}
