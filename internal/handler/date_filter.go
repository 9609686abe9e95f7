package handler

import (
	"net/http"
	"strings"
)

// rangeQuery reads the fromDate/toDate/shopId query parameters shared by listing, export and
// statistics endpoints. Dates stay in DD.MM.YYYY; the ledger parses them.
type rangeQuery struct {
	From   string
	To     string
	ShopID string
}

func parseRangeQuery(r *http.Request) rangeQuery {
	q := r.URL.Query()
	return rangeQuery{
		From:   strings.TrimSpace(q.Get("fromDate")),
		To:     strings.TrimSpace(q.Get("toDate")),
		ShopID: strings.TrimSpace(q.Get("shopId")),
	}
}
