package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"

	"shopledger-backend/internal/ledger"
	"shopledger-backend/internal/money"
	"shopledger-backend/internal/server/authctx"
)

type DailyRecordHandler struct {
	Ledger ledger.Service
}

func (h DailyRecordHandler) RegisterRoutes(r chi.Router) {
	r.Post("/daily-records", h.create)
	r.Get("/daily-records", h.list)
	r.Get("/daily-records/by-date", h.byDate)
	r.Get("/daily-records/export", h.export)
	r.Get("/daily-records/{id}", h.get)
	r.Patch("/daily-records/{id}", h.update)
	r.Delete("/daily-records/{id}", h.delete)
}

type amountsPayload struct {
	RevenueMainWithMargin     money.Amount `json:"revenueMainWithMargin"`
	RevenueMainWithoutMargin  money.Amount `json:"revenueMainWithoutMargin"`
	RevenueOrderWithMargin    money.Amount `json:"revenueOrderWithMargin"`
	RevenueOrderWithoutMargin money.Amount `json:"revenueOrderWithoutMargin"`
	MainStockValue            money.Amount `json:"mainStockValue"`
	OrderStockValue           money.Amount `json:"orderStockValue"`
}

func (p amountsPayload) amounts() ledger.Amounts {
	return ledger.Amounts{
		RevenueMainWithMargin:     p.RevenueMainWithMargin,
		RevenueMainWithoutMargin:  p.RevenueMainWithoutMargin,
		RevenueOrderWithMargin:    p.RevenueOrderWithMargin,
		RevenueOrderWithoutMargin: p.RevenueOrderWithoutMargin,
		MainStockValue:            p.MainStockValue,
		OrderStockValue:           p.OrderStockValue,
	}
}

func (h DailyRecordHandler) create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShopID     string `json:"shopId"`
		RecordDate string `json:"recordDate"`
		amountsPayload
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	view, err := h.Ledger.Create(r.Context(), authctx.FromContext(r.Context()), ledger.CreateInput{
		ShopID:     req.ShopID,
		RecordDate: req.RecordDate,
		Amounts:    req.amounts(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, recordResponse(view))
}

func (h DailyRecordHandler) list(w http.ResponseWriter, r *http.Request) {
	views, err := h.Ledger.ListAll(r.Context(), authctx.FromContext(r.Context()), r.URL.Query().Get("shopId"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordsResponse(views))
}

func (h DailyRecordHandler) byDate(w http.ResponseWriter, r *http.Request) {
	q := parseRangeQuery(r)
	views, err := h.Ledger.ListByDateRange(r.Context(), authctx.FromContext(r.Context()), q.From, q.To, q.ShopID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordsResponse(views))
}

func (h DailyRecordHandler) get(w http.ResponseWriter, r *http.Request) {
	view, err := h.Ledger.GetByID(r.Context(), authctx.FromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(view))
}

func (h DailyRecordHandler) update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RecordDate *string `json:"recordDate"`
		amountsPayload
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	view, err := h.Ledger.UpdateByID(r.Context(), authctx.FromContext(r.Context()), chi.URLParam(r, "id"), ledger.Patch{
		RecordDate: req.RecordDate,
		Amounts:    req.amounts(),
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recordResponse(view))
}

func (h DailyRecordHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Ledger.DeleteByID(r.Context(), authctx.FromContext(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h DailyRecordHandler) export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "xlsx" && format != "excel" {
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
		return
	}

	q := parseRangeQuery(r)
	views, err := h.Ledger.ListByDateRange(r.Context(), authctx.FromContext(r.Context()), q.From, q.To, q.ShopID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	filenameSuffix := fmt.Sprintf("%s_%s", compactDate(q.From), compactDate(q.To))

	switch format {
	case "csv":
		data, err := exportRecordsCSV(views)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"daily_records_%s.csv\"", filenameSuffix))
		_, _ = w.Write(data)
	default:
		data, err := exportRecordsXLSX(views)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"daily_records_%s.xlsx\"", filenameSuffix))
		_, _ = w.Write(data)
	}
}

// compactDate turns DD.MM.YYYY into YYYYMMDD for file names.
func compactDate(s string) string {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return strings.ReplaceAll(s, ".", "")
	}
	return parts[2] + parts[1] + parts[0]
}

var exportHeader = []string{
	"Date", "Shop ID",
	"Main Revenue (with margin)", "Main Revenue (without margin)",
	"Order Revenue (with margin)", "Order Revenue (without margin)",
	"Main Stock Value", "Order Stock Value",
}

func exportRow(v ledger.RecordView) []string {
	return []string{
		v.RecordDate,
		v.ShopID,
		money.Format(v.RevenueMainWithMargin),
		money.Format(v.RevenueMainWithoutMargin),
		money.Format(v.RevenueOrderWithMargin),
		money.Format(v.RevenueOrderWithoutMargin),
		money.Format(v.MainStockValue),
		money.Format(v.OrderStockValue),
	}
}

func exportRecordsCSV(views []ledger.RecordView) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write(exportHeader)
	for _, v := range views {
		_ = w.Write(exportRow(v))
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func exportRecordsXLSX(views []ledger.RecordView) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Daily Records"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for c, v := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for i, v := range views {
		row := i + 2
		values := []any{
			v.RecordDate,
			v.ShopID,
			v.RevenueMainWithMargin.InexactFloat64(),
			v.RevenueMainWithoutMargin.InexactFloat64(),
			v.RevenueOrderWithMargin.InexactFloat64(),
			v.RevenueOrderWithoutMargin.InexactFloat64(),
			v.MainStockValue.InexactFloat64(),
			v.OrderStockValue.InexactFloat64(),
		}
		for c, val := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row)
			_ = f.SetCellValue(sheet, cell, val)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "B", 38)
	_ = f.SetColWidth(sheet, "C", "H", 22)

	style, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	_ = f.SetCellStyle(sheet, "A1", "H1", style)

	if len(views) > 0 {
		numFmt, _ := f.NewStyle(&excelize.Style{NumFmt: 4})
		last, _ := excelize.CoordinatesToCellName(8, len(views)+1)
		_ = f.SetCellStyle(sheet, "C2", last, numFmt)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func recordResponse(v ledger.RecordView) map[string]any {
	return map[string]any{
		"id":                        v.ID,
		"shopId":                    v.ShopID,
		"recordDate":                v.RecordDate,
		"revenueMainWithMargin":     money.Number(v.RevenueMainWithMargin),
		"revenueMainWithoutMargin":  money.Number(v.RevenueMainWithoutMargin),
		"revenueOrderWithMargin":    money.Number(v.RevenueOrderWithMargin),
		"revenueOrderWithoutMargin": money.Number(v.RevenueOrderWithoutMargin),
		"mainStockValue":            money.Number(v.MainStockValue),
		"orderStockValue":           money.Number(v.OrderStockValue),
		"createdAt":                 v.CreatedAt,
		"updatedAt":                 v.UpdatedAt,
	}
}

func recordsResponse(views []ledger.RecordView) []map[string]any {
	out := make([]map[string]any, 0, len(views))
	for _, v := range views {
		out = append(out, recordResponse(v))
	}
	return out
}
