package taxhandler

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"takehome/internal/domain/tax"
	"takehome/internal/transport/http/api"
	"takehome/internal/transport/http/middleware"
	"takehome/internal/transport/http/shared"
)

func (h *Handler) handleSummaryPDF(w http.ResponseWriter, r *http.Request) {
	if !h.requireQuery(w, r, "state") {
		return
	}
	query := r.URL.Query()
	v := shared.NewValidator()
	income, _ := v.Float("income", query.Get("income"))
	year := v.OptionalYear("year", query.Get("year"))
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	result, err := h.Service.Combined(income, query.Get("state"), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := writeSummaryPDF(&buf, result); err != nil {
		h.Logger.Error("render summary failed", zap.Error(err))
		api.Fail(w, http.StatusInternalServerError, "render_failed", "failed to render summary", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=takehome-%s-%d.pdf", result.State, result.Year))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeSummaryPDF(w io.Writer, result tax.CombinedResult) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Take-home summary %d", result.Year), false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Take-home summary")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Tax year: %d", result.Year))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("State: %s (%s)", result.State, tax.StateNames[result.State]))
	pdf.Ln(10)

	rows := []struct {
		label string
		value float64
	}{
		{"Gross income", result.GrossIncome},
		{"Federal taxable income", result.FederalTaxableIncome},
		{"Federal tax", result.FederalTax},
		{"State taxable income", result.StateTaxableIncome},
		{"State tax", result.StateTax},
		{"Take-home pay", result.TakehomePay},
		{"Monthly take-home", result.TakehomePay / 12},
	}
	for _, row := range rows {
		pdf.CellFormat(80, 8, row.label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(50, 8, fmt.Sprintf("%.2f", row.value), "1", 1, "R", false, 0, "")
	}
	return pdf.Output(w)
}
