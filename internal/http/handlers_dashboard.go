package http

import (
	"log/slog"
	"net/http"

	"finorg/internal/core"
	"finorg/internal/log"
	"finorg/internal/query"
	"finorg/internal/session"
)

// pageData is the shared render model for full pages behind auth.
type pageData struct {
	User   session.User
	Active string
}

func (s *Server) pageData(r *http.Request, active string) pageData {
	sess, _ := session.FromContext(r.Context())
	return pageData{User: sess.User, Active: active}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "dashboard.html", s.pageData(r, "dashboard"))
}

// summaryView is the display model of the financial summary: all
// figures pre-formatted, bar widths scaled against the top category.
type summaryView struct {
	TotalIncome   string
	TotalExpenses string
	Balance       string
	SavingsRate   string
	Negative      bool
	Categories    []categoryRow
}

type categoryRow struct {
	Name   string
	Amount string
	Width  int
}

func buildSummaryView(sum core.FinancialSummary) summaryView {
	view := summaryView{
		TotalIncome:   core.FormatBRL(sum.TotalIncome),
		TotalExpenses: core.FormatBRL(sum.TotalExpenses),
		Balance:       core.FormatBRL(sum.Balance),
		SavingsRate:   core.FormatPercent(sum.SavingsRate),
		Negative:      sum.Balance < 0,
	}

	var max float64
	for _, c := range sum.TopExpenseCategories {
		if c.Amount > max {
			max = c.Amount
		}
	}
	for _, c := range sum.TopExpenseCategories {
		width := 0
		if max > 0 && c.Amount > 0 {
			width = int(c.Amount/max*100 + 0.5)
			if width < 2 {
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		view.Categories = append(view.Categories, categoryRow{
			Name:   c.Category,
			Amount: core.FormatBRL(c.Amount),
			Width:  width,
		})
	}
	return view
}

// handleSummaryPartial renders the financial summary card.
func (s *Server) handleSummaryPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	sum, err := query.FetchAs(r.Context(), s.queries, s.userKey(r.Context(), "summary"), s.fetchSummary)
	if err != nil {
		slog.ErrorContext(r.Context(), "Summary fetch failed", log.FieldError, err, log.FieldOperation, log.OpFetch)
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao carregar o resumo</div>`))
		return
	}
	s.renderTemplate(w, r, "summary.html", buildSummaryView(sum))
}

type insightRow struct {
	Title       string
	Description string
	IconClass   string
}

func buildInsightRows(insights []core.Insight) []insightRow {
	rows := make([]insightRow, 0, len(insights))
	for _, in := range insights {
		rows = append(rows, insightRow{
			Title:       in.Title,
			Description: in.Description,
			IconClass:   in.Type.IconClass(),
		})
	}
	return rows
}

// handleInsightsPartial renders the insights card.
func (s *Server) handleInsightsPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	insights, err := query.FetchAs(r.Context(), s.queries, s.userKey(r.Context(), "insights"), s.fetchInsights)
	if err != nil {
		slog.ErrorContext(r.Context(), "Insights fetch failed", log.FieldError, err, log.FieldOperation, log.OpFetch)
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao carregar as análises</div>`))
		return
	}
	s.renderTemplate(w, r, "insights.html", struct{ Insights []insightRow }{buildInsightRows(insights)})
}

// handleGenerateInsights asks the backend to recompute insights, then
// serves the refreshed insights card. The summary card refreshes itself
// off the insights:generated trigger.
func (s *Server) handleGenerateInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}

	if err := s.generateInsight.Run(r.Context(), struct{}{}); err != nil {
		slog.ErrorContext(r.Context(), "Insight generation failed", log.FieldError, err, log.FieldOperation, log.OpMutate)
		BadGatewayError("Não foi possível gerar as análises").
			TriggerErrorNotification("Não foi possível gerar as análises").
			Write(w)
		return
	}

	insights, err := query.FetchAs(r.Context(), s.queries, s.userKey(r.Context(), "insights"), s.fetchInsights)
	if err != nil {
		BadGatewayError("Não foi possível carregar as análises").Write(w)
		return
	}
	body, err := s.renderToString(r, "insights.html", struct{ Insights []insightRow }{buildInsightRows(insights)})
	if err != nil {
		InternalServerError("Erro de renderização").Write(w)
		return
	}

	NewHTMXResponse().
		TriggerInsightsGenerated().
		TriggerSuccessNotification("Análises atualizadas").
		BodyHTML(body).
		Write(w)
}
