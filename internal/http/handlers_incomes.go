package http

import (
	"log/slog"
	"net/http"

	"finorg/internal/core"
	"finorg/internal/forms"
	"finorg/internal/log"
	"finorg/internal/query"
)

type incomeRow struct {
	Description  string
	Amount       string
	ReceivedDate string
	Category     string
	IsRecurring  bool
}

type incomesPageData struct {
	pageData
	Form formView
}

func (s *Server) handleIncomesPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "incomes.html", incomesPageData{
		pageData: s.pageData(r, "incomes"),
		Form:     buildFormView(forms.IncomeSchema(), "Nova Receita", nil, nil, ""),
	})
}

func (s *Server) handleIncomesPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	incomes, err := query.FetchAs(r.Context(), s.queries, s.userKey(r.Context(), "incomes"),
		listFetcher[core.Income](s, "/incomes", true))
	if err != nil {
		slog.ErrorContext(r.Context(), "Incomes fetch failed", log.FieldError, err, log.FieldResource, "incomes")
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao carregar as receitas</div>`))
		return
	}

	rows := make([]incomeRow, 0, len(incomes))
	for _, in := range incomes {
		rows = append(rows, incomeRow{
			Description:  in.Description,
			Amount:       core.FormatBRL(in.Amount),
			ReceivedDate: in.ReceivedDate,
			Category:     string(in.Category),
			IsRecurring:  in.IsRecurring,
		})
	}
	s.renderTemplate(w, r, "incomes_list.html", struct{ Rows []incomeRow }{rows})
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	s.handleCreate(w, r, forms.IncomeSchema(), "Nova Receita", "Receita criada com sucesso")
}
