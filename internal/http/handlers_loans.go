package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"finorg/internal/core"
	"finorg/internal/forms"
	"finorg/internal/log"
	"finorg/internal/query"
)

type loanRow struct {
	Description  string
	TotalAmount  string
	InterestRate string
	Installments int
	Installment  string
	DueDay       int
	StartDate    string
}

type loansPageData struct {
	pageData
	Form formView
}

func (s *Server) handleLoansPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "loans.html", loansPageData{
		pageData: s.pageData(r, "loans"),
		Form:     buildFormView(forms.LoanSchema(), "Novo Empréstimo", nil, nil, ""),
	})
}

func (s *Server) handleLoansPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	loans, err := query.FetchAs(r.Context(), s.queries, s.userKey(r.Context(), "loans"),
		listFetcher[core.Loan](s, "/loans", true))
	if err != nil {
		slog.ErrorContext(r.Context(), "Loans fetch failed", log.FieldError, err, log.FieldResource, "loans")
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao carregar os empréstimos</div>`))
		return
	}

	rows := make([]loanRow, 0, len(loans))
	for _, l := range loans {
		row := loanRow{
			Description:  l.Description,
			TotalAmount:  core.FormatBRL(l.TotalAmount),
			InterestRate: core.FormatPercent(l.InterestRate),
			Installments: l.Installments,
			DueDay:       l.DueDay,
			StartDate:    l.StartDate,
		}
		// Plain per-installment figure for display; the backend owns the
		// real amortization math.
		if l.Installments > 0 {
			row.Installment = core.FormatBRL(l.TotalAmount/float64(l.Installments)) + " × " + strconv.Itoa(l.Installments)
		}
		rows = append(rows, row)
	}
	s.renderTemplate(w, r, "loans_list.html", struct{ Rows []loanRow }{rows})
}

func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	s.handleCreate(w, r, forms.LoanSchema(), "Novo Empréstimo", "Empréstimo criado com sucesso")
}
