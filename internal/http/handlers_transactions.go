package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"finorg/internal/core"
	"finorg/internal/forms"
	"finorg/internal/log"
	"finorg/internal/query"
)

type transactionRow struct {
	Description  string
	Amount       string
	IsExpense    bool
	Category     string
	Date         string
	Installments string
	IsRecurring  bool
}

type transactionsPageData struct {
	pageData
	Form formView
}

func (s *Server) handleTransactionsPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "transactions.html", transactionsPageData{
		pageData: s.pageData(r, "transactions"),
		Form:     buildFormView(forms.TransactionSchema(), "Nova Transação", nil, nil, ""),
	})
}

func (s *Server) handleTransactionsPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	txs, err := query.FetchAs(r.Context(), s.queries, s.userKey(r.Context(), "transactions"),
		listFetcher[core.Transaction](s, "/transactions", false))
	if err != nil {
		slog.ErrorContext(r.Context(), "Transactions fetch failed", log.FieldError, err, log.FieldResource, "transactions")
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao carregar as transações</div>`))
		return
	}

	rows := make([]transactionRow, 0, len(txs))
	for _, t := range txs {
		row := transactionRow{
			Description: t.Description,
			Amount:      core.FormatBRL(t.Amount),
			IsExpense:   t.Type == core.TypeExpense,
			Category:    t.Category,
			Date:        t.Date,
			IsRecurring: t.IsRecurring,
		}
		if t.Installments > 1 {
			if t.CurrentInstallment > 0 {
				row.Installments = fmt.Sprintf("%d/%d", t.CurrentInstallment, t.Installments)
			} else {
				row.Installments = fmt.Sprintf("%dx", t.Installments)
			}
		}
		rows = append(rows, row)
	}
	s.renderTemplate(w, r, "transactions_list.html", struct{ Rows []transactionRow }{rows})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	s.handleCreate(w, r, forms.TransactionSchema(), "Nova Transação", "Transação criada com sucesso")
}
