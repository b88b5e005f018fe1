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

type cardRow struct {
	Name       string
	LastFour   string
	Brand      string
	Limit      string
	ClosingDay int
	DueDay     int
	Color      string
}

type cardsPageData struct {
	pageData
	Form formView
}

func (s *Server) handleCardsPage(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "cards.html", cardsPageData{
		pageData: s.pageData(r, "cards"),
		Form:     buildFormView(forms.CardSchema(), "Novo Cartão", nil, nil, ""),
	})
}

func (s *Server) handleCardsPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	cards, err := query.FetchAs(r.Context(), s.queries, s.userKey(r.Context(), "cards"),
		listFetcher[core.Card](s, "/cards", false))
	if err != nil {
		slog.ErrorContext(r.Context(), "Cards fetch failed", log.FieldError, err, log.FieldResource, "cards")
		_, _ = w.Write([]byte(`<div class="placeholder">Erro ao carregar os cartões</div>`))
		return
	}

	rows := make([]cardRow, 0, len(cards))
	for _, c := range cards {
		row := cardRow{
			Name:       c.Name,
			LastFour:   c.LastFourDigits,
			Brand:      c.Brand,
			Limit:      "—",
			ClosingDay: c.ClosingDay,
			DueDay:     c.DueDay,
			Color:      c.Color,
		}
		if c.Limit != nil {
			row.Limit = core.FormatBRL(*c.Limit)
		}
		rows = append(rows, row)
	}
	s.renderTemplate(w, r, "cards_list.html", struct {
		Rows  []cardRow
		Count string
	}{rows, strconv.Itoa(len(rows))})
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	s.handleCreate(w, r, forms.CardSchema(), "Novo Cartão", "Cartão criado com sucesso")
}
