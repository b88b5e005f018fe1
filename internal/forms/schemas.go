package forms

// The four create forms of the dashboard. Field names follow the
// backend wire format; defaults reproduce the initial drafts of the
// original pages (empty strings, first enum value, today's date).

func CardSchema() Schema {
	return Schema{
		Resource: "cards",
		Fields: []Field{
			{Name: "name", Label: "Nome do Cartão", Kind: Text, Required: true, Placeholder: "Ex: Nubank Roxinho"},
			{Name: "lastFourDigits", Label: "Últimos 4 dígitos", Kind: Text, MaxLen: 4, Placeholder: "1234"},
			{Name: "brand", Label: "Bandeira", Kind: Text, Placeholder: "Ex: Visa, Mastercard"},
			{Name: "limit", Label: "Limite", Kind: Decimal, NonNegative: true},
			{Name: "closingDay", Label: "Dia de Fechamento", Kind: Integer, Required: true, Min: 1, Max: 31},
			{Name: "dueDay", Label: "Dia de Vencimento", Kind: Integer, Required: true, Min: 1, Max: 31},
			{Name: "color", Label: "Cor", Kind: Text, Required: true, Default: "#0ea5e9"},
		},
	}
}

func TransactionSchema() Schema {
	return Schema{
		Resource: "transactions",
		Fields: []Field{
			{Name: "cardId", Label: "Cartão", Kind: Text},
			{Name: "description", Label: "Descrição", Kind: Text, Required: true},
			{Name: "amount", Label: "Valor", Kind: Decimal, Required: true, NonNegative: true},
			{Name: "type", Label: "Tipo", Kind: Enum, Required: true, Options: []string{"EXPENSE", "INCOME"}},
			{Name: "category", Label: "Categoria", Kind: Text, Required: true},
			{Name: "date", Label: "Data", Kind: Date, Required: true, Default: "today"},
			{Name: "installments", Label: "Parcelas", Kind: Integer, Required: true, Min: 1, Max: 360, Default: "1"},
			{Name: "isRecurring", Label: "Recorrente", Kind: Bool},
			{Name: "notes", Label: "Observações", Kind: Text},
		},
	}
}

func IncomeSchema() Schema {
	return Schema{
		Resource: "incomes",
		Fields: []Field{
			{Name: "description", Label: "Descrição", Kind: Text, Required: true, Placeholder: "Ex: Salário de Dezembro"},
			{Name: "amount", Label: "Valor", Kind: Decimal, Required: true, NonNegative: true},
			{Name: "receivedDate", Label: "Data de Recebimento", Kind: Date, Required: true, Default: "today"},
			{Name: "isRecurring", Label: "Recorrente", Kind: Bool},
			{Name: "category", Label: "Categoria", Kind: Enum, Required: true, Options: []string{"salary", "freelance", "investment", "bonus", "other"}},
			{Name: "notes", Label: "Observações", Kind: Text},
		},
	}
}

func LoanSchema() Schema {
	return Schema{
		Resource: "loans",
		Fields: []Field{
			{Name: "description", Label: "Descrição", Kind: Text, Required: true},
			{Name: "totalAmount", Label: "Valor Total", Kind: Decimal, Required: true, NonNegative: true},
			{Name: "interestRate", Label: "Taxa de Juros (% a.a.)", Kind: Decimal, Required: true, NonNegative: true},
			{Name: "installments", Label: "Parcelas", Kind: Integer, Required: true, Min: 1, Max: 600},
			{Name: "dueDay", Label: "Dia de Vencimento", Kind: Integer, Required: true, Min: 1, Max: 31},
			{Name: "startDate", Label: "Data de Início", Kind: Date, Required: true, Default: "today"},
			{Name: "notes", Label: "Observações", Kind: Text},
		},
	}
}
