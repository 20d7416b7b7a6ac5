package reconcile

// Headers is the fixed export column set, independent of which optional
// fields any individual transaction happened to populate.
var Headers = []string{
	"Data",
	"Loja",
	"Ano",
	"Mês",
	"Usuário",
	"Valor total",
	"Quantidade",
	"Item",
	"Tipo item",
	"Origem",
	"ID origem",
	"Produto",
	"Técnico",
	"Data entrada",
	"Forma pagamento",
}

// Row is one denormalized report line: one sold product, or one seller's
// share of one sold service.
type Row struct {
	Date          string
	Store         string
	Year          string
	Month         string
	User          string
	TotalValue    float64
	Quantity      float64
	Item          string
	ItemType      string
	Source        string
	SourceID      string
	Product       string
	Technician    string
	EntryDate     string
	PaymentMethod string
}

// Record maps the row onto the export header names.
func (r Row) Record() map[string]any {
	return map[string]any{
		"Data":            r.Date,
		"Loja":            r.Store,
		"Ano":             r.Year,
		"Mês":             r.Month,
		"Usuário":         r.User,
		"Valor total":     r.TotalValue,
		"Quantidade":      r.Quantity,
		"Item":            r.Item,
		"Tipo item":       r.ItemType,
		"Origem":          r.Source,
		"ID origem":       r.SourceID,
		"Produto":         r.Product,
		"Técnico":         r.Technician,
		"Data entrada":    r.EntryDate,
		"Forma pagamento": r.PaymentMethod,
	}
}
