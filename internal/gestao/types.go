package gestao

import "encoding/json"

// Store is one physical shop. Sales and service orders are fetched per store.
type Store struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

// Payment is one settled receivable. Only the closed field set below is read
// by the reconciliation logic; everything else the API returns is kept in
// Extra verbatim for export and never inspected.
type Payment struct {
	ID             string `json:"id"`
	Description    string `json:"descricao"`
	SettlementDate string `json:"data_recebimento"`
	Value          string `json:"valor"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (p *Payment) UnmarshalJSON(b []byte) error {
	type payment Payment
	var core payment
	if err := json.Unmarshal(b, &core); err != nil {
		return err
	}
	core.Extra = extraFields(b, "id", "descricao", "data_recebimento", "valor")
	*p = Payment(core)
	return nil
}

// PaymentEntry is one payment-method entry nested in a transaction.
type PaymentEntry struct {
	Payment PaymentMethod `json:"pagamento"`
}

type PaymentMethod struct {
	Name  string `json:"nome_forma_pagamento"`
	Value string `json:"valor"`
}

// ProductItem wraps one product line item, mirroring the upstream single-key
// nesting.
type ProductItem struct {
	Product ProductLine `json:"produto"`
}

type ProductLine struct {
	ProductID  string  `json:"produto_id"`
	Name       string  `json:"nome_produto"`
	TotalValue string  `json:"valor_total"`
	Quantity   float64 `json:"quantidade"`
}

// ServiceItem wraps one service line item.
type ServiceItem struct {
	Service ServiceLine `json:"servico"`
}

type ServiceLine struct {
	Name       string  `json:"nome_servico"`
	TotalValue string  `json:"valor_total"`
	Quantity   float64 `json:"quantidade"`
}

// Sale is one sale transaction. Sale codes and service-order codes are
// separate namespaces and are never cross-matched.
type Sale struct {
	Code            string         `json:"codigo"`
	FinancialStatus int            `json:"situacao_financeiro"`
	Date            string         `json:"data"`
	StoreName       string         `json:"nome_loja"`
	SellerID        string         `json:"vendedor_id"`
	TechnicianID    string         `json:"tecnico_id"`
	Payments        []PaymentEntry `json:"pagamentos"`
	Products        []ProductItem  `json:"produtos"`
	Services        []ServiceItem  `json:"servicos"`
	InternalNotes   string         `json:"observacoes_interna"`

	Extra map[string]json.RawMessage `json:"-"`
}

var saleCoreFields = []string{
	"codigo", "situacao_financeiro", "data", "nome_loja", "vendedor_id",
	"tecnico_id", "pagamentos", "produtos", "servicos", "observacoes_interna",
}

func (s *Sale) UnmarshalJSON(b []byte) error {
	type sale Sale
	var core sale
	if err := json.Unmarshal(b, &core); err != nil {
		return err
	}
	core.Extra = extraFields(b, saleCoreFields...)
	*s = Sale(core)
	return nil
}

// ServiceOrder is one service-order transaction. Same closed field set as
// Sale plus the workshop entry date.
type ServiceOrder struct {
	Code            string         `json:"codigo"`
	FinancialStatus int            `json:"situacao_financeiro"`
	Date            string         `json:"data"`
	EntryDate       string         `json:"data_entrada"`
	StoreName       string         `json:"nome_loja"`
	SellerID        string         `json:"vendedor_id"`
	TechnicianID    string         `json:"tecnico_id"`
	Payments        []PaymentEntry `json:"pagamentos"`
	Products        []ProductItem  `json:"produtos"`
	Services        []ServiceItem  `json:"servicos"`
	InternalNotes   string         `json:"observacoes_interna"`

	Extra map[string]json.RawMessage `json:"-"`
}

func (s *ServiceOrder) UnmarshalJSON(b []byte) error {
	type serviceOrder ServiceOrder
	var core serviceOrder
	if err := json.Unmarshal(b, &core); err != nil {
		return err
	}
	core.Extra = extraFields(b, append([]string{"data_entrada"}, saleCoreFields...)...)
	*s = ServiceOrder(core)
	return nil
}

type Product struct {
	ID      string `json:"id"`
	Name    string `json:"nome"`
	GroupID string `json:"grupo_id"`
}

type ProductGroup struct {
	ID       string `json:"id"`
	Name     string `json:"nome"`
	ParentID string `json:"grupo_pai_id"`
}

type User struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
}

func (p Payment) MarshalJSON() ([]byte, error) {
	type payment Payment
	return mergeExtra(payment(p), p.Extra)
}

func (s Sale) MarshalJSON() ([]byte, error) {
	type sale Sale
	return mergeExtra(sale(s), s.Extra)
}

func (s ServiceOrder) MarshalJSON() ([]byte, error) {
	type serviceOrder ServiceOrder
	return mergeExtra(serviceOrder(s), s.Extra)
}

// mergeExtra re-encodes a record with its passthrough fields restored, so
// cache artifacts and JSON dumps round-trip the full upstream shape.
func mergeExtra(core any, extra map[string]json.RawMessage) ([]byte, error) {
	b, err := json.Marshal(core)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return b, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(b, &merged); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// extraFields collects every top-level field except the named ones. A payload
// that is not a JSON object yields nil.
func extraFields(b []byte, known ...string) map[string]json.RawMessage {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(b, &all); err != nil {
		return nil
	}
	for _, k := range known {
		delete(all, k)
	}
	if len(all) == 0 {
		return nil
	}
	return all
}

type pageMeta struct {
	NextPageURL string `json:"proxima_url"`
}

// pageEnvelope is the upstream response shape. Data is either a record list
// or a bare string signalling "no data" or a backend fault.
type pageEnvelope struct {
	Data json.RawMessage `json:"data"`
	Meta pageMeta        `json:"meta"`
}
