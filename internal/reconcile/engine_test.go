package reconcile_test

import (
	"testing"

	"gestao-report/internal/gestao"
	"gestao-report/internal/reconcile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEngine() *reconcile.Engine {
	return reconcile.NewEngine(zap.NewNop())
}

func payment(description, date string) gestao.Payment {
	return gestao.Payment{Description: description, SettlementDate: date}
}

func cardEntry(value string) gestao.PaymentEntry {
	return gestao.PaymentEntry{Payment: gestao.PaymentMethod{Name: "Cartão", Value: value}}
}

func productItem(productID, name, total string, qty float64) gestao.ProductItem {
	return gestao.ProductItem{Product: gestao.ProductLine{
		ProductID:  productID,
		Name:       name,
		TotalValue: total,
		Quantity:   qty,
	}}
}

func serviceItem(name, total string, qty float64) gestao.ServiceItem {
	return gestao.ServiceItem{Service: gestao.ServiceLine{
		Name:       name,
		TotalValue: total,
		Quantity:   qty,
	}}
}

func TestReconcileScenario(t *testing.T) {
	in := reconcile.Input{
		Payments: []gestao.Payment{payment("Venda de nº 14301", "2025-01-10")},
		Sales: []gestao.Sale{{
			Code:            "14301",
			FinancialStatus: 1,
			Payments:        []gestao.PaymentEntry{cardEntry("100")},
			Products:        []gestao.ProductItem{productItem("p1", "Widget", "100", 1)},
		}},
	}

	rows, headers := newEngine().Reconcile(in)

	require.Len(t, rows, 1)
	row := rows[0]
	assert.Equal(t, "2025-01-10", row.Date)
	assert.Equal(t, float64(100), row.TotalValue)
	assert.Equal(t, "Widget", row.Product)
	assert.Equal(t, float64(1), row.Quantity)
	assert.Equal(t, "2025", row.Year)
	assert.Equal(t, "01", row.Month)
	assert.Equal(t, "Venda", row.Source)
	assert.Equal(t, "14301", row.SourceID)
	assert.Equal(t, "Sem grupo", row.Item)
	assert.Equal(t, "Grupo", row.ItemType)
	assert.Equal(t, "Sem vendedor", row.User)
	assert.Equal(t, "Cartão", row.PaymentMethod)
	assert.Empty(t, row.EntryDate)

	assert.Equal(t, reconcile.Headers, headers)
	assert.Len(t, headers, 15)
}

func TestReconcileIdempotent(t *testing.T) {
	in := reconcile.Input{
		Payments: []gestao.Payment{
			payment("Venda de nº 1", "2025-02-01"),
			payment("Ordem de serviço de nº 2", "2025-02-02"),
		},
		Sales: []gestao.Sale{{
			Code:            "1",
			FinancialStatus: 1,
			Payments:        []gestao.PaymentEntry{cardEntry("50")},
			Products:        []gestao.ProductItem{productItem("p1", "A", "50", 1)},
		}},
		ServiceOrders: []gestao.ServiceOrder{{
			Code:            "2",
			FinancialStatus: 1,
			Payments:        []gestao.PaymentEntry{cardEntry("80")},
			Services:        []gestao.ServiceItem{serviceItem("Revisão", "80", 1)},
		}},
	}

	engine := newEngine()
	rows1, headers1 := engine.Reconcile(in)
	rows2, headers2 := engine.Reconcile(in)

	assert.Equal(t, rows1, rows2)
	assert.Equal(t, headers1, headers2)
}

func TestReconcileFiltersUnreconciledAndUnsettled(t *testing.T) {
	sale := func(code string, status int, first gestao.PaymentEntry) gestao.Sale {
		return gestao.Sale{
			Code:            code,
			FinancialStatus: status,
			Payments:        []gestao.PaymentEntry{first},
			Products:        []gestao.ProductItem{productItem("p", "X", "10", 1)},
		}
	}
	deferred := gestao.PaymentEntry{Payment: gestao.PaymentMethod{Name: "A Combinar"}}

	in := reconcile.Input{
		Payments: []gestao.Payment{payment("Venda de nº 1", "2025-03-01")},
		Sales: []gestao.Sale{
			sale("1", 1, cardEntry("10")), // reconciled and settled
			sale("2", 1, cardEntry("10")), // no payment references it
			sale("1", 0, cardEntry("10")), // not settled
			sale("1", 1, deferred),        // deferred placeholder method
		},
	}

	rows, _ := newEngine().Reconcile(in)

	require.Len(t, rows, 1)
	assert.Equal(t, "1", rows[0].SourceID)
	assert.Equal(t, "Cartão", rows[0].PaymentMethod)
}

func TestReconcileCodesAreNotCrossMatched(t *testing.T) {
	in := reconcile.Input{
		Payments: []gestao.Payment{payment("Venda de nº 7", "2025-04-01")},
		ServiceOrders: []gestao.ServiceOrder{{
			Code:            "7",
			FinancialStatus: 1,
			Payments:        []gestao.PaymentEntry{cardEntry("10")},
			Services:        []gestao.ServiceItem{serviceItem("Troca", "10", 1)},
		}},
	}

	rows, _ := newEngine().Reconcile(in)
	assert.Empty(t, rows)
}

func TestReconcileLastPaymentDateWins(t *testing.T) {
	in := reconcile.Input{
		Payments: []gestao.Payment{
			payment("Venda de nº 5", "2025-01-01"),
			payment("Venda de nº 5", "2025-01-15"),
		},
		Sales: []gestao.Sale{{
			Code:            "5",
			FinancialStatus: 1,
			Payments:        []gestao.PaymentEntry{cardEntry("30")},
			Products:        []gestao.ProductItem{productItem("p", "X", "30", 1)},
		}},
	}

	rows, _ := newEngine().Reconcile(in)

	require.Len(t, rows, 1)
	assert.Equal(t, "2025-01-15", rows[0].Date)
}

func TestReconcileClampsToTotalPaid(t *testing.T) {
	in := reconcile.Input{
		Payments: []gestao.Payment{payment("Venda de nº 9", "2025-05-01")},
		Sales: []gestao.Sale{{
			Code:            "9",
			FinancialStatus: 1,
			Payments:        []gestao.PaymentEntry{cardEntry("60"), cardEntry("40")},
			Products: []gestao.ProductItem{
				productItem("p1", "Caro", "150", 1),
				productItem("p2", "Barato", "20", 2),
			},
		}},
	}

	rows, _ := newEngine().Reconcile(in)

	require.Len(t, rows, 2)
	// Rows come back reversed, so p2 is first.
	assert.Equal(t, float64(20), rows[0].TotalValue)
	assert.Equal(t, float64(100), rows[1].TotalValue)
	for _, row := range rows {
		assert.GreaterOrEqual(t, row.TotalValue, float64(0))
		assert.LessOrEqual(t, row.TotalValue, float64(100))
	}
}

func TestReconcileServiceSellerSplit(t *testing.T) {
	in := reconcile.Input{
		Payments: []gestao.Payment{payment("Ordem de serviço de nº 3", "2025-06-01")},
		ServiceOrders: []gestao.ServiceOrder{{
			Code:            "3",
			FinancialStatus: 1,
			SellerID:        "u1",
			InternalNotes:   "dividir com u2 e u3",
			Payments:        []gestao.PaymentEntry{cardEntry("90")},
			Services:        []gestao.ServiceItem{serviceItem("Instalação", "90", 1)},
		}},
		Users: []gestao.User{
			{ID: "u1", Name: "Alice"},
			{ID: "u2", Name: "Bruno"},
			{ID: "u3", Name: "Carla"},
		},
	}

	rows, _ := newEngine().Reconcile(in)

	require.Len(t, rows, 3)
	// Reversed output: the last appended seller share comes first.
	assert.Equal(t, "Carla", rows[0].User)
	assert.Equal(t, "Bruno", rows[1].User)
	assert.Equal(t, "Alice", rows[2].User)

	var sum float64
	for _, row := range rows {
		sum += row.TotalValue
		assert.Equal(t, "Instalação", row.Item)
		assert.Equal(t, "Serviço", row.ItemType)
	}
	assert.InDelta(t, 90, sum, 1e-9)
}

func TestReconcileGroupLabels(t *testing.T) {
	in := reconcile.Input{
		Payments: []gestao.Payment{payment("Venda de nº 11", "2025-07-01")},
		Sales: []gestao.Sale{{
			Code:            "11",
			FinancialStatus: 1,
			Payments:        []gestao.PaymentEntry{cardEntry("300")},
			Products: []gestao.ProductItem{
				productItem("p-top", "Pneu", "100", 1),
				productItem("p-sub", "Câmara", "100", 1),
				productItem("p-missing", "Avulso", "100", 1),
			},
		}},
		Products: []gestao.Product{
			{ID: "p-top", Name: "Pneu", GroupID: "g1"},
			{ID: "p-sub", Name: "Câmara", GroupID: "g2"},
		},
		Groups: []gestao.ProductGroup{
			{ID: "g1", Name: "Rodagem"},
			{ID: "g2", Name: "Acessórios", ParentID: "g1"},
		},
	}

	rows, _ := newEngine().Reconcile(in)

	require.Len(t, rows, 3)
	// Reversed append order.
	assert.Equal(t, "Sem grupo", rows[0].Item)
	assert.Equal(t, "Grupo", rows[0].ItemType)
	assert.Equal(t, "Acessórios", rows[1].Item)
	assert.Equal(t, "Subgrupo", rows[1].ItemType)
	assert.Equal(t, "Rodagem", rows[2].Item)
	assert.Equal(t, "Grupo", rows[2].ItemType)
}

func TestReconcileRowOrderMostRecentFirst(t *testing.T) {
	in := reconcile.Input{
		Payments: []gestao.Payment{
			payment("Venda de nº 1", "2025-08-01"),
			payment("Ordem de serviço de nº 2", "2025-08-02"),
		},
		Sales: []gestao.Sale{{
			Code:            "1",
			FinancialStatus: 1,
			Payments:        []gestao.PaymentEntry{cardEntry("10")},
			Products:        []gestao.ProductItem{productItem("p", "X", "10", 1)},
		}},
		ServiceOrders: []gestao.ServiceOrder{{
			Code:            "2",
			FinancialStatus: 1,
			EntryDate:       "2025-07-20",
			Payments:        []gestao.PaymentEntry{cardEntry("10")},
			Services:        []gestao.ServiceItem{serviceItem("Ajuste", "10", 1)},
		}},
	}

	rows, _ := newEngine().Reconcile(in)

	require.Len(t, rows, 2)
	assert.Equal(t, "Ordem de serviço", rows[0].Source)
	assert.Equal(t, "2025-07-20", rows[0].EntryDate)
	assert.Equal(t, "Venda", rows[1].Source)
	assert.Empty(t, rows[1].EntryDate)
}

func TestReconcileEmptyLineItemsYieldNoRows(t *testing.T) {
	in := reconcile.Input{
		Payments: []gestao.Payment{payment("Venda de nº 4", "2025-09-01")},
		Sales: []gestao.Sale{{
			Code:            "4",
			FinancialStatus: 1,
			Payments:        []gestao.PaymentEntry{cardEntry("10")},
		}},
	}

	rows, headers := newEngine().Reconcile(in)
	assert.Empty(t, rows)
	assert.Equal(t, reconcile.Headers, headers)
}

func TestSummarize(t *testing.T) {
	s := reconcile.Summarize([]gestao.Payment{
		payment("Venda de nº 1", ""),
		payment("Venda de nº 2", ""),
		payment("Ordem de serviço de nº 3", ""),
		payment("Transferência interna", ""),
	})

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Sales)
	assert.Equal(t, 1, s.ServiceOrders)
	assert.Equal(t, 1, s.Other)
	assert.InDelta(t, 50, s.Percent(s.Sales), 1e-9)
}
