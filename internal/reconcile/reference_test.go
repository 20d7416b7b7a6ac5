package reconcile_test

import (
	"testing"

	"gestao-report/internal/reconcile"

	"github.com/stretchr/testify/assert"
)

func TestExtractReferenceSale(t *testing.T) {
	for _, description := range []string{
		"Venda de nº 123",
		"Venda de n° 123",
		"Venda de no 123",
		"VENDA DE Nº 123",
		"venda de nº 123",
		"Recebimento da Venda de nº 123 em dinheiro",
	} {
		ref := reconcile.ExtractReference(description)
		assert.Equal(t, reconcile.KindSale, ref.Kind, description)
		assert.Equal(t, 123, ref.Code, description)
	}
}

func TestExtractReferenceServiceOrder(t *testing.T) {
	for _, description := range []string{
		"Ordem de serviço de nº 45",
		"Ordem de servico de nº 45",
		"Ordem de serviço de n° 45",
		"Ordem de serviço de no 45",
		"ORDEM DE SERVIÇO DE Nº 45",
	} {
		ref := reconcile.ExtractReference(description)
		assert.Equal(t, reconcile.KindServiceOrder, ref.Kind, description)
		assert.Equal(t, 45, ref.Code, description)
	}
}

func TestExtractReferenceOther(t *testing.T) {
	for _, description := range []string{
		"",
		"Aluguel de janeiro",
		"Venda balcão",
		"Ordem de serviço",
		"Venda de nº",
	} {
		ref := reconcile.ExtractReference(description)
		assert.Equal(t, reconcile.KindOther, ref.Kind, description)
		assert.Zero(t, ref.Code, description)
	}
}

func TestExtractReferenceSaleTriedFirst(t *testing.T) {
	// A description carrying both patterns resolves as a sale.
	ref := reconcile.ExtractReference("Venda de nº 10 referente a Ordem de serviço de nº 20")
	assert.Equal(t, reconcile.KindSale, ref.Kind)
	assert.Equal(t, 10, ref.Code)
}

func TestReferenceKeyScopesByKind(t *testing.T) {
	sale := reconcile.Reference{Kind: reconcile.KindSale, Code: 7}
	order := reconcile.Reference{Kind: reconcile.KindServiceOrder, Code: 7}
	assert.NotEqual(t, sale.Key(), order.Key())
}
