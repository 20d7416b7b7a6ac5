package reconcile

import "gestao-report/internal/gestao"

// Summary counts how payment descriptions classified across a run.
type Summary struct {
	Total         int
	Sales         int
	ServiceOrders int
	Other         int
}

func Summarize(payments []gestao.Payment) Summary {
	s := Summary{Total: len(payments)}
	for _, p := range payments {
		switch ExtractReference(p.Description).Kind {
		case KindSale:
			s.Sales++
		case KindServiceOrder:
			s.ServiceOrders++
		default:
			s.Other++
		}
	}
	return s
}

// Percent of total, safe on an empty run.
func (s Summary) Percent(count int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(count) / float64(s.Total) * 100
}
