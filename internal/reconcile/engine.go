package reconcile

import (
	"strconv"
	"strings"
	"time"

	"gestao-report/internal/gestao"

	"go.uber.org/zap"
)

const (
	// financialStatusSettled marks a transaction as paid up on the upstream
	// side. Anything else is pending or cancelled and never reported.
	financialStatusSettled = 1

	// deferredMethod is the "to be arranged" placeholder the upstream uses
	// before a real payment method is chosen.
	deferredMethod = "A Combinar"

	sourceSale         = "Venda"
	sourceServiceOrder = "Ordem de serviço"

	noGroupLabel  = "Sem grupo"
	noSellerLabel = "Sem vendedor"

	itemTypeGroup    = "Grupo"
	itemTypeSubgroup = "Subgrupo"
	itemTypeService  = "Serviço"
)

// Input is everything a run fetched, held in memory for the duration of
// report assembly.
type Input struct {
	Payments      []gestao.Payment
	Sales         []gestao.Sale
	ServiceOrders []gestao.ServiceOrder
	Users         []gestao.User
	Groups        []gestao.ProductGroup
	Products      []gestao.Product
}

// Engine matches payments to the transactions they settle and flattens the
// qualifying transactions' line items into report rows.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Named("reconcile")}
}

// Reconcile produces the report rows and the fixed header list.
//
// A transaction is reported only when all three hold: its financial status is
// settled, its first payment method is not the deferred placeholder, and a
// payment description references its code. Missing sellers, groups and
// products degrade to fallback literals, never errors.
func (e *Engine) Reconcile(in Input) ([]Row, []string) {
	settled := settlementDates(in.Payments)
	idx := buildIndexes(in)

	var rows []Row
	keptSales, keptOrders := 0, 0

	for _, sale := range in.Sales {
		date, ok := settled[saleKey(sale.Code)]
		if !ok || !qualifies(sale.FinancialStatus, sale.Payments) {
			continue
		}
		keptSales++
		rows = append(rows, e.expand(transaction{
			code:         sale.Code,
			source:       sourceSale,
			storeName:    sale.StoreName,
			sellerID:     sale.SellerID,
			technicianID: sale.TechnicianID,
			notes:        sale.InternalNotes,
			payments:     sale.Payments,
			products:     sale.Products,
			services:     sale.Services,
		}, date, idx)...)
	}

	for _, order := range in.ServiceOrders {
		date, ok := settled[serviceOrderKey(order.Code)]
		if !ok || !qualifies(order.FinancialStatus, order.Payments) {
			continue
		}
		keptOrders++
		rows = append(rows, e.expand(transaction{
			code:         order.Code,
			source:       sourceServiceOrder,
			storeName:    order.StoreName,
			sellerID:     order.SellerID,
			technicianID: order.TechnicianID,
			notes:        order.InternalNotes,
			entryDate:    order.EntryDate,
			payments:     order.Payments,
			products:     order.Products,
			services:     order.Services,
		}, date, idx)...)
	}

	// Most recently appended rows come first.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}

	e.logger.Info("reconciliation finished",
		zap.Int("reconciled_references", len(settled)),
		zap.Int("sales_reported", keptSales),
		zap.Int("service_orders_reported", keptOrders),
		zap.Int("rows", len(rows)),
	)

	headers := make([]string, len(Headers))
	copy(headers, Headers)
	return rows, headers
}

// settlementDates maps each referenced transaction to the settlement date of
// the payment that names it. When several payments reference the same
// transaction, the one processed last wins, in input order.
func settlementDates(payments []gestao.Payment) map[string]string {
	dates := make(map[string]string, len(payments))
	for _, p := range payments {
		ref := ExtractReference(p.Description)
		if ref.Kind == KindOther {
			continue
		}
		dates[ref.Key()] = p.SettlementDate
	}
	return dates
}

func saleKey(code string) string {
	return string(KindSale) + "-" + code
}

func serviceOrderKey(code string) string {
	return string(KindServiceOrder) + "-" + code
}

func qualifies(status int, payments []gestao.PaymentEntry) bool {
	if status != financialStatusSettled {
		return false
	}
	if len(payments) > 0 && payments[0].Payment.Name == deferredMethod {
		return false
	}
	return true
}

// transaction is the kind-independent view the expansion works on. Sales
// leave entryDate blank.
type transaction struct {
	code         string
	source       string
	storeName    string
	sellerID     string
	technicianID string
	notes        string
	entryDate    string
	payments     []gestao.PaymentEntry
	products     []gestao.ProductItem
	services     []gestao.ServiceItem
}

func (e *Engine) expand(tx transaction, date string, idx indexes) []Row {
	totalPaid := sumPayments(tx.payments)
	year, month := splitDate(date)

	base := Row{
		Date:          date,
		Store:         tx.storeName,
		Year:          year,
		Month:         month,
		Source:        tx.source,
		SourceID:      tx.code,
		Technician:    idx.userName(tx.technicianID, ""),
		EntryDate:     tx.entryDate,
		PaymentMethod: paymentSummary(tx.payments),
	}
	primary := idx.userName(tx.sellerID, noSellerLabel)

	var rows []Row
	for _, item := range tx.products {
		line := item.Product
		row := base
		row.User = primary
		row.TotalValue = clamp(parseValue(line.TotalValue), totalPaid)
		row.Quantity = line.Quantity
		row.Item, row.ItemType = idx.groupLabel(line.ProductID)
		row.Product = line.Name
		rows = append(rows, row)
	}

	for _, item := range tx.services {
		line := item.Service
		clamped := clamp(parseValue(line.TotalValue), totalPaid)
		sellers := idx.sellerSet(tx.sellerID, tx.notes, primary)
		share := clamped / float64(len(sellers))
		for _, seller := range sellers {
			row := base
			row.User = seller
			row.TotalValue = share
			row.Quantity = line.Quantity
			row.Item = line.Name
			row.ItemType = itemTypeService
			rows = append(rows, row)
		}
	}

	return rows
}

type indexes struct {
	users    map[string]gestao.User
	userList []gestao.User
	groups   map[string]gestao.ProductGroup
	products map[string]gestao.Product
}

func buildIndexes(in Input) indexes {
	idx := indexes{
		users:    make(map[string]gestao.User, len(in.Users)),
		userList: in.Users,
		groups:   make(map[string]gestao.ProductGroup, len(in.Groups)),
		products: make(map[string]gestao.Product, len(in.Products)),
	}
	for _, u := range in.Users {
		idx.users[u.ID] = u
	}
	for _, g := range in.Groups {
		idx.groups[g.ID] = g
	}
	for _, p := range in.Products {
		idx.products[p.ID] = p
	}
	return idx
}

func (x indexes) userName(id, fallback string) string {
	if id == "" {
		return fallback
	}
	u, ok := x.users[id]
	if !ok {
		return fallback
	}
	return u.Name
}

// groupLabel resolves a product line to its group name and type via the
// product → group id chain.
func (x indexes) groupLabel(productID string) (string, string) {
	p, ok := x.products[productID]
	if !ok || p.GroupID == "" {
		return noGroupLabel, itemTypeGroup
	}
	g, ok := x.groups[p.GroupID]
	if !ok {
		return noGroupLabel, itemTypeGroup
	}
	if g.ParentID != "" {
		return g.Name, itemTypeSubgroup
	}
	return g.Name, itemTypeGroup
}

// sellerSet is the primary seller plus every user whose id appears inside the
// transaction's free-text internal notes, in user list order. The notes have
// no structured seller list; substring containment is all the source data
// supports.
func (x indexes) sellerSet(primaryID, notes, primaryName string) []string {
	sellers := []string{primaryName}
	if notes == "" {
		return sellers
	}
	seen := map[string]bool{primaryID: true}
	for _, u := range x.userList {
		if u.ID == "" || seen[u.ID] {
			continue
		}
		if strings.Contains(notes, u.ID) {
			sellers = append(sellers, u.Name)
			seen[u.ID] = true
		}
	}
	return sellers
}

func sumPayments(entries []gestao.PaymentEntry) float64 {
	var total float64
	for _, e := range entries {
		total += parseValue(e.Payment.Value)
	}
	return total
}

func parseValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}

func clamp(v, budget float64) float64 {
	if v > budget {
		v = budget
	}
	if v < 0 {
		return 0
	}
	return v
}

func splitDate(date string) (year, month string) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", ""
	}
	return t.Format("2006"), t.Format("01")
}

func paymentSummary(entries []gestao.PaymentEntry) string {
	var names []string
	seen := map[string]bool{}
	for _, e := range entries {
		name := e.Payment.Name
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return strings.Join(names, ", ")
}
