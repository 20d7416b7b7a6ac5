package gestao

import (
	"context"
	"fmt"
	"time"

	"gestao-report/internal/cache"

	"go.uber.org/zap"
)

// Window is the inclusive date range applied to dated resources.
type Window struct {
	Start string
	End   string
}

// WindowUntilToday spans from start to the current date.
func WindowUntilToday(start string) Window {
	return Window{Start: start, End: time.Now().Format("2006-01-02")}
}

// Loader orchestrates per-resource fetches: query-parameter construction,
// per-store and per-kind fan-out, and the optional on-disk cache. Loaders
// never fail — any degradation surfaces as an empty collection, and callers
// treat empty as "no data".
type Loader struct {
	client    *Client
	artifacts *cache.Dir
	logger    *zap.Logger
}

func NewLoader(client *Client, artifacts *cache.Dir, logger *zap.Logger) *Loader {
	return &Loader{
		client:    client,
		artifacts: artifacts,
		logger:    logger.Named("loader"),
	}
}

func (l *Loader) Stores(ctx context.Context) []Store {
	var stores []Store
	if l.artifacts.Load("lojas", &stores) {
		return stores
	}

	l.logger.Info("loading stores")
	stores = FetchAll[Store](ctx, l.client, "/lojas")
	l.logger.Info("stores loaded", zap.Int("count", len(stores)))

	l.artifacts.Save("lojas", stores)
	return stores
}

func (l *Loader) Payments(ctx context.Context, w Window) []Payment {
	var payments []Payment
	if l.artifacts.Load("recebimentos", &payments) {
		return payments
	}

	l.logger.Info("loading payments", zap.String("start", w.Start), zap.String("end", w.End))
	path := fmt.Sprintf("/recebimentos?data_inicio=%s&data_fim=%s", w.Start, w.End)
	payments = FetchAll[Payment](ctx, l.client, path)
	l.logger.Info("payments loaded", zap.Int("count", len(payments)))

	l.artifacts.Save("recebimentos", payments)
	return payments
}

// Sales fans out per store and per sale kind (regular and counter sale),
// concatenating in store order with the regular kind first.
func (l *Loader) Sales(ctx context.Context, w Window, stores []Store) []Sale {
	var sales []Sale
	if l.artifacts.Load("vendas", &sales) {
		return sales
	}

	l.logger.Info("loading sales", zap.Int("stores", len(stores)))
	for _, store := range stores {
		regular := fmt.Sprintf("/vendas?data_inicio=%s&data_fim=%s&loja_id=%s", w.Start, w.End, store.ID)
		counter := fmt.Sprintf("/vendas?tipo=vendas_balcao&data_inicio=%s&data_fim=%s&loja_id=%s", w.Start, w.End, store.ID)
		sales = append(sales, FetchAll[Sale](ctx, l.client, regular)...)
		sales = append(sales, FetchAll[Sale](ctx, l.client, counter)...)
	}
	l.logger.Info("sales loaded", zap.Int("count", len(sales)))

	l.artifacts.Save("vendas", sales)
	return sales
}

// ServiceOrders fans out per store, concatenating in store order.
func (l *Loader) ServiceOrders(ctx context.Context, w Window, stores []Store) []ServiceOrder {
	var orders []ServiceOrder
	if l.artifacts.Load("ordens_servicos", &orders) {
		return orders
	}

	l.logger.Info("loading service orders", zap.Int("stores", len(stores)))
	for _, store := range stores {
		path := fmt.Sprintf("/ordens_servicos?data_inicio=%s&data_fim=%s&loja_id=%s", w.Start, w.End, store.ID)
		orders = append(orders, FetchAll[ServiceOrder](ctx, l.client, path)...)
	}
	l.logger.Info("service orders loaded", zap.Int("count", len(orders)))

	l.artifacts.Save("ordens_servicos", orders)
	return orders
}

func (l *Loader) Products(ctx context.Context) []Product {
	var products []Product
	if l.artifacts.Load("produtos", &products) {
		return products
	}

	l.logger.Info("loading products")
	products = FetchAll[Product](ctx, l.client, "/produtos")
	l.logger.Info("products loaded", zap.Int("count", len(products)))

	l.artifacts.Save("produtos", products)
	return products
}

func (l *Loader) ProductGroups(ctx context.Context) []ProductGroup {
	var groups []ProductGroup
	if l.artifacts.Load("grupos_produtos", &groups) {
		return groups
	}

	l.logger.Info("loading product groups")
	groups = FetchAll[ProductGroup](ctx, l.client, "/grupos_produtos")
	l.logger.Info("product groups loaded", zap.Int("count", len(groups)))

	l.artifacts.Save("grupos_produtos", groups)
	return groups
}

func (l *Loader) Users(ctx context.Context) []User {
	var users []User
	if l.artifacts.Load("usuarios", &users) {
		return users
	}

	l.logger.Info("loading users")
	users = FetchAll[User](ctx, l.client, "/usuarios")
	l.logger.Info("users loaded", zap.Int("count", len(users)))

	l.artifacts.Save("usuarios", users)
	return users
}
