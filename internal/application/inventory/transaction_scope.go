package inventory

import (
	"context"

	"github.com/hortifruti/backend/internal/domain/breakage"
	"github.com/hortifruti/backend/internal/domain/catalog"
	"github.com/hortifruti/backend/internal/domain/inventory"
	"github.com/hortifruti/backend/internal/domain/purchasing"
	"github.com/hortifruti/backend/internal/domain/sales"
)

// TransactionScope runs a group of repository writes as one unit of work.
// Sale recording, breakage recording and purchase order approval all go
// through a scope so the same code path serves both write strategies.
type TransactionScope interface {
	// Execute runs fn with repositories bound to the scope. With a
	// transactional scope an error returned by fn rolls back every write.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories gives access to every repository a multi-step
// write touches. All repositories returned share the scope's connection.
type TransactionalRepositories interface {
	BatchRepo() inventory.StockBatchRepository
	ProductRepo() catalog.ProductRepository
	BreakageRepo() breakage.Repository
	SaleRepo() sales.Repository
	PurchaseOrderRepo() purchasing.PurchaseOrderRepository
}

// Repositories is a plain bundle of repositories
type Repositories struct {
	Batches        inventory.StockBatchRepository
	Products       catalog.ProductRepository
	Breakages      breakage.Repository
	Sales          sales.Repository
	PurchaseOrders purchasing.PurchaseOrderRepository
}

// NoOpTransactionScope runs fn directly against its repositories. Every
// write commits on its own, so a failure midway leaves earlier writes in
// place. This is the default write strategy.
type NoOpTransactionScope struct {
	repos Repositories
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over repos
func NewNoOpTransactionScope(repos Repositories) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: repos}
}

// Execute runs fn without a transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// BatchRepo returns the stock batch repository
func (s *NoOpTransactionScope) BatchRepo() inventory.StockBatchRepository {
	return s.repos.Batches
}

// ProductRepo returns the product repository
func (s *NoOpTransactionScope) ProductRepo() catalog.ProductRepository {
	return s.repos.Products
}

// BreakageRepo returns the breakage repository
func (s *NoOpTransactionScope) BreakageRepo() breakage.Repository {
	return s.repos.Breakages
}

// SaleRepo returns the sale repository
func (s *NoOpTransactionScope) SaleRepo() sales.Repository {
	return s.repos.Sales
}

// PurchaseOrderRepo returns the purchase order repository
func (s *NoOpTransactionScope) PurchaseOrderRepo() purchasing.PurchaseOrderRepository {
	return s.repos.PurchaseOrders
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
