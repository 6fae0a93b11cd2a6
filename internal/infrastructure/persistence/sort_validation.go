package persistence

import (
	"strings"

	"github.com/hortifruti/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// sortColumns maps the sort keys a listing accepts to table columns.
// Anything outside the map never reaches an ORDER BY clause.
type sortColumns struct {
	columns  map[string]string
	fallback string
}

func newSortColumns(fallback string, keys ...string) sortColumns {
	cols := make(map[string]string, len(keys)+1)
	for _, k := range append(keys, fallback) {
		cols[k] = k
	}
	return sortColumns{columns: cols, fallback: fallback}
}

// column resolves a requested key, falling back to the default column
func (s sortColumns) column(key string) string {
	if col, ok := s.columns[strings.TrimSpace(key)]; ok {
		return col
	}
	return s.fallback
}

// orderClause builds "<column> <ASC|DESC>"; an unknown direction sorts descending
func (s sortColumns) orderClause(f shared.Filter) string {
	dir := "DESC"
	if strings.EqualFold(strings.TrimSpace(f.OrderDir), "asc") {
		dir = "ASC"
	}
	return s.column(f.OrderBy) + " " + dir
}

var (
	productSort       = newSortColumns("name", "code", "sale_price", "cost_price", "created_at")
	breakageSort      = newSortColumns("created_at", "quantity", "total_loss", "reason")
	saleSort          = newSortColumns("created_at", "total", "items_count")
	purchaseOrderSort = newSortColumns("created_at", "order_number", "received_at", "status")
)

// applyPaging orders by a whitelisted column and pages when PageSize > 0.
// Ties are broken by id so paging is stable.
func applyPaging(query *gorm.DB, filter shared.Filter, sort sortColumns) *gorm.DB {
	query = query.Order(sort.orderClause(filter)).Order("id")
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}
