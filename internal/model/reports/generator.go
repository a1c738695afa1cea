package reports

import (
	"context"
	"sort"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/logger"
)

type CategoryTotal struct {
	Category expense.Category `json:"category"`
	Amount   float64          `json:"amount"`
}

// Summary aggregates the expenses matched by one filter. Categories are
// ordered by amount, largest first.
type Summary struct {
	Categories  []CategoryTotal `json:"categories"`
	TotalAmount float64         `json:"total"`
	Count       int             `json:"count"`
}

type expensesStorage interface {
	FindExpenses(ctx context.Context, filter expense.Filter) ([]expense.Record, error)
}

type Generator struct {
	storage expensesStorage
}

func NewGenerator(storage expensesStorage) *Generator {
	return &Generator{storage: storage}
}

func (g *Generator) GenerateReport(ctx context.Context, filter expense.Filter) (report Summary, err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "reports.GenerateReport")
	defer func() {
		if err != nil {
			ext.Error.Set(span, true)
		}
		span.Finish()
	}()

	logger.Debug("GenerateReport - start", zap.Stringer("userID", filter.OwnerID))
	defer logger.Debug("GenerateReport - end")

	expenses, err := g.storage.FindExpenses(ctx, filter)
	if err != nil {
		return Summary{}, errors.Wrap(err, "generate report")
	}
	return groupExpenses(expenses), nil
}

func groupExpenses(exps []expense.Record) Summary {
	m := make(map[expense.Category]float64)
	for _, exp := range exps {
		m[exp.Category] += exp.Amount
	}
	records := make([]CategoryTotal, 0, len(m))
	total := 0.0
	for cat, am := range m {
		records = append(records, CategoryTotal{Category: cat, Amount: am})
		total += am
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Amount != records[j].Amount {
			return records[i].Amount > records[j].Amount
		}
		return records[i].Category < records[j].Category
	})
	return Summary{
		Categories:  records,
		TotalAmount: total,
		Count:       len(exps),
	}
}
