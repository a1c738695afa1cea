package reports

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"max.ks1230/expenses-api/internal/entity/expense"
	"max.ks1230/expenses-api/internal/model/storage"
)

func Test_OnGenerateReport_ShouldGroupByCategory(t *testing.T) {
	ctx := context.Background()
	db := storage.NewInMemStorage()
	owner := uuid.New()
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	for _, rec := range []expense.Record{
		{Amount: 1000, Category: expense.Utilities},
		{Amount: 1500, Category: expense.Shopping},
		{Amount: 100, Category: expense.Shopping},
	} {
		rec.ID = uuid.New()
		rec.UserID = owner
		rec.Date = date
		_, err := db.InsertExpense(ctx, rec)
		require.NoError(t, err)
	}

	generator := NewGenerator(db)
	report, err := generator.GenerateReport(ctx, expense.Filter{OwnerID: owner})
	assert.NoError(t, err)
	assert.Equal(t, 2600.0, report.TotalAmount)
	assert.Equal(t, 3, report.Count)
	require.Len(t, report.Categories, 2)
	assert.Equal(t, expense.Shopping, report.Categories[0].Category)
	assert.Equal(t, 1600.0, report.Categories[0].Amount)
	assert.Equal(t, expense.Utilities, report.Categories[1].Category)
	assert.Equal(t, 1000.0, report.Categories[1].Amount)
}

func Test_OnGenerateReport_ShouldIgnoreOtherOwners(t *testing.T) {
	ctx := context.Background()
	db := storage.NewInMemStorage()
	owner := uuid.New()

	_, err := db.InsertExpense(ctx, expense.Record{
		ID: uuid.New(), UserID: uuid.New(), Amount: 10, Category: expense.Food, Date: time.Now().UTC(),
	})
	require.NoError(t, err)

	report, err := NewGenerator(db).GenerateReport(ctx, expense.Filter{OwnerID: owner})
	assert.NoError(t, err)
	assert.Empty(t, report.Categories)
	assert.Zero(t, report.TotalAmount)
	assert.Zero(t, report.Count)
}
