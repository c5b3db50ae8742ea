package service

import (
	"context"
	"testing"
	"time"

	dom "ventas/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeSaleRepo is an in-memory SaleRepo for service tests.
type fakeSaleRepo struct {
	nextID int64
	m      map[int64]dom.Sale
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{m: map[int64]dom.Sale{}}
}

func (f *fakeSaleRepo) Create(_ context.Context, s dom.Sale) (dom.Sale, error) {
	f.nextID++
	s.ID = f.nextID
	s.CreatedAt = time.Now()
	f.m[s.ID] = s
	return s, nil
}

func (f *fakeSaleRepo) GetByID(_ context.Context, id int64) (dom.Sale, error) {
	s, ok := f.m[id]
	if !ok {
		return dom.Sale{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakeSaleRepo) List(_ context.Context) ([]dom.Sale, error) {
	var list []dom.Sale
	for _, s := range f.m {
		list = append(list, s)
	}
	return list, nil
}

func (f *fakeSaleRepo) Update(_ context.Context, id int64, s dom.Sale) (dom.Sale, error) {
	old, ok := f.m[id]
	if !ok {
		return dom.Sale{}, pgx.ErrNoRows
	}
	s.ID = id
	s.CreatedAt = old.CreatedAt
	f.m[id] = s
	return s, nil
}

func (f *fakeSaleRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.m[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.m, id)
	return nil
}

func (f *fakeSaleRepo) ExpiringOn(_ context.Context, first, second time.Time) ([]dom.Sale, error) {
	var list []dom.Sale
	for _, s := range f.m {
		if s.EndDate.Equal(first) || s.EndDate.Equal(second) {
			list = append(list, s)
		}
	}
	return list, nil
}

func validInput() SaleInput {
	return SaleInput{
		ClientName:    "Maria",
		ClientPhone:   "999111222",
		ClientEmail:   "maria@example.com",
		PaymentMethod: "yape",
		PaymentStatus: "pagado",
		Service:       "Netflix",
		AccountLabel:  "cuenta1@example.com",
		AccountSecret: "s3cr3t",
		Amount:        "15.50",
		StartDate:     "2024-06-01",
		EndDate:       "2024-07-01",
		PayingAdmin:   "Luis",
	}
}

func TestSaleService_CreateRoundTrip(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewSaleService(repo, zaptest.NewLogger(t))

	created, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.ClientName)
	assert.Equal(t, "999111222", got.ClientPhone)
	assert.Equal(t, "maria@example.com", got.ClientEmail)
	assert.Equal(t, "yape", got.PaymentMethod)
	assert.Equal(t, "pagado", got.PaymentStatus)
	assert.Equal(t, "Netflix", got.Service)
	assert.Equal(t, "cuenta1@example.com", got.AccountLabel)
	assert.Equal(t, "s3cr3t", got.AccountSecret)
	assert.Equal(t, 15.50, got.Amount)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), got.StartDate)
	assert.Equal(t, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), got.EndDate)
	assert.Equal(t, "Luis", got.PayingAdmin)
}

func TestSaleService_CreateBlankAmountDefaultsToZero(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewSaleService(repo, zaptest.NewLogger(t))

	in := validInput()
	in.Amount = ""
	created, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, created.Amount)
}

func TestSaleService_CreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SaleInput)
	}{
		{"missing start date", func(in *SaleInput) { in.StartDate = "" }},
		{"missing end date", func(in *SaleInput) { in.EndDate = "  " }},
		{"malformed start date", func(in *SaleInput) { in.StartDate = "01/06/2024" }},
		{"malformed end date", func(in *SaleInput) { in.EndDate = "julio" }},
		{"non-numeric amount", func(in *SaleInput) { in.Amount = "quince" }},
		{"negative amount", func(in *SaleInput) { in.Amount = "-5" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeSaleRepo()
			svc := NewSaleService(repo, zaptest.NewLogger(t))

			in := validInput()
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Empty(t, repo.m, "store must be unchanged on validation failure")
		})
	}
}

func TestSaleService_ListTotalRecomputed(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewSaleService(repo, zaptest.NewLogger(t))
	ctx := context.Background()

	for _, amount := range []string{"10", "", "5.25"} {
		in := validInput()
		in.Amount = amount
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	list, total, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.InDelta(t, 15.25, total, 1e-9)

	// Total is recomputed after a delete, not served stale.
	require.NoError(t, svc.Delete(ctx, list[0].ID))
	_, total, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Less(t, total, 15.25+1e-9)
}

func TestSaleService_DeleteNotFound(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewSaleService(repo, zaptest.NewLogger(t))

	err := svc.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaleService_DeleteRemovesFromListing(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewSaleService(repo, zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, created.ID))

	list, _, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaleService_UpdateNotFound(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewSaleService(repo, zaptest.NewLogger(t))

	_, err := svc.Update(context.Background(), 42, validInput())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaleService_UpdateOverwritesAllFields(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewSaleService(repo, zaptest.NewLogger(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.ClientName = "Pedro"
	in.Amount = ""
	in.EndDate = "2024-08-15"
	updated, err := svc.Update(ctx, created.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Pedro", updated.ClientName)
	assert.Equal(t, 0.0, updated.Amount)
	assert.Equal(t, time.Date(2024, 8, 15, 0, 0, 0, 0, time.UTC), updated.EndDate)
}

func TestSaleService_ExpiringWindow(t *testing.T) {
	repo := newFakeSaleRepo()
	svc := NewSaleService(repo, zaptest.NewLogger(t))
	ctx := context.Background()

	for _, end := range []string{"2024-06-09", "2024-06-10", "2024-06-11", "2024-06-12"} {
		in := validInput()
		in.EndDate = end
		_, err := svc.Create(ctx, in)
		require.NoError(t, err)
	}

	today := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)
	expiring, err := svc.Expiring(ctx, today)
	require.NoError(t, err)
	require.Len(t, expiring, 2)
	for _, s := range expiring {
		day := s.EndDate.Format("2006-01-02")
		assert.Contains(t, []string{"2024-06-10", "2024-06-11"}, day)
	}
}
