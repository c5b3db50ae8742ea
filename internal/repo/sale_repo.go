package repo

import (
	"context"
	"time"

	dom "ventas/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SaleRepo interface {
	Create(ctx context.Context, s dom.Sale) (dom.Sale, error)
	GetByID(ctx context.Context, id int64) (dom.Sale, error)
	List(ctx context.Context) ([]dom.Sale, error)
	Update(ctx context.Context, id int64, s dom.Sale) (dom.Sale, error)
	Delete(ctx context.Context, id int64) error
	ExpiringOn(ctx context.Context, first, second time.Time) ([]dom.Sale, error)
}

type PGSaleRepo struct {
	db *pgxpool.Pool
}

func NewPGSaleRepo(db *pgxpool.Pool) *PGSaleRepo {
	return &PGSaleRepo{db: db}
}

const saleColumns = `id, client_name, client_phone, client_email, payment_method, payment_status,
		service, account_label, account_secret, amount, start_date, end_date, paying_admin, created_at`

func scanSale(row pgx.Row) (dom.Sale, error) {
	var s dom.Sale
	err := row.Scan(
		&s.ID, &s.ClientName, &s.ClientPhone, &s.ClientEmail, &s.PaymentMethod, &s.PaymentStatus,
		&s.Service, &s.AccountLabel, &s.AccountSecret, &s.Amount, &s.StartDate, &s.EndDate,
		&s.PayingAdmin, &s.CreatedAt,
	)
	return s, err
}

func (r *PGSaleRepo) Create(ctx context.Context, s dom.Sale) (dom.Sale, error) {
	query := `
		INSERT INTO sales (client_name, client_phone, client_email, payment_method, payment_status,
			service, account_label, account_secret, amount, start_date, end_date, paying_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + saleColumns
	return scanSale(r.db.QueryRow(ctx, query,
		s.ClientName, s.ClientPhone, s.ClientEmail, s.PaymentMethod, s.PaymentStatus,
		s.Service, s.AccountLabel, s.AccountSecret, s.Amount, s.StartDate, s.EndDate, s.PayingAdmin,
	))
}

func (r *PGSaleRepo) GetByID(ctx context.Context, id int64) (dom.Sale, error) {
	return scanSale(r.db.QueryRow(ctx, `SELECT `+saleColumns+` FROM sales WHERE id = $1`, id))
}

func (r *PGSaleRepo) List(ctx context.Context) ([]dom.Sale, error) {
	rows, err := r.db.Query(ctx, `SELECT `+saleColumns+` FROM sales ORDER BY end_date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSales(rows)
}

// Update overwrites every field of the record, matching the edit form
// which always submits the full field set.
func (r *PGSaleRepo) Update(ctx context.Context, id int64, s dom.Sale) (dom.Sale, error) {
	query := `
		UPDATE sales SET client_name = $2, client_phone = $3, client_email = $4,
			payment_method = $5, payment_status = $6, service = $7, account_label = $8,
			account_secret = $9, amount = $10, start_date = $11, end_date = $12, paying_admin = $13
		WHERE id = $1
		RETURNING ` + saleColumns
	return scanSale(r.db.QueryRow(ctx, query, id,
		s.ClientName, s.ClientPhone, s.ClientEmail, s.PaymentMethod, s.PaymentStatus,
		s.Service, s.AccountLabel, s.AccountSecret, s.Amount, s.StartDate, s.EndDate, s.PayingAdmin,
	))
}

// Delete removes the record. Returns pgx.ErrNoRows when the id does not exist.
func (r *PGSaleRepo) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ExpiringOn returns sales whose end date equals one of the two given dates
// exactly. Deliberately not a range: a sale that expired earlier and was
// never attended is not re-flagged.
func (r *PGSaleRepo) ExpiringOn(ctx context.Context, first, second time.Time) ([]dom.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE end_date IN ($1::date, $2::date) ORDER BY end_date ASC, id ASC`
	rows, err := r.db.Query(ctx, query, first, second)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSales(rows)
}

func collectSales(rows pgx.Rows) ([]dom.Sale, error) {
	var list []dom.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
