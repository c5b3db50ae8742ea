package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	dom "ventas/internal/domain"
	"ventas/internal/repo"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("not found")

const dateLayout = "2006-01-02"

// ValidationError is a user-input failure: the form is re-rendered with the
// message and nothing is written to the store.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// SaleInput carries the raw form fields of the new/edit sale forms.
// Dates and amount stay strings until validated.
type SaleInput struct {
	ClientName    string
	ClientPhone   string
	ClientEmail   string
	PaymentMethod string
	PaymentStatus string
	Service       string
	AccountLabel  string
	AccountSecret string
	Amount        string
	StartDate     string
	EndDate       string
	PayingAdmin   string
}

// SaleService handles CRUD and aggregates over sale records.
type SaleService struct {
	repo   repo.SaleRepo
	logger *zap.Logger
}

// NewSaleService creates a SaleService.
func NewSaleService(r repo.SaleRepo, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{repo: r, logger: logger}
}

// List returns all records plus the revenue total, recomputed fresh on
// every call. Record volume is small; the O(n) scan is fine.
func (s *SaleService) List(ctx context.Context) ([]dom.Sale, float64, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	var total float64
	for _, sale := range list {
		total += sale.Amount
	}
	return list, total, nil
}

// Get returns one record for the edit form prefill.
func (s *SaleService) Get(ctx context.Context, id int64) (dom.Sale, error) {
	sale, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Sale{}, ErrNotFound
		}
		return dom.Sale{}, err
	}
	return sale, nil
}

// Create validates the form input and inserts a new record.
func (s *SaleService) Create(ctx context.Context, in SaleInput) (dom.Sale, error) {
	sale, err := parseInput(in)
	if err != nil {
		return dom.Sale{}, err
	}
	created, err := s.repo.Create(ctx, sale)
	if err != nil {
		return dom.Sale{}, err
	}
	s.logger.Info("sale created",
		zap.Int64("sale_id", created.ID),
		zap.String("client", created.ClientName),
		zap.String("service", created.Service))
	return created, nil
}

// Update validates the form input and overwrites every field of the record.
func (s *SaleService) Update(ctx context.Context, id int64, in SaleInput) (dom.Sale, error) {
	sale, err := parseInput(in)
	if err != nil {
		return dom.Sale{}, err
	}
	updated, err := s.repo.Update(ctx, id, sale)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Sale{}, ErrNotFound
		}
		return dom.Sale{}, err
	}
	s.logger.Info("sale updated", zap.Int64("sale_id", id))
	return updated, nil
}

// Delete removes the record; unknown id yields ErrNotFound.
func (s *SaleService) Delete(ctx context.Context, id int64) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	s.logger.Info("sale deleted", zap.Int64("sale_id", id))
	return nil
}

// Expiring returns the records whose end date is exactly today or tomorrow.
func (s *SaleService) Expiring(ctx context.Context, today time.Time) ([]dom.Sale, error) {
	today = midnight(today)
	return s.repo.ExpiringOn(ctx, today, today.AddDate(0, 0, 1))
}

func parseInput(in SaleInput) (dom.Sale, error) {
	start := strings.TrimSpace(in.StartDate)
	end := strings.TrimSpace(in.EndDate)
	if start == "" || end == "" {
		return dom.Sale{}, &ValidationError{Msg: "las fechas son obligatorias"}
	}
	startDate, err := time.Parse(dateLayout, start)
	if err != nil {
		return dom.Sale{}, &ValidationError{Msg: "fecha de inicio inválida, usar AAAA-MM-DD"}
	}
	endDate, err := time.Parse(dateLayout, end)
	if err != nil {
		return dom.Sale{}, &ValidationError{Msg: "fecha de fin inválida, usar AAAA-MM-DD"}
	}

	// Blank amount means 0. A malformed amount is a validation error rather
	// than a request failure.
	amount := 0.0
	if raw := strings.TrimSpace(in.Amount); raw != "" {
		amount, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return dom.Sale{}, &ValidationError{Msg: "el monto debe ser un número"}
		}
		if amount < 0 {
			return dom.Sale{}, &ValidationError{Msg: "el monto no puede ser negativo"}
		}
	}

	return dom.Sale{
		ClientName:    strings.TrimSpace(in.ClientName),
		ClientPhone:   strings.TrimSpace(in.ClientPhone),
		ClientEmail:   strings.TrimSpace(in.ClientEmail),
		PaymentMethod: strings.TrimSpace(in.PaymentMethod),
		PaymentStatus: strings.TrimSpace(in.PaymentStatus),
		Service:       strings.TrimSpace(in.Service),
		AccountLabel:  strings.TrimSpace(in.AccountLabel),
		AccountSecret: in.AccountSecret,
		Amount:        amount,
		StartDate:     startDate,
		EndDate:       endDate,
		PayingAdmin:   strings.TrimSpace(in.PayingAdmin),
	}, nil
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
