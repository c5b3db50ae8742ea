package domain

import "time"

// Sale is one subscription-sale entry. Dates are calendar dates
// (midnight UTC); Amount defaults to 0 when the form field is blank.
type Sale struct {
	ID            int64
	ClientName    string
	ClientPhone   string
	ClientEmail   string
	PaymentMethod string
	PaymentStatus string
	Service       string
	AccountLabel  string
	AccountSecret string
	Amount        float64
	StartDate     time.Time
	EndDate       time.Time
	PayingAdmin   string

	CreatedAt time.Time
}
