package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountNature decides which side of the ledger increases an account
type AccountNature string

const (
	NatureAsset     AccountNature = "asset"
	NatureLiability AccountNature = "liability"
	NatureEquity    AccountNature = "equity"
	NatureIncome    AccountNature = "income"
	NatureRevenue   AccountNature = "revenue"
	NatureExpense   AccountNature = "expense"
)

// Valid reports whether n is a known nature
func (n AccountNature) Valid() bool {
	switch n {
	case NatureAsset, NatureLiability, NatureEquity, NatureIncome, NatureRevenue, NatureExpense:
		return true
	}
	return false
}

// IsDebitNormal reports whether debits increase the balance (assets and expenses)
func (n AccountNature) IsDebitNormal() bool {
	return n == NatureAsset || n == NatureExpense
}

// Account categories
const (
	CategoryCurrentAsset      = "current_asset"
	CategoryFixedAsset        = "fixed_asset"
	CategoryCurrentLiability  = "current_liability"
	CategoryLongTermLiability = "long_term_liability"
	CategoryOwnerEquity       = "owner_equity"
	CategoryOperatingRevenue  = "operating_revenue"
	CategoryOtherRevenue      = "other_revenue"
	CategoryOperatingExpense  = "operating_expense"
	CategoryOtherExpense      = "other_expense"
)

// Account is a node of the chart of accounts
type Account struct {
	ID             int64           `json:"id" db:"id"`
	Code           string          `json:"code" db:"code"`
	Name           string          `json:"name" db:"name"`
	Nature         AccountNature   `json:"nature" db:"nature"`
	Category       string          `json:"category,omitempty" db:"category"`
	Description    string          `json:"description,omitempty" db:"description"`
	IsActive       bool            `json:"is_active" db:"is_active"`
	OpeningBalance decimal.Decimal `json:"opening_balance" db:"opening_balance"`
	CurrentBalance decimal.Decimal `json:"current_balance" db:"current_balance"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateAccountRequest is the payload for a new account
type CreateAccountRequest struct {
	Code           string          `json:"code" validate:"required,max=20"`
	Name           string          `json:"name" validate:"required,max=255"`
	Nature         AccountNature   `json:"nature" validate:"required,oneof=asset liability equity income revenue expense"`
	Category       string          `json:"category,omitempty" validate:"omitempty,oneof=current_asset fixed_asset current_liability long_term_liability owner_equity operating_revenue other_revenue operating_expense other_expense"`
	Description    string          `json:"description,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	IsActive       *bool           `json:"is_active,omitempty"`
}
