package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// AuthParams are the credentials obtained by signing in.
type AuthParams struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

// Balances of one account. The provider omits the available balance for
// some account types, so it is nullable.
type Balances struct {
	Available       decimal.NullDecimal `json:"available"`
	Current         decimal.Decimal     `json:"current"`
	ISOCurrencyCode string              `json:"iso_currency_code,omitempty"`
}

// AvailableOrZero returns the available balance, treating a missing value as zero.
func (b Balances) AvailableOrZero() decimal.Decimal {
	if b.Available.Valid {
		return b.Available.Decimal
	}
	return decimal.Zero
}

type Account struct {
	AccountID string   `json:"account_id"`
	Name      string   `json:"name"`
	Mask      string   `json:"mask,omitempty"`
	Type      string   `json:"type,omitempty"`
	Subtype   string   `json:"subtype,omitempty"`
	Balances  Balances `json:"balances"`
}

type Accounts struct {
	Accounts []Account `json:"accounts"`
}

// Validate rejects accounts the view cannot key: every account needs a
// non-empty id that is unique within the response.
func (a Accounts) Validate() error {
	return uniqueIDs("account", len(a.Accounts), func(i int) string { return a.Accounts[i].AccountID })
}

type Transaction struct {
	AccountID       string          `json:"account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Date            string          `json:"date"`
	Name            string          `json:"name"`
	TransactionID   string          `json:"transaction_id"`
	TransactionType string          `json:"transaction_type"`
	Pending         bool            `json:"pending,omitempty"`
}

type Transactions struct {
	Accounts          []Account     `json:"accounts"`
	Transactions      []Transaction `json:"transactions"`
	TotalTransactions int           `json:"total_transactions"`
}

// Total sums the amounts of all transactions.
func (t Transactions) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, tr := range t.Transactions {
		sum = sum.Add(tr.Amount)
	}
	return sum
}

// Validate rejects transactions without a unique non-empty id.
func (t Transactions) Validate() error {
	return uniqueIDs("transaction", len(t.Transactions), func(i int) string { return t.Transactions[i].TransactionID })
}

func uniqueIDs(what string, n int, id func(int) string) error {
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		v := id(i)
		if v == "" {
			return fmt.Errorf("%s %d has no id", what, i)
		}
		if _, dup := seen[v]; dup {
			return fmt.Errorf("duplicate %s id %q", what, v)
		}
		seen[v] = struct{}{}
	}
	return nil
}
