package models

import (
	"bytes"
	"encoding/csv"
	"time"

	"github.com/shopspring/decimal"
)

// Treasury entry types.
const (
	TreasuryTypeIncome  = "income"
	TreasuryTypeExpense = "expense"
)

// TreasuryEntry holds the structure for the treasury collection in mongo.
// Amounts are stored positive regardless of type; the sign is applied on
// export and when computing balances.
type TreasuryEntry struct {
	ID          string    `json:"id" bson:"_id"`
	ClubID      string    `json:"clubId" bson:"clubId"`
	Type        string    `json:"type" bson:"type"`
	Amount      float64   `json:"amount" bson:"amount"`
	Date        time.Time `json:"date" bson:"date"`
	Description string    `json:"description" bson:"description"`
	Category    string    `json:"category" bson:"category"`
	MemberID    string    `json:"memberId" bson:"memberId"`
	MemberName  string    `json:"memberName" bson:"memberName"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}

// TreasurySummary is the aggregate view of a club's ledger
type TreasurySummary struct {
	TotalIncome   string `json:"totalIncome"`
	TotalExpenses string `json:"totalExpenses"`
	Balance       string `json:"balance"`
	EntryCount    int    `json:"entryCount"`
}

// SummarizeTreasury totals the ledger with decimal arithmetic so that float
// drift never shows up in a balance display
func SummarizeTreasury(entries []TreasuryEntry) TreasurySummary {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, e := range entries {
		amount := decimal.NewFromFloat(e.Amount)
		switch e.Type {
		case TreasuryTypeIncome:
			income = income.Add(amount)
		case TreasuryTypeExpense:
			expenses = expenses.Add(amount)
		}
	}
	return TreasurySummary{
		TotalIncome:   income.StringFixed(2),
		TotalExpenses: expenses.StringFixed(2),
		Balance:       income.Sub(expenses).StringFixed(2),
		EntryCount:    len(entries),
	}
}

// TreasuryCSV renders the ledger as a CSV export. Expense amounts are negated
// in the output only; the stored entries are never mutated.
func TreasuryCSV(entries []TreasuryEntry) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Date", "Type", "Category", "Description", "Member", "Amount"}); err != nil {
		return "", err
	}
	for _, e := range entries {
		amount := decimal.NewFromFloat(e.Amount)
		if e.Type == TreasuryTypeExpense {
			amount = amount.Neg()
		}
		record := []string{
			e.Date.Format("2006-01-02"),
			e.Type,
			e.Category,
			e.Description,
			e.MemberName,
			amount.StringFixed(2),
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}
