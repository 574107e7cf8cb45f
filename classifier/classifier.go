// Package classifier is the single source of truth for a ledger
// entry's canonical sign. Ingestion and the reconciliation engine both
// call Classify; no other code path may derive a sign from a category,
// so the two can never disagree.
package classifier

import (
	"fmt"
	"strings"

	"github.com/capstack/goregistrar/models/enum"
)

const (
	// canonical sign multipliers
	Inflow  int64 = 1
	Outflow int64 = -1
)

// Classify maps a transaction's category and optional explicit
// direction field to a canonical sign multiplier and direction tag.
//
// Priority:
//  1. a recognizable explicit direction wins outright;
//  2. otherwise the category decides, first by exact membership in the
//     closed set, then by the "withdrawal"/"debit" vs "deposit"/"credit"
//     substring convention legacy data was recorded with;
//  3. an unrecognized category with no explicit direction is a hard
//     error - never defaulted to an inflow.
func Classify(category enum.TransactionCategory, explicitDirection string) (int64, enum.Direction, error) {
	if dir := strings.ToLower(strings.TrimSpace(explicitDirection)); dir != "" {
		if strings.Contains(dir, "debit") || strings.Contains(dir, "withdrawal") {
			return Outflow, enum.Debit, nil
		}
		return Inflow, enum.Credit, nil
	}

	switch category {
	case enum.IPO, enum.DWACDeposit, enum.TransferCredit, enum.Conversion:
		return Inflow, enum.Credit, nil
	case enum.DWACWithdrawal, enum.TransferDebit:
		return Outflow, enum.Debit, nil
	}

	cat := strings.ToLower(string(category))
	switch {
	case strings.Contains(cat, "withdrawal") || strings.Contains(cat, "debit"):
		return Outflow, enum.Debit, nil
	case strings.Contains(cat, "deposit") || strings.Contains(cat, "credit"):
		return Inflow, enum.Credit, nil
	}

	return 0, "", fmt.Errorf("unclassifiable transaction category %q", category)
}

// SignedQty applies the classified sign to a quantity magnitude.
func SignedQty(magnitude int64, category enum.TransactionCategory, explicitDirection string) (int64, enum.Direction, error) {
	if magnitude < 0 {
		magnitude = -magnitude
	}

	sign, dir, err := Classify(category, explicitDirection)
	if err != nil {
		return 0, "", err
	}
	return sign * magnitude, dir, nil
}
