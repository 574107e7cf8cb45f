package classifier

import (
	"testing"

	"github.com/capstack/goregistrar/models/enum"
	"github.com/stretchr/testify/assert"
)

func TestClassifyClosedSet(t *testing.T) {
	// exhaustive over the closed category enumeration
	outflows := map[enum.TransactionCategory]bool{
		enum.DWACWithdrawal: true,
		enum.TransferDebit:  true,
	}

	for _, category := range enum.TransactionCategories() {
		sign, dir, err := Classify(category, "")
		assert.Nil(t, err, string(category))

		if outflows[category] {
			assert.Equal(t, Outflow, sign, string(category))
			assert.Equal(t, enum.Debit, dir, string(category))
		} else {
			assert.Equal(t, Inflow, sign, string(category))
			assert.Equal(t, enum.Credit, dir, string(category))
		}
	}
}

func TestClassifyExplicitDirectionWins(t *testing.T) {
	// explicit direction overrides the category mapping
	sign, dir, err := Classify(enum.DWACDeposit, "Debit")
	assert.Nil(t, err)
	assert.Equal(t, Outflow, sign)
	assert.Equal(t, enum.Debit, dir)

	sign, dir, err = Classify(enum.DWACWithdrawal, "credit")
	assert.Nil(t, err)
	assert.Equal(t, Inflow, sign)
	assert.Equal(t, enum.Credit, dir)

	sign, _, err = Classify(enum.TransferCredit, "WITHDRAWAL requested")
	assert.Nil(t, err)
	assert.Equal(t, Outflow, sign)

	// unrecognizable but present direction defaults to credit per rule 1
	sign, dir, err = Classify("Legacy Adjustment", "incoming")
	assert.Nil(t, err)
	assert.Equal(t, Inflow, sign)
	assert.Equal(t, enum.Credit, dir)
}

func TestClassifySubstringFallback(t *testing.T) {
	sign, _, err := Classify("Broker Withdrawal", "")
	assert.Nil(t, err)
	assert.Equal(t, Outflow, sign)

	sign, _, err = Classify("Escrow Deposit", "")
	assert.Nil(t, err)
	assert.Equal(t, Inflow, sign)

	sign, _, err = Classify("Journal Debit", "")
	assert.Nil(t, err)
	assert.Equal(t, Outflow, sign)
}

func TestClassifyUnknownCategoryRejected(t *testing.T) {
	_, _, err := Classify("Mystery Movement", "")
	assert.NotNil(t, err)
}

func TestSignedQty(t *testing.T) {
	qty, dir, err := SignedQty(20000, enum.DWACWithdrawal, "")
	assert.Nil(t, err)
	assert.Equal(t, int64(-20000), qty)
	assert.Equal(t, enum.Debit, dir)

	// magnitude is treated as magnitude even if submitted signed
	qty, _, err = SignedQty(-20000, enum.DWACWithdrawal, "")
	assert.Nil(t, err)
	assert.Equal(t, int64(-20000), qty)

	qty, dir, err = SignedQty(7906132, enum.IPO, "")
	assert.Nil(t, err)
	assert.Equal(t, int64(7906132), qty)
	assert.Equal(t, enum.Credit, dir)

	_, _, err = SignedQty(100, "Mystery Movement", "")
	assert.NotNil(t, err)
}
