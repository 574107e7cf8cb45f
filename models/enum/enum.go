package enum

import "strings"

type IssuerStatus string

const (
	// issuer has been onboarded but not yet cleared for trading;
	// metadata setup is allowed, ledger writes are not
	IssuerPending IssuerStatus = "pending"
	// fully enabled - transaction ingestion permitted
	IssuerActive IssuerStatus = "active"
	// all writes rejected until an admin re-activates
	IssuerSuspended IssuerStatus = "suspended"
)

func (s IssuerStatus) Valid() bool {
	switch s {
	case IssuerPending, IssuerActive, IssuerSuspended:
		return true
	}
	return false
}

type SecurityClass string

const (
	ClassCommon    SecurityClass = "common"
	ClassPreferred SecurityClass = "preferred"
	ClassUnit      SecurityClass = "unit"
	ClassWarrant   SecurityClass = "warrant"
	ClassRight     SecurityClass = "right"
)

func (c SecurityClass) Valid() bool {
	switch c {
	case ClassCommon, ClassPreferred, ClassUnit, ClassWarrant, ClassRight:
		return true
	}
	return false
}

// TransactionCategory is the closed set of ledger entry categories.
// Sign semantics live in the classifier package - nothing else may
// derive a sign from these values.
type TransactionCategory string

const (
	IPO            TransactionCategory = "IPO"
	DWACDeposit    TransactionCategory = "DWAC Deposit"
	DWACWithdrawal TransactionCategory = "DWAC Withdrawal"
	TransferCredit TransactionCategory = "Transfer Credit"
	TransferDebit  TransactionCategory = "Transfer Debit"
	Conversion     TransactionCategory = "Conversion"
)

// TransactionCategories enumerates the closed set.
func TransactionCategories() []TransactionCategory {
	return []TransactionCategory{
		IPO,
		DWACDeposit,
		DWACWithdrawal,
		TransferCredit,
		TransferDebit,
		Conversion,
	}
}

func (c TransactionCategory) Valid() bool {
	for _, known := range TransactionCategories() {
		if c == known {
			return true
		}
	}
	return false
}

type Direction string

const (
	Credit Direction = "credit"
	Debit  Direction = "debit"
)

type TransactionStatus string

const (
	TransactionActive TransactionStatus = "active"
	TransactionVoid   TransactionStatus = "void"
)

type CorporateActionCategory string

const (
	// unit separation into class A shares + rights
	Separation CorporateActionCategory = "separation"
	// forward stock split of a single class
	ForwardSplit CorporateActionCategory = "forward_split"
)

func (c CorporateActionCategory) Valid() bool {
	switch c {
	case Separation, ForwardSplit:
		return true
	}
	return false
}

// Role is supplied by the external identity provider and trusted here.
type Role string

const (
	RoleSuperAdmin Role = "superadmin"
	RoleAdmin      Role = "admin"
	RoleBroker     Role = "broker"
	RoleReadOnly   Role = "readonly"
)

func ParseRole(s string) Role {
	switch Role(strings.ToLower(s)) {
	case RoleSuperAdmin:
		return RoleSuperAdmin
	case RoleAdmin:
		return RoleAdmin
	case RoleBroker:
		return RoleBroker
	default:
		return RoleReadOnly
	}
}

// AdminOrAbove reports whether the role may run privileged
// operations such as reconciliation and restriction writes.
func (r Role) AdminOrAbove() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanWrite reports whether the role may mutate the ledger at all.
func (r Role) CanWrite() bool {
	return r != RoleReadOnly
}
