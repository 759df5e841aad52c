// Package ledger keeps wallet balances, goal savings and budget remainders in
// step with the transactions that touch them. Apply and Reverse are exact
// inverses built on one signed delta.
package ledger

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
)

type Type string

const (
	Income  Type = "Income"
	Expense Type = "Expense"
)

func (t Type) Valid() bool {
	return t == Income || t == Expense
}

func ParseType(s string) (Type, error) {
	t := Type(s)
	if !t.Valid() {
		return "", apperr.Validation("Invalid transaction type")
	}

	return t, nil
}

// Delta is the signed effect of a transaction on its funding source.
func Delta(t Type, amount decimal.Decimal) decimal.Decimal {
	if t == Income {
		return amount
	}

	return amount.Neg()
}

type Kind string

const (
	KindWallet Kind = "wallet"
	KindGoal   Kind = "goal"
	KindBudget Kind = "budget"
)

// Target points at the monetary field of a loaded record.
type Target struct {
	Kind   Kind
	ID     uuid.UUID
	Amount *decimal.Decimal
}

// Set is every ledger one transaction touches. Budget is nil for transactions
// without a category.
type Set struct {
	Funding Target
	Budget  *Target
}

type Entry struct {
	Type   Type
	Amount decimal.Decimal
}

func (e Entry) Validate() error {
	if !e.Type.Valid() {
		return apperr.Validation("Invalid transaction type")
	}

	if !e.Amount.IsPositive() {
		return apperr.Validation("Amount must be greater than 0")
	}

	return nil
}

// BudgetPolicy governs expenses that exceed the remaining budget.
type BudgetPolicy string

const (
	// BudgetSoft commits the overrun and logs it.
	BudgetSoft BudgetPolicy = "soft"
	// BudgetHard rejects the expense.
	BudgetHard BudgetPolicy = "hard"
)

func (p BudgetPolicy) Valid() bool {
	return p == BudgetSoft || p == BudgetHard
}

type Result struct {
	BudgetOverrun bool
}

type Engine struct {
	policy BudgetPolicy
	log    *slog.Logger
}

func NewEngine(policy BudgetPolicy, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}

	return &Engine{policy: policy, log: log}
}

// CheckFunding fails when an expense would drive the funding source negative.
// Budgets are not consulted.
func (e *Engine) CheckFunding(t Target, en Entry) error {
	if err := en.Validate(); err != nil {
		return err
	}

	if en.Type == Expense && t.Amount.Add(Delta(en.Type, en.Amount)).IsNegative() {
		e.log.Warn("insufficient funds",
			"kind", t.Kind, "id", t.ID,
			"available", t.Amount.String(), "amount", en.Amount.String())

		return apperr.InsufficientFunds(insufficientMessage(t.Kind))
	}

	return nil
}

// Apply adds the entry's effect to every ledger in s. Nothing is mutated when
// an error is returned.
func (e *Engine) Apply(s Set, en Entry) (Result, error) {
	if err := e.CheckFunding(s.Funding, en); err != nil {
		return Result{}, err
	}

	funding := s.Funding.Amount.Add(Delta(en.Type, en.Amount))

	var res Result

	var budget decimal.Decimal

	if s.Budget != nil {
		budget = s.Budget.Amount.Add(budgetDelta(en))
		if budget.IsNegative() && en.Type == Expense {
			if e.policy == BudgetHard {
				return Result{}, apperr.InsufficientFunds("Budget exceeded")
			}

			res.BudgetOverrun = true

			e.log.Warn("budget exceeded",
				"budget_id", s.Budget.ID,
				"remaining", s.Budget.Amount.String(), "amount", en.Amount.String())
		}
	}

	*s.Funding.Amount = funding
	if s.Budget != nil {
		*s.Budget.Amount = budget
	}

	return res, nil
}

// Reverse removes the entry's effect from every ledger in s. It never fails:
// an earlier Apply of the same entry is assumed.
func (e *Engine) Reverse(s Set, en Entry) {
	*s.Funding.Amount = s.Funding.Amount.Sub(Delta(en.Type, en.Amount))
	if s.Budget != nil {
		*s.Budget.Amount = s.Budget.Amount.Sub(budgetDelta(en))
	}
}

// budgetDelta is the effect on a budget's remaining amount. Income leaves
// budgets untouched.
func budgetDelta(en Entry) decimal.Decimal {
	if en.Type == Expense {
		return en.Amount.Neg()
	}

	return decimal.Zero
}

func insufficientMessage(k Kind) string {
	switch k {
	case KindGoal:
		return "Insufficient saved amount"
	case KindWallet:
		return "Insufficient balance"
	default:
		return fmt.Sprintf("Insufficient %s funds", k)
	}
}
