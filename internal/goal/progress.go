package goal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pennywise/internal/apperr"
	"github.com/MrJamesThe3rd/pennywise/internal/validate"
)

var hundred = decimal.NewFromInt(100)

type Status struct {
	GoalID        uuid.UUID       `json:"goal_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	SavedAmount   decimal.Decimal `json:"saved_amount"`
	Progress      decimal.Decimal `json:"progress"`
	IsAchieved    bool            `json:"is_achieved"`
	DaysRemaining int             `json:"days_remaining"`
	DailySaving   decimal.Decimal `json:"daily_saving"`
}

// Progress derives a goal's status on the calendar day of today.
func Progress(target, saved decimal.Decimal, deadline, today time.Time) (Status, error) {
	if !target.IsPositive() {
		return Status{}, apperr.Validation("target_amount must be greater than 0")
	}

	days := int(validate.Day(deadline).Sub(validate.Day(today)).Hours() / 24)
	days = max(days, 0)

	daily := decimal.Zero
	if days > 0 {
		daily = target.Sub(saved).DivRound(decimal.NewFromInt(int64(days)), 2)
		if daily.IsNegative() {
			daily = decimal.Zero
		}
	}

	return Status{
		TargetAmount:  target,
		SavedAmount:   saved,
		Progress:      saved.Mul(hundred).DivRound(target, 2),
		IsAchieved:    saved.GreaterThanOrEqual(target),
		DaysRemaining: days,
		DailySaving:   daily,
	}, nil
}
