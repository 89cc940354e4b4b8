package usecases

import (
	"fmt"
	"strings"

	"fixer.backend/internal/domain/entities"
	domainerrors "fixer.backend/internal/domain/errors"
)

// bannedTerms is the content moderation blocklist. Matching is
// case-insensitive on whole words across title, description and skills.
var bannedTerms = []string{
	"weapon", "firearm", "drugs", "narcotics", "counterfeit",
	"escort", "gambling", "pyramid scheme", "money laundering",
	"hack into", "stolen",
}

// ValidateJobContent is the cheapest rejection point: pure string
// scanning, no external calls. Returns the flagged terms so the caller
// can tell the poster what tripped moderation.
func ValidateJobContent(title, description string, skills []string) error {
	if strings.TrimSpace(title) == "" {
		return domainerrors.BadRequest("ERR_CONTENT_REJECTED", "title is required")
	}
	if strings.TrimSpace(description) == "" {
		return domainerrors.BadRequest("ERR_CONTENT_REJECTED", "description is required")
	}

	haystack := strings.ToLower(title + " " + description + " " + strings.Join(skills, " "))
	var flagged []string
	for _, term := range bannedTerms {
		if strings.Contains(haystack, term) {
			flagged = append(flagged, term)
		}
	}
	if len(flagged) > 0 {
		return domainerrors.NewAppError(400, "ERR_CONTENT_REJECTED",
			fmt.Sprintf("content contains prohibited terms: %s", strings.Join(flagged, ", ")),
			domainerrors.ErrContentRejected)
	}
	return nil
}

// ValidateJobPayment enforces amount sanity bounds before any processor
// call: a minimum-wage floor for hourly rates and ceilings for both types.
func ValidateJobPayment(amount float64, paymentType entities.PaymentType) error {
	switch paymentType {
	case entities.PaymentTypeHourly:
		if amount < HourlyMinimumAmount {
			return domainerrors.NewAppError(400, "ERR_AMOUNT_TOO_LOW",
				fmt.Sprintf("hourly rate must be at least $%.2f", HourlyMinimumAmount),
				domainerrors.ErrAmountOutOfBounds)
		}
		if amount > HourlyMaximumAmount {
			return domainerrors.NewAppError(400, "ERR_AMOUNT_TOO_HIGH",
				fmt.Sprintf("hourly rate must not exceed $%.2f", HourlyMaximumAmount),
				domainerrors.ErrAmountOutOfBounds)
		}
	case entities.PaymentTypeFixed:
		if amount < FixedMinimumAmount {
			return domainerrors.NewAppError(400, "ERR_AMOUNT_TOO_LOW",
				fmt.Sprintf("fixed amount must be at least $%.2f", FixedMinimumAmount),
				domainerrors.ErrAmountOutOfBounds)
		}
		if amount > FixedMaximumAmount {
			return domainerrors.NewAppError(400, "ERR_AMOUNT_TOO_HIGH",
				fmt.Sprintf("fixed amount must not exceed $%.2f", FixedMaximumAmount),
				domainerrors.ErrAmountOutOfBounds)
		}
	default:
		return domainerrors.BadRequest("ERR_INVALID_PAYMENT_TYPE", "payment type must be fixed or hourly")
	}
	return nil
}

// ServiceFeeFor computes the platform fee for a job amount, rounded to
// cents.
func ServiceFeeFor(amount float64) float64 {
	return roundCents(amount * ServiceFeeRate)
}

func roundCents(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
