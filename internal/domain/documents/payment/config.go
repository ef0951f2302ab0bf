package payment

import "tradebook/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Payments are primary accounting documents, so we use Strict strategy.
	NumeratorStrategy = numerator.StrategyStrict

	// NumeratorPrefix is the document number prefix.
	NumeratorPrefix = "PM"

	// MaxDiscountBP caps a single discount at this share of the
	// customer's balance, in basis points (2000 = 20%).
	MaxDiscountBP = 2000
)
