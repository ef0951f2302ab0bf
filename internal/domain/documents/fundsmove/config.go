package fundsmove

import "tradebook/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Funds moves are primary accounting documents, so we use Strict strategy.
	NumeratorStrategy = numerator.StrategyStrict

	// NumeratorPrefix is the document number prefix.
	NumeratorPrefix = "FM"
)
