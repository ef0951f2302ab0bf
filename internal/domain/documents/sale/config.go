package sale

import "tradebook/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Sale is a primary accounting document, so we use Strict strategy.
	NumeratorStrategy = numerator.StrategyStrict

	// NumeratorPrefix is the document number prefix.
	NumeratorPrefix = "SL"
)
