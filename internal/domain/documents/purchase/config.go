package purchase

import "tradebook/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Purchase cards are informational, gaps are acceptable.
	NumeratorStrategy = numerator.StrategyCached

	// NumeratorPrefix is the document number prefix.
	NumeratorPrefix = "PU"
)
