package stockmove

import "tradebook/pkg/numerator"

const (
	// NumeratorStrategy defines the numbering strategy for this document type.
	// Stock moves are internal documents, gaps are acceptable.
	NumeratorStrategy = numerator.StrategyCached

	// NumeratorPrefix is the document number prefix.
	NumeratorPrefix = "SM"
)
