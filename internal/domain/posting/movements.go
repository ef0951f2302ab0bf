package posting

import (
	"tradebook/internal/core/entity"
)

// MovementSet collects movements for all registers touched by one
// posting iteration of a document.
type MovementSet struct {
	Receivable []entity.ReceivableMovement
	Funds      []entity.FundsMovement
	Stock      []entity.StockMovement
}

// NewMovementSet creates an empty movement set.
func NewMovementSet() *MovementSet {
	return &MovementSet{
		Receivable: make([]entity.ReceivableMovement, 0),
		Funds:      make([]entity.FundsMovement, 0),
		Stock:      make([]entity.StockMovement, 0),
	}
}

// AddReceivable appends a receivable register movement.
func (m *MovementSet) AddReceivable(movement entity.ReceivableMovement) {
	m.Receivable = append(m.Receivable, movement)
}

// AddFunds appends a funds register movement.
func (m *MovementSet) AddFunds(movement entity.FundsMovement) {
	m.Funds = append(m.Funds, movement)
}

// AddStock appends a stock register movement.
func (m *MovementSet) AddStock(movement entity.StockMovement) {
	m.Stock = append(m.Stock, movement)
}

// IsEmpty returns true if the set contains no movements.
// Posting a document with an empty set is legal (e.g. informational
// purchase cards) - it only flips the posted flag.
func (m *MovementSet) IsEmpty() bool {
	return len(m.Receivable) == 0 && len(m.Funds) == 0 && len(m.Stock) == 0
}

// Count returns total number of movements across registers.
func (m *MovementSet) Count() int {
	return len(m.Receivable) + len(m.Funds) + len(m.Stock)
}
