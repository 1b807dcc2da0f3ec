package service

import (
	"github.com/tillworks/till/internal/cart"
)

// Session is the explicit state of one running instance: the inventory and
// sales history backends plus the pending cart. It is constructed at
// startup, passed to whatever owns the request cycle, and discarded at
// shutdown; nothing in the core keeps ambient global state.
type Session struct {
	Inventory Inventory
	History   SalesHistory
	Cart      *cart.Cart
}

// NewSession wires a session over the given backends with an empty cart.
// Inventory satisfies the cart's product lookup contract directly.
func NewSession(inventory Inventory, history SalesHistory) *Session {
	return &Session{
		Inventory: inventory,
		History:   history,
		Cart:      cart.New(inventory),
	}
}
