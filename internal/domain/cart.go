package domain

// CartLine is one (item, quantity) pair in the persistent cart. The cart
// holds at most one line per item id; adding an existing id increments the
// quantity instead of appending a duplicate line.
type CartLine struct {
	Item     Product `json:"item"`
	Quantity int     `json:"quantity"`
}

// Subtotal is the line's contribution to the cart total.
func (l CartLine) Subtotal() int64 {
	return l.Item.Price * int64(l.Quantity)
}
