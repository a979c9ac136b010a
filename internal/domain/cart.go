package domain

// LineItem is one product entry in the cart. SubtotalMinor is derived and
// always equals UnitPriceMinor * Quantity.
type LineItem struct {
	ProductID      int64  `json:"product_id"`
	Title          string `json:"title"`
	UnitPriceMinor int64  `json:"price_cents"`
	Quantity       int    `json:"qty"`
	SubtotalMinor  int64  `json:"subtotal_cents"`
}

// ProductRef is what the catalog hands to the cart when a product is added.
type ProductRef struct {
	ProductID      int64
	Title          string
	UnitPriceMinor int64
}

func NewLineItem(ref ProductRef, quantity int) LineItem {
	item := LineItem{
		ProductID:      ref.ProductID,
		Title:          ref.Title,
		UnitPriceMinor: ref.UnitPriceMinor,
		Quantity:       quantity,
	}
	item.Recompute()
	return item
}

// Recompute refreshes the cached subtotal after a quantity change.
func (i *LineItem) Recompute() {
	i.SubtotalMinor = i.UnitPriceMinor * int64(i.Quantity)
}

// Total sums the subtotals of items.
func Total(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.SubtotalMinor
	}
	return total
}

// Normalize returns a copy of items that satisfies the cart invariants:
// quantity >= 1, subtotal recomputed, product ids unique (first one wins).
func Normalize(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	seen := make(map[int64]struct{}, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			continue
		}
		if _, dup := seen[item.ProductID]; dup {
			continue
		}
		seen[item.ProductID] = struct{}{}
		item.Recompute()
		out = append(out, item)
	}
	return out
}

// Clone copies items so callers can't alias the store's slice.
func Clone(items []LineItem) []LineItem {
	if items == nil {
		return []LineItem{}
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}
