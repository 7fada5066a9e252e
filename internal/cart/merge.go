package cart

// Line is a cart line as the merge logic sees it. It carries no price: prices
// are always resolved against the live catalog at pricing time.
type Line struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id"`
	Quantity  int    `json:"quantity"`
}

// MergeCarts folds guest lines into account lines. Colliding lines, keyed by
// (product, variant), sum their quantities; everything else is appended in
// guest order. Neither input slice is mutated.
func MergeCarts(account, guest []Line) []Line {
	type key struct{ productID, variantID string }

	merged := make([]Line, len(account))
	copy(merged, account)

	index := make(map[key]int, len(merged))
	for i, line := range merged {
		index[key{line.ProductID, line.VariantID}] = i
	}

	for _, line := range guest {
		if line.Quantity <= 0 {
			continue
		}
		k := key{line.ProductID, line.VariantID}
		if i, ok := index[k]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[k] = len(merged)
		merged = append(merged, line)
	}
	return merged
}

// MergeWishlists unions product IDs, keeping account order first and guest
// additions after, deduplicated.
func MergeWishlists(account, guest []string) []string {
	merged := make([]string, 0, len(account)+len(guest))
	seen := make(map[string]struct{}, len(account)+len(guest))
	for _, id := range account {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	for _, id := range guest {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		merged = append(merged, id)
	}
	return merged
}
