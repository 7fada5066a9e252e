package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeCartsSumsCollidingLines(t *testing.T) {
	t.Parallel()

	account := []Line{
		{ProductID: "0000001", VariantID: "default", Quantity: 2},
		{ProductID: "0000002", VariantID: "red-m", Quantity: 1},
	}
	guest := []Line{
		{ProductID: "0000001", VariantID: "default", Quantity: 3},
		{ProductID: "0000003", VariantID: "default", Quantity: 1},
	}

	merged := MergeCarts(account, guest)

	assert.Equal(t, []Line{
		{ProductID: "0000001", VariantID: "default", Quantity: 5},
		{ProductID: "0000002", VariantID: "red-m", Quantity: 1},
		{ProductID: "0000003", VariantID: "default", Quantity: 1},
	}, merged)
}

func TestMergeCartsDistinguishesVariants(t *testing.T) {
	t.Parallel()

	account := []Line{{ProductID: "0000001", VariantID: "red-m", Quantity: 1}}
	guest := []Line{{ProductID: "0000001", VariantID: "blue-l", Quantity: 1}}

	merged := MergeCarts(account, guest)
	assert.Len(t, merged, 2)
}

func TestMergeCartsDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	account := []Line{{ProductID: "0000001", VariantID: "default", Quantity: 2}}
	guest := []Line{{ProductID: "0000001", VariantID: "default", Quantity: 3}}

	_ = MergeCarts(account, guest)

	assert.Equal(t, 2, account[0].Quantity)
	assert.Equal(t, 3, guest[0].Quantity)
}

func TestMergeCartsSkipsNonPositiveGuestQuantities(t *testing.T) {
	t.Parallel()

	merged := MergeCarts(nil, []Line{
		{ProductID: "0000001", VariantID: "default", Quantity: 0},
		{ProductID: "0000002", VariantID: "default", Quantity: -1},
		{ProductID: "0000003", VariantID: "default", Quantity: 1},
	})
	assert.Equal(t, []Line{{ProductID: "0000003", VariantID: "default", Quantity: 1}}, merged)
}

func TestMergeCartsEmptyGuestIsIdentity(t *testing.T) {
	t.Parallel()

	account := []Line{
		{ProductID: "0000001", VariantID: "default", Quantity: 2},
		{ProductID: "0000002", VariantID: "red-m", Quantity: 4},
	}
	assert.Equal(t, account, MergeCarts(account, nil))
}

func TestMergeWishlistsUnions(t *testing.T) {
	t.Parallel()

	merged := MergeWishlists(
		[]string{"0000001", "0000002"},
		[]string{"0000002", "0000003", "0000003"},
	)
	assert.Equal(t, []string{"0000001", "0000002", "0000003"}, merged)
}
