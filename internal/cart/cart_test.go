package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestCart_AddMergesSameKey(t *testing.T) {
	c := New("acct")
	k := Key{ProductID: "p1", Size: ptr("M"), Color: ptr("Black")}
	c.Add(k, 2)
	c.Add(Key{ProductID: "p1", Size: ptr("M"), Color: ptr("Black")}, 3)

	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

func TestCart_QuantityOf(t *testing.T) {
	c := New("acct")
	c.Add(Key{ProductID: "p1", Size: ptr("M")}, 4)

	assert.Equal(t, 4, c.QuantityOf(Key{ProductID: "p1", Size: ptr("M")}))
	assert.Zero(t, c.QuantityOf(Key{ProductID: "p1"}))
}

func TestCart_KeyDistinguishesAbsentFromEmpty(t *testing.T) {
	c := New("acct")
	c.Add(Key{ProductID: "p1"}, 1)
	c.Add(Key{ProductID: "p1", Size: ptr("")}, 1)
	c.Add(Key{ProductID: "p1", Size: ptr("m")}, 1)
	c.Add(Key{ProductID: "p1", Size: ptr("M")}, 1)

	assert.Len(t, c.Items, 4)
}

func TestCart_SetOverwrites(t *testing.T) {
	c := New("acct")
	k := Key{ProductID: "p1", Color: ptr("Red")}
	c.Add(k, 7)
	require.NoError(t, c.Set(k, 2))
	assert.Equal(t, 2, c.Items[0].Quantity)

	assert.ErrorIs(t, c.Set(Key{ProductID: "p2"}, 1), ErrItemNotFound)
}

func TestCart_RemoveIsIdempotent(t *testing.T) {
	c := New("acct")
	c.Add(Key{ProductID: "p1"}, 1)
	c.Add(Key{ProductID: "p2"}, 1)

	assert.True(t, c.Remove(Key{ProductID: "p1"}))
	assert.False(t, c.Remove(Key{ProductID: "p1"}))
	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)
}

func TestCart_AddCopiesDiscriminators(t *testing.T) {
	c := New("acct")
	size := "M"
	c.Add(Key{ProductID: "p1", Size: &size}, 1)
	size = "XL"
	assert.Equal(t, "M", *c.Items[0].Size)
}

func TestCart_ProductIDsDistinct(t *testing.T) {
	c := New("acct")
	c.Add(Key{ProductID: "p1", Size: ptr("S")}, 1)
	c.Add(Key{ProductID: "p1", Size: ptr("M")}, 1)
	c.Add(Key{ProductID: "p2"}, 1)
	assert.Equal(t, []string{"p1", "p2"}, c.ProductIDs())
}
