package lineitem

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiranalabs/lib-billing/billing"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

// ---------------------------------------------------------------------------
// AddRow
// ---------------------------------------------------------------------------

func TestNewStoreSeedsOneEmptyRow(t *testing.T) {
	t.Parallel()

	store := NewStore()

	require.Equal(t, 1, store.Len())

	items := store.Items()
	assert.True(t, items[0].Empty())
	assert.NotEmpty(t, items[0].LocalID)
	assert.True(t, items[0].Quantity.Equal(decimal.NewFromInt(1)))
}

func TestAddRowReusesTrailingEmptyRow(t *testing.T) {
	t.Parallel()

	store := NewStore()
	first := store.Items()[0]

	row := store.AddRow()

	assert.Equal(t, first.LocalID, row.LocalID)
	assert.Equal(t, 1, store.Len())
}

func TestAddRowAppendsAfterFilledRow(t *testing.T) {
	t.Parallel()

	store := NewStore()
	first := store.Items()[0]

	_, ok := store.SetName(first.LocalID, "Rice")
	require.True(t, ok)

	row := store.AddRow()

	assert.NotEqual(t, first.LocalID, row.LocalID)
	assert.Equal(t, 2, store.Len())
}

func TestAddRowAppendsAfterTrailingFreeRow(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.ReplaceAll([]LineItem{
		{Name: "Maggi", Quantity: decimal.NewFromInt(1), Free: true, OfferID: "offer-1"},
	})

	row := store.AddRow()

	assert.Equal(t, 2, store.Len())
	assert.True(t, row.Empty())
}

// ---------------------------------------------------------------------------
// Field updates
// ---------------------------------------------------------------------------

func TestSetNameClearsProductID(t *testing.T) {
	t.Parallel()

	store := NewStore()
	id := store.Items()[0].LocalID

	_, ok := store.Select(id, "p-1", "Rice", dec("50"))
	require.True(t, ok)

	item, ok := store.SetName(id, "Ric")
	require.True(t, ok)

	assert.Empty(t, item.ProductID)
	assert.Equal(t, "Ric", item.Name)
}

func TestSetQuantityRecomputesAmount(t *testing.T) {
	t.Parallel()

	store := NewStore()
	id := store.Items()[0].LocalID

	_, ok := store.Select(id, "p-1", "Rice", dec("50"))
	require.True(t, ok)

	item, ok := store.SetQuantity(id, dec("3"))
	require.True(t, ok)

	assert.True(t, item.Amount.Equal(dec("150")), "amount = %s", item.Amount)
}

func TestUpdateRejections(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value string
	}{
		{name: "quantity zero", field: FieldQuantity, value: "0"},
		{name: "quantity negative", field: FieldQuantity, value: "-2"},
		{name: "quantity fractional below one", field: FieldQuantity, value: "0.5"},
		{name: "price negative", field: FieldPrice, value: "-10"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewStore()
			id := store.Items()[0].LocalID

			_, ok := store.Select(id, "p-1", "Rice", dec("50"))
			require.True(t, ok)

			_, ok = store.SetQuantity(id, dec("2"))
			require.True(t, ok)

			before, _ := store.Get(id)

			item, err := store.UpdateField(id, tt.field, tt.value)
			require.NoError(t, err)

			assert.Equal(t, before, item, "rejected update must leave the item unchanged")
		})
	}
}

func TestUpdateFieldParsesAndDispatches(t *testing.T) {
	t.Parallel()

	store := NewStore()
	id := store.Items()[0].LocalID

	item, err := store.UpdateField(id, FieldName, "Sugar")
	require.NoError(t, err)
	assert.Equal(t, "Sugar", item.Name)

	item, err = store.UpdateField(id, FieldQuantity, "2.5")
	require.NoError(t, err)
	assert.True(t, item.Quantity.Equal(dec("2.5")))

	item, err = store.UpdateField(id, FieldPrice, "40")
	require.NoError(t, err)
	assert.True(t, item.UnitPrice.Equal(dec("40")))
	assert.True(t, item.HasPrice)
	assert.True(t, item.Amount.Equal(dec("100")))
}

func TestUpdateFieldErrors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		field    Field
		value    string
		wantCode billing.ErrorCode
	}{
		{name: "not a number", id: "", field: FieldQuantity, value: "two", wantCode: billing.ErrorInvalidInput},
		{name: "unknown field", id: "", field: Field("color"), value: "red", wantCode: billing.ErrorInvalidInput},
		{name: "missing row", id: "no-such-row", field: FieldName, value: "Rice", wantCode: billing.ErrorNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := NewStore()

			id := tt.id
			if id == "" {
				id = store.Items()[0].LocalID
			}

			_, err := store.UpdateField(id, tt.field, tt.value)
			require.Error(t, err)

			var domainErr billing.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}
}

func TestEditingFreeRowMarksManual(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.ReplaceAll([]LineItem{
		{ProductID: "p-2", Name: "Maggi", Quantity: decimal.NewFromInt(1), Free: true, OfferID: "offer-1"},
	})

	id := store.Items()[0].LocalID

	item, ok := store.SetQuantity(id, dec("2"))
	require.True(t, ok)

	assert.True(t, item.Manual)
}

// ---------------------------------------------------------------------------
// Amount invariant
// ---------------------------------------------------------------------------

func TestAmountInvariantAfterAnyUpdate(t *testing.T) {
	t.Parallel()

	store := NewStore()
	id := store.Items()[0].LocalID

	_, ok := store.Select(id, "p-1", "Rice", dec("12.5"))
	require.True(t, ok)

	steps := []struct {
		field Field
		value string
	}{
		{FieldQuantity, "4"},
		{FieldPrice, "13"},
		{FieldQuantity, "2"},
		{FieldPrice, "0"},
	}

	for _, step := range steps {
		item, err := store.UpdateField(id, step.field, step.value)
		require.NoError(t, err)

		if !item.Free {
			assert.True(t, item.Amount.Equal(item.Quantity.Mul(item.UnitPrice)),
				"amount %s != qty %s * price %s", item.Amount, item.Quantity, item.UnitPrice)
		}
	}
}

// ---------------------------------------------------------------------------
// Removal
// ---------------------------------------------------------------------------

func TestRemoveSoleRowResetsToEmptyRow(t *testing.T) {
	t.Parallel()

	store := NewStore()
	id := store.Items()[0].LocalID

	_, ok := store.Select(id, "p-1", "Rice", dec("50"))
	require.True(t, ok)

	require.True(t, store.RemoveRow(id))

	require.Equal(t, 1, store.Len())

	fresh := store.Items()[0]
	assert.True(t, fresh.Empty())
	assert.NotEqual(t, id, fresh.LocalID)
}

func TestRemoveRowFromMany(t *testing.T) {
	t.Parallel()

	store := NewStore()
	first := store.Items()[0].LocalID

	_, ok := store.Select(first, "p-1", "Rice", dec("50"))
	require.True(t, ok)

	second := store.AddRow()

	require.True(t, store.RemoveRow(first))

	require.Equal(t, 1, store.Len())
	assert.Equal(t, second.LocalID, store.Items()[0].LocalID)
}

func TestRemoveRowUnknownID(t *testing.T) {
	t.Parallel()

	store := NewStore()

	assert.False(t, store.RemoveRow("no-such-row"))
}

func TestRemoveWhereCascade(t *testing.T) {
	t.Parallel()

	store := NewStore()
	id := store.Items()[0].LocalID

	_, ok := store.Select(id, "p-1", "Rice", dec("50"))
	require.True(t, ok)

	store.ReplaceAll(append(store.Items(),
		LineItem{ProductID: "p-2", Name: "Maggi", Quantity: decimal.NewFromInt(1), Free: true, OfferID: "offer-1"},
		LineItem{ProductID: "p-3", Name: "Soap", Quantity: decimal.NewFromInt(1), Free: true, OfferID: "offer-2"},
	))

	removed := store.RemoveWhere(func(item LineItem) bool { return item.OfferID == "offer-1" })

	assert.Equal(t, 1, removed)
	assert.Equal(t, 2, store.Len())

	for _, item := range store.Items() {
		assert.NotEqual(t, "offer-1", item.OfferID)
	}
}

// ---------------------------------------------------------------------------
// ReplaceAll
// ---------------------------------------------------------------------------

func TestReplaceAllPreservesAndAssignsIDs(t *testing.T) {
	t.Parallel()

	store := NewStore()
	existing := store.Items()[0].LocalID

	store.ReplaceAll([]LineItem{
		{LocalID: existing, ProductID: "p-1", Name: "Rice", Quantity: decimal.NewFromInt(2), UnitPrice: dec("50")},
		{ProductID: "p-2", Name: "Maggi", Quantity: decimal.NewFromInt(1), Free: true, OfferID: "offer-1"},
	})

	items := store.Items()
	require.Len(t, items, 2)

	assert.Equal(t, existing, items[0].LocalID)
	assert.NotEmpty(t, items[1].LocalID)
	assert.NotEqual(t, existing, items[1].LocalID)
}

func TestReplaceAllEmptySeedsFreshRow(t *testing.T) {
	t.Parallel()

	store := NewStore()
	store.ReplaceAll(nil)

	require.Equal(t, 1, store.Len())
	assert.True(t, store.Items()[0].Empty())
}

// ---------------------------------------------------------------------------
// Filled
// ---------------------------------------------------------------------------

func TestFilledSkipsBlankNames(t *testing.T) {
	t.Parallel()

	store := NewStore()
	id := store.Items()[0].LocalID

	_, ok := store.SetName(id, "   ")
	require.True(t, ok)

	assert.Empty(t, store.Filled())

	_, ok = store.SetName(id, "Rice")
	require.True(t, ok)

	assert.Len(t, store.Filled(), 1)
}
