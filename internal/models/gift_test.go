package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestGiftPatch_Columns(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected map[string]any
	}{
		{
			name:     "empty body writes nothing",
			body:     `{}`,
			expected: map[string]any{},
		},
		{
			name:     "only provided fields are written",
			body:     `{"name":"  Book  ","priority":3}`,
			expected: map[string]any{"name": "Book", "priority": 3},
		},
		{
			name:     "explicit null clears optional column",
			body:     `{"link":null,"price":null}`,
			expected: map[string]any{"link": nil, "price": nil},
		},
		{
			name:     "blank optional string is stored as null",
			body:     `{"notes":"   "}`,
			expected: map[string]any{"notes": nil},
		},
		{
			name:     "unknown keys are ignored",
			body:     `{"is_reserved":true,"wishlist_id":9,"price":12.5}`,
			expected: map[string]any{"price": 12.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var patch GiftPatch
			require.NoError(t, json.Unmarshal([]byte(tt.body), &patch))
			assert.Equal(t, tt.expected, patch.Columns())
		})
	}
}

func TestWishlistPatch_Columns(t *testing.T) {
	var patch WishlistPatch
	require.NoError(t, json.Unmarshal([]byte(`{"owner_name":"Ann"}`), &patch))

	assert.Equal(t, map[string]any{"owner_name": "Ann"}, patch.Columns())
	assert.False(t, patch.Title.Set)
}

func TestOptional_UnmarshalJSON(t *testing.T) {
	var payload struct {
		A Optional[string] `json:"a"`
		B Optional[string] `json:"b"`
		C Optional[string] `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"x","b":null}`), &payload))

	assert.True(t, payload.A.Set)
	assert.False(t, payload.A.Null)
	assert.Equal(t, "x", payload.A.Value)

	assert.True(t, payload.B.Set)
	assert.True(t, payload.B.Null)
	assert.Empty(t, payload.B.Value)

	assert.False(t, payload.C.Set)
}

func TestOptional_Constructors(t *testing.T) {
	assert.Equal(t, map[string]any{"name": "Lamp"}, GiftPatch{Name: Some("Lamp")}.Columns())
	assert.Equal(t, map[string]any{"image_url": nil}, GiftPatch{ImageURL: Null[string]()}.Columns())
}

func TestGiftProjections(t *testing.T) {
	now := time.Now()
	gift := Gift{
		ID:                 7,
		WishlistID:         3,
		Name:               "Book",
		Priority:           2,
		IsReserved:         true,
		ReservationMessage: strPtr("from Bob"),
		ReservedAt:         &now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	owner, err := json.Marshal(gift.OwnerView())
	require.NoError(t, err)
	var ownerFields map[string]any
	require.NoError(t, json.Unmarshal(owner, &ownerFields))
	for _, hidden := range []string{"is_reserved", "reservation_message", "reserved_at"} {
		assert.NotContains(t, ownerFields, hidden)
	}
	assert.EqualValues(t, 3, ownerFields["wishlist_id"])

	public, err := json.Marshal(gift.PublicView())
	require.NoError(t, err)
	var publicFields map[string]any
	require.NoError(t, json.Unmarshal(public, &publicFields))
	for _, hidden := range []string{"wishlist_id", "created_at", "updated_at", "reserved_at"} {
		assert.NotContains(t, publicFields, hidden)
	}
	assert.Equal(t, true, publicFields["is_reserved"])
	assert.Equal(t, "from Bob", publicFields["reservation_message"])

	reserved := gift.ReservedView()
	assert.Equal(t, uint(7), reserved.ID)
	assert.True(t, reserved.IsReserved)
}

func TestNormalizeReservationMessage(t *testing.T) {
	assert.Nil(t, NormalizeReservationMessage(nil))
	assert.Nil(t, NormalizeReservationMessage(strPtr("   ")))
	assert.Equal(t, "hi", *NormalizeReservationMessage(strPtr(" hi ")))
}
