package checkout

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func validContact() ContactInfo {
	return ContactInfo{
		FirstName: "Claire",
		LastName:  "Martin",
		Email:     "claire@example.fr",
		Phone:     "06 12 34 56 78",
	}
}

func validAddress() *DeliveryAddress {
	return &DeliveryAddress{
		Address:    "12 rue des Lilas",
		PostalCode: "92300",
		City:       "Levallois-Perret",
	}
}

func advanceToPayment(t *testing.T, f *Flow, option DeliveryOption) {
	t.Helper()
	_, err := f.Transition(Begin{})
	require.NoError(t, err)

	ev := SetDelivery{Contact: validContact(), Option: option, Now: testNow}
	if option == DeliveryHome {
		ev.Address = validAddress()
		ev.Date = testNow.AddDate(0, 0, 5)
		ev.Slot = "10:30"
	}
	_, err = f.Transition(ev)
	require.NoError(t, err)
}

func TestFlow_HappyPathCashPickup(t *testing.T) {
	f := NewFlow()
	assert.Equal(t, StateCartReview, f.State())

	advanceToPayment(t, f, DeliveryPickupParis)
	assert.Equal(t, StatePaymentSelection, f.State())
	assert.Nil(t, f.Address)

	_, err := f.Transition(SelectPayment{Method: PaymentCash})
	require.NoError(t, err)

	st, err := f.Transition(Submit{})
	require.NoError(t, err)
	assert.Equal(t, StateSubmission, st)

	st, err = f.Transition(Confirm{})
	require.NoError(t, err)
	assert.Equal(t, StateConfirmed, st)
	assert.True(t, st.IsTerminal())
}

func TestFlow_BeginRequiresNonEmptyCart(t *testing.T) {
	f := NewFlow()

	st, err := f.Transition(Begin{CartEmpty: true})
	require.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, StateCartReview, st)
}

func TestFlow_HomeDeliveryRequiresAddressDateSlot(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SetDelivery)
		wantErr error
	}{
		{"missing address", func(e *SetDelivery) { e.Address = nil }, ErrAddressIncomplete},
		{"blank city", func(e *SetDelivery) { e.Address.City = "  " }, ErrAddressIncomplete},
		{"date too soon", func(e *SetDelivery) { e.Date = testNow.AddDate(0, 0, 2) }, ErrInvalidDate},
		{"date too far", func(e *SetDelivery) { e.Date = testNow.AddDate(0, 0, 31) }, ErrInvalidDate},
		{"zero date", func(e *SetDelivery) { e.Date = time.Time{} }, ErrInvalidDate},
		{"missing slot", func(e *SetDelivery) { e.Slot = "" }, ErrMissingSlot},
		{"unknown slot", func(e *SetDelivery) { e.Slot = "03:12" }, ErrMissingSlot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFlow()
			_, err := f.Transition(Begin{})
			require.NoError(t, err)

			ev := SetDelivery{
				Contact: validContact(),
				Option:  DeliveryHome,
				Address: validAddress(),
				Date:    testNow.AddDate(0, 0, 5),
				Slot:    "10:30",
				Now:     testNow,
			}
			tt.mutate(&ev)

			st, err := f.Transition(ev)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateDeliverySelection, st, "failed validation must not advance")
		})
	}
}

func TestFlow_ContactValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ContactInfo)
		wantErr error
	}{
		{"blank first name", func(c *ContactInfo) { c.FirstName = "   " }, ErrContactIncomplete},
		{"blank last name", func(c *ContactInfo) { c.LastName = "" }, ErrContactIncomplete},
		{"blank email", func(c *ContactInfo) { c.Email = "" }, ErrContactIncomplete},
		{"double at", func(c *ContactInfo) { c.Email = "a@@b" }, ErrInvalidEmail},
		{"no at", func(c *ContactInfo) { c.Email = "ab.com" }, ErrInvalidEmail},
		{"no tld", func(c *ContactInfo) { c.Email = "a@b" }, ErrInvalidEmail},
		{"short phone", func(c *ContactInfo) { c.Phone = "06 12" }, ErrContactIncomplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFlow()
			_, err := f.Transition(Begin{})
			require.NoError(t, err)

			contact := validContact()
			tt.mutate(&contact)

			st, err := f.Transition(SetDelivery{
				Contact: contact,
				Option:  DeliveryPickupLevallois,
				Now:     testNow,
			})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateDeliverySelection, st)
		})
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@b.co"))
	assert.False(t, ValidEmail("a@@b"))
	assert.False(t, ValidEmail("ab.com"))
	assert.False(t, ValidEmail(""))
}

func TestFlow_PaymentFailureRevertsToCash(t *testing.T) {
	f := NewFlow()
	advanceToPayment(t, f, DeliveryPickupParis)

	_, err := f.Transition(SelectPayment{Method: PaymentCard})
	require.NoError(t, err)
	assert.Equal(t, PaymentCard, f.Method)

	st, err := f.Transition(PaymentFailed{})
	require.NoError(t, err)
	assert.Equal(t, StatePaymentSelection, st)
	assert.Equal(t, PaymentCash, f.Method)
}

func TestFlow_BackNavigationDoesNotSkipValidation(t *testing.T) {
	f := NewFlow()
	advanceToPayment(t, f, DeliveryPickupParis)

	_, err := f.Transition(Back{})
	require.NoError(t, err)
	assert.Equal(t, StateDeliverySelection, f.State())

	// Going forward again re-runs validation.
	st, err := f.Transition(SetDelivery{
		Contact: ContactInfo{FirstName: "x"},
		Option:  DeliveryPickupParis,
		Now:     testNow,
	})
	require.ErrorIs(t, err, ErrContactIncomplete)
	assert.Equal(t, StateDeliverySelection, st)
}

func TestFlow_InvalidTransitions(t *testing.T) {
	f := NewFlow()

	_, err := f.Transition(Submit{})
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.Transition(Confirm{})
	require.ErrorIs(t, err, ErrInvalidTransition)

	_, err = f.Transition(Back{})
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestFlow_Reset(t *testing.T) {
	f := NewFlow()
	advanceToPayment(t, f, DeliveryHome)

	f.Reset()
	assert.Equal(t, StateCartReview, f.State())
	assert.Empty(t, f.Contact.Email)
	assert.Nil(t, f.Address)
	assert.Equal(t, PaymentCash, f.Method)
	assert.Empty(t, f.Option)
}

func TestTotal_DeliveryFeeBranching(t *testing.T) {
	subtotal := decimal.RequireFromString("27.00")

	assert.True(t, decimal.RequireFromString("37.00").Equal(Total(subtotal, DeliveryHome)))
	assert.True(t, subtotal.Equal(Total(subtotal, DeliveryPickupParis)))
	assert.True(t, subtotal.Equal(Total(subtotal, DeliveryPickupLevallois)))
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()
	require.NotEmpty(t, slots)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "17:45", slots[len(slots)-1])
	assert.True(t, ValidSlot("12:15"))
	assert.False(t, ValidSlot("18:00"))
	assert.False(t, ValidSlot(""))
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	f1 := r.Get("s1")
	assert.Same(t, f1, r.Get("s1"))
	assert.NotSame(t, f1, r.Get("s2"))

	advanceToPayment(t, f1, DeliveryPickupParis)
	r.Reset("s1")
	assert.Equal(t, StateCartReview, r.Get("s1").State())
}
