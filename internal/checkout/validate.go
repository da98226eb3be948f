package checkout

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-playground/validator/v10"
)

// Validation errors, one per missing-field category. Handlers map these to
// 400 responses with a stable error code.
var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrContactIncomplete = errors.New("contact fields incomplete")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrAddressIncomplete = errors.New("delivery address incomplete")
	ErrMissingSlot       = errors.New("delivery slot missing")
	ErrInvalidDate       = errors.New("delivery date out of range")
)

// Delivery date window bounds, in days from today.
const (
	MinLeadDays    = 3
	MaxWindowDays  = 30
	MinPhoneDigits = 10
)

// emailPattern is deliberately simple: local part, "@", domain, ".", tld,
// none containing whitespace or another "@".
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidEmail reports whether s looks like a deliverable address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func trimContact(c ContactInfo) ContactInfo {
	return ContactInfo{
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     strings.TrimSpace(c.Email),
		Phone:     strings.TrimSpace(c.Phone),
	}
}

// normalizePhone strips formatting characters, keeping digits and a leading
// plus sign.
func normalizePhone(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateContact checks the contact step: all fields present (trimmed),
// email well-formed, phone long enough after normalization.
func ValidateContact(c ContactInfo) error {
	c = trimContact(c)
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrContactIncomplete, strings.ToLower(verrs[0].Field()))
		}
		return ErrContactIncomplete
	}
	if !ValidEmail(c.Email) {
		return ErrInvalidEmail
	}
	normalized := normalizePhone(c.Phone)
	if len(strings.TrimPrefix(normalized, "+")) < MinPhoneDigits {
		return fmt.Errorf("%w: phone", ErrContactIncomplete)
	}
	return nil
}

// ValidateAddress checks that every address field is present (trimmed).
func ValidateAddress(a *DeliveryAddress) error {
	if a == nil {
		return ErrAddressIncomplete
	}
	trimmed := DeliveryAddress{
		Address:    strings.TrimSpace(a.Address),
		PostalCode: strings.TrimSpace(a.PostalCode),
		City:       strings.TrimSpace(a.City),
	}
	if err := validate.Struct(trimmed); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fmt.Errorf("%w: %s", ErrAddressIncomplete, strings.ToLower(verrs[0].Field()))
		}
		return ErrAddressIncomplete
	}
	return nil
}

// ValidateDate checks that date falls within [now+MinLeadDays, now+MaxWindowDays],
// comparing calendar days in the server's location.
func ValidateDate(date, now time.Time) error {
	if date.IsZero() {
		return ErrInvalidDate
	}
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	d, today := day(date), day(now)
	if d.Before(today.AddDate(0, 0, MinLeadDays)) || d.After(today.AddDate(0, 0, MaxWindowDays)) {
		return ErrInvalidDate
	}
	return nil
}

// validateDelivery runs the full delivery-selection validation: contact
// fields, email, then for home delivery the address, date, and slot.
func validateDelivery(e SetDelivery, now time.Time) error {
	if err := ValidateContact(e.Contact); err != nil {
		return err
	}
	if !e.Option.Valid() {
		return errors.Errorf("unknown delivery option %q", e.Option)
	}
	if e.Option != DeliveryHome {
		return nil
	}
	if err := ValidateAddress(e.Address); err != nil {
		return err
	}
	if err := ValidateDate(e.Date, now); err != nil {
		return err
	}
	if e.Slot == "" || !ValidSlot(e.Slot) {
		return ErrMissingSlot
	}
	return nil
}
