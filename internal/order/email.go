package order

import (
	"fmt"
	"strings"

	"github.com/dkpi/kefir-shop/internal/checkout"
)

const (
	adminSubject    = "Nouvelle commande - Du kéfir pour Inès"
	customerSubject = "Confirmation de votre commande - Du kéfir pour Inès"
)

// itemizedLines renders one line per cart line:
// name (size) - qty x unit_price = line_total, amounts with 2 decimals.
func itemizedLines(o *Order) string {
	var b strings.Builder
	for _, l := range o.Lines {
		fmt.Fprintf(&b, "- %s (%s) - %d x %s € = %s €\n",
			l.Name, l.Size, l.Quantity,
			l.Price.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	return b.String()
}

// deliveryBlock renders the delivery option, and for home delivery the
// address, date, and slot.
func deliveryBlock(o *Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Mode de retrait : %s\n", o.DeliveryOption.Label())
	if o.DeliveryOption == checkout.DeliveryHome && o.Address != nil {
		fmt.Fprintf(&b, "Adresse : %s, %s %s\n",
			o.Address.Address, o.Address.PostalCode, o.Address.City)
		fmt.Fprintf(&b, "Date de livraison : %s\n", o.DeliveryDate.Format("02/01/2006"))
		if o.TimeSlot != "" {
			fmt.Fprintf(&b, "Créneau : %s\n", o.TimeSlot)
		}
	}
	return b.String()
}

func totalsBlock(o *Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sous-total : %s €\n", o.Subtotal.StringFixed(2))
	if o.DeliveryFee.IsPositive() {
		fmt.Fprintf(&b, "Frais de livraison : %s €\n", o.DeliveryFee.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total : %s €\n", o.Total.StringFixed(2))
	return b.String()
}

// AdminBody renders the administrator notification email.
func AdminBody(o *Order) string {
	var b strings.Builder
	b.WriteString("Nouvelle commande reçue !\n\n")
	fmt.Fprintf(&b, "Commande : %s\n", o.ID)
	fmt.Fprintf(&b, "Client : %s %s\n", o.Contact.FirstName, o.Contact.LastName)
	fmt.Fprintf(&b, "Email : %s\n", o.Contact.Email)
	fmt.Fprintf(&b, "Téléphone : %s\n\n", o.Contact.Phone)
	b.WriteString("Détails de la commande :\n")
	b.WriteString(itemizedLines(o))
	b.WriteString("\n")
	b.WriteString(deliveryBlock(o))
	fmt.Fprintf(&b, "Mode de paiement : %s\n\n", o.PaymentMethod.Label())
	b.WriteString(totalsBlock(o))
	return b.String()
}

// CustomerBody renders the customer confirmation email.
func CustomerBody(o *Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Bonjour %s,\n\n", o.Contact.FirstName)
	b.WriteString("Merci pour votre commande ! Voici le récapitulatif :\n\n")
	b.WriteString(itemizedLines(o))
	b.WriteString("\n")
	b.WriteString(deliveryBlock(o))
	fmt.Fprintf(&b, "Mode de paiement : %s\n\n", o.PaymentMethod.Label())
	b.WriteString(totalsBlock(o))
	b.WriteString("\nNous vous contacterons prochainement pour organiser la remise de votre commande.\n")
	b.WriteString("\nÀ bientôt !\nL'équipe Du kéfir pour Inès\n")
	return b.String()
}
