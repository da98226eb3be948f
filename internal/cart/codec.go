package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// ErrCorrupt is returned by DecodeLines when the persisted payload is not a
// JSON list. Callers recover by resetting to an empty cart; this error must
// never reach the customer.
var ErrCorrupt = errors.New("corrupt persisted cart")

// EncodeLines serializes cart lines to the canonical persistence shape:
// a JSON list of {productId, variantId, name, size, price, quantity}.
func EncodeLines(lines []Line) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, l := range lines {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(l.ProductID)
		e.FieldStart("variantId")
		e.Str(l.VariantID)
		e.FieldStart("name")
		e.Str(l.Name)
		e.FieldStart("size")
		e.Str(l.Size)
		e.FieldStart("price")
		e.RawStr(l.Price.String())
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// DecodeLines parses a persisted cart payload. The field naming of older
// revisions varied, so decoding is tolerant: "id" is accepted for
// "productId", string prices are accepted alongside numbers, and entries
// that cannot be made sense of are dropped instead of failing the restore.
// A payload that is not a list at all yields ErrCorrupt.
func DecodeLines(data []byte) ([]Line, error) {
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Array {
		return nil, ErrCorrupt
	}

	var lines []Line
	err := d.Arr(func(d *jx.Decoder) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		if l, ok := decodeLine(raw); ok {
			lines = append(lines, l)
		}
		return nil
	})
	if err != nil {
		return nil, ErrCorrupt
	}
	return lines, nil
}

// decodeLine parses a single persisted entry. It reports false for entries
// missing a product reference, a parsable price, or a usable quantity.
func decodeLine(raw jx.Raw) (Line, bool) {
	var (
		l        Line
		hasPrice bool
	)
	d := jx.DecodeBytes(raw)
	if d.Next() != jx.Object {
		return Line{}, false
	}

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "productId", "id":
			v, err := d.Str()
			if err != nil {
				return err
			}
			l.ProductID = v
		case "variantId":
			v, err := d.Str()
			if err != nil {
				return err
			}
			l.VariantID = v
		case "name":
			v, err := d.Str()
			if err != nil {
				return err
			}
			l.Name = v
		case "size":
			v, err := d.Str()
			if err != nil {
				return err
			}
			l.Size = v
		case "price":
			p, err := decodePrice(d)
			if err != nil {
				return err
			}
			l.Price = p
			hasPrice = true
		case "quantity":
			v, err := d.Int()
			if err != nil {
				return err
			}
			l.Quantity = v
		default:
			return d.Skip()
		}
		return nil
	})
	if err != nil {
		return Line{}, false
	}

	if l.ProductID == "" || !hasPrice || l.Price.IsNegative() || l.Quantity < 1 {
		return Line{}, false
	}
	return l, true
}

func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, errors.New("price is neither number nor string")
	}
}
