package invoice

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Value is a stored count, measurement or price kept exactly as it was
// written. Stored invoices hold these as numbers, as numeric strings or not
// at all; they are only parsed when totals are computed.
type Value json.RawMessage

func IntValue(n int) Value {
	return Value(strconv.Itoa(n))
}

// DecimalValue encodes d as a JSON string, the form prices are written in.
func DecimalValue(d decimal.Decimal) Value {
	return Value(strconv.Quote(d.String()))
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}

	return []byte(v), nil
}

func (v *Value) UnmarshalJSON(b []byte) error {
	*v = append(Value(nil), b...)
	return nil
}

// String returns the value without JSON quoting. Null reads as empty.
func (v Value) String() string {
	raw := bytes.TrimSpace(v)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}

	return string(raw)
}

// Decimal parses the value as a number. Anything else counts as zero.
func (v Value) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(v.String()))
	if err != nil {
		return decimal.Zero
	}

	return d
}

// Int is the whole part of Decimal.
func (v Value) Int() int {
	return int(v.Decimal().IntPart())
}
