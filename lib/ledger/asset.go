package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Asset is a registry entry as the contract stores it. ID is assigned by the caller and never changes.
type Asset struct {
	ID          string `json:"id"`
	Nome        string `json:"nome"`
	Descricao   string `json:"descricao"`
	Responsavel string `json:"responsavel"`
	Local       string `json:"local"`
	Valor       Amount `json:"valor"`
	Status      string `json:"status"`
}

// AssetPatch is a partial update of an asset. Only the fields set are sent to the contract, so untouched fields keep
// their ledger values.
type AssetPatch struct {
	ID          string  `json:"id"`
	Nome        *string `json:"nome,omitempty"`
	Descricao   *string `json:"descricao,omitempty"`
	Responsavel *string `json:"responsavel,omitempty"`
	Local       *string `json:"local,omitempty"`
	Valor       *Amount `json:"valor,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// Amount is a monetary value. It decodes from a JSON number or from a string holding a number, so "1500.50" and
// 1500.50 are the same amount; it always encodes as a number. Empty strings and null decode to zero.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return fmt.Errorf("%w: %s", ErrBadAmount, s)
		}

		if s = strings.TrimSpace(str); s == "" {
			*a = 0

			return nil
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %s", ErrBadAmount, s)
	}

	*a = Amount(f)

	return nil
}
