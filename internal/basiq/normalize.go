package basiq

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// The provider is inconsistent about two account fields: institution is
// sometimes a bare id string and sometimes an object, and balance is
// sometimes a decimal string and sometimes an object holding one. Both are
// folded into canonical forms here, before any service logic sees them.

type institutionRef struct {
	ID string
}

func (i *institutionRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		i.ID = s
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("institution field: %w", err)
	}
	i.ID = obj.ID
	return nil
}

type balanceValue float64

func (v *balanceValue) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*v = balanceValue(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("balance string %q: %w", s, err)
		}
		*v = balanceValue(f)
		return nil
	}
	var obj struct {
		Current json.RawMessage `json:"current"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("balance field: %w", err)
	}
	if len(obj.Current) == 0 {
		*v = 0
		return nil
	}
	var inner balanceValue
	if err := json.Unmarshal(obj.Current, &inner); err != nil {
		return err
	}
	*v = inner
	return nil
}

// Account is the canonical internal account representation.
type Account struct {
	InstitutionID string
	Balance       float64
	Currency      string
}

type accountWire struct {
	Institution institutionRef `json:"institution"`
	Balance     balanceValue   `json:"balance"`
	Currency    string         `json:"currency"`
}

func (a accountWire) normalize() Account {
	return Account{
		InstitutionID: a.Institution.ID,
		Balance:       float64(a.Balance),
		Currency:      a.Currency,
	}
}

// Transaction is the canonical internal transaction representation.
type Transaction struct {
	Amount      string
	Description string
	PostDate    string
	Direction   string
	Currency    string
}
