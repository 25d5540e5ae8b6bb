package domain

import (
	"encoding/json"
	"fmt"
)

// PurchaseRecord is one unlock in a wallet's ledger. Early versions of the
// documents stored purchases as bare card-id strings; those decode with
// Legacy set and encode back to the same bare string so the document
// round-trips unchanged. New records are always written in the structured
// form. Records are immutable once created and never evicted.
type PurchaseRecord struct {
	ID     string  `json:"id"`
	Time   string  `json:"time"`
	Tx     *string `json:"tx"`
	Legacy bool    `json:"-"`
}

// UnmarshalJSON accepts either the structured record object or a legacy bare
// card-id string.
func (p *PurchaseRecord) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("legacy purchase entry: %w", err)
		}
		*p = PurchaseRecord{ID: id, Legacy: true}
		return nil
	}

	type record PurchaseRecord // drop methods to avoid recursion
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*p = PurchaseRecord(r)
	return nil
}

// MarshalJSON writes legacy entries back as bare strings and everything else
// as the structured record.
func (p PurchaseRecord) MarshalJSON() ([]byte, error) {
	if p.Legacy {
		return json.Marshal(p.ID)
	}
	type record PurchaseRecord
	return json.Marshal(record(p))
}
