package models

// TransactionType is the direction of a stock movement.
type TransactionType string

const (
	// TxIn is an incoming stock movement.
	TxIn TransactionType = "IN"
	// TxOut is an outgoing stock movement.
	TxOut TransactionType = "OUT"
)

// DateLayout is the wire format of transaction dates.
const DateLayout = "2006-01-02"

// ItemSummary is the joined display data of a line item's master item.
type ItemSummary struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Item is one line of a transaction. MasterItem and ItemUnit are only
// populated when the owning transaction is read, never by item mutations.
type Item struct {
	ID            string       `json:"id"`
	TransactionID string       `json:"transactionId,omitempty"`
	MasterItemID  string       `json:"masterItemId"`
	ItemUnitID    string       `json:"itemUnitId,omitempty"`
	Quantity      int          `json:"quantity"`
	Note          string       `json:"note,omitempty"`
	MasterItem    *ItemSummary `json:"masterItem,omitempty"`
	ItemUnit      *NamedRef    `json:"itemUnit,omitempty"`
}

// Transaction is a stock-movement header owning an ordered set of items.
type Transaction struct {
	ID      string          `json:"id"`
	Type    TransactionType `json:"type,omitempty"`
	Date    string          `json:"date"`
	Code    string          `json:"code,omitempty"`
	Note    string          `json:"note,omitempty"`
	Account string          `json:"account,omitempty"`
	Company string          `json:"company,omitempty"`
	User    *NamedRef       `json:"user,omitempty"`
	Items   []Item          `json:"items,omitempty"`
}

// CreateTransactionRequest is the body of POST /transactions.
type CreateTransactionRequest struct {
	Type    TransactionType `json:"type,omitempty" validate:"omitempty,oneof=IN OUT"`
	Code    string          `json:"code,omitempty"`
	Date    string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Note    string          `json:"note,omitempty"`
	Account string          `json:"account,omitempty"`
	Company string          `json:"company,omitempty"`
}

// UpdateTransactionRequest is the body of PATCH /transactions/{id}.
// Nil fields are left untouched.
type UpdateTransactionRequest struct {
	Type    *TransactionType `json:"type,omitempty" validate:"omitempty,oneof=IN OUT"`
	Code    *string          `json:"code,omitempty"`
	Date    *string          `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Note    *string          `json:"note,omitempty"`
	Account *string          `json:"account,omitempty"`
	Company *string          `json:"company,omitempty"`
}

// ItemRequest is the body of both POST /transactions/{id}/items and
// PATCH /transactions/{id}/items/{itemId}.
type ItemRequest struct {
	MasterItemID string `json:"masterItemId" validate:"required"`
	Quantity     int    `json:"quantity" validate:"gt=0"`
	Note         string `json:"note,omitempty"`
	ItemUnitID   string `json:"itemUnitId,omitempty"`
}
