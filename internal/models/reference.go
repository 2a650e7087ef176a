package models

// ItemType classifies master items.
type ItemType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ItemGroup groups master items below an item type.
type ItemGroup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ItemTypeID  string `json:"itemTypeId"`
}

// ItemUnit is a unit of measure.
type ItemUnit struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ItemAccountGroup is an accounting group for master items.
type ItemAccountGroup struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
