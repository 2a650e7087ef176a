package prompt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	"github.com/atinyakov/StockKeeper/internal/client/editor"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// ErrNameRequired is returned when the master item form is left without a name.
var ErrNameRequired = errors.New("name is required")

// Credentials asks for the login email and password.
func (p *Prompter) Credentials() (email, password string) {
	email = p.Line("Email")
	password = p.Line("Password")
	return email, password
}

// MasterItemLookups are the reference lists offered by the master item form.
type MasterItemLookups struct {
	Types         []models.ItemType
	Groups        []models.ItemGroup
	Units         []models.ItemUnit
	AccountGroups []models.ItemAccountGroup
}

// MasterItemForm fills in a master item. existing is nil for a new record,
// which then gets a fresh code and the session's company.
func (p *Prompter) MasterItemForm(existing *models.MasterItem, company string, lk MasterItemLookups) (models.CreateMasterItemRequest, error) {
	cur := models.MasterItem{Code: ulid.Make().String(), Company: company, IsActive: true}
	if existing != nil {
		cur = *existing
		if cur.Company == "" {
			cur.Company = company
		}
	}

	var req models.CreateMasterItemRequest
	var err error
	req.Company = p.LineDefault("Company", cur.Company)

	types := make([]Option, 0, len(lk.Types))
	for _, t := range lk.Types {
		types = append(types, Option{ID: t.ID, Label: t.Name})
	}
	if req.ItemTypeID, err = p.Choose("Item type", types, cur.ItemTypeID); err != nil {
		return req, err
	}

	req.Code = p.LineDefault("Code", cur.Code)
	req.Name = p.LineDefault("Name", cur.Name)
	if req.Name == "" {
		return req, ErrNameRequired
	}

	groups := make([]Option, 0, len(lk.Groups))
	for _, g := range lk.Groups {
		if req.ItemTypeID != "" && g.ItemTypeID != "" && g.ItemTypeID != req.ItemTypeID {
			continue
		}
		groups = append(groups, Option{ID: g.ID, Label: g.Name})
	}
	if req.ItemGroupID, err = p.Choose("Item group", groups, cur.ItemGroupID); err != nil {
		return req, err
	}

	accounts := make([]Option, 0, len(lk.AccountGroups))
	for _, a := range lk.AccountGroups {
		accounts = append(accounts, Option{ID: a.ID, Label: a.Name})
	}
	if req.ItemAccountGroupID, err = p.Choose("Account group", accounts, cur.ItemAccountGroupID); err != nil {
		return req, err
	}

	units := unitOptions(lk.Units)
	if req.ItemUnitID, err = p.Choose("Unit", units, cur.ItemUnitID); err != nil {
		return req, err
	}

	active := p.Bool("Active", cur.IsActive)
	req.IsActive = &active

	priceStr := p.LineDefault("Price", cur.Price.String())
	if req.Price, err = decimal.NewFromString(priceStr); err != nil {
		return req, fmt.Errorf("price: %q is not a number", priceStr)
	}
	if req.Quantity, err = p.Int("Quantity", cur.Quantity); err != nil {
		return req, err
	}
	req.Description = p.LineDefault("Description", cur.Description)
	return req, nil
}

// MasterItemChanges turns a filled-in form into a partial update carrying
// only the fields that differ from old.
func MasterItemChanges(old models.MasterItem, in models.CreateMasterItemRequest) models.UpdateMasterItemRequest {
	var u models.UpdateMasterItemRequest
	setIfChanged(&u.Name, old.Name, in.Name)
	setIfChanged(&u.Code, old.Code, in.Code)
	setIfChanged(&u.Description, old.Description, in.Description)
	setIfChanged(&u.Company, old.Company, in.Company)
	setIfChanged(&u.ItemTypeID, old.ItemTypeID, in.ItemTypeID)
	setIfChanged(&u.ItemGroupID, old.ItemGroupID, in.ItemGroupID)
	setIfChanged(&u.ItemUnitID, old.ItemUnitID, in.ItemUnitID)
	setIfChanged(&u.ItemAccountGroupID, old.ItemAccountGroupID, in.ItemAccountGroupID)
	if in.Quantity != old.Quantity {
		q := in.Quantity
		u.Quantity = &q
	}
	if !in.Price.Equal(old.Price) {
		pr := in.Price
		u.Price = &pr
	}
	if in.IsActive != nil && *in.IsActive != old.IsActive {
		a := *in.IsActive
		u.IsActive = &a
	}
	return u
}

// TransactionForm fills in a transaction header.
func (p *Prompter) TransactionForm(existing *models.Transaction, company string, accountGroups []models.ItemAccountGroup) (models.CreateTransactionRequest, error) {
	cur := models.Transaction{Code: ulid.Make().String(), Company: company, Date: p.Now().Format(models.DateLayout)}
	if existing != nil {
		cur = *existing
		if cur.Company == "" {
			cur.Company = company
		}
		if len(cur.Date) >= len(models.DateLayout) {
			cur.Date = cur.Date[:len(models.DateLayout)]
		}
	}

	var req models.CreateTransactionRequest
	var err error
	req.Company = p.LineDefault("Company", cur.Company)
	req.Code = p.LineDefault("Code", cur.Code)

	req.Date = p.LineDefault("Date (YYYY-MM-DD)", cur.Date)
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		return req, fmt.Errorf("date: %q is not YYYY-MM-DD", req.Date)
	}

	typ := strings.ToUpper(p.LineDefault("Type (IN/OUT)", string(cur.Type)))
	switch models.TransactionType(typ) {
	case models.TxIn, models.TxOut, "":
		req.Type = models.TransactionType(typ)
	default:
		return req, fmt.Errorf("type: %q is neither IN nor OUT", typ)
	}

	accounts := make([]Option, 0, len(accountGroups))
	for _, a := range accountGroups {
		accounts = append(accounts, Option{ID: a.Name, Label: a.Name})
	}
	if req.Account, err = p.Choose("Account", accounts, cur.Account); err != nil {
		return req, err
	}
	req.Note = p.LineDefault("Note", cur.Note)
	return req, nil
}

// TransactionChanges turns a filled-in form into a partial update.
func TransactionChanges(old models.Transaction, in models.CreateTransactionRequest) models.UpdateTransactionRequest {
	var u models.UpdateTransactionRequest
	if in.Type != old.Type {
		t := in.Type
		u.Type = &t
	}
	oldDate := old.Date
	if len(oldDate) > len(models.DateLayout) {
		oldDate = oldDate[:len(models.DateLayout)]
	}
	setIfChanged(&u.Date, oldDate, in.Date)
	setIfChanged(&u.Code, old.Code, in.Code)
	setIfChanged(&u.Note, old.Note, in.Note)
	setIfChanged(&u.Account, old.Account, in.Account)
	setIfChanged(&u.Company, old.Company, in.Company)
	return u
}

// ItemForm fills in a line item. Picking a master item pre-selects its unit.
func (p *Prompter) ItemForm(existing *models.Item, masterItems []models.MasterItem, units []models.ItemUnit) (editor.ItemDraft, error) {
	d := editor.ItemDraft{Quantity: 1}
	if existing != nil {
		d = editor.DraftFromItem(*existing)
	}

	items := make([]Option, 0, len(masterItems))
	for _, mi := range masterItems {
		label := mi.Name
		if mi.Code != "" {
			label = fmt.Sprintf("%s (%s)", mi.Name, mi.Code)
		}
		items = append(items, Option{ID: mi.ID, Label: label})
	}
	picked, err := p.Choose("Item", items, d.MasterItemID)
	if err != nil {
		return d, err
	}
	if picked != d.MasterItemID {
		d.MasterItemID = picked
		for _, mi := range masterItems {
			if mi.ID == picked && mi.ItemUnitID != "" {
				d.ItemUnitID = mi.ItemUnitID
			}
		}
	}

	if d.ItemUnitID, err = p.Choose("Unit", unitOptions(units), d.ItemUnitID); err != nil {
		return d, err
	}
	if d.Quantity, err = p.Int("Quantity", d.Quantity); err != nil {
		return d, err
	}
	d.Note = p.LineDefault("Note", d.Note)
	return d, nil
}

func unitOptions(units []models.ItemUnit) []Option {
	out := make([]Option, 0, len(units))
	for _, u := range units {
		out = append(out, Option{ID: u.ID, Label: u.Name})
	}
	return out
}

func setIfChanged(dst **string, old, cur string) {
	if old != cur {
		v := cur
		*dst = &v
	}
}
