package prompt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/StockKeeper/internal/models"
)

func newPrompter(lines ...string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	p := New(strings.NewReader(strings.Join(lines, "\n")+"\n"), out)
	p.Now = func() time.Time { return time.Date(2026, 3, 9, 15, 4, 5, 0, time.UTC) }
	return p, out
}

func TestChoose(t *testing.T) {
	opts := []Option{{ID: "kg", Label: "Kilogram"}, {ID: "pcs", Label: "Pieces"}}
	tests := []struct {
		name    string
		answer  string
		current string
		want    string
		wantErr bool
	}{
		{name: "by number", answer: "2", want: "pcs"},
		{name: "by id", answer: "kg", want: "kg"},
		{name: "empty keeps current", answer: "", current: "pcs", want: "pcs"},
		{name: "dash clears", answer: "-", current: "pcs", want: ""},
		{name: "out of range", answer: "3", wantErr: true},
		{name: "unknown id", answer: "box", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newPrompter(tt.answer)
			got, err := p.Choose("Unit", opts, tt.current)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Pieces")
		})
	}
}

func TestBoolAndInt(t *testing.T) {
	p, _ := newPrompter("", "yes", "n", "", "7", "x")
	assert.True(t, p.Bool("Active", true))
	assert.True(t, p.Bool("Active", false))
	assert.False(t, p.Bool("Active", true))

	n, err := p.Int("Quantity", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	n, err = p.Int("Quantity", 3)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	_, err = p.Int("Quantity", 3)
	assert.ErrorContains(t, err, "not a whole number")
}

func TestConfirmDefaultsToNo(t *testing.T) {
	p, _ := newPrompter("")
	assert.False(t, p.Confirm("Delete?"))
}

func TestMasterItemForm_New(t *testing.T) {
	lk := MasterItemLookups{
		Types:  []models.ItemType{{ID: "t1", Name: "Raw"}},
		Groups: []models.ItemGroup{{ID: "g1", Name: "Metal", ItemTypeID: "t1"}, {ID: "g2", Name: "Wood", ItemTypeID: "t2"}},
		Units:  []models.ItemUnit{{ID: "pcs", Name: "Pieces"}},
	}
	// company, type, code, name, group, account, unit, active, price, quantity, description
	p, out := newPrompter("", "1", "", "Bolt", "1", "", "pcs", "", "2.50", "10", "")
	req, err := p.MasterItemForm(nil, "acme", lk)
	require.NoError(t, err)

	assert.Equal(t, "acme", req.Company)
	assert.Equal(t, "t1", req.ItemTypeID)
	assert.Len(t, req.Code, 26)
	assert.Equal(t, "Bolt", req.Name)
	assert.Equal(t, "g1", req.ItemGroupID)
	assert.Equal(t, "pcs", req.ItemUnitID)
	require.NotNil(t, req.IsActive)
	assert.True(t, *req.IsActive)
	assert.True(t, decimal.RequireFromString("2.5").Equal(req.Price))
	assert.Equal(t, 10, req.Quantity)
	assert.NotContains(t, out.String(), "Wood")
}

func TestMasterItemForm_NameRequired(t *testing.T) {
	p, _ := newPrompter("", "", "", "")
	_, err := p.MasterItemForm(nil, "acme", MasterItemLookups{})
	assert.ErrorIs(t, err, ErrNameRequired)
}

func TestMasterItemForm_BadPrice(t *testing.T) {
	p, _ := newPrompter("", "", "", "Bolt", "", "", "", "", "abc")
	_, err := p.MasterItemForm(nil, "acme", MasterItemLookups{})
	assert.ErrorContains(t, err, "price")
}

func TestMasterItemChanges(t *testing.T) {
	old := models.MasterItem{
		ID: "m1", Name: "Bolt", Code: "B-1", Quantity: 5,
		Price: decimal.RequireFromString("1.00"), IsActive: true, ItemUnitID: "pcs",
	}
	active := true
	in := models.CreateMasterItemRequest{
		Name: "Bolt M6", Code: "B-1", Quantity: 5,
		Price: decimal.RequireFromString("1"), IsActive: &active, ItemUnitID: "kg",
	}
	u := MasterItemChanges(old, in)
	require.NotNil(t, u.Name)
	assert.Equal(t, "Bolt M6", *u.Name)
	require.NotNil(t, u.ItemUnitID)
	assert.Equal(t, "kg", *u.ItemUnitID)
	assert.Nil(t, u.Code)
	assert.Nil(t, u.Price)
	assert.Nil(t, u.Quantity)
	assert.Nil(t, u.IsActive)

	assert.True(t, MasterItemChanges(old, models.CreateMasterItemRequest{
		Name: "Bolt", Code: "B-1", Quantity: 5, Price: old.Price, ItemUnitID: "pcs",
	}).Empty())
}

func TestTransactionForm_Defaults(t *testing.T) {
	accounts := []models.ItemAccountGroup{{ID: "a1", Name: "Warehouse"}}
	// company, code, date, type, account, note
	p, _ := newPrompter("", "", "", "in", "1", "restock")
	req, err := p.TransactionForm(nil, "acme", accounts)
	require.NoError(t, err)

	assert.Equal(t, "acme", req.Company)
	assert.Len(t, req.Code, 26)
	assert.Equal(t, "2026-03-09", req.Date)
	assert.Equal(t, models.TxIn, req.Type)
	assert.Equal(t, "Warehouse", req.Account)
	assert.Equal(t, "restock", req.Note)
}

func TestTransactionForm_Invalid(t *testing.T) {
	t.Run("date", func(t *testing.T) {
		p, _ := newPrompter("", "", "09/03/2026")
		_, err := p.TransactionForm(nil, "acme", nil)
		assert.ErrorContains(t, err, "date")
	})
	t.Run("type", func(t *testing.T) {
		p, _ := newPrompter("", "", "", "sideways")
		_, err := p.TransactionForm(nil, "acme", nil)
		assert.ErrorContains(t, err, "type")
	})
}

func TestTransactionChanges(t *testing.T) {
	old := models.Transaction{ID: "tx1", Type: models.TxOut, Date: "2026-03-01T00:00:00Z", Code: "T-1", Note: "a"}
	u := TransactionChanges(old, models.CreateTransactionRequest{
		Type: models.TxOut, Date: "2026-03-01", Code: "T-1", Note: "b",
	})
	assert.Nil(t, u.Type)
	assert.Nil(t, u.Date)
	assert.Nil(t, u.Code)
	require.NotNil(t, u.Note)
	assert.Equal(t, "b", *u.Note)
}

func TestItemForm(t *testing.T) {
	masters := []models.MasterItem{
		{ID: "m1", Name: "Bolt", ItemUnitID: "pcs"},
		{ID: "m2", Name: "Rope", Code: "R-1", ItemUnitID: "m"},
	}
	units := []models.ItemUnit{{ID: "pcs", Name: "Pieces"}, {ID: "m", Name: "Metre"}}

	t.Run("unit follows the chosen master item", func(t *testing.T) {
		// item, unit, quantity, note
		p, out := newPrompter("2", "", "", "")
		d, err := p.ItemForm(nil, masters, units)
		require.NoError(t, err)
		assert.Equal(t, "m2", d.MasterItemID)
		assert.Equal(t, "m", d.ItemUnitID)
		assert.Equal(t, 1, d.Quantity)
		assert.Contains(t, out.String(), "Rope (R-1)")
	})

	t.Run("editing keeps existing values", func(t *testing.T) {
		existing := &models.Item{ID: "i1", MasterItemID: "m1", ItemUnitID: "m", Quantity: 4, Note: "x"}
		p, _ := newPrompter("", "", "", "")
		d, err := p.ItemForm(existing, masters, units)
		require.NoError(t, err)
		assert.Equal(t, "m1", d.MasterItemID)
		assert.Equal(t, "m", d.ItemUnitID)
		assert.Equal(t, 4, d.Quantity)
		assert.Equal(t, "x", d.Note)
	})

	t.Run("no master item leaves draft invalid", func(t *testing.T) {
		p, _ := newPrompter("", "", "0", "")
		d, err := p.ItemForm(nil, masters, units)
		require.NoError(t, err)
		assert.Error(t, d.Validate())
	})
}
