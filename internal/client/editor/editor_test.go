package editor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinyakov/StockKeeper/internal/apperrors"
	"github.com/atinyakov/StockKeeper/internal/models"
)

// fakeInventory keeps server state in memory. Mutations return bare items,
// List returns transactions with joined details, as the real API does.
type fakeInventory struct {
	txs         []models.Transaction
	masterItems []models.MasterItem
	units       []models.ItemUnit
	nextID      int

	listCalls   int
	itemCalls   int
	listErr     error
	mutationErr error
	lastReq     models.ItemRequest
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		txs: []models.Transaction{
			{ID: "tx1", Code: "T-1", Date: "2026-10-01"},
			{ID: "tx2", Code: "T-2", Date: "2026-10-02"},
		},
		masterItems: []models.MasterItem{
			{ID: "m1", Name: "Bolt", Code: "B1", ItemUnitID: "pcs"},
			{ID: "m2", Name: "Cable", Code: "C1"},
		},
		units: []models.ItemUnit{{ID: "pcs", Name: "Pieces"}, {ID: "m", Name: "Meter"}},
	}
}

func (f *fakeInventory) List(context.Context) ([]models.Transaction, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.Transaction, len(f.txs))
	for i, tx := range f.txs {
		tx.Items = append([]models.Item(nil), tx.Items...)
		out[i] = tx
	}
	return out, nil
}

func (f *fakeInventory) Delete(_ context.Context, id string) error {
	for i, tx := range f.txs {
		if tx.ID == id {
			f.txs = append(f.txs[:i], f.txs[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

func (f *fakeInventory) tx(id string) *models.Transaction {
	for i := range f.txs {
		if f.txs[i].ID == id {
			return &f.txs[i]
		}
	}
	return nil
}

func (f *fakeInventory) joined(req models.ItemRequest, id string) models.Item {
	it := models.Item{ID: id, MasterItemID: req.MasterItemID, ItemUnitID: req.ItemUnitID, Quantity: req.Quantity, Note: req.Note}
	for _, mi := range f.masterItems {
		if mi.ID == req.MasterItemID {
			it.MasterItem = &models.ItemSummary{Name: mi.Name, Code: mi.Code}
		}
	}
	for _, u := range f.units {
		if u.ID == req.ItemUnitID {
			it.ItemUnit = &models.NamedRef{Name: u.Name}
		}
	}
	return it
}

func (f *fakeInventory) AddItem(_ context.Context, txID string, req models.ItemRequest) (*models.Item, error) {
	f.itemCalls++
	f.lastReq = req
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	tx := f.tx(txID)
	if tx == nil {
		return nil, apperrors.ErrNotFound
	}
	f.nextID++
	id := fmt.Sprintf("i%d", f.nextID)
	tx.Items = append(tx.Items, f.joined(req, id))
	return &models.Item{ID: id, MasterItemID: req.MasterItemID, ItemUnitID: req.ItemUnitID, Quantity: req.Quantity}, nil
}

func (f *fakeInventory) UpdateItem(_ context.Context, txID, itemID string, req models.ItemRequest) (*models.Item, error) {
	f.itemCalls++
	f.lastReq = req
	if f.mutationErr != nil {
		return nil, f.mutationErr
	}
	tx := f.tx(txID)
	for i := range tx.Items {
		if tx.Items[i].ID == itemID {
			tx.Items[i] = f.joined(req, itemID)
			return &models.Item{ID: itemID, MasterItemID: req.MasterItemID, Quantity: req.Quantity}, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (f *fakeInventory) RemoveItem(_ context.Context, txID, itemID string) error {
	f.itemCalls++
	if f.mutationErr != nil {
		return f.mutationErr
	}
	tx := f.tx(txID)
	for i := range tx.Items {
		if tx.Items[i].ID == itemID {
			tx.Items = append(tx.Items[:i], tx.Items[i+1:]...)
			return nil
		}
	}
	return apperrors.ErrNotFound
}

type masterLister struct{ f *fakeInventory }

func (m masterLister) List(context.Context) ([]models.MasterItem, error) { return m.f.masterItems, nil }

func (f *fakeInventory) ItemUnits(context.Context) ([]models.ItemUnit, error) { return f.units, nil }

type setup struct {
	api      *fakeInventory
	board    *TransactionBoard
	editor   *ItemEditor
	loadings []bool
	asked    []string
	answer   bool
}

func newSetup(t *testing.T) *setup {
	t.Helper()
	s := &setup{api: newFakeInventory(), answer: true}
	s.board = NewTransactionBoard(s.api, nil)
	s.board.OnLoading(func(v bool) { s.loadings = append(s.loadings, v) })
	confirm := ConfirmFunc(func(q string) bool {
		s.asked = append(s.asked, q)
		return s.answer
	})
	s.editor = NewItemEditor(s.board, s.api, masterLister{s.api}, s.api, confirm, nil)

	require.NoError(t, s.board.Refresh(context.Background(), false))
	_, err := s.board.Select("tx1")
	require.NoError(t, err)
	s.editor.Open(context.Background())
	s.loadings = nil
	return s
}

// assertMatchesServer checks the selected transaction equals a fresh read.
func (s *setup) assertMatchesServer(t *testing.T) {
	t.Helper()
	fresh, err := s.api.List(context.Background())
	require.NoError(t, err)
	sel, ok := s.board.Selected()
	require.True(t, ok)
	for _, tx := range fresh {
		if tx.ID == sel.ID {
			assert.Equal(t, tx, sel)
			return
		}
	}
	t.Fatalf("selected transaction %s not on server", sel.ID)
}

func TestItemDraft_Validate(t *testing.T) {
	tests := []struct {
		name    string
		draft   ItemDraft
		wantErr string
	}{
		{"valid", ItemDraft{MasterItemID: "m1", Quantity: 1}, ""},
		{"zero quantity", ItemDraft{MasterItemID: "m1", Quantity: 0}, "quantity must be a positive integer"},
		{"negative quantity", ItemDraft{MasterItemID: "m1", Quantity: -2}, "quantity must be a positive integer"},
		{"missing master item", ItemDraft{Quantity: 3}, "master item is required"},
		{"both", ItemDraft{}, "master item is required; quantity must be a positive integer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidItem)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestResolveUnit(t *testing.T) {
	catalog := []models.MasterItem{{ID: "m1", ItemUnitID: "pcs"}, {ID: "m2"}}

	assert.Equal(t, "pcs", ResolveUnit(ItemDraft{MasterItemID: "m1"}, catalog).ItemUnitID)
	assert.Equal(t, "box", ResolveUnit(ItemDraft{MasterItemID: "m1", ItemUnitID: "box"}, catalog).ItemUnitID)
	assert.Empty(t, ResolveUnit(ItemDraft{MasterItemID: "m2"}, catalog).ItemUnitID)
	assert.Empty(t, ResolveUnit(ItemDraft{MasterItemID: "unknown"}, catalog).ItemUnitID)
}

func TestAddItem_InvalidDraftSendsNothing(t *testing.T) {
	s := newSetup(t)
	listsBefore := s.api.listCalls

	_, err := s.editor.AddItem(context.Background(), "tx1", ItemDraft{MasterItemID: "m1", Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidItem)
	_, err = s.editor.AddItem(context.Background(), "tx1", ItemDraft{Quantity: 2})
	assert.ErrorIs(t, err, ErrInvalidItem)
	_, err = s.editor.UpdateItem(context.Background(), "tx1", "i1", ItemDraft{MasterItemID: "m1"})
	assert.ErrorIs(t, err, ErrInvalidItem)

	assert.Zero(t, s.api.itemCalls)
	assert.Equal(t, listsBefore, s.api.listCalls)
}

func TestAddItem_DefaultsUnitFromMasterItem(t *testing.T) {
	s := newSetup(t)

	_, err := s.editor.AddItem(context.Background(), "tx1", ItemDraft{MasterItemID: "m1", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, "pcs", s.api.lastReq.ItemUnitID)

	sel, _ := s.board.Selected()
	require.Len(t, sel.Items, 1)
	assert.Equal(t, "pcs", sel.Items[0].ItemUnitID)
	assert.Equal(t, "Pieces", sel.Items[0].ItemUnit.Name)
	assert.Equal(t, "Bolt", sel.Items[0].MasterItem.Name)
}

func TestAddItem_ExplicitUnitWins(t *testing.T) {
	s := newSetup(t)
	_, err := s.editor.AddItem(context.Background(), "tx1", ItemDraft{MasterItemID: "m1", Quantity: 1, ItemUnitID: "m"})
	require.NoError(t, err)
	assert.Equal(t, "m", s.api.lastReq.ItemUnitID)
}

func TestMutations_SilentRefetchKeepsSelection(t *testing.T) {
	s := newSetup(t)
	ctx := context.Background()

	it, err := s.editor.AddItem(ctx, "tx1", ItemDraft{MasterItemID: "m1", Quantity: 3})
	require.NoError(t, err)
	s.assertMatchesServer(t)

	_, err = s.editor.AddItem(ctx, "tx1", ItemDraft{MasterItemID: "m2", Quantity: 1, Note: "spare"})
	require.NoError(t, err)
	s.assertMatchesServer(t)

	_, err = s.editor.UpdateItem(ctx, "tx1", it.ID, ItemDraft{MasterItemID: "m1", Quantity: 5})
	require.NoError(t, err)
	s.assertMatchesServer(t)
	sel, _ := s.board.Selected()
	require.Len(t, sel.Items, 2)
	assert.Equal(t, 5, sel.Items[0].Quantity)

	require.NoError(t, s.editor.RemoveItem(ctx, "tx1", it.ID))
	s.assertMatchesServer(t)
	sel, _ = s.board.Selected()
	require.Len(t, sel.Items, 1)
	assert.Equal(t, "Cable", sel.Items[0].MasterItem.Name)

	assert.Equal(t, "tx1", sel.ID)
	assert.Empty(t, s.loadings, "refetch after a mutation must not toggle loading")
	assert.False(t, s.board.Loading())
}

func TestRemoveItem_RequiresConfirmation(t *testing.T) {
	s := newSetup(t)
	ctx := context.Background()
	_, err := s.editor.AddItem(ctx, "tx1", ItemDraft{MasterItemID: "m1", Quantity: 3})
	require.NoError(t, err)
	calls := s.api.itemCalls

	s.answer = false
	err = s.editor.RemoveItem(ctx, "tx1", "i1")
	assert.ErrorIs(t, err, ErrNotConfirmed)
	assert.Equal(t, calls, s.api.itemCalls, "declined removal sends nothing")
	assert.Equal(t, []string{"Are you sure you want to delete this item?"}, s.asked)

	noConfirm := NewItemEditor(s.board, s.api, masterLister{s.api}, s.api, nil, nil)
	assert.ErrorIs(t, noConfirm.RemoveItem(ctx, "tx1", "i1"), ErrNotConfirmed)
	assert.Equal(t, calls, s.api.itemCalls)
}

func TestMutation_FailureSkipsRefetch(t *testing.T) {
	s := newSetup(t)
	s.api.mutationErr = errors.New("500")
	lists := s.api.listCalls

	_, err := s.editor.AddItem(context.Background(), "tx1", ItemDraft{MasterItemID: "m1", Quantity: 1})
	assert.ErrorContains(t, err, "add item")
	assert.Equal(t, lists, s.api.listCalls)
}

func TestMutation_RefetchFailureKeepsStaleData(t *testing.T) {
	s := newSetup(t)
	s.api.listErr = errors.New("offline")

	_, err := s.editor.AddItem(context.Background(), "tx1", ItemDraft{MasterItemID: "m1", Quantity: 1})
	require.NoError(t, err, "the mutation itself succeeded")

	sel, ok := s.board.Selected()
	require.True(t, ok)
	assert.Empty(t, sel.Items, "stale copy stays on screen")
}

func TestBoard_RefreshTogglesLoadingWhenNotSilent(t *testing.T) {
	s := newSetup(t)
	require.NoError(t, s.board.Refresh(context.Background(), false))
	assert.Equal(t, []bool{true, false}, s.loadings)

	s.loadings = nil
	require.NoError(t, s.board.Refresh(context.Background(), true))
	assert.Empty(t, s.loadings)
}

func TestBoard_SelectUnknown(t *testing.T) {
	s := newSetup(t)
	_, err := s.board.Select("nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	sel, ok := s.board.Selected()
	require.True(t, ok)
	assert.Equal(t, "tx1", sel.ID, "failed select keeps the current one")

	s.board.Deselect()
	_, ok = s.board.Selected()
	assert.False(t, ok)
}

func TestBoard_DeleteTransaction(t *testing.T) {
	s := newSetup(t)
	ctx := context.Background()

	s.answer = false
	assert.ErrorIs(t, s.board.DeleteTransaction(ctx, "tx1", ConfirmFunc(func(string) bool { return false })), ErrNotConfirmed)
	assert.Len(t, s.board.Transactions(), 2)

	require.NoError(t, s.board.DeleteTransaction(ctx, "tx1", ConfirmFunc(func(string) bool { return true })))
	txs := s.board.Transactions()
	require.Len(t, txs, 1)
	assert.Equal(t, "tx2", txs[0].ID)
	_, ok := s.board.Selected()
	assert.False(t, ok, "deleted transaction is deselected")
}

func TestEditorOpen_LoadsLookups(t *testing.T) {
	s := newSetup(t)
	assert.Len(t, s.editor.MasterItems(), 2)
	assert.Len(t, s.editor.Units(), 2)
	assert.Equal(t, ItemDraft{MasterItemID: "m1", Quantity: 2, Note: "n", ItemUnitID: "pcs"},
		DraftFromItem(models.Item{ID: "i1", MasterItemID: "m1", Quantity: 2, Note: "n", ItemUnitID: "pcs"}))
}
