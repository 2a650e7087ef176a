package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/atinyakov/StockKeeper/internal/client/api"
	"github.com/atinyakov/StockKeeper/internal/client/editor"
	"github.com/atinyakov/StockKeeper/internal/client/prompt"
	"github.com/atinyakov/StockKeeper/internal/client/service"
	"github.com/atinyakov/StockKeeper/internal/client/session"
	"github.com/atinyakov/StockKeeper/internal/models"
)

const helpText = `Available commands:
  register                 create an account
  login | logout           start or end a session
  items                    list master items
  item-add                 create a master item
  item-edit <id>           edit a master item
  item-delete <id>         delete a master item
  refs                     list types, groups, units and account groups
  tx                       list transactions
  tx-add                   create a transaction
  tx-edit <id>             edit a transaction header
  tx-delete <id>           delete a transaction
  tx-show <id>             open a transaction and show its items
  line-add                 add an item to the open transaction
  line-edit <itemId>       edit an item of the open transaction
  line-delete <itemId>     remove an item from the open transaction
  help | exit`

// shell is the interactive front end. It owns no state of its own beyond
// the prompter; lists live on the board and the session in the store.
type shell struct {
	out   io.Writer
	p     *prompt.Prompter
	store session.Store
	log   *zap.Logger

	auth    *service.AuthService
	masters *service.MasterItemService
	txs     *service.TransactionService
	refs    *service.ReferenceService

	board *editor.TransactionBoard
	items *editor.ItemEditor
}

func newShell(client *api.Client, p *prompt.Prompter, out io.Writer, log *zap.Logger) *shell {
	s := &shell{
		out:     out,
		p:       p,
		store:   client.Session(),
		log:     log,
		auth:    service.NewAuthService(client, client, client.Session(), log),
		masters: service.NewMasterItemService(client),
		txs:     service.NewTransactionService(client),
		refs:    service.NewReferenceService(client),
	}
	s.board = editor.NewTransactionBoard(s.txs, log)
	s.board.OnLoading(func(loading bool) {
		if loading {
			fmt.Fprintln(out, "Loading transactions...")
		}
	})
	s.items = editor.NewItemEditor(s.board, s.txs, s.masters, s.refs, p, log)
	return s
}

// run reads commands until exit or end of input.
func (s *shell) run(ctx context.Context) {
	sc := s.p.Scanner()
	for {
		fmt.Fprint(s.out, "stockkeeper> ")
		if !sc.Scan() {
			fmt.Fprintln(s.out)
			return
		}
		args := strings.Fields(sc.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return
		}
		if err := s.exec(ctx, args[0], args[1:]); err != nil {
			s.report(err)
		}
	}
}

func (s *shell) report(err error) {
	switch {
	case errors.Is(err, editor.ErrNotConfirmed):
		fmt.Fprintln(s.out, "Cancelled.")
	case errors.Is(err, api.ErrSessionExpired):
		// the login redirect already told the user
	default:
		fmt.Fprintln(s.out, "Error:", err)
	}
}

func (s *shell) exec(ctx context.Context, cmd string, args []string) error {
	needArg := func(usage string) (string, error) {
		if len(args) < 1 {
			return "", fmt.Errorf("usage: %s", usage)
		}
		return args[0], nil
	}

	switch cmd {
	case "help":
		fmt.Fprintln(s.out, helpText)
		return nil
	case "register":
		return s.register(ctx)
	case "login":
		return s.login(ctx)
	case "logout":
		if err := s.auth.Logout(ctx); err != nil {
			return err
		}
		s.board.Deselect()
		fmt.Fprintln(s.out, "Logged out.")
		return nil
	case "items":
		return s.listMasterItems(ctx)
	case "item-add":
		return s.saveMasterItem(ctx, "")
	case "item-edit":
		id, err := needArg("item-edit <id>")
		if err != nil {
			return err
		}
		return s.saveMasterItem(ctx, id)
	case "item-delete":
		id, err := needArg("item-delete <id>")
		if err != nil {
			return err
		}
		return s.deleteMasterItem(ctx, id)
	case "refs":
		return s.listRefs(ctx)
	case "tx":
		if err := s.board.Refresh(ctx, false); err != nil {
			return err
		}
		s.printTransactions()
		return nil
	case "tx-add":
		return s.saveTransaction(ctx, "")
	case "tx-edit":
		id, err := needArg("tx-edit <id>")
		if err != nil {
			return err
		}
		return s.saveTransaction(ctx, id)
	case "tx-delete":
		id, err := needArg("tx-delete <id>")
		if err != nil {
			return err
		}
		if err := s.board.DeleteTransaction(ctx, id, s.p); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Transaction deleted.")
		return nil
	case "tx-show":
		id, err := needArg("tx-show <id>")
		if err != nil {
			return err
		}
		return s.showTransaction(ctx, id)
	case "line-add":
		return s.saveLine(ctx, "")
	case "line-edit":
		id, err := needArg("line-edit <itemId>")
		if err != nil {
			return err
		}
		return s.saveLine(ctx, id)
	case "line-delete":
		id, err := needArg("line-delete <itemId>")
		if err != nil {
			return err
		}
		tx, err := s.selected()
		if err != nil {
			return err
		}
		if err := s.items.RemoveItem(ctx, tx.ID, id); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Item removed.")
		s.printSelected()
		return nil
	default:
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
}

func (s *shell) register(ctx context.Context) error {
	email, password := s.p.Credentials()
	company := s.p.Line("Company")
	if err := s.auth.Register(ctx, models.RegisterRequest{Email: email, Password: password, Company: company}); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Registered. Use login to start a session.")
	return nil
}

func (s *shell) login(ctx context.Context) error {
	email, password := s.p.Credentials()
	resp, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if resp.Company != "" {
		fmt.Fprintf(s.out, "Logged in (%s).\n", resp.Company)
	} else {
		fmt.Fprintln(s.out, "Logged in.")
	}
	return nil
}

func (s *shell) listMasterItems(ctx context.Context) error {
	items, err := s.masters.List(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tUNIT\tQTY\tPRICE\tACTIVE")
	for _, mi := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%t\n",
			mi.ID, mi.Code, mi.Name, refName(mi.ItemUnit), mi.Quantity, mi.Price.StringFixed(2), mi.IsActive)
	}
	return tw.Flush()
}

// lookups loads the reference lists offered by the master item form. A
// failed list is logged and left empty.
func (s *shell) lookups(ctx context.Context) prompt.MasterItemLookups {
	var lk prompt.MasterItemLookups
	var err error
	if lk.Types, err = s.refs.ItemTypes(ctx); err != nil {
		s.log.Error("failed to fetch item types", zap.Error(err))
	}
	if lk.Groups, err = s.refs.ItemGroups(ctx); err != nil {
		s.log.Error("failed to fetch item groups", zap.Error(err))
	}
	if lk.Units, err = s.refs.ItemUnits(ctx); err != nil {
		s.log.Error("failed to fetch item units", zap.Error(err))
	}
	if lk.AccountGroups, err = s.refs.ItemAccountGroups(ctx); err != nil {
		s.log.Error("failed to fetch account groups", zap.Error(err))
	}
	return lk
}

func (s *shell) saveMasterItem(ctx context.Context, id string) error {
	var existing *models.MasterItem
	if id != "" {
		items, err := s.masters.List(ctx)
		if err != nil {
			return err
		}
		for i := range items {
			if items[i].ID == id {
				existing = &items[i]
				break
			}
		}
		if existing == nil {
			return fmt.Errorf("master item %s not found", id)
		}
	}

	req, err := s.p.MasterItemForm(existing, s.store.Company(), s.lookups(ctx))
	if err != nil {
		return err
	}
	if existing == nil {
		mi, err := s.masters.Create(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Master item %s created.\n", mi.ID)
		return nil
	}
	changes := prompt.MasterItemChanges(*existing, req)
	if changes.Empty() {
		fmt.Fprintln(s.out, "Nothing changed.")
		return nil
	}
	if _, err := s.masters.Update(ctx, id, changes); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Master item updated.")
	return nil
}

func (s *shell) deleteMasterItem(ctx context.Context, id string) error {
	if !s.p.Confirm("Are you sure you want to delete this master item?") {
		return editor.ErrNotConfirmed
	}
	if err := s.masters.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Master item deleted.")
	return nil
}

func (s *shell) listRefs(ctx context.Context) error {
	lk := s.lookups(ctx)
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tID\tNAME")
	for _, t := range lk.Types {
		fmt.Fprintf(tw, "type\t%s\t%s\n", t.ID, t.Name)
	}
	for _, g := range lk.Groups {
		fmt.Fprintf(tw, "group\t%s\t%s\n", g.ID, g.Name)
	}
	for _, u := range lk.Units {
		fmt.Fprintf(tw, "unit\t%s\t%s\n", u.ID, u.Name)
	}
	for _, a := range lk.AccountGroups {
		fmt.Fprintf(tw, "account\t%s\t%s\n", a.ID, a.Name)
	}
	return tw.Flush()
}

func (s *shell) printTransactions() {
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tTYPE\tCODE\tACCOUNT\tITEMS")
	for _, tx := range s.board.Transactions() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", tx.ID, dateOnly(tx.Date), tx.Type, tx.Code, tx.Account, len(tx.Items))
	}
	_ = tw.Flush()
}

func (s *shell) saveTransaction(ctx context.Context, id string) error {
	var existing *models.Transaction
	if id != "" {
		if err := s.board.Refresh(ctx, true); err != nil {
			return err
		}
		for _, tx := range s.board.Transactions() {
			if tx.ID == id {
				existing = &tx
				break
			}
		}
		if existing == nil {
			return fmt.Errorf("transaction %s not found", id)
		}
	}

	accounts, err := s.refs.ItemAccountGroups(ctx)
	if err != nil {
		s.log.Error("failed to fetch account groups", zap.Error(err))
	}
	req, err := s.p.TransactionForm(existing, s.store.Company(), accounts)
	if err != nil {
		return err
	}

	if existing == nil {
		tx, err := s.txs.Create(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Transaction %s created.\n", tx.ID)
	} else {
		changes := prompt.TransactionChanges(*existing, req)
		if changes == (models.UpdateTransactionRequest{}) {
			fmt.Fprintln(s.out, "Nothing changed.")
			return nil
		}
		if _, err := s.txs.Update(ctx, id, changes); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Transaction updated.")
	}
	if err := s.board.Refresh(ctx, true); err != nil {
		s.log.Warn("transaction saved but list could not be refreshed", zap.Error(err))
	}
	return nil
}

func (s *shell) showTransaction(ctx context.Context, id string) error {
	if err := s.board.Refresh(ctx, true); err != nil {
		return err
	}
	if _, err := s.board.Select(id); err != nil {
		return err
	}
	s.printSelected()
	return nil
}

func (s *shell) selected() (models.Transaction, error) {
	tx, ok := s.board.Selected()
	if !ok {
		return tx, errors.New("no transaction open, use tx-show <id> first")
	}
	return tx, nil
}

func (s *shell) printSelected() {
	tx, ok := s.board.Selected()
	if !ok {
		return
	}
	fmt.Fprintf(s.out, "Transaction %s  %s  %s  %s\n", tx.Code, dateOnly(tx.Date), tx.Type, tx.Account)
	if tx.Note != "" {
		fmt.Fprintf(s.out, "Note: %s\n", tx.Note)
	}
	if len(tx.Items) == 0 {
		fmt.Fprintln(s.out, "No items.")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tITEM\tQTY\tUNIT\tNOTE")
	for _, it := range tx.Items {
		name := it.MasterItemID
		if it.MasterItem != nil {
			name = it.MasterItem.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", it.ID, name, it.Quantity, refName(it.ItemUnit), it.Note)
	}
	_ = tw.Flush()
}

func (s *shell) saveLine(ctx context.Context, itemID string) error {
	tx, err := s.selected()
	if err != nil {
		return err
	}
	var existing *models.Item
	if itemID != "" {
		for i := range tx.Items {
			if tx.Items[i].ID == itemID {
				existing = &tx.Items[i]
				break
			}
		}
		if existing == nil {
			return fmt.Errorf("item %s is not part of transaction %s", itemID, tx.Code)
		}
	}

	s.items.Open(ctx)
	draft, err := s.p.ItemForm(existing, s.items.MasterItems(), s.items.Units())
	if err != nil {
		return err
	}
	if existing == nil {
		if _, err := s.items.AddItem(ctx, tx.ID, draft); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Item added.")
	} else {
		if _, err := s.items.UpdateItem(ctx, tx.ID, itemID, draft); err != nil {
			return err
		}
		fmt.Fprintln(s.out, "Item updated.")
	}
	s.printSelected()
	return nil
}

func refName(r *models.NamedRef) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func dateOnly(d string) string {
	if len(d) > len(models.DateLayout) {
		return d[:len(models.DateLayout)]
	}
	return d
}
