package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/abgdnv/sweetshop/internal/api"
	"github.com/abgdnv/sweetshop/internal/catalog"
	"github.com/abgdnv/sweetshop/internal/session"
)

// CommandRunner is the slice of the mutation commands the shop view uses.
type CommandRunner interface {
	Purchase(ctx context.Context, id int64) (string, error)
	Restock(ctx context.Context, in catalog.RestockInput) (string, error)
	Create(ctx context.Context, in catalog.CreateInput) (string, error)
}

// SessionControl is the slice of the session store the shop view uses.
type SessionControl interface {
	IsAuthenticated() bool
	Role() session.Role
	Logout() error
}

// ShopView renders the catalog and dispatches search, purchase and the
// seller-only restock/create actions.
type ShopView struct {
	vm       *catalog.ViewModel
	commands CommandRunner
	sessions SessionControl
	in       *bufio.Reader
	out      io.Writer
}

// NewShopView creates the shop view.
func NewShopView(vm *catalog.ViewModel, commands CommandRunner, sessions SessionControl, in io.Reader, out io.Writer) *ShopView {
	return &ShopView{vm: vm, commands: commands, sessions: sessions, in: bufio.NewReader(in), out: out}
}

func (v *ShopView) Render(ctx context.Context) (string, error) {
	v.vm.Refresh(ctx)

	for {
		// A 401 on any request forces the session closed; hand control
		// back so the router redirects to login.
		if !v.sessions.IsAuthenticated() {
			if msg := v.vm.Message(); msg != "" {
				fmt.Fprintln(v.out, msg)
			}
			return ViewLogin, nil
		}

		v.renderCatalog()

		line, ok := prompt(v.in, v.out, "> ")
		if !ok {
			return "", nil
		}
		next, done := v.dispatch(ctx, line)
		if done {
			return next, nil
		}
	}
}

// dispatch executes one shop command. It returns done=true when the view
// should hand control back to the router.
func (v *ShopView) dispatch(ctx context.Context, line string) (next string, done bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "search":
		v.vm.SetSearchTerm(ctx, strings.Join(args, " "))
	case "clear":
		v.vm.SetSearchTerm(ctx, "")
	case "buy":
		v.report(v.handleBuy(ctx, args))
	case "restock":
		v.report(v.handleRestock(ctx, args))
	case "add":
		v.report(v.handleAdd(ctx, args))
	case "refresh":
		v.vm.Refresh(ctx)
	case "logout":
		if err := v.sessions.Logout(); err != nil {
			fmt.Fprintf(v.out, "Logout failed: %v\n", err)
		}
		return ViewLogin, true
	case "quit":
		return "", true
	case "help":
		v.renderHelp()
	default:
		fmt.Fprintf(v.out, "Unknown command %q, type 'help'\n", cmd)
	}
	return "", false
}

// handleBuy purchases one unit of the product in the current snapshot.
// Out-of-stock products are not purchasable: the command is never issued
// for them.
func (v *ShopView) handleBuy(ctx context.Context, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: buy <product-id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return "", fmt.Errorf("invalid product ID: %s", args[0])
	}
	product, ok := v.lookup(id)
	if !ok {
		return "", fmt.Errorf("no product with ID %d in the current list", id)
	}
	if product.Quantity == 0 {
		return "", fmt.Errorf("%s is out of stock", product.Name)
	}
	return v.commands.Purchase(ctx, id)
}

// handleRestock is seller-only.
func (v *ShopView) handleRestock(ctx context.Context, args []string) (string, error) {
	if v.sessions.Role() != session.RoleSeller {
		return "", fmt.Errorf("restock requires the seller role")
	}
	if len(args) != 2 {
		return "", fmt.Errorf("usage: restock <product-id> <quantity>")
	}
	id, _ := strconv.ParseInt(args[0], 10, 64)
	qty, _ := strconv.Atoi(args[1])
	return v.commands.Restock(ctx, catalog.RestockInput{ID: id, Quantity: qty})
}

// handleAdd is seller-only.
func (v *ShopView) handleAdd(ctx context.Context, args []string) (string, error) {
	if v.sessions.Role() != session.RoleSeller {
		return "", fmt.Errorf("adding products requires the seller role")
	}
	if len(args) < 3 {
		return "", fmt.Errorf("usage: add <name> <price> <quantity>")
	}
	qty, _ := strconv.Atoi(args[len(args)-1])
	price, _ := strconv.ParseFloat(args[len(args)-2], 64)
	name := strings.Join(args[:len(args)-2], " ")
	return v.commands.Create(ctx, catalog.CreateInput{Name: name, Price: price, Quantity: qty})
}

// lookup finds a product in the current snapshot.
func (v *ShopView) lookup(id int64) (api.Product, bool) {
	for _, p := range v.vm.Snapshot() {
		if p.ID == id {
			return p, true
		}
	}
	return api.Product{}, false
}

// report prints the outcome of a command.
func (v *ShopView) report(message string, err error) {
	if err != nil {
		fmt.Fprintf(v.out, "Error: %s\n", userMessage(err))
		return
	}
	fmt.Fprintln(v.out, message)
}

func (v *ShopView) renderCatalog() {
	fmt.Fprintf(v.out, "\n== Sweet Shop (%s) ==\n", v.sessions.Role())
	if msg := v.vm.Message(); msg != "" {
		fmt.Fprintln(v.out, msg)
	}
	if term := v.vm.SearchTerm(); term != "" {
		fmt.Fprintf(v.out, "Search: %q\n", term)
	}

	switch v.vm.State() {
	case catalog.StateLoading:
		fmt.Fprintln(v.out, "Loading...")
		return
	case catalog.StateError, catalog.StateIdle:
		return
	}

	products := v.vm.Snapshot()
	if len(products) == 0 {
		fmt.Fprintln(v.out, "No sweets found.")
		return
	}
	for _, p := range products {
		stock := fmt.Sprintf("stock: %d", p.Quantity)
		if p.Quantity == 0 {
			stock = "OUT OF STOCK"
		}
		fmt.Fprintf(v.out, "  [%d] %-20s %8.2f  %s\n", p.ID, p.Name, p.Price, stock)
	}
}

func (v *ShopView) renderHelp() {
	fmt.Fprintln(v.out, `Commands:
  search <term>              filter the catalog
  clear                      reset the search filter
  buy <id>                   purchase one unit
  restock <id> <qty>         add stock (seller only)
  add <name> <price> <qty>   create a product (seller only)
  refresh                    re-fetch the catalog
  logout                     end the session
  quit                       exit`)
}

// userMessage maps an error to the message shown to the user: the server
// detail when one exists, a generic connectivity message when the backend
// was unreachable.
func userMessage(err error) string {
	var serverErr *api.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.Detail
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return "Network error: Could not reach the API server."
	}
	return err.Error()
}
