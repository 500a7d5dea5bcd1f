package clipresentation

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Zhima-Mochi/minishop-pos/internal/application/audit"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/transaction"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability"
	"github.com/Zhima-Mochi/minishop-pos/internal/observability/logctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	componentShell = "cli_shell"
	prompt         = "pos> "
)

type Inventory interface {
	GetAllProducts(ctx context.Context) []*catalog.Product
}

type Sales interface {
	CreateSale(ctx context.Context) *transaction.Sale
	AddItemToSale(ctx context.Context, sale *transaction.Sale, productID string, quantity int) error
	CompleteSale(ctx context.Context, sale *transaction.Sale, method string, amount decimal.Decimal) error
	CancelSale(ctx context.Context, sale *transaction.Sale) error
	GetSalesHistory(ctx context.Context) []*transaction.Sale
}

type Returns interface {
	CreateReturn(ctx context.Context, originalSaleID string) *transaction.Return
	AddItemToReturn(ctx context.Context, ret *transaction.Return, productID string, quantity int) error
	CompleteReturn(ctx context.Context, ret *transaction.Return) error
	GetReturnHistory(ctx context.Context) []*transaction.Return
	FindSaleByID(ctx context.Context, saleID string) (*transaction.Sale, bool)
}

// Reporter exposes running totals; optional.
type Reporter interface {
	Summary() audit.Summary
}

// Shell is a line-oriented cashier terminal. It holds at most one open sale and
// one open return at a time.
type Shell struct {
	inventory Inventory
	sales     Sales
	returns   Returns
	reporter  Reporter
	log       observability.Logger

	sale *transaction.Sale
	ret  *transaction.Return
}

type Option func(*Shell)

func WithReporter(r Reporter) Option {
	return func(s *Shell) { s.reporter = r }
}

func WithLogger(l observability.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.log = l
		}
	}
}

func New(inventory Inventory, sales Sales, returns Returns, opts ...Option) *Shell {
	s := &Shell{
		inventory: inventory,
		sales:     sales,
		returns:   returns,
		log:       observability.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(observability.F("component", componentShell))
	return s
}

// Run reads commands from in until exit, EOF or ctx cancellation. Cancellation is
// honoured even while waiting for input. An open sale left behind is cancelled so its
// reserved stock goes back to the catalog.
func (s *Shell) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	w := &writer{out: out}

	w.println("POS ready. Type 'help' for commands.")
	defer s.releaseOpenSale(ctx, w)

	if err := ctx.Err(); err != nil {
		return nil
	}
	lines, readErr := readLines(ctx, in)

	for {
		w.print(prompt)

		var line string
		select {
		case <-ctx.Done():
			w.println("")
			return nil
		case l, ok := <-lines:
			if !ok {
				w.println("")
				if err := <-readErr; err != nil {
					return fmt.Errorf("cli: read input: %w", err)
				}
				return nil
			}
			line = l
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			w.println("Thank you for using POS System. Goodbye!")
			return nil
		}

		cmdCtx := logctx.WithFields(ctx, s.log,
			observability.F("command_id", uuid.NewString()),
			observability.F("command", args[0]),
		)
		s.dispatch(cmdCtx, w, args)
		if w.err != nil {
			return fmt.Errorf("cli: write output: %w", w.err)
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
	}
}

// readLines scans in on its own goroutine. The error channel always receives exactly
// one value before lines is closed.
func readLines(ctx context.Context, in io.Reader) (<-chan string, <-chan error) {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errs <- nil
				return
			}
		}
		errs <- scanner.Err()
	}()
	return lines, errs
}

func (s *Shell) dispatch(ctx context.Context, w *writer, args []string) {
	switch args[0] {
	case "help":
		s.help(w)
	case "products":
		s.products(ctx, w)
	case "sale":
		s.saleCommand(ctx, w, args[1:])
	case "return":
		s.returnCommand(ctx, w, args[1:])
	case "history":
		s.history(ctx, w, args[1:])
	case "report":
		s.report(w)
	default:
		w.printf("Unknown command %q. Type 'help' for commands.\n", args[0])
	}
}

func (s *Shell) help(w *writer) {
	w.println(`Commands:
  products                         list products and stock
  sale new                         start a sale
  sale add <product-id> <qty>      add an item to the open sale
  sale complete <method> <amount>  pay with cash, card or mobile
  sale cancel                      cancel the open sale and restore stock
  sale show                        show the open sale
  return new [sale-id]             start a return
  return add <product-id> <qty>    add an item to the open return
  return complete                  refund and restore stock
  return cancel                    discard the open return
  return show                      show the open return
  history sales|returns            list completed transactions
  report                           running totals
  exit                             quit`)
}

func (s *Shell) products(ctx context.Context, w *writer) {
	products := s.inventory.GetAllProducts(ctx)
	if len(products) == 0 {
		w.println("No products")
		return
	}
	for _, p := range products {
		w.println(p.String())
	}
}

func (s *Shell) history(ctx context.Context, w *writer, args []string) {
	if len(args) != 1 {
		w.println("Usage: history sales|returns")
		return
	}
	switch args[0] {
	case "sales":
		sales := s.sales.GetSalesHistory(ctx)
		if len(sales) == 0 {
			w.println("No sales records")
			return
		}
		for _, sale := range sales {
			w.printf("\n%s\n", sale)
			if sale.IsCompleted() {
				w.printf("Payment Method: %s, Payment Amount: $%s\n",
					sale.PaymentMethod(), sale.PaymentAmount().StringFixed(2))
			}
		}
	case "returns":
		returns := s.returns.GetReturnHistory(ctx)
		if len(returns) == 0 {
			w.println("No return records")
			return
		}
		for _, ret := range returns {
			w.printf("\n%s\n", ret)
		}
	default:
		w.println("Usage: history sales|returns")
	}
}

func (s *Shell) report(w *writer) {
	if s.reporter == nil {
		w.println("Reporting is not enabled")
		return
	}
	sum := s.reporter.Summary()
	w.printf("Sales completed: %d\nSales cancelled: %d\nReturns completed: %d\n",
		sum.SalesCompleted, sum.SalesCancelled, sum.ReturnsCompleted)
	w.printf("Revenue: $%s\nRefunds: $%s\nNet: $%s\n",
		sum.Revenue.StringFixed(2), sum.Refunds.StringFixed(2), sum.Net().StringFixed(2))
}

func (s *Shell) releaseOpenSale(ctx context.Context, w *writer) {
	if s.sale == nil {
		return
	}
	id := s.sale.ID()
	if err := s.sales.CancelSale(context.WithoutCancel(ctx), s.sale); err == nil {
		w.printf("Open sale %s cancelled, stock restored\n", id)
	}
	s.sale = nil
}

func describeError(err error) string {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return "Product not found"
	case errors.Is(err, catalog.ErrInsufficientStock):
		return "Insufficient stock"
	case errors.Is(err, catalog.ErrInvalidQuantity):
		return "Quantity must be greater than 0"
	case errors.Is(err, catalog.ErrStockOverflow):
		return "Stock level would exceed the maximum"
	case errors.Is(err, transaction.ErrDuplicateID):
		return "Transaction ID is already recorded"
	case errors.Is(err, transaction.ErrInsufficientPayment):
		return "Insufficient payment amount"
	case errors.Is(err, transaction.ErrEmpty):
		return "Transaction is empty, cannot complete"
	case errors.Is(err, transaction.ErrClosed):
		return "Transaction is already closed"
	default:
		return err.Error()
	}
}

// writer remembers the first write error so command handlers can print freely.
type writer struct {
	out io.Writer
	err error
}

func (w *writer) print(a ...any) {
	if w.err == nil {
		_, w.err = fmt.Fprint(w.out, a...)
	}
}

func (w *writer) println(a ...any) {
	if w.err == nil {
		_, w.err = fmt.Fprintln(w.out, a...)
	}
}

func (w *writer) printf(format string, a ...any) {
	if w.err == nil {
		_, w.err = fmt.Fprintf(w.out, format, a...)
	}
}
