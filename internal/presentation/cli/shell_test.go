package clipresentation

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-pos/internal/application/audit"
	"github.com/Zhima-Mochi/minishop-pos/internal/application/inventory"
	"github.com/Zhima-Mochi/minishop-pos/internal/application/returns"
	"github.com/Zhima-Mochi/minishop-pos/internal/application/sale"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-pos/internal/domain/transaction"
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-pos/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedReporter struct{ sum audit.Summary }

func (r fixedReporter) Summary() audit.Summary { return r.sum }

type harness struct {
	inventory *inventory.Service
	sales     *sale.Service
	shell     *Shell
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	inv := inventory.NewService(memory.NewCatalogRepository(), nil)
	require.NoError(t, inv.Seed(context.Background(), catalog.DefaultSeed()))
	sales := sale.NewService(inv, memory.NewLedger[*transaction.Sale](), id.NewTransactionIDGenerator(id.PrefixSale), nil, nil)
	rets := returns.NewService(inv, sales, memory.NewLedger[*transaction.Return](), id.NewTransactionIDGenerator(id.PrefixReturn), nil, nil)
	return &harness{inventory: inv, sales: sales, shell: New(inv, sales, rets, opts...)}
}

func (h *harness) run(t *testing.T, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	err := h.shell.Run(context.Background(), strings.NewReader(strings.Join(lines, "\n")+"\n"), &out)
	require.NoError(t, err)
	return out.String()
}

func (h *harness) stock(t *testing.T, id string) int {
	t.Helper()
	p, ok := h.inventory.GetProduct(context.Background(), id)
	require.True(t, ok)
	return p.Stock
}

func TestShell_SaleFlow(t *testing.T) {
	h := newHarness(t)
	out := h.run(t,
		"sale new",
		"sale add P001 10",
		"sale add P003 5",
		"sale complete cash 120",
		"history sales",
		"exit",
	)

	assert.Contains(t, out, "New Sale: SALE-")
	assert.Contains(t, out, "Current Total: $115.00")
	assert.Contains(t, out, "[Success] Sale completed!")
	assert.Contains(t, out, "Change: $5.00")
	assert.Contains(t, out, "Payment Method: cash, Payment Amount: $120.00")
	assert.Contains(t, out, "Goodbye!")
	assert.Equal(t, 90, h.stock(t, "P001"))
	assert.Len(t, h.sales.GetSalesHistory(context.Background()), 1)
}

func TestShell_ReportsFailuresWithoutStopping(t *testing.T) {
	h := newHarness(t)
	out := h.run(t,
		"sale add P001 1",
		"sale new",
		"sale add P005 50",
		"sale add P404 1",
		"sale add P001 zero",
		"sale add P001 0",
		"sale complete cash 1",
		"sale add P001 1",
		"sale complete bitcoin 10",
		"sale complete cash abc",
		"sale complete cash 1",
		"bogus",
		"exit",
	)

	assert.Contains(t, out, "No open sale. Use 'sale new' first")
	assert.Contains(t, out, "[Failed] Insufficient stock")
	assert.Contains(t, out, "[Failed] Product not found")
	assert.Contains(t, out, "Invalid quantity")
	assert.Contains(t, out, "Quantity must be greater than 0")
	assert.Contains(t, out, "[Failed] Transaction is empty, cannot complete")
	assert.Contains(t, out, "Invalid payment method")
	assert.Contains(t, out, "Invalid payment amount")
	assert.Contains(t, out, "[Failed] Insufficient payment amount")
	assert.Contains(t, out, `Unknown command "bogus"`)
	assert.Equal(t, 40, h.stock(t, "P005"))
}

func TestShell_CancelRestoresStock(t *testing.T) {
	h := newHarness(t)
	out := h.run(t,
		"sale new",
		"sale add P001 3",
		"sale add P002 2",
		"sale show",
		"sale cancel",
		"exit",
	)

	assert.Contains(t, out, "(In Progress)")
	assert.Contains(t, out, "Sale cancelled, stock restored")
	assert.Equal(t, 100, h.stock(t, "P001"))
	assert.Equal(t, 80, h.stock(t, "P002"))
}

func TestShell_ExitReleasesOpenSale(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "sale new", "sale add P004 6")

	assert.Contains(t, out, "cancelled, stock restored")
	assert.Equal(t, 60, h.stock(t, "P004"))
}

func TestShell_ReturnFlow(t *testing.T) {
	h := newHarness(t)
	out := h.run(t,
		"return new SALE-UNKNOWN",
		"return add P002 5",
		"return show",
		"return complete",
		"history returns",
		"exit",
	)

	assert.Contains(t, out, "Note: sale SALE-UNKNOWN is not in history")
	assert.Contains(t, out, "New Return: RET-")
	assert.Contains(t, out, "Current Total Refund: $19.00")
	assert.Contains(t, out, "Original Sale: SALE-UNKNOWN")
	assert.Contains(t, out, "[Success] Return completed!")
	assert.Equal(t, 85, h.stock(t, "P002"))
}

func TestShell_ReturnCancelDiscards(t *testing.T) {
	h := newHarness(t)
	out := h.run(t,
		"return new",
		"return complete",
		"return add P002 5",
		"return cancel",
		"return show",
		"exit",
	)

	assert.Contains(t, out, "[Failed] Transaction is empty, cannot complete")
	assert.Contains(t, out, "Return cancelled")
	assert.Contains(t, out, "No open return")
	assert.Equal(t, 80, h.stock(t, "P002"))
}

func TestShell_ProductsHistoryAndReport(t *testing.T) {
	h := newHarness(t, WithReporter(fixedReporter{sum: audit.Summary{
		SalesCompleted: 2,
		Revenue:        decimal.RequireFromString("120.50"),
		Refunds:        decimal.RequireFromString("19"),
	}}))
	out := h.run(t, "products", "history sales", "history returns", "history", "report", "help", "exit")

	assert.Contains(t, out, "Apple (ID: P001, Price: $5.50, Stock: 100)")
	assert.Contains(t, out, "Egg (ID: P005, Price: $15.00, Stock: 40)")
	assert.Contains(t, out, "No sales records")
	assert.Contains(t, out, "No return records")
	assert.Contains(t, out, "Usage: history sales|returns")
	assert.Contains(t, out, "Sales completed: 2")
	assert.Contains(t, out, "Net: $101.50")
	assert.Contains(t, out, "sale complete <method> <amount>")
}

func TestShell_ReportWithoutReporter(t *testing.T) {
	h := newHarness(t)
	out := h.run(t, "report", "exit")
	assert.Contains(t, out, "Reporting is not enabled")
}

func TestShell_StopsOnCancelledContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, h.shell.Run(ctx, strings.NewReader("sale new\n"), &out))
	assert.NotContains(t, out.String(), "New Sale")
}

func TestShell_CancelWhileWaitingForInputReleasesOpenSale(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- h.shell.Run(ctx, pr, &out) }()

	_, err := io.WriteString(pw, "sale new\nsale add P004 6\n")
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		p, ok := h.inventory.GetProduct(context.Background(), "P004")
		return ok && p.Stock == 54
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("shell did not stop after cancel")
	}

	assert.Contains(t, out.String(), "cancelled, stock restored")
	assert.Equal(t, 60, h.stock(t, "P004"))
}
