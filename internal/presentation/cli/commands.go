package clipresentation

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"
)

var paymentMethods = map[string]bool{"cash": true, "card": true, "mobile": true}

func (s *Shell) saleCommand(ctx context.Context, w *writer, args []string) {
	if len(args) == 0 {
		w.println("Usage: sale new|add|complete|cancel|show")
		return
	}
	switch args[0] {
	case "new":
		if s.sale != nil {
			w.printf("Sale %s is still open; complete or cancel it first\n", s.sale.ID())
			return
		}
		s.sale = s.sales.CreateSale(ctx)
		w.printf("New Sale: %s\n", s.sale.ID())

	case "add":
		if s.sale == nil {
			w.println("No open sale. Use 'sale new' first")
			return
		}
		productID, qty, ok := parseItem(w, args[1:], "sale add <product-id> <qty>")
		if !ok {
			return
		}
		if err := s.sales.AddItemToSale(ctx, s.sale, productID, qty); err != nil {
			w.printf("[Failed] %s\n", describeError(err))
			return
		}
		w.println("[Success] Item added")
		w.printf("Current Total: $%s\n", s.sale.Total().StringFixed(2))

	case "complete":
		if s.sale == nil {
			w.println("No open sale. Use 'sale new' first")
			return
		}
		if len(args) != 3 {
			w.println("Usage: sale complete <cash|card|mobile> <amount>")
			return
		}
		method := args[1]
		if !paymentMethods[method] {
			w.println("Invalid payment method")
			return
		}
		amount, err := decimal.NewFromString(args[2])
		if err != nil {
			w.println("Invalid payment amount")
			return
		}
		if err := s.sales.CompleteSale(ctx, s.sale, method, amount); err != nil {
			w.printf("[Failed] %s\n", describeError(err))
			return
		}
		w.println("[Success] Sale completed!")
		w.printf("Payment Method: %s\n", method)
		w.printf("Payment Amount: $%s\n", amount.StringFixed(2))
		if change := s.sale.Change(); change.IsPositive() {
			w.printf("Change: $%s\n", change.StringFixed(2))
		}
		w.printf("Sale ID: %s\n", s.sale.ID())
		s.sale = nil

	case "cancel":
		if s.sale == nil {
			w.println("No open sale")
			return
		}
		if err := s.sales.CancelSale(ctx, s.sale); err != nil {
			w.printf("[Failed] %s\n", describeError(err))
			return
		}
		w.println("Sale cancelled, stock restored")
		s.sale = nil

	case "show":
		if s.sale == nil {
			w.println("No open sale")
			return
		}
		w.println(s.sale.String())

	default:
		w.println("Usage: sale new|add|complete|cancel|show")
	}
}

func (s *Shell) returnCommand(ctx context.Context, w *writer, args []string) {
	if len(args) == 0 {
		w.println("Usage: return new|add|complete|cancel|show")
		return
	}
	switch args[0] {
	case "new":
		if s.ret != nil {
			w.printf("Return %s is still open; complete or cancel it first\n", s.ret.ID())
			return
		}
		if len(args) > 2 {
			w.println("Usage: return new [sale-id]")
			return
		}
		var saleID string
		if len(args) == 2 {
			saleID = args[1]
			if _, ok := s.returns.FindSaleByID(ctx, saleID); !ok {
				w.printf("Note: sale %s is not in history\n", saleID)
			}
		}
		s.ret = s.returns.CreateReturn(ctx, saleID)
		w.printf("New Return: %s\n", s.ret.ID())

	case "add":
		if s.ret == nil {
			w.println("No open return. Use 'return new' first")
			return
		}
		productID, qty, ok := parseItem(w, args[1:], "return add <product-id> <qty>")
		if !ok {
			return
		}
		if err := s.returns.AddItemToReturn(ctx, s.ret, productID, qty); err != nil {
			w.printf("[Failed] %s\n", describeError(err))
			return
		}
		w.println("[Success] Return item added")
		w.printf("Current Total Refund: $%s\n", s.ret.TotalRefund().StringFixed(2))

	case "complete":
		if s.ret == nil {
			w.println("No open return")
			return
		}
		if err := s.returns.CompleteReturn(ctx, s.ret); err != nil {
			w.printf("[Failed] %s\n", describeError(err))
			return
		}
		w.println("[Success] Return completed!")
		w.printf("Total Refund: $%s\n", s.ret.TotalRefund().StringFixed(2))
		w.println("Stock restored")
		w.printf("Return ID: %s\n", s.ret.ID())
		s.ret = nil

	case "cancel":
		if s.ret == nil {
			w.println("No open return")
			return
		}
		s.ret = nil
		w.println("Return cancelled")

	case "show":
		if s.ret == nil {
			w.println("No open return")
			return
		}
		w.println(s.ret.String())

	default:
		w.println("Usage: return new|add|complete|cancel|show")
	}
}

func parseItem(w *writer, args []string, usage string) (string, int, bool) {
	if len(args) != 2 {
		w.printf("Usage: %s\n", usage)
		return "", 0, false
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		w.println("Invalid quantity")
		return "", 0, false
	}
	if qty <= 0 {
		w.println("Quantity must be greater than 0")
		return "", 0, false
	}
	return args[0], qty, true
}
