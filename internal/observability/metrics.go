package observability

const (
	MUsecaseRequests     MetricKey = "usecase_requests_total"
	MUsecaseDuration     MetricKey = "usecase_duration_seconds"
	MStockLevel          MetricKey = "catalog_stock_level"
	MTransactions        MetricKey = "transactions_total"
	MSalesRevenue        MetricKey = "sales_revenue_total"
	MReturnsRefund       MetricKey = "returns_refund_total"
	MEventHandleDuration MetricKey = "event_handle_duration_seconds"
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPDuration        MetricKey = "http_request_duration_seconds"
)
