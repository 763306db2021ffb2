package closure

// Outcome is the result of one closure attempt. Messages holds a single
// confirmation string on success, or one or more diagnostics on failure;
// it is never empty.
type Outcome struct {
	OrderID   string   `json:"order_id"`
	Succeeded bool     `json:"succeeded"`
	Messages  []string `json:"messages"`
}

// Success creates a succeeding outcome for the order.
func Success(orderID string) Outcome {
	return Outcome{OrderID: orderID, Succeeded: true, Messages: []string{"OK"}}
}

// Failure creates a non-succeeding outcome carrying the given diagnostics.
func Failure(orderID string, messages ...string) Outcome {
	return Outcome{OrderID: orderID, Succeeded: false, Messages: messages}
}
