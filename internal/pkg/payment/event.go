package payment

// Event Webhook 事件。实现仅限本包内的几种类型，未识别的类型统一为 UnknownEvent
type Event interface {
	EventID() string
	isEvent()
}

// CheckoutCompleted checkout.session.completed
type CheckoutCompleted struct {
	ID      string
	Session CheckoutSession
}

// InvoicePaymentSucceeded invoice.payment_succeeded
type InvoicePaymentSucceeded struct {
	ID         string
	InvoiceID  string
	CustomerID string
	AmountPaid int64
	Currency   string
}

// SubscriptionCanceled customer.subscription.deleted
type SubscriptionCanceled struct {
	ID             string
	SubscriptionID string
}

// UnknownEvent 其余事件类型，确认收到后忽略
type UnknownEvent struct {
	ID   string
	Type string
}

func (e *CheckoutCompleted) EventID() string       { return e.ID }
func (e *InvoicePaymentSucceeded) EventID() string { return e.ID }
func (e *SubscriptionCanceled) EventID() string    { return e.ID }
func (e *UnknownEvent) EventID() string            { return e.ID }

func (*CheckoutCompleted) isEvent()       {}
func (*InvoicePaymentSucceeded) isEvent() {}
func (*SubscriptionCanceled) isEvent()    {}
func (*UnknownEvent) isEvent()            {}
