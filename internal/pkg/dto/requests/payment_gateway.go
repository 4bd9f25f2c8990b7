package requests

type PaymentInvoice struct {
	MerchantOrderID       string
	Amount                int64
	ProductDetails        string
	CustomerName          string
	CustomerEmail         string
	CallbackURL           string
	ReturnURL             string
	ExpiryPeriodInMinutes int
}
