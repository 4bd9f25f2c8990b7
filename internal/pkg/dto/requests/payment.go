package requests

type CreatePayment struct {
	CustomerName  string `json:"customerName" validate:"required,min=2,max=50,alpha_space"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	PaymentAmount int64  `json:"paymentAmount" validate:"gte=1000,lte=50000000"`
	ItemDetails   string `json:"itemDetails" validate:"omitempty,max=200"`

	CallbackURL string `json:"-"`
	ReturnURL   string `json:"-"`
}

type GetPaymentStatus struct {
	MerchantOrderID string `validate:"required,max=64,order_id"`
}

// PaymentCallback carries the processor's form-encoded notification. Amount is
// kept as the raw string because the signature is computed over it verbatim.
type PaymentCallback struct {
	MerchantCode     string `json:"merchantCode"`
	Amount           string `json:"amount"`
	MerchantOrderID  string `json:"merchantOrderId"`
	ProductDetail    string `json:"productDetail,omitempty"`
	AdditionalParam  string `json:"additionalParam,omitempty"`
	PaymentCode      string `json:"paymentCode,omitempty"`
	ResultCode       string `json:"resultCode"`
	MerchantUserID   string `json:"merchantUserId,omitempty"`
	Reference        string `json:"reference,omitempty"`
	Signature        string `json:"signature"`
	PublisherOrderID string `json:"publisherOrderId,omitempty"`
	SpUserHash       string `json:"spUserHash,omitempty"`
	SettlementDate   string `json:"settlementDate,omitempty"`
	IssuerCode       string `json:"issuerCode,omitempty"`
}
