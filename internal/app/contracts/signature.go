package contracts

type SignatureCodec interface {
	Sign(fields []string, secret string) string
	Verify(fields []string, secret, candidate string) bool
}

type OrderIDGenerator interface {
	Generate() string
}
