package deeplink

// JSON bodies sealed inside deep-link payloads. Field names follow the
// wallet provider's wire format.

// ConnectPayload is the decrypted body of a connect response.
type ConnectPayload struct {
	PublicKey string `json:"public_key"`
	Session   string `json:"session"`
}

// SignMessagePayload is the body of an outbound signMessage request.
type SignMessagePayload struct {
	Message string `json:"message"` // base58-encoded message bytes
	Session string `json:"session"`
}

// SignMessageResult is the decrypted body of a signMessage response.
type SignMessageResult struct {
	Signature string `json:"signature"` // base58-encoded signature
}

// SignTransactionPayload is the body of an outbound signTransaction
// request. Transaction is an opaque base64 blob built by the backend.
type SignTransactionPayload struct {
	Transaction string `json:"transaction"`
	Session     string `json:"session"`
}

// SignTransactionResult is the decrypted body of a signTransaction
// response.
type SignTransactionResult struct {
	Transaction string `json:"transaction"` // base64 signed transaction
}
