package order

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Verifier checks payment callback signatures: lowercase hex of
// HMAC-SHA256(secret, "<orderId>|<paymentId>"). A Verifier without a secret
// accepts every callback.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

func (v *Verifier) Enabled() bool {
	return v != nil && len(v.secret) > 0
}

func (v *Verifier) Sign(orderID int64, paymentID string) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(strconv.FormatInt(orderID, 10) + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (v *Verifier) Verify(orderID int64, paymentID, signature string) error {
	if !v.Enabled() {
		return nil
	}
	got, err := hex.DecodeString(signature)
	if err != nil {
		return ErrInvalidSignature
	}
	want, _ := hex.DecodeString(v.Sign(orderID, paymentID))
	if !hmac.Equal(got, want) {
		return ErrInvalidSignature
	}
	return nil
}
