package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxWebhookAge is the replay window for signed webhook deliveries.
const MaxWebhookAge = 5 * time.Minute

// SignWebhook computes the signature header value for a webhook body:
// "sha256=" + hex(HMAC-SHA256(secret, timestamp + "." + body)).
func SignWebhook(secret string, timestamp int64, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook checks a delivery's signature and rejects replays older
// than MaxWebhookAge (in either direction, to tolerate minor clock skew).
func VerifyWebhook(secret, signature, timestampHeader string, body []byte, now time.Time) bool {
	parts := strings.Split(signature, "=")
	if len(parts) != 2 || parts[0] != "sha256" {
		return false
	}

	ts, err := strconv.ParseInt(timestampHeader, 10, 64)
	if err != nil {
		return false
	}
	age := now.Unix() - ts
	if age < 0 {
		age = -age
	}
	if age > int64(MaxWebhookAge.Seconds()) {
		return false
	}

	expected := SignWebhook(secret, ts, body)
	return hmac.Equal([]byte(signature), []byte(expected))
}
