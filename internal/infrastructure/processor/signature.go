package processor

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	domainerrors "fixer.backend/internal/domain/errors"
)

// SignatureHeader is the webhook signature header name.
const SignatureHeader = "Fixer-Signature"

// DefaultSignatureTolerance bounds how old a signed timestamp may be.
// Old-but-valid signatures are rejected to limit replay windows; event
// idempotency handles legitimate redeliveries inside the window.
const DefaultSignatureTolerance = 5 * time.Minute

// ComputeSignature produces the header value for a payload at the given
// time: "t=<unix>,v1=<hex hmac-sha256 of "<unix>.<payload>">".
func ComputeSignature(secret string, at time.Time, payload []byte) string {
	ts := strconv.FormatInt(at.Unix(), 10)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

// VerifySignature checks a webhook signature header against the raw
// payload. Any failure means the event must be dropped unprocessed.
func VerifySignature(secret, header string, payload []byte, tolerance time.Duration, now time.Time) error {
	var ts string
	var sigs []string
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			ts = v
		case "v1":
			sigs = append(sigs, v)
		}
	}
	if ts == "" || len(sigs) == 0 {
		return domainerrors.ErrInvalidSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return domainerrors.ErrInvalidSignature
	}
	at := time.Unix(unix, 0)
	if now.Sub(at) > tolerance || at.Sub(now) > tolerance {
		return domainerrors.ErrInvalidSignature
	}

	expected := ComputeSignature(secret, at, payload)
	_, want, _ := strings.Cut(expected, "v1=")
	for _, sig := range sigs {
		if hmac.Equal([]byte(sig), []byte(want)) {
			return nil
		}
	}
	return domainerrors.ErrInvalidSignature
}
