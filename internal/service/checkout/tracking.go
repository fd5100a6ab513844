package checkout

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	trackingPrefix   = "TRK-"
	trackingLength   = 10
	trackingAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// TrackingPattern matches every tracking number NewTrackingNumber produces.
var TrackingPattern = regexp.MustCompile(`^TRK-[A-Z0-9]{10}$`)

var alphabetSize = big.NewInt(int64(len(trackingAlphabet)))

// NewTrackingNumber returns TRK- followed by 10 characters drawn uniformly from [A-Z0-9].
func NewTrackingNumber() (string, error) {
	b := make([]byte, 0, len(trackingPrefix)+trackingLength)
	b = append(b, trackingPrefix...)
	for i := 0; i < trackingLength; i++ {
		n, err := rand.Int(rand.Reader, alphabetSize)
		if err != nil {
			return "", err
		}
		b = append(b, trackingAlphabet[n.Int64()])
	}
	return string(b), nil
}
