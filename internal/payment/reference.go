package payment

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultReferencePrefix prefixes every payment reference.
const DefaultReferencePrefix = "PAY"

// NewReference returns a reference unique to one payment attempt.
func NewReference(prefix string) string {
	return newReference(prefix, time.Now())
}

func newReference(prefix string, now time.Time) string {
	if prefix == "" {
		prefix = DefaultReferencePrefix
	}
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return prefix + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + suffix
}
