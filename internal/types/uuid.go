package types

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_SUBSCRIPTION          = "sub_local"
	UUID_PREFIX_CANCELLATION_FEEDBACK = "fb"
	UUID_PREFIX_REQUEST               = "req"
)

// GenerateUUID returns a lowercase ULID.
func GenerateUUID() string {
	return strings.ToLower(ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader).String())
}

// GenerateUUIDWithPrefix returns a prefixed lowercase ULID, e.g. "fb_01j...".
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return prefix + "_" + GenerateUUID()
}
