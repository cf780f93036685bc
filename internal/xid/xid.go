package xid

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a prefixed random id such as "batch-1b4e28ba-2fa1-11d2-883f-0016d3cca427".
func New(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
