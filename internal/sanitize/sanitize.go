package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Free-text order fields end up in a dashboard, so markup is stripped before
// storage. StrictPolicy removes every element and escapes what remains;
// applying Text twice yields the same string.
var policy = bluemonday.StrictPolicy()

func Text(s string) string {
	return strings.TrimSpace(policy.Sanitize(s))
}
