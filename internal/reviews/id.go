package reviews

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
)

const reviewIDSuffixLen = 6

// NewReviewID returns an id of the form "<unix-ms>_<rand>" where the suffix
// is a short base36 string. Ids sort roughly by creation time.
func NewReviewID() string {
	return newReviewIDAt(time.Now(), rand.Int63())
}

func newReviewIDAt(now time.Time, rnd int64) string {
	if rnd < 0 {
		rnd = -rnd
	}
	suffix := strconv.FormatInt(rnd, 36)
	if len(suffix) > reviewIDSuffixLen {
		suffix = suffix[len(suffix)-reviewIDSuffixLen:]
	}
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 10))
	b.WriteByte('_')
	b.WriteString(suffix)
	return b.String()
}
