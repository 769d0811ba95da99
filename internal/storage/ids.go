package storage

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// suffixLen is the length of the random id suffix.
const suffixLen = 6

// NewCampaignID derives a campaign id from the campaign name: a slug plus a
// random suffix. The suffix keeps repeated ingestions of same-named files
// from colliding.
func NewCampaignID(name string) string {
	return Slugify(name) + "-" + randomSuffix()
}

// NewUploadID returns a unique upload identifier.
func NewUploadID() string {
	return "upload-" + strconv.FormatInt(time.Now().UnixMilli(), 10) + "-" + randomSuffix()
}

// Slugify lower-cases a name and collapses every non-alphanumeric run into a
// single dash. Names with no alphanumeric content slugify to "campaign" so
// ids never start with a bare dash.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if unicode.IsLower(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "campaign"
	}
	return slug
}

func randomSuffix() string {
	return uuid.NewString()[:suffixLen]
}
