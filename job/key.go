package job

import (
	"path"
	"strings"

	"cogforge/profile"
)

// DestinationKey derives the output key for a source key and profile. The
// stem gains a "_COG_<profile>" suffix and the key stays in the same
// directory: "a/b.tif" with profile "jpeg" becomes "a/b_COG_jpeg.tif".
func DestinationKey(sourceKey string, id profile.ID) string {
	ext := path.Ext(sourceKey)
	stem := strings.TrimSuffix(sourceKey, ext)
	return stem + "_COG_" + string(id) + ext
}
