package assets

import (
	"fmt"
	"regexp"
)

// DefaultAssetName is used when a request names no asset and nothing in the
// session points at one.
const DefaultAssetName = "marketing_post"

// VideoNamespace returns the version namespace for videos of an asset.
// Videos version independently from images of the same base name.
func VideoNamespace(assetName string) string {
	return assetName + "_video"
}

// VersionedFilename builds the canonical artifact filename for one version
// of an asset: {asset}_v{version}.{ext}. Names differing only by case or
// separators can collide; that is accepted.
func VersionedFilename(assetName string, version int, fileExtension string) string {
	if fileExtension == "" {
		fileExtension = "png"
	}
	return fmt.Sprintf("%s_v%d.%s", assetName, version, fileExtension)
}

var versionSuffix = regexp.MustCompile(`_v\d+(?:\.[A-Za-z0-9]+)?$`)

// BaseAssetName recovers the asset name from a versioned artifact filename
// by stripping the _v<digits> suffix. Returns ok=false when the filename
// does not follow the versioning pattern.
func BaseAssetName(filename string) (string, bool) {
	loc := versionSuffix.FindStringIndex(filename)
	if loc == nil || loc[0] == 0 {
		return "", false
	}
	return filename[:loc[0]], true
}
