// Package storageclass normalizes the storage-class tags that object
// storage drivers attach to listing entries and validates the archive and
// restore parameters accepted by the transition endpoint.
package storageclass

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/samber/lo"

	"github.com/fsnav/fsnav/internal/models"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	hyphenRun     = regexp.MustCompile(`-+`)
)

// Normalize turns a storage class into a lookup key: trimmed, runs of
// whitespace and hyphens replaced by "_", lowercased. "Deep Archive",
// "DEEP-ARCHIVE" and "deep_archive" all map to "deep_archive".
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	value = whitespaceRun.ReplaceAllString(value, "_")
	value = hyphenRun.ReplaceAllString(value, "_")
	return strings.ToLower(value)
}

// ArchiveClasses are the S3 classes offered as archive targets, coldest
// first. GLACIER is the default.
var ArchiveClasses = []types.StorageClass{
	types.StorageClassGlacier,
	types.StorageClassDeepArchive,
	types.StorageClassGlacierIr,
	types.StorageClassStandardIa,
	types.StorageClassOnezoneIa,
	types.StorageClassIntelligentTiering,
	types.StorageClassStandard,
}

// RestoreTiers are the retrieval tiers for restoring archived objects.
// Standard is the default.
var RestoreTiers = []types.Tier{
	types.TierStandard,
	types.TierBulk,
	types.TierExpedited,
}

// DefaultRestoreDays is how long a restored copy stays available when the
// user does not say otherwise.
const DefaultRestoreDays = 7

// archived holds the normalized classes whose objects must be restored
// before they can be read: S3 Glacier Flexible Retrieval and Deep Archive,
// and the Azure archive tier.
var archived = map[string]bool{
	Normalize(string(types.StorageClassGlacier)):     true,
	Normalize(string(types.StorageClassDeepArchive)): true,
	Normalize(string(blob.AccessTierArchive)):        true,
}

// ParseStorageClass matches s, in any spelling Normalize accepts, against
// the S3 storage classes. Empty input yields GLACIER.
func ParseStorageClass(s string) (types.StorageClass, error) {
	if strings.TrimSpace(s) == "" {
		return types.StorageClassGlacier, nil
	}
	key := Normalize(s)
	for _, c := range types.StorageClass("").Values() {
		if Normalize(string(c)) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown storage class %q (valid: %s)", s, strings.Join(Names(ArchiveClasses), ", "))
}

// ParseTier matches s case-insensitively against the restore tiers.
// Empty input yields Standard.
func ParseTier(s string) (types.Tier, error) {
	if strings.TrimSpace(s) == "" {
		return types.TierStandard, nil
	}
	key := Normalize(s)
	for _, t := range types.Tier("").Values() {
		if Normalize(string(t)) == key {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown restore tier %q (valid: %s)", s, strings.Join(Names(RestoreTiers), ", "))
}

// Names returns the string form of each value.
func Names[T ~string](values []T) []string {
	return lo.Map(values, func(v T, _ int) string { return string(v) })
}

// IsArchived reports whether objects of this class are offline.
func IsArchived(class string) bool {
	return archived[Normalize(class)]
}

// IsAzureTier reports whether class is an Azure blob access tier rather
// than an S3 storage class.
func IsAzureTier(class string) bool {
	key := Normalize(class)
	if key == "" {
		return false
	}
	return lo.ContainsBy(blob.PossibleAccessTierValues(), func(t blob.AccessTier) bool {
		return Normalize(string(t)) == key
	})
}

// Transitionable reports whether e can be archived or restored: a file
// that carries a storage class.
func Transitionable(e models.Entry) bool {
	return !e.IsDir && strings.TrimSpace(e.StorageClass) != ""
}
