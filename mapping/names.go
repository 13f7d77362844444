package mapping

import (
	"strconv"

	"github.com/hupe1980/imgsim/feature"
	"github.com/hupe1980/imgsim/hashing"
	"github.com/hupe1980/imgsim/metadata"
)

// StoredField names the stored descriptor record: "<field>.<kind>".
func StoredField(field string, kind feature.Kind) string {
	return field + "." + kind.FieldName()
}

// HashField names the i-th hash token field: "<field>.<kind>.hash.<scheme>.<i>".
func HashField(field string, kind feature.Kind, scheme hashing.Scheme, i int) string {
	return hashPrefix(field, kind, scheme) + strconv.Itoa(i)
}

// TableField names the field holding the fingerprint of the table that
// produced the tokens: "<field>.<kind>.hash.<scheme>.table".
func TableField(field string, kind feature.Kind, scheme hashing.Scheme) string {
	return hashPrefix(field, kind, scheme) + "table"
}

// MetadataField names a metadata sub-field: "<field>.metadata.<name>".
func MetadataField(field, name string) string {
	return field + ".metadata." + metadata.NormalizeKey(name)
}

// HashToken renders a token as indexed text.
func HashToken(token int32) string {
	return strconv.FormatInt(int64(token), 10)
}

// FormatFingerprint renders a table fingerprint as indexed text.
func FormatFingerprint(fp uint64) string {
	return strconv.FormatUint(fp, 16)
}

func hashPrefix(field string, kind feature.Kind, scheme hashing.Scheme) string {
	return StoredField(field, kind) + ".hash." + scheme.FieldName() + "."
}
