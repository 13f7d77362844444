// Package metadata reads embedded image metadata (EXIF) and converts it into
// the typed sub-fields a mapping declares.
//
// Tags are addressed by "<directory>.<tag>" keys in lower snake case, for
// example "exif.make" or "exif.date_time_original". A mapping declares which
// keys become fields and with which FieldType; undeclared tags are dropped.
package metadata
