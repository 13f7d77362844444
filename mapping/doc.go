// Package mapping describes how an image field is indexed: which descriptor
// kinds are extracted, which hash schemes are applied to each, and which
// metadata sub-fields are copied out of the image.
//
// A FieldSpec is usually parsed from a JSON mapping document:
//
//	{
//	  "type": "image",
//	  "feature": {
//	    "color_layout": {"hash": ["BIT_SAMPLING", "LSH"]},
//	    "edge_histogram": {}
//	  },
//	  "metadata": {
//	    "exif.make": {"type": "string"},
//	    "exif.iso_speed_ratings": {"type": "int"}
//	  }
//	}
//
// The older list form, where one hash mode applies to every feature, is also
// accepted:
//
//	{"type": "image", "feature": ["COLOR_LAYOUT"], "hash": "LSH"}
//
// The package also owns the naming of index fields so that the write path and
// the query path derive identical names.
package mapping
