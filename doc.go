// Package imgsim provides content-based image retrieval for Go.
//
// An Engine extracts global visual descriptors from images, stores them per
// document and ranks documents by visual similarity to a query image.
//
// # Quick Start
//
//	ctx := context.Background()
//	eng, _ := imgsim.New(ctx)
//	defer eng.Close()
//
//	_ = eng.RegisterField(ctx, mapping.FieldSpec{
//	    Name:     "photo",
//	    Features: []mapping.FeatureSpec{{Kind: feature.KindColorLayout}},
//	})
//	doc, _ := eng.IndexImage(ctx, "photo", pngBytes)
//
//	q, _ := eng.NewQuery("photo", feature.KindColorLayout, queryBytes)
//	results, _ := eng.Search(ctx, q, 10)
//
// # Descriptors
//
// Seven descriptor kinds are available: COLOR_LAYOUT, EDGE_HISTOGRAM,
// SIMPLE_COLOR_HISTOGRAM, AUTO_COLOR_CORRELOGRAM, LUMINANCE_LAYOUT,
// OPPONENT_HISTOGRAM and CEDD. A field mapping declares which kinds a field carries:
//
//	{"properties": {"photo": {"type": "image",
//	    "feature": {"color_layout": {"hash": ["BIT_SAMPLING"]}},
//	    "metadata": {"exif.make": {"type": "string"}}}}}
//
// # Hashing
//
// Descriptors may additionally be hashed into integer tokens with the
// BIT_SAMPLING or LSH scheme. Tokens are indexed and let a query restrict
// scoring to documents that share at least one token. Hash tables are loaded
// once per process, usually from a blob store:
//
//	store := blobstore.NewLocalStore("./tables")
//	eng, _ := imgsim.New(ctx, imgsim.WithTableStore(store))
//
//	q, _ := eng.NewQuery("photo", feature.KindColorLayout, queryBytes,
//	    imgsim.WithHash(hashing.SchemeLSH))
//
// Tables that fail to load only disable their own scheme.
//
// # Scoring
//
// A document at descriptor distance d scores 2-d when d <= 1 and 1/d
// otherwise, multiplied by the query boost. Identical images therefore score
// 2*boost.
//
// # Storage
//
// Documents live in a segment. The default is an in-memory segment; the
// segment/sqlite package provides a persistent one:
//
//	seg, _ := sqlite.Open(ctx, "./photos.db")
//	eng, _ := imgsim.New(ctx, imgsim.WithSegment(seg))
package imgsim
