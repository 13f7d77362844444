package metadata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ExifReader reads EXIF tags from JPEG and TIFF images.
// Other formats carry no EXIF block and yield no tags.
type ExifReader struct{}

// Read implements Reader.
func (ExifReader) Read(data []byte) ([]Tag, error) {
	if !hasExifContainer(data) {
		return nil, nil
	}

	x, err := exif.Decode(bytes.NewReader(data))
	switch {
	case err == nil:
	case noExifBlock(err):
		return nil, nil
	case x != nil && !exif.IsCriticalError(err):
		// Some tags failed to decode; the rest are still usable.
	default:
		return nil, NewReadError(err)
	}

	w := &tagWalker{}
	if err := x.Walk(w); err != nil {
		return nil, NewReadError(err)
	}
	return w.tags, nil
}

// noExifBlock reports whether a decode error means the JPEG has no EXIF
// APP1 segment at all, as opposed to a damaged one.
func noExifBlock(err error) bool {
	return errors.Is(err, io.EOF) || strings.Contains(err.Error(), "failed to find exif intro marker")
}

func hasExifContainer(data []byte) bool {
	switch {
	case len(data) >= 2 && data[0] == 0xFF && data[1] == 0xD8:
		return true // JPEG
	case len(data) >= 4 && (string(data[:4]) == "II*\x00" || string(data[:4]) == "MM\x00*"):
		return true // TIFF
	default:
		return false
	}
}

type tagWalker struct {
	tags []Tag
}

func (w *tagWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	value, err := tagValue(tag)
	if err != nil {
		// Unreadable single tags are skipped; the rest of the block is still usable.
		return nil
	}
	w.tags = append(w.tags, Tag{Directory: "exif", Name: string(name), Value: value})
	return nil
}

func tagValue(tag *tiff.Tag) (string, error) {
	if tag.Count != 1 && tag.Format() != tiff.StringVal {
		return tag.String(), nil
	}
	switch tag.Format() {
	case tiff.StringVal:
		return tag.StringVal()
	case tiff.IntVal:
		v, err := tag.Int64(0)
		if err != nil {
			return "", err
		}
		return strconv.FormatInt(v, 10), nil
	case tiff.RatVal:
		num, den, err := tag.Rat2(0)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d/%d", num, den), nil
	case tiff.FloatVal:
		v, err := tag.Float(0)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	default:
		return tag.String(), nil
	}
}
