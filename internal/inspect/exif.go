package inspect

import (
	"io"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
)

type exifAnalysis struct {
	HasGPS       bool
	HasModel     bool
	HasTimestamp bool
}

// analyzeExif does a universal search for a TIFF structure anywhere in the
// stream, which covers JPEG APP1 segments, bare TIFF, and EXIF chunks in
// WebP containers.
func analyzeExif(rs io.ReadSeeker) (exifAnalysis, error) {
	analysis := exifAnalysis{}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return analysis, err
	}

	tags, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(rs, nil, true)
	if err != nil {
		if isNoExif(err) {
			return analysis, nil
		}
		return analysis, err
	}

	for _, tag := range tags {
		name := tag.TagName
		if strings.HasPrefix(name, "GPS") || strings.Contains(tag.IfdPath, "GPS") {
			analysis.HasGPS = true
		}
		if name == "Model" || name == "CameraModelName" {
			analysis.HasModel = true
		}
		if name == "DateTimeOriginal" || name == "DateTimeDigitized" || name == "DateTime" {
			analysis.HasTimestamp = true
		}
	}

	return analysis, nil
}

func isNoExif(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "no exif")
}
