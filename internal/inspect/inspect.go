// Package inspect reports what a batch run would pick up: the candidate
// images in a directory, their detected kind, and whether they carry EXIF
// metadata worth knowing about before publishing the results.
package inspect

import (
	"os"
	"path/filepath"

	"desfondo/pkg/imgutil"
)

// Report describes one candidate file.
type Report struct {
	Filename     string
	Kind         imgutil.Kind
	HasGPS       bool
	HasModel     bool
	HasTimestamp bool
}

// File analyzes a single candidate. Kind detection never fails the report;
// metadata analysis is best-effort per format.
func File(dir, name string) (Report, error) {
	report := Report{Filename: name}

	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		return report, err
	}
	defer f.Close()

	kind, err := imgutil.SniffReader(f)
	if err != nil {
		return report, err
	}
	report.Kind = kind

	switch kind {
	case imgutil.KindJPEG, imgutil.KindTIFF, imgutil.KindWebP:
		analysis, err := analyzeExif(f)
		if err != nil {
			return report, err
		}
		report.HasGPS = analysis.HasGPS
		report.HasModel = analysis.HasModel
		report.HasTimestamp = analysis.HasTimestamp
	case imgutil.KindPNG:
		analysis, err := scanPNGMetadata(f)
		if err != nil {
			return report, err
		}
		report.HasGPS = analysis.HasGPS
		report.HasModel = analysis.HasModel
		report.HasTimestamp = analysis.HasTimestamp
	}

	return report, nil
}
