package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OutputSuffix is appended to each source file's stem to form the output
// filename.
const OutputSuffix = "_sin_fondo.webp"

// validExtensions is the fixed set of extensions considered candidate
// images, matched case-insensitively.
var validExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
}

// Candidates lists the regular files in dir whose extension marks them as
// images, in directory enumeration order with case preserved.
func Candidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if validExtensions[ext] {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

// OutputName derives the default output filename for a source file.
func OutputName(filename string) string {
	return stem(filename) + OutputSuffix
}

// BuildTasks creates one Task per candidate. When two candidates share a
// stem (photo.jpg and photo.png), their output names fold in the original
// extension; any name still taken after that gets a numeric suffix, so no
// two tasks in one batch ever write the same file.
func BuildTasks(inputDir, outputDir string, names []string) []Task {
	stems := make(map[string]int, len(names))
	for _, name := range names {
		stems[stem(name)]++
	}

	used := make(map[string]bool, len(names))
	tasks := make([]Task, 0, len(names))
	for _, name := range names {
		out := OutputName(name)
		if stems[stem(name)] > 1 {
			ext := strings.TrimPrefix(filepath.Ext(name), ".")
			out = stem(name) + "_" + ext + OutputSuffix
		}
		base := strings.TrimSuffix(out, OutputSuffix)
		for n := 2; used[out]; n++ {
			out = fmt.Sprintf("%s_%d%s", base, n, OutputSuffix)
		}
		used[out] = true
		tasks = append(tasks, Task{
			InputDir:   inputDir,
			OutputDir:  outputDir,
			Filename:   name,
			OutputName: out,
		})
	}
	return tasks
}

// ProbeWritable verifies dir accepts writes by creating and removing a
// marker file. Run once before dispatch so permission problems surface
// before any work starts.
func ProbeWritable(dir string) error {
	f, err := os.CreateTemp(dir, "desfondo-probe-*.tmp")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Remove(name)
}

func stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
