package inspect

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"strings"
)

var pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}

// maxTextChunkLen bounds how much of a text chunk is buffered. Chunk
// lengths come from untrusted input, and a presence report only needs the
// key at the front of the chunk.
const maxTextChunkLen = 64 << 10

type pngAnalysis struct {
	HasGPS       bool
	HasModel     bool
	HasTimestamp bool
}

// scanPNGMetadata walks the chunk stream looking for textual metadata and
// timestamps. eXIf chunks are not decoded here; text keys are enough for a
// presence report.
func scanPNGMetadata(rs io.ReadSeeker) (pngAnalysis, error) {
	analysis := pngAnalysis{}

	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return analysis, err
	}

	br := bufio.NewReader(rs)

	sig := make([]byte, 8)
	if _, err := io.ReadFull(br, sig); err != nil {
		return analysis, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return analysis, errors.New("invalid PNG signature")
	}

	for {
		lenBuf := make([]byte, 4)
		if _, err := io.ReadFull(br, lenBuf); err != nil {
			if err == io.EOF {
				return analysis, nil
			}
			return analysis, err
		}
		length := binary.BigEndian.Uint32(lenBuf)

		chunkType := make([]byte, 4)
		if _, err := io.ReadFull(br, chunkType); err != nil {
			return analysis, err
		}
		chunkName := string(chunkType)

		switch chunkName {
		case "tEXt", "zTXt", "iTXt":
			if length > maxTextChunkLen {
				if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
					return analysis, err
				}
				break
			}
			data := make([]byte, length)
			if _, err := io.ReadFull(br, data); err != nil {
				return analysis, err
			}
			if _, err := io.CopyN(io.Discard, br, 4); err != nil {
				return analysis, err
			}
			applyTextKey(&analysis, pngTextKey(data))
		case "tIME":
			analysis.HasTimestamp = true
			if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
				return analysis, err
			}
		default:
			if _, err := io.CopyN(io.Discard, br, int64(length)+4); err != nil {
				return analysis, err
			}
		}

		if chunkName == "IEND" {
			return analysis, nil
		}
	}
}

func pngTextKey(data []byte) string {
	idx := bytes.IndexByte(data, 0)
	if idx <= 0 {
		return ""
	}
	return string(data[:idx])
}

func applyTextKey(analysis *pngAnalysis, key string) {
	if key == "" {
		return
	}
	lower := strings.ToLower(key)
	if strings.Contains(lower, "gps") || strings.Contains(lower, "latitude") || strings.Contains(lower, "longitude") {
		analysis.HasGPS = true
	}
	if strings.Contains(lower, "model") || strings.Contains(lower, "make") {
		analysis.HasModel = true
	}
	if strings.Contains(lower, "date") || strings.Contains(lower, "time") {
		analysis.HasTimestamp = true
	}
}
