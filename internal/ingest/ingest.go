package ingest

import "time"

// Document is one discovered input file.
type Document struct {
	Path         string
	HashHex      string
	FileExt      string
	Size         int64
	ModTime      time.Time
	Deduplicated bool // same content already seen earlier in the scan
	Err          string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}
