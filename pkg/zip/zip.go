package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
	"time"
)

type Entry struct {
	Filename string
	Data     []byte
	Modified time.Time
}

// Archive packs entries into an in-memory zip, preserving their order.
func Archive(entries []Entry) ([]byte, error) {
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, e := range entries {
		hdr := &zip.FileHeader{Name: e.Filename, Method: zip.Store, Modified: e.Modified}
		w, err := zw.CreateHeader(hdr)
		if err != nil {
			return nil, fmt.Errorf("zip: create %s: %w", e.Filename, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			return nil, fmt.Errorf("zip: write %s: %w", e.Filename, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: close: %w", err)
	}
	return buf.Bytes(), nil
}
