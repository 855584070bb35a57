// Package ingest reads lead list files (CSV and XLSX) into rows ready
// for header mapping and cleanup.
package ingest

import (
	"io"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// DecodeReader wraps r so its bytes are transcoded from the named
// charset to UTF-8. An empty name returns r unchanged. Names follow
// the WHATWG encoding labels ("windows-1252", "latin1", "utf-8").
func DecodeReader(r io.Reader, name string) (io.Reader, error) {
	if name == "" {
		return r, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: unsupported encoding %q", name)
	}
	return enc.NewDecoder().Reader(r), nil
}
