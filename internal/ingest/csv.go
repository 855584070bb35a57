package ingest

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures the lead list CSV reader.
type CSVOptions struct {
	Delimiter rune   // default ','
	Encoding  string // source charset, "" means UTF-8
}

// ReadCSV reads the header row synchronously, then streams the
// remaining rows on a channel. Fields are trimmed and short rows pass
// through as-is; the caller decides what to do with them. The caller
// must drain the row channel; both channels close when the file is
// done or the context is cancelled.
func ReadCSV(ctx context.Context, r io.Reader, opts CSVOptions) ([]string, <-chan []string, <-chan error, error) {
	decoded, err := DecodeReader(r, opts.Encoding)
	if err != nil {
		return nil, nil, nil, err
	}

	reader := csv.NewReader(decoded)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil, nil, eris.New("ingest: empty file")
		}
		return nil, nil, nil, eris.Wrap(err, "ingest: read header")
	}
	trimFields(header)

	rowCh := make(chan []string, 64)
	errCh := make(chan error, 1)
	go func() {
		defer close(rowCh)
		defer close(errCh)

		for {
			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				errCh <- eris.Wrap(err, "ingest: read row")
				return
			}
			trimFields(record)

			select {
			case rowCh <- record:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "ingest: cancelled")
				return
			}
		}
	}()

	return header, rowCh, errCh, nil
}

func trimFields(record []string) {
	for i, field := range record {
		record[i] = strings.TrimSpace(field)
	}
}
