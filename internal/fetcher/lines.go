package fetcher

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// maxLineBytes bounds a single JSON line. Large building footprints in the
// public datasets run to a few hundred KB.
const maxLineBytes = 16 << 20

// DecodeJSONLines decodes newline-delimited JSON, sending each record to a channel.
// Blank lines are skipped. Both channels are closed when processing completes.
func DecodeJSONLines[T any](ctx context.Context, r io.Reader) (<-chan T, <-chan error) {
	outCh := make(chan T, 64)
	errCh := make(chan error, 1)

	go func() {
		defer close(outCh)
		defer close(errCh)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

		lineNo := 0
		for scanner.Scan() {
			lineNo++
			if ctx.Err() != nil {
				errCh <- eris.Wrap(ctx.Err(), "jsonl: context cancelled")
				return
			}

			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}

			var item T
			if err := json.Unmarshal(line, &item); err != nil {
				errCh <- eris.Wrapf(err, "jsonl: decode line %d", lineNo)
				return
			}

			select {
			case outCh <- item:
			case <-ctx.Done():
				errCh <- eris.Wrap(ctx.Err(), "jsonl: context cancelled")
				return
			}
		}

		if err := scanner.Err(); err != nil {
			errCh <- eris.Wrap(err, "jsonl: read")
		}
	}()

	return outCh, errCh
}
