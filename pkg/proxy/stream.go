// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const chunkSize = 32 * 1024

// errUpstreamRead marks relay errors that came from the upstream body rather
// than from the downstream writer.
var errUpstreamRead = errors.New("upstream read")

type chunk struct {
	data []byte
	err  error
}

// pump reads src in discrete chunks and hands each one over the returned
// channel, which is closed on EOF, on a read error (delivered as the last
// chunk) or once ctx is done. No read is started after ctx is done.
func pump(ctx context.Context, src io.Reader) <-chan chunk {
	out := make(chan chunk)

	go func() {
		defer close(out)

		// Two buffers suffice: out is unbuffered, so the consumer is done
		// with a buffer before the producer can hand over the next one.
		bufs := [2][]byte{make([]byte, chunkSize), make([]byte, chunkSize)}
		for i := 0; ; i ^= 1 {
			if ctx.Err() != nil {
				return
			}

			n, err := src.Read(bufs[i])
			if n > 0 {
				select {
				case out <- chunk{data: bufs[i][:n]}:
				case <-ctx.Done():
					return
				}
			}

			if err != nil {
				if err != io.EOF {
					select {
					case out <- chunk{err: err}:
					case <-ctx.Done():
					}
				}
				return
			}
		}
	}()

	return out
}

// relay copies src to w one chunk at a time, flushing after every chunk so
// streamed completions reach the client as they arrive. It stops as soon as
// ctx is done and returns ctx's error in that case. Upstream read failures
// are wrapped with errUpstreamRead.
func relay(ctx context.Context, w http.ResponseWriter, src io.Reader) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rc := http.NewResponseController(w)
	// Push the headers out before the first chunk arrives.
	_ = rc.Flush()

	chunks := pump(ctx, src)

	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		select {
		case <-ctx.Done():
			return written, ctx.Err()
		case c, ok := <-chunks:
			if !ok {
				return written, nil
			}
			if c.err != nil {
				return written, fmt.Errorf("%w: %w", errUpstreamRead, c.err)
			}

			n, err := w.Write(c.data)
			written += int64(n)
			if err != nil {
				return written, err
			}
			if n != len(c.data) {
				return written, io.ErrShortWrite
			}
			_ = rc.Flush()
		}
	}
}
