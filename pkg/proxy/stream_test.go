// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package proxy

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestPumpDeliversChunksThenCloses(t *testing.T) {
	body := &chunkedBody{chunks: [][]byte{[]byte("one"), []byte("two"), []byte("three")}}

	var got []string
	for c := range pump(context.Background(), body) {
		if c.err != nil {
			t.Fatalf("unexpected error chunk: %v", c.err)
		}
		got = append(got, string(c.data))
	}

	if len(got) != 3 || got[0] != "one" || got[1] != "two" || got[2] != "three" {
		t.Fatalf("unexpected chunks: %q", got)
	}
}

func TestPumpDeliversReadErrorLast(t *testing.T) {
	boom := errors.New("boom")
	body := &chunkedBody{chunks: [][]byte{[]byte("one")}, err: boom}

	var last chunk
	var count int
	for c := range pump(context.Background(), body) {
		last = c
		count++
	}

	if count != 2 {
		t.Fatalf("expected data chunk and error chunk, got %d", count)
	}
	if !errors.Is(last.err, boom) {
		t.Fatalf("expected boom as final chunk, got %v", last.err)
	}
}

func TestPumpStopsWhenCanceled(t *testing.T) {
	body := &chunkedBody{chunks: [][]byte{[]byte("a"), []byte("b"), []byte("c"), []byte("d")}}
	ctx, cancel := context.WithCancel(context.Background())

	chunks := pump(ctx, body)
	<-chunks
	cancel()

	select {
	case <-drain(chunks):
	case <-time.After(time.Second):
		t.Fatal("pump did not stop after cancel")
	}

	if reads := atomic.LoadInt32(&body.reads); reads > 2 {
		t.Fatalf("expected at most 2 reads after cancel, got %d", reads)
	}
}

func TestRelayWrapsUpstreamErrors(t *testing.T) {
	body := &chunkedBody{chunks: [][]byte{[]byte("part")}, err: errors.New("reset")}
	rec := httptest.NewRecorder()

	written, err := relay(context.Background(), rec, body)
	if !errors.Is(err, errUpstreamRead) {
		t.Fatalf("expected upstream read error, got %v", err)
	}
	if written != 4 || rec.Body.String() != "part" {
		t.Fatalf("unexpected relay result: %d %q", written, rec.Body.String())
	}
}

func TestRelayReturnsContextError(t *testing.T) {
	body := &chunkedBody{chunks: [][]byte{[]byte("part")}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := relay(ctx, httptest.NewRecorder(), body)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func drain(ch <-chan chunk) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	return done
}
