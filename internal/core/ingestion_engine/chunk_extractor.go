package ingestion_engine

import (
	"bufio"
	"context"
	"io"
	"strings"

	"golang.org/x/sync/errgroup"
)

// maxFragmentLen caps a single line fragment handed to the chunker.
const maxFragmentLen = 2000

// chunk is the internal representation passed through the pipeline.
//
// Pos:      stable, zero-based position of the chunk inside the source text.
// Text:     chunk content (built from one or more fragments).
// TokenCnt: approximate token count (used for batching and overlap math).
type chunk struct {
	Pos      int
	Text     string
	TokenCnt int
}

// streamLines converts extracted text into a stream of non-empty line
// fragments. Page and slide tags pass through like any other line.
func streamLines(ctx context.Context, g *errgroup.Group, r io.Reader, maxFragLen int) <-chan string {
	out := make(chan string, 8)

	g.Go(func() error {
		defer close(out)

		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

		emit := func(s string) error {
			select {
			case out <- s:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			for len(line) > maxFragLen {
				cut := runeBoundary(line, maxFragLen)
				if err := emit(line[:cut]); err != nil {
					return err
				}
				line = line[cut:]
			}
			if err := emit(line); err != nil {
				return err
			}
		}
		return sc.Err()
	})

	return out
}

// streamChunk groups incoming fragments into token-bounded chunks with optional overlap.
//
// frags:          upstream fragments channel.
// targetTokens:   approximate tokens per chunk.
// overlapTokens:  tokens to retain from the end of the previous chunk as seed of the next.
// out:            receive-only channel of chunk structs with Pos/Text/TokenCnt.
func streamChunk(
	ctx context.Context,
	g *errgroup.Group,
	frags <-chan string,
	targetTokens int,
	overlapTokens int,
) <-chan chunk {
	out := make(chan chunk, 8)

	g.Go(func() error {
		defer close(out)

		var (
			buf    []string
			tokSum int
			pos    int
			fresh  int // tokens added since the last flush
		)

		// flush emits the current buffer as a chunk and keeps a tail of
		// roughly overlapTokens as the seed of the next one.
		flush := func() error {
			if fresh == 0 {
				return nil
			}
			ch := chunk{Pos: pos, Text: strings.Join(buf, "\n"), TokenCnt: tokSum}
			pos++

			select {
			case out <- ch:
			case <-ctx.Done():
				return ctx.Err()
			}

			fresh = 0
			if overlapTokens <= 0 {
				buf = buf[:0]
				tokSum = 0
				return nil
			}

			var keep []string
			remain := overlapTokens
			for j := len(buf) - 1; j >= 0 && remain > 0; j-- {
				keep = append([]string{buf[j]}, keep...)
				remain -= approxTokens(buf[j])
			}
			// Never carry the whole buffer over, or a single oversized
			// fragment would repeat forever.
			if len(keep) == len(buf) {
				keep = nil
			}
			buf = keep
			tokSum = 0
			for _, s := range buf {
				tokSum += approxTokens(s)
			}
			return nil
		}

		for frag := range frags {
			t := approxTokens(frag)
			buf = append(buf, frag)
			tokSum += t
			fresh += t

			if tokSum >= targetTokens {
				if err := flush(); err != nil {
					return err
				}
			}
		}

		return flush()
	})

	return out
}

// approxTokens is a cheap token estimator (~4 chars ≈ 1 token).
func approxTokens(s string) int {
	n := len([]rune(s))
	if n <= 0 {
		return 0
	}
	return (n + 3) / 4
}

// runeBoundary returns the largest index <= n that does not split a rune.
func runeBoundary(s string, n int) int {
	for n > 0 && n < len(s) && !isRuneStart(s[n]) {
		n--
	}
	if n == 0 {
		return len(s)
	}
	return n
}

func isRuneStart(b byte) bool { return b&0xC0 != 0x80 }
