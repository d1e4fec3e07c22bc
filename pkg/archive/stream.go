package archive

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Errors reported by Stream when the input does not frame a JSON array.
var (
	// ErrNoArrayStart means the input ended before any `[` appeared.
	ErrNoArrayStart = errors.New("`[` not found")
	// ErrTruncated means the input ended in the middle of the array.
	ErrTruncated = errors.New("premature EOF")
)

// Stream decodes the elements of a JSON array one at a time, in the
// style of bufio.Scanner:
//
//	st := archive.NewStream[TweetRecord](r)
//	for st.Next() {
//	    use(st.Record())
//	}
//	if err := st.Err(); err != nil { ... }
//
// Everything before the first `[` is skipped, which tolerates the
// `window.YTD.<name>.part0 = ` assignment prefixing export data files.
// Bytes after the closing `]` are ignored. Decoding is lazy: a
// malformed element is reported when the consumer reaches it, not
// before.
type Stream[T any] struct {
	r       *bufio.Reader
	dec     *json.Decoder
	cur     T
	n       int
	started bool
	done    bool
	err     error
}

// NewStream returns a Stream reading array elements of type T from r.
func NewStream[T any](r io.Reader) *Stream[T] {
	return &Stream[T]{r: bufio.NewReader(r)}
}

// Next advances to the next array element. It returns false at the end
// of the array or on the first error, which Err then reports.
func (s *Stream[T]) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	if !s.started {
		if err := s.seekArray(); err != nil {
			s.err = err
			return false
		}
		s.started = true
	}

	if !s.dec.More() {
		// Consume the closing `]` so a missing terminator or a
		// truncated input still surfaces as an error.
		if _, err := s.dec.Token(); err != nil {
			s.err = s.translate(err)
		}
		s.done = true
		return false
	}

	var v T
	if err := s.dec.Decode(&v); err != nil {
		s.err = fmt.Errorf("element %d: %w", s.n, s.translate(err))
		return false
	}
	s.cur = v
	s.n++
	return true
}

// Record returns the element read by the last successful Next.
func (s *Stream[T]) Record() T {
	return s.cur
}

// Err returns the first error encountered while streaming, nil after a
// clean end of array.
func (s *Stream[T]) Err() error {
	return s.err
}

// seekArray discards input up to the first `[` and puts the decoder
// into array context.
func (s *Stream[T]) seekArray() error {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return ErrNoArrayStart
			}
			return err
		}
		if b == '[' {
			break
		}
	}
	if err := s.r.UnreadByte(); err != nil {
		return err
	}

	s.dec = json.NewDecoder(s.r)
	tok, err := s.dec.Token()
	if err != nil {
		return s.translate(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return ErrNoArrayStart
	}
	return nil
}

// translate maps raw end-of-input conditions onto ErrTruncated.
func (s *Stream[T]) translate(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}
