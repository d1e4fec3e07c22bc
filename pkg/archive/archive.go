// Package archive reads social-media export archives: a zip container
// holding javascript data files that each assign one large JSON array.
//
// Members are decoded incrementally. The decoder skips the leading
// assignment prefix, then yields array elements one at a time, so a
// multi-hundred-megabyte tweet file never has to be materialized as a
// whole.
package archive

import (
	"archive/zip"
	"fmt"
	"io/fs"
)

// Archive member names used by the export format.
const (
	TweetsMember    = "data/tweet.js"
	FollowersMember = "data/follower.js"
)

// Archive provides access to the data files inside an export zip.
type Archive struct {
	zr *zip.ReadCloser
}

// Open opens the export archive at path.
func Open(path string) (*Archive, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open archive %s: %w", path, err)
	}
	return &Archive{zr: zr}, nil
}

// Close releases the underlying zip reader.
func (a *Archive) Close() error {
	return a.zr.Close()
}

// Member opens the named data file inside the archive.
func (a *Archive) Member(name string) (fs.File, error) {
	f, err := a.zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("pick %s from archive: %w", name, err)
	}
	return f, nil
}

// Extract streams the JSON array stored in the named member, applies fn
// to every element, and collects the values fn keeps. Returning false
// from fn drops the element, so fn doubles as a filter.
//
// The whole member is processed even when fn keeps nothing; a malformed
// element aborts the extraction at that position.
func Extract[T, R any](a *Archive, member string, fn func(T) (R, bool)) ([]R, error) {
	f, err := a.Member(member)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st := NewStream[T](f)
	out := []R{}
	for st.Next() {
		if v, ok := fn(st.Record()); ok {
			out = append(out, v)
		}
	}
	if err := st.Err(); err != nil {
		return nil, &FormatError{Member: member, Err: err}
	}
	return out, nil
}

// ExtractAll streams the JSON array in member and collects every element.
func ExtractAll[T any](a *Archive, member string) ([]T, error) {
	return Extract(a, member, func(v T) (T, bool) { return v, true })
}

// FormatError reports malformed data inside an archive member.
type FormatError struct {
	Member string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Member, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
