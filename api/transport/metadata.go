// Copyright (c) 2021 Uber Technologies, Inc.
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package transport

// MetadataPair is a single key-value entry of call metadata.
type MetadataPair struct {
	Key   string
	Value string
}

// Metadata is the ordered sequence of key-value pairs attached to a call.
//
// A nil Metadata means the metadata is absent: the call never reached a
// state where metadata could exist. A non-nil empty Metadata means the
// corresponding phase happened and carried no entries. Callers MUST
// preserve this distinction when propagating metadata.
//
//	var md transport.Metadata       // absent
//	md = transport.NewMetadata()    // present, empty
//	md = md.With("foo", "bar")      // present, one entry
type Metadata []MetadataPair

// NewMetadata builds a present (possibly empty) Metadata from the given
// pairs.
func NewMetadata(pairs ...MetadataPair) Metadata {
	md := make(Metadata, 0, len(pairs))
	return append(md, pairs...)
}

// With returns a Metadata with the given key-value pair appended.
//
// The receiver is never mutated; the returned Metadata MUST be used instead
// of the original object.
func (m Metadata) With(k, v string) Metadata {
	md := make(Metadata, 0, len(m)+1)
	md = append(md, m...)
	return append(md, MetadataPair{Key: k, Value: v})
}

// Get retrieves the value of the first entry with the given key.
func (m Metadata) Get(k string) (string, bool) {
	for _, pair := range m {
		if pair.Key == k {
			return pair.Value, true
		}
	}
	return "", false
}

// Len returns the number of entries.
func (m Metadata) Len() int {
	return len(m)
}

// Present reports whether the metadata exists at all, as opposed to the
// absent nil Metadata.
func (m Metadata) Present() bool {
	return m != nil
}
