package ratecache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"
)

// keyPrefix namespaces rate entries and carries the format version.
const keyPrefix = "rate/v1\x00"

// Key identifies a benchmark measurement.
type Key struct {
	// Length is the benchmarked string length.
	Length int

	// BatchSize is the initial batch size of the benchmark run.
	BatchSize int

	// Alphabet is the alphabet's symbols in order.
	Alphabet string

	// Live is true when the run reported progress per line.
	Live bool
}

// Bytes returns the store key.
func (k Key) Bytes() []byte {
	return []byte(fmt.Sprintf("%s%d\x00%d\x00%t\x00%s", keyPrefix, k.Length, k.BatchSize, k.Live, k.Alphabet))
}

// Entry is a cached benchmark rate.
type Entry struct {
	// Rate is characters per second.
	Rate float64

	// Unbounded is true when the measured elapsed time was zero.
	Unbounded bool

	// Created is when the measurement was stored, as UnixNano.
	Created int64
}

// CreatedAt returns Created as a time.
func (e *Entry) CreatedAt() time.Time {
	return time.Unix(0, e.Created)
}

// Encode serializes the entry to bytes using gob.
func (e *Entry) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode deserializes bytes into the entry using gob.
func (e *Entry) Decode(data []byte) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(e)
}
