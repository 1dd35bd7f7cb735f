// Package state holds the persistent records of the recurring payments program
// and their fixed-width binary layouts.
package state

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/sollpay/sollpay-programs/internal/program"
)

// Record lengths in bytes
const (
	PlanLen         = 114
	SubscriptionLen = 130
)

const keyLen = 32

// decodeMode selects how boolean tags are validated.
type decodeMode int

const (
	// strict rejects any boolean byte outside {0,1}
	strict decodeMode = iota
	// unchecked reads any non-zero boolean byte as true
	unchecked
)

// recordReader reads fields sequentially from a fixed-length record.
// Callers check the total length before reading, so reads never run short.
type recordReader struct {
	buf  []byte
	off  int
	mode decodeMode
}

func newRecordReader(buf []byte, mode decodeMode) *recordReader {
	return &recordReader{buf: buf, mode: mode}
}

func (r *recordReader) readBool() (bool, error) {
	b := r.buf[r.off]
	r.off++
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	if r.mode == unchecked {
		return true, nil
	}
	return false, program.InvalidAccountData
}

func (r *recordReader) readU8() uint8 {
	b := r.buf[r.off]
	r.off++
	return b
}

func (r *recordReader) readKey() solana.PublicKey {
	var k solana.PublicKey
	copy(k[:], r.buf[r.off:r.off+keyLen])
	r.off += keyLen
	return k
}

func (r *recordReader) readU64() uint64 {
	v := binary.LittleEndian.Uint64(r.buf[r.off : r.off+8])
	r.off += 8
	return v
}

func (r *recordReader) readI64() int64 {
	return int64(r.readU64())
}

// recordWriter writes fields sequentially into a fixed-length record.
type recordWriter struct {
	buf []byte
	off int
}

func (w *recordWriter) writeBool(v bool) {
	if v {
		w.buf[w.off] = 1
	} else {
		w.buf[w.off] = 0
	}
	w.off++
}

func (w *recordWriter) writeU8(v uint8) {
	w.buf[w.off] = v
	w.off++
}

func (w *recordWriter) writeKey(k solana.PublicKey) {
	copy(w.buf[w.off:w.off+keyLen], k[:])
	w.off += keyLen
}

func (w *recordWriter) writeU64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:w.off+8], v)
	w.off += 8
}

func (w *recordWriter) writeI64(v int64) {
	w.writeU64(uint64(v))
}
