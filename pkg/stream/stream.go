package stream

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

var ErrEndOfStream = errors.New("end of stream")

// Reader 带游标的只读字节流，不持有输入缓冲区以外的状态
type Reader struct {
	data []byte
	pos  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, pos: 0}
}

// Position 当前游标位置
func (r *Reader) Position() int {
	return r.pos
}

// Len 输入总长度
func (r *Reader) Len() int {
	return len(r.data)
}

// Remaining 剩余可读字节数
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

func (r *Reader) Has(n int) bool {
	return n >= 0 && r.Remaining() >= n
}

// Skip 向前移动游标
func (r *Reader) Skip(n int) error {
	if !r.Has(n) {
		return errors.WithStack(ErrEndOfStream)
	}
	r.pos += n
	return nil
}

// PeekByte 读取但不移动游标
func (r *Reader) PeekByte() (byte, error) {
	if !r.Has(1) {
		return 0, errors.WithStack(ErrEndOfStream)
	}
	return r.data[r.pos], nil
}

func (r *Reader) ReadByte() (byte, error) {
	b, err := r.PeekByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

// ReadBytes 读取n个字节，返回的是拷贝
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if !r.Has(n) {
		return nil, errors.WithStack(ErrEndOfStream)
	}
	out := make([]byte, n)
	copy(out, r.data[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// Slice 返回[start,end)之间的拷贝，不影响游标
func (r *Reader) Slice(start, end int) []byte {
	out := make([]byte, end-start)
	copy(out, r.data[start:end])
	return out
}

func (r *Reader) ReadUint16() (uint16, error) {
	if !r.Has(2) {
		return 0, errors.WithStack(ErrEndOfStream)
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	if !r.Has(4) {
		return 0, errors.WithStack(ErrEndOfStream)
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	if !r.Has(8) {
		return 0, errors.WithStack(ErrEndOfStream)
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// Writer 小端写入器
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

func (w *Writer) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) Len() int {
	return w.buf.Len()
}

func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}
