package stream

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestWriterReader(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.WriteByte(0xab))
	w.WriteUint16(0x0102)
	w.WriteUint32(0x03040506)
	w.WriteInt32(-1)
	w.WriteUint64(0x0708090a0b0c0d0e)
	_, err := w.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, 1+2+4+4+8+3, w.Len())

	r := NewReader(w.Bytes())
	b, err := r.PeekByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xab), b)
	require.Equal(t, 0, r.Position())

	b, err = r.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(0xab), b)

	u16, err := r.ReadUint16()
	require.NoError(t, err)
	require.Equal(t, uint16(0x0102), u16)

	u32, err := r.ReadUint32()
	require.NoError(t, err)
	require.Equal(t, uint32(0x03040506), u32)

	i32, err := r.ReadInt32()
	require.NoError(t, err)
	require.Equal(t, int32(-1), i32)

	u64, err := r.ReadUint64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0708090a0b0c0d0e), u64)

	require.Equal(t, []byte{2, 3}, r.Slice(r.Position()+1, r.Len()))
	require.NoError(t, r.Skip(1))
	rest, err := r.ReadBytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 3}, rest)
	require.Equal(t, 0, r.Remaining())
}

func TestReaderEndOfStream(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	_, err := r.ReadUint32()
	require.True(t, errors.Is(err, ErrEndOfStream))
	require.Equal(t, 0, r.Position())

	_, err = r.ReadBytes(4)
	require.True(t, errors.Is(err, ErrEndOfStream))
	require.True(t, errors.Is(r.Skip(-1), ErrEndOfStream))
	require.False(t, r.Has(-1))

	_, err = r.ReadUint64()
	require.Error(t, err)
	require.NoError(t, r.Skip(3))
	_, err = r.PeekByte()
	require.True(t, errors.Is(err, ErrEndOfStream))
}

func TestReadBytesCopies(t *testing.T) {
	data := []byte{1, 2, 3}
	r := NewReader(data)
	b, err := r.ReadBytes(3)
	require.NoError(t, err)
	b[0] = 9
	require.Equal(t, byte(1), data[0])
}
