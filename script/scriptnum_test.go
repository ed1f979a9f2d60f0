package script

import (
	"encoding/hex"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEncodeScriptNum(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, ""},
		{1, "01"},
		{-1, "81"},
		{16, "10"},
		{127, "7f"},
		{-127, "ff"},
		{128, "8000"},
		{-128, "8080"},
		{255, "ff00"},
		{-255, "ff80"},
		{256, "0001"},
		{32767, "ff7f"},
		{32768, "008000"},
		{-32768, "008080"},
		{2147483647, "ffffff7f"},
		{-2147483647, "ffffffff"},
		{4294967295, "ffffffff00"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, hex.EncodeToString(EncodeScriptNum(tt.n)), "%d", tt.n)
	}
}

func TestDecodeScriptNumStrict(t *testing.T) {
	nonMinimal := []string{"00", "80", "0100", "0180", "ff0000", "00000000"}
	for _, h := range nonMinimal {
		b, _ := hex.DecodeString(h)
		_, err := DecodeScriptNum(b, true, MaxScriptNumLen)
		require.True(t, errors.Is(err, ErrInvalidNumericEncoding), h)

		// 非严格模式下同样能解出数值
		_, err = DecodeScriptNum(b, false, MaxScriptNumLen)
		require.NoError(t, err, h)
	}

	n, err := DecodeScriptNum([]byte{0x80, 0x00}, true, MaxScriptNumLen)
	require.NoError(t, err)
	require.Equal(t, int64(128), n)

	n, err = DecodeScriptNum([]byte{0x80}, false, MaxScriptNumLen)
	require.NoError(t, err)
	require.Equal(t, int64(0), n)

	n, err = DecodeScriptNum([]byte{0x02, 0x80}, false, MaxScriptNumLen)
	require.NoError(t, err)
	require.Equal(t, int64(-2), n)
}

func TestDecodeScriptNumLength(t *testing.T) {
	_, err := DecodeScriptNum([]byte{1, 2, 3, 4, 5}, true, MaxScriptNumLen)
	require.True(t, errors.Is(err, ErrInvalidNumericEncoding))

	n, err := DecodeScriptNum([]byte{0xff, 0xff, 0xff, 0xff, 0x00}, true, LockTimeNumLen)
	require.NoError(t, err)
	require.Equal(t, int64(4294967295), n)

	require.Panics(t, func() { _, _ = DecodeScriptNum(nil, true, 9) })
}

func TestIsTrue(t *testing.T) {
	require.False(t, IsTrue(nil))
	require.False(t, IsTrue([]byte{0}))
	require.False(t, IsTrue([]byte{0x80}))
	require.False(t, IsTrue([]byte{0, 0, 0x80}))
	require.True(t, IsTrue([]byte{0x80, 0}))
	require.True(t, IsTrue([]byte{1}))
	require.True(t, IsTrue([]byte{0, 1}))
}

func TestScriptNumRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Int64Range(-(1<<31 - 1), 1<<31-1).Draw(t, "n")
		b := EncodeScriptNum(n)
		if len(b) > MaxScriptNumLen {
			t.Fatalf("%d encoded to %d bytes", n, len(b))
		}
		got, err := DecodeScriptNum(b, true, MaxScriptNumLen)
		if err != nil {
			t.Fatal(err)
		}
		if got != n {
			t.Fatalf("%d != %d", got, n)
		}
	})
}
