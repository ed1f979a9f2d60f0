package easytx

import (
	"fmt"
	"time"
)

// LockTimeThreshold 小于该值按区块高度解释，否则按 Unix 时间戳解释
const LockTimeThreshold = 500000000

// LockTime 交易锁定时间，比较时始终按原始数值进行
type LockTime uint32

func (l LockTime) IsBlockHeight() bool {
	return l < LockTimeThreshold
}

// Time 按时间戳解释，高度形式返回零值
func (l LockTime) Time() time.Time {
	if l.IsBlockHeight() {
		return time.Time{}
	}
	return time.Unix(int64(l), 0).UTC()
}

func (l LockTime) String() string {
	switch {
	case l == 0:
		return "0 (none)"
	case l.IsBlockHeight():
		return fmt.Sprintf("%d (height)", uint32(l))
	default:
		return fmt.Sprintf("%d (%s)", uint32(l), l.Time().Format(time.RFC3339))
	}
}
