package stack

import "github.com/pkg/errors"

var ErrStackUnderflow = errors.New("stack underflow")

// OpData 脚本执行使用的主栈和备用栈
//
// 所有出栈/窥视操作都假设调用方已经通过 ItemCount/Has 检查过栈深度，
// 栈本身在越界时会 panic。
type OpData struct {
	l   [][]byte // 主栈，末尾为栈顶
	alt [][]byte // 备用栈

	// StrictNumbers 脚本数字必须是最短编码
	StrictNumbers bool
}

func New() *OpData {
	return &OpData{l: make([][]byte, 0), alt: make([][]byte, 0), StrictNumbers: true}
}

// NewWith 以给定元素初始化主栈，最后一个元素在栈顶
func NewWith(items ...[]byte) *OpData {
	s := New()
	s.PushMulti(items...)
	return s
}

func (s *OpData) ItemCount() int {
	return len(s.l)
}

func (s *OpData) AltItemCount() int {
	return len(s.alt)
}

func (s *OpData) Has(n int) bool {
	return len(s.l) >= n
}

func (s *OpData) Empty() bool {
	return s.ItemCount() == 0
}

func (s *OpData) Push(v []byte) {
	s.l = append(s.l, v)
}

// PushMulti 按顺序压栈，最后一个成为栈顶
func (s *OpData) PushMulti(vs ...[]byte) {
	s.l = append(s.l, vs...)
}

func (s *OpData) Pop() []byte {
	v := s.l[len(s.l)-1]
	s.l = s.l[:len(s.l)-1]
	return v
}

// PopMulti 弹出n个元素，返回顺序与栈中顺序一致（最后一个是原栈顶）
func (s *OpData) PopMulti(n int) [][]byte {
	start := len(s.l) - n
	out := make([][]byte, n)
	copy(out, s.l[start:])
	s.l = s.l[:start]
	return out
}

func (s *OpData) Peek() []byte {
	return s.l[len(s.l)-1]
}

// PeekAtIndex 按距栈顶的深度读取，0为栈顶
func (s *OpData) PeekAtIndex(i int) []byte {
	return s.l[len(s.l)-1-i]
}

// PeekMulti 读取栈顶n个元素，顺序同 PopMulti
func (s *OpData) PeekMulti(n int) [][]byte {
	out := make([][]byte, n)
	copy(out, s.l[len(s.l)-n:])
	return out
}

// PopAtIndex 移除并返回深度为i的元素
func (s *OpData) PopAtIndex(i int) []byte {
	idx := len(s.l) - 1 - i
	v := s.l[idx]
	s.l = append(s.l[:idx], s.l[idx+1:]...)
	return v
}

// Insert 插入元素，使其位于深度i（i=0等价于 Push）
func (s *OpData) Insert(v []byte, i int) {
	idx := len(s.l) - i
	s.l = append(s.l, nil)
	copy(s.l[idx+1:], s.l[idx:])
	s.l[idx] = v
}

func (s *OpData) AltPush(v []byte) {
	s.alt = append(s.alt, v)
}

func (s *OpData) AltPop() []byte {
	v := s.alt[len(s.alt)-1]
	s.alt = s.alt[:len(s.alt)-1]
	return v
}

// Items 主栈快照，栈底在前
func (s *OpData) Items() [][]byte {
	out := make([][]byte, len(s.l))
	copy(out, s.l)
	return out
}

func (s *OpData) AltItems() [][]byte {
	out := make([][]byte, len(s.alt))
	copy(out, s.alt)
	return out
}
