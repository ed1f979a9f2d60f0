package script

import (
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/pkg/stream"
	"github.com/treeforest/easytx/varint"
)

// parser 一次解析的上下文：读取游标和脚本的结束位置，递归解析条件块时共享
type parser struct {
	r   *stream.Reader
	end int
}

func (p *parser) more() bool {
	return p.r.Position() < p.end
}

func (p *parser) left() int {
	return p.end - p.r.Position()
}

// parseOps 解析到脚本结尾，或在 nested 时解析到 OP_ELSE/OP_ENDIF，返回遇到的终止符
func (p *parser) parseOps(nested bool) ([]Operation, OpCode, error) {
	ops := make([]Operation, 0)
	for p.more() {
		b, err := p.r.PeekByte()
		if err != nil {
			return nil, 0, errors.Wrap(ErrTrailingData, err.Error())
		}
		code := OpCode(b)

		switch {
		case code.IsPush():
			op, err := p.parsePush()
			if err != nil {
				return nil, 0, err
			}
			ops = append(ops, op)

		case code == OP_RETURN:
			_, _ = p.r.ReadByte()
			op := &ReturnOp{}
			if p.left() > 0 {
				op.Data, _ = p.r.ReadBytes(p.left())
			}
			ops = append(ops, op)

		case code.IsDisabled():
			return nil, 0, errors.Wrapf(ErrDisabledOpcode, "%s at offset %d", code, p.r.Position())

		case code.IsInvalid():
			return nil, 0, errors.Wrapf(ErrInvalidOpcode, "%s at offset %d", code, p.r.Position())

		case code == OP_IF || code == OP_NOTIF:
			op, err := p.parseIf()
			if err != nil {
				return nil, 0, err
			}
			ops = append(ops, op)

		case code == OP_ELSE || code == OP_ENDIF:
			if !nested {
				return nil, 0, errors.Wrapf(ErrUnbalancedConditional, "%s without OP_IF at offset %d", code, p.r.Position())
			}
			_, _ = p.r.ReadByte()
			return ops, code, nil

		default:
			_, _ = p.r.ReadByte()
			ops = append(ops, &CodeOp{Code: code})
		}
	}

	if nested {
		return nil, 0, errors.Wrap(ErrUnbalancedConditional, "missing OP_ENDIF")
	}
	return ops, 0, nil
}

func (p *parser) parsePush() (*PushDataOp, error) {
	b, _ := p.r.PeekByte()
	code := OpCode(b)
	if code.IsNumberPush() {
		_, _ = p.r.ReadByte()
		return &PushDataOp{Code: code}, nil
	}

	n, err := varint.ReadStackInt(p.r)
	if err != nil {
		return nil, err
	}
	if p.r.Position() > p.end || int(n) > p.left() {
		return nil, errors.Wrapf(ErrTrailingData, "push of %d bytes exceeds script end", n)
	}
	data, err := p.r.ReadBytes(int(n))
	if err != nil {
		return nil, errors.Wrap(ErrTrailingData, err.Error())
	}
	return &PushDataOp{Code: code, Data: data}, nil
}

func (p *parser) parseIf() (*IfElseOp, error) {
	b, _ := p.r.ReadByte()
	op := &IfElseOp{Code: OpCode(b)}

	main, term, err := p.parseOps(true)
	if err != nil {
		return nil, err
	}
	if len(main) == 0 {
		return nil, errors.Wrapf(ErrEmptyConditionalBranch, "empty %s branch", op.Code)
	}
	op.Main = main
	if term == OP_ENDIF {
		return op, nil
	}

	alt, term, err := p.parseOps(true)
	if err != nil {
		return nil, err
	}
	if len(alt) == 0 {
		return nil, errors.Wrap(ErrEmptyConditionalBranch, "empty OP_ELSE branch")
	}
	if term != OP_ENDIF {
		return nil, errors.Wrap(ErrUnbalancedConditional, "second OP_ELSE in one conditional")
	}
	op.Else = alt
	return op, nil
}

// parseWitness 见证脚本的每一项都是 CompactInt 前缀的数据
func parseWitness(r *stream.Reader, count int) ([]Operation, error) {
	ops := make([]Operation, 0, count)
	for i := 0; i < count; i++ {
		n, err := varint.ReadLength(r)
		if err != nil {
			return nil, errors.Wrapf(err, "witness item %d", i)
		}
		data, err := r.ReadBytes(n)
		if err != nil {
			return nil, errors.Wrap(ErrTrailingData, err.Error())
		}
		ops = append(ops, NewPushDataOp(data))
	}
	return ops, nil
}

// parseScript 解析 [start, end) 范围内的普通脚本
func parseScript(r *stream.Reader, end int) ([]Operation, error) {
	p := &parser{r: r, end: end}
	ops, _, err := p.parseOps(false)
	if err != nil {
		return nil, err
	}
	if r.Position() != end {
		return nil, errors.Wrapf(ErrTrailingData, "stopped at %d, expected %d", r.Position(), end)
	}
	return ops, nil
}
