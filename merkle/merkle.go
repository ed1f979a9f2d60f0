package merkle

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/treeforest/easytx/hashing"
	log "github.com/treeforest/logger"
)

var (
	ErrEmptyTree   = errors.New("no leaf hashes")
	ErrLeafMissing = errors.New("target is not a leaf hash")
)

// Tree 比特币默克尔树，叶子按交易顺序排列，不做排序
type Tree struct {
	MerkleRoot chainhash.Hash
	Nodes      [][]*Node // 所有的节点，Nodes[0] 为叶子层，最后一层为根
}

type Node struct {
	Parent  *Node          // 父节点
	Brother int            // 兄弟节点(当前层所在的索引)
	Hash    chainhash.Hash // 哈希
}

// Proof 默克尔路径，Index 的每一位表示当前节点在该层是否为右子节点
type Proof struct {
	Index  int
	Branch []chainhash.Hash
}

func New() *Tree {
	return &Tree{Nodes: make([][]*Node, 0)}
}

// BuildWithHashes 生成默克尔树，只有一个叶子时根即为该叶子
func (t *Tree) BuildWithHashes(hashes []chainhash.Hash) (chainhash.Hash, error) {
	if len(hashes) == 0 {
		return chainhash.Hash{}, ErrEmptyTree
	}

	// 构建叶子节点
	leafs := make([]*Node, 0, len(hashes))
	for _, hash := range hashes {
		leafs = append(leafs, &Node{Hash: hash})
	}

	t.Nodes = t.Nodes[:0]
	t.MerkleRoot = t.build(leafs)
	return t.MerkleRoot, nil
}

// buildBrothers 找朋友，大家一起找朋友~
func buildBrothers(nodes []*Node) {
	var (
		left, right int
		l           = len(nodes)
	)
	for i := 0; i < l; i += 2 {
		left, right = i, i+1
		if right == l {
			nodes[left].Brother = left // 自己是自己的兄弟节点
			continue
		}
		nodes[left].Brother = right
		nodes[right].Brother = left
	}
}

func (t *Tree) build(nodes []*Node) chainhash.Hash {
	buildBrothers(nodes)
	t.Nodes = append(t.Nodes, nodes)

	num := len(nodes)
	if num == 1 {
		return nodes[0].Hash
	}

	parents := make([]*Node, 0, (num+1)/2) // 父节点列表
	for i := 0; i < num; i += 2 {
		left, right := i, i+1
		if right == num {
			right = left // 不足偶数份，最后的元素自我复制一份计算哈希
		}

		parent := &Node{Hash: calculateHash(nodes[left].Hash, nodes[right].Hash)}
		parents = append(parents, parent)
		nodes[left].Parent = parent
		nodes[right].Parent = parent
	}

	return t.build(parents)
}

// calculateHash 左右拼接后两次 sha256
func calculateHash(left, right chainhash.Hash) chainhash.Hash {
	data := make([]byte, 0, chainhash.HashSize*2)
	data = append(data, left[:]...)
	data = append(data, right[:]...)
	return chainhash.Hash(hashing.DoubleSum256(data))
}

// GenerateMerkleProof 生成叶子到根的路径，叶子重复时取第一个
func (t *Tree) GenerateMerkleProof(leaf chainhash.Hash) (*Proof, error) {
	if len(t.Nodes) == 0 {
		return nil, ErrEmptyTree
	}

	index := -1
	for i, n := range t.Nodes[0] {
		if n.Hash == leaf {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, errors.Wrap(ErrLeafMissing, leaf.String())
	}

	proof := &Proof{Index: index}
	pos := index
	for level := 0; level < len(t.Nodes)-1; level++ {
		node := t.Nodes[level][pos]
		proof.Branch = append(proof.Branch, t.Nodes[level][node.Brother].Hash)
		pos /= 2
	}

	log.Debugf("merkle proof for leaf %d: %d hashes", index, len(proof.Branch))
	return proof, nil
}

// VerifyMerkleProof verify merkle proof
func (t *Tree) VerifyMerkleProof(leaf chainhash.Hash, proof *Proof) bool {
	if len(t.Nodes) == 0 {
		return false
	}
	return VerifyMerkleProof(leaf, t.MerkleRoot, proof)
}

func VerifyMerkleProof(leaf, merkleRoot chainhash.Hash, proof *Proof) bool {
	if proof == nil || proof.Index < 0 {
		return false
	}
	dst, index := leaf, proof.Index
	for _, b := range proof.Branch {
		if index&1 == 1 {
			dst = calculateHash(b, dst)
		} else {
			dst = calculateHash(dst, b)
		}
		index >>= 1
	}
	return index == 0 && dst == merkleRoot
}
