package easytx

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/treeforest/easytx/merkle"
)

// MerkleRoot 按区块内顺序计算交易哈希的默克尔根
func MerkleRoot(txs []*Transaction) (chainhash.Hash, error) {
	hashes := make([]chainhash.Hash, 0, len(txs))
	for _, tx := range txs {
		hashes = append(hashes, tx.Hash())
	}
	return merkle.New().BuildWithHashes(hashes)
}

// WitnessMerkleRoot 见证默克尔根，创币交易的 wtxid 视为全0
func WitnessMerkleRoot(txs []*Transaction) (chainhash.Hash, error) {
	hashes := make([]chainhash.Hash, 0, len(txs))
	for i, tx := range txs {
		if i == 0 && tx.IsCoinbase() {
			hashes = append(hashes, chainhash.Hash{})
			continue
		}
		hashes = append(hashes, tx.WitnessHash())
	}
	return merkle.New().BuildWithHashes(hashes)
}
