package dao

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
	log "github.com/treeforest/logger"
)

const (
	dbName          = "TXS"                    // 数据库名
	latestTxHashKey = "__latest_tx_hash_key__" // 最近写入的交易哈希对应的key
	txPrefix        = "__tx__"
)

var ErrNotFound = errors.New("transaction not found")

func IsNotExistDB(path string) bool {
	_, err := os.Stat(filepath.Join(path, dbName))
	return os.IsNotExist(err)
}

// DAO 交易存储对象，以交易哈希为键保存原始交易字节
type DAO struct {
	*leveldb.DB
	filter       *bloom.BloomFilter // 已存储交易哈希的 Bloom 过滤器
	latestTxHash []byte
	locker       sync.RWMutex
}

// New 打开(或创建)数据库，并用已有的交易哈希重建过滤器
func New(dbPath string, capacity uint, falsePositive float64) (*DAO, error) {
	log.Debug("db path:", filepath.Join(dbPath, dbName))
	levelDB, err := leveldb.OpenFile(filepath.Join(dbPath, dbName), &opt.Options{})
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb [%s]", dbName)
	}

	o := &DAO{DB: levelDB, filter: bloom.NewWithEstimates(capacity, falsePositive)}
	if err = o.load(); err != nil {
		_ = levelDB.Close()
		return nil, err
	}
	return o, nil
}

func (o *DAO) load() error {
	value, err := o.DB.Get([]byte(latestTxHashKey), nil)
	switch {
	case err == nil:
		o.latestTxHash = value
	case errors.Is(err, leveldb.ErrNotFound):
	default:
		return errors.Wrap(err, "load latest tx hash failed")
	}

	n := 0
	err = o.Traverse(func(hash chainhash.Hash, _ []byte) bool {
		o.filter.Add(hash[:])
		n++
		return true
	})
	log.Debugf("loaded %d transactions into bloom filter", n)
	return err
}

func (o *DAO) Close() error {
	return o.DB.Close()
}

func keyTx(hash chainhash.Hash) []byte {
	return append([]byte(txPrefix), hash[:]...)
}

// GetLatestTxHash 最近一次写入的交易哈希，没有时返回 nil
func (o *DAO) GetLatestTxHash() *chainhash.Hash {
	o.locker.RLock()
	defer o.locker.RUnlock()
	if o.latestTxHash == nil {
		return nil
	}
	hash, err := chainhash.NewHash(o.latestTxHash)
	if err != nil {
		return nil
	}
	return hash
}

// mayContain 过滤器判定不存在时一定不存在
func (o *DAO) mayContain(hash chainhash.Hash) bool {
	o.locker.RLock()
	defer o.locker.RUnlock()
	return o.filter.Test(hash[:])
}

func (o *DAO) HasTx(hash chainhash.Hash) (bool, error) {
	if !o.mayContain(hash) {
		return false, nil
	}
	return o.DB.Has(keyTx(hash), nil)
}

func (o *DAO) GetTx(hash chainhash.Hash) ([]byte, error) {
	if !o.mayContain(hash) {
		return nil, errors.Wrap(ErrNotFound, hash.String())
	}
	raw, err := o.DB.Get(keyTx(hash), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, errors.Wrap(ErrNotFound, hash.String())
	}
	return raw, err
}

func (o *DAO) PutTx(hash chainhash.Hash, raw []byte) error {
	o.locker.Lock()
	defer o.locker.Unlock()

	err := o.DoTransaction(func(trans *leveldb.Transaction) error {
		wo := &opt.WriteOptions{Sync: true}

		err := trans.Put(keyTx(hash), raw, wo)
		if err != nil {
			return errors.Wrap(err, "insert tx failed")
		}

		err = trans.Put([]byte(latestTxHashKey), hash[:], wo)
		if err != nil {
			return errors.Wrap(err, "update latest tx hash failed")
		}
		return nil
	})
	if err != nil {
		return err
	}

	o.filter.Add(hash[:])
	o.latestTxHash = append([]byte(nil), hash[:]...)
	return nil
}

// RemoveTx 删除交易，过滤器不支持删除，之后的查询由数据库兜底
func (o *DAO) RemoveTx(hash chainhash.Hash) error {
	o.locker.Lock()
	defer o.locker.Unlock()

	isLatest := bytes.Equal(o.latestTxHash, hash[:])
	err := o.DoTransaction(func(trans *leveldb.Transaction) error {
		ok, err := trans.Has(keyTx(hash), nil)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrap(ErrNotFound, hash.String())
		}

		if err = trans.Delete(keyTx(hash), nil); err != nil {
			return errors.Wrap(err, "delete tx failed")
		}

		if isLatest {
			if err = trans.Delete([]byte(latestTxHashKey), nil); err != nil {
				return errors.Wrap(err, "delete latest tx hash failed")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if isLatest {
		o.latestTxHash = nil
	}
	return nil
}

// Traverse 按键序遍历所有交易，fn 返回 false 时停止
func (o *DAO) Traverse(fn func(hash chainhash.Hash, raw []byte) bool) error {
	iter := o.DB.NewIterator(util.BytesPrefix([]byte(txPrefix)), nil)
	defer iter.Release()

	for iter.Next() {
		var hash chainhash.Hash
		copy(hash[:], iter.Key()[len(txPrefix):])
		raw := append([]byte(nil), iter.Value()...)
		if !fn(hash, raw) {
			break
		}
	}
	return iter.Error()
}

// DoTransaction 事务操作
func (o *DAO) DoTransaction(fn func(trans *leveldb.Transaction) error) error {
	trans, err := o.DB.OpenTransaction()
	if err != nil {
		return errors.Wrap(err, "open transaction failed")
	}
	defer func() {
		if err != nil {
			// 事务提交失败，销毁事务
			trans.Discard()
		}
	}()

	if err = fn(trans); err != nil {
		return err
	}

	err = trans.Commit()
	if err != nil {
		return errors.Wrap(err, "commit failed")
	}

	return nil
}
