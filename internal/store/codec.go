package store

import (
	"bytes"
	"encoding/binary"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/blake2b"
)

func encode(v any) ([]byte, error) {
	return msgpack.Marshal(v)
}

func decode(raw []byte, out any) error {
	return msgpack.Unmarshal(raw, out)
}

// Digest считает хэш коммита:
// BLAKE2b-256(len(prev) prev || height || len(op) op || для каждой записи: len(key) key len(value) value).
// Записи должны быть отсортированы по ключу.
func Digest(c *Commit) []byte {
	h, _ := blake2b.New256(nil) // без ключа ошибки не бывает
	var buf [8]byte

	binary.BigEndian.PutUint64(buf[:], uint64(len(c.PrevDigest)))
	h.Write(buf[:])
	h.Write(c.PrevDigest)
	binary.BigEndian.PutUint64(buf[:], c.Height)
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(len(c.Op)))
	h.Write(buf[:])
	h.Write([]byte(c.Op))
	for _, w := range c.Writes {
		binary.BigEndian.PutUint64(buf[:], uint64(len(w.Key)))
		h.Write(buf[:])
		h.Write([]byte(w.Key))
		binary.BigEndian.PutUint64(buf[:], uint64(len(w.Value)))
		h.Write(buf[:])
		h.Write(w.Value)
	}
	return h.Sum(nil)
}

// VerifyChain проверяет, что журнал коммитов непрерывен: высоты идут подряд
// с 1, каждый коммит ссылается на хэш предыдущего и хэш пересчитывается.
// Возвращает высоту первого битого коммита или 0, если всё в порядке.
func VerifyChain(commits []Commit) uint64 {
	var v ChainVerifier
	for i := range commits {
		if !v.Check(&commits[i]) {
			return commits[i].Height
		}
	}
	return 0
}

// ChainVerifier проверяет журнал по частям, коммит за коммитом с высоты 1.
type ChainVerifier struct {
	height uint64
	prev   []byte
}

// Check проверяет очередной коммит и запоминает его как последний верный.
func (v *ChainVerifier) Check(c *Commit) bool {
	if c.Height != v.height+1 {
		return false
	}
	if !bytes.Equal(c.PrevDigest, v.prev) {
		return false
	}
	if !bytes.Equal(Digest(c), c.Digest) {
		return false
	}
	v.height = c.Height
	v.prev = c.Digest
	return true
}

// Height возвращает высоту последнего проверенного коммита.
func (v *ChainVerifier) Height() uint64 {
	return v.height
}
