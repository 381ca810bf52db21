package adapters

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var outboxPrefix = []byte("outbox/")

// OutboxEntry is one event waiting to be relayed to a queue.
type OutboxEntry struct {
	Seq        uint64          `json:"seq"`
	Queue      string          `json:"queue"`
	Payload    json.RawMessage `json:"payload"`
	Attempts   int             `json:"attempts"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// Outbox is a durable FIFO of events on LevelDB. Entries are keyed by a
// monotonically increasing sequence so iteration order is append order.
type Outbox struct {
	db  *leveldb.DB
	mu  sync.Mutex
	seq uint64
}

// OpenOutbox opens (or creates) the outbox stored at path.
func OpenOutbox(path string) (*Outbox, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open outbox %s: %w", path, err)
	}
	o, err := NewOutbox(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return o, nil
}

// NewOutbox wraps an already opened LevelDB handle and resumes its sequence.
func NewOutbox(db *leveldb.DB) (*Outbox, error) {
	o := &Outbox{db: db}

	it := db.NewIterator(util.BytesPrefix(outboxPrefix), nil)
	defer it.Release()
	if it.Last() {
		o.seq = decodeSeq(it.Key())
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("scan outbox: %w", err)
	}
	return o, nil
}

func (o *Outbox) Close() error { return o.db.Close() }

func outboxKey(seq uint64) []byte {
	k := make([]byte, len(outboxPrefix)+8)
	copy(k, outboxPrefix)
	binary.BigEndian.PutUint64(k[len(outboxPrefix):], seq)
	return k
}

func decodeSeq(key []byte) uint64 {
	if len(key) != len(outboxPrefix)+8 {
		return 0
	}
	return binary.BigEndian.Uint64(key[len(outboxPrefix):])
}

// Append stores payload for later delivery to queue and returns its sequence.
func (o *Outbox) Append(queue string, payload []byte) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	seq := o.seq + 1
	entry := OutboxEntry{
		Seq:        seq,
		Queue:      queue,
		Payload:    payload,
		EnqueuedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return 0, fmt.Errorf("encode outbox entry: %w", err)
	}
	if err := o.db.Put(outboxKey(seq), data, &opt.WriteOptions{Sync: true}); err != nil {
		return 0, fmt.Errorf("append outbox entry: %w", err)
	}
	o.seq = seq
	return seq, nil
}

// Pending returns up to limit entries in append order. limit <= 0 means all.
func (o *Outbox) Pending(limit int) ([]OutboxEntry, error) {
	it := o.db.NewIterator(util.BytesPrefix(outboxPrefix), nil)
	defer it.Release()

	var out []OutboxEntry
	for it.Next() {
		var e OutboxEntry
		if err := json.Unmarshal(it.Value(), &e); err != nil {
			return nil, fmt.Errorf("decode outbox entry %d: %w", decodeSeq(it.Key()), err)
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	if err := it.Error(); err != nil {
		return nil, fmt.Errorf("read outbox: %w", err)
	}
	return out, nil
}

// Ack removes a delivered entry. Acking an unknown sequence is a no-op.
func (o *Outbox) Ack(seq uint64) error {
	if err := o.db.Delete(outboxKey(seq), nil); err != nil {
		return fmt.Errorf("ack outbox entry %d: %w", seq, err)
	}
	return nil
}

// Retry records a failed delivery attempt for seq.
func (o *Outbox) Retry(seq uint64) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := outboxKey(seq)
	data, err := o.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load outbox entry %d: %w", seq, err)
	}
	var e OutboxEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return fmt.Errorf("decode outbox entry %d: %w", seq, err)
	}
	e.Attempts++
	if data, err = json.Marshal(e); err != nil {
		return fmt.Errorf("encode outbox entry %d: %w", seq, err)
	}
	return o.db.Put(key, data, nil)
}

// Len counts entries still waiting for delivery.
func (o *Outbox) Len() (int, error) {
	it := o.db.NewIterator(util.BytesPrefix(outboxPrefix), nil)
	defer it.Release()
	n := 0
	for it.Next() {
		n++
	}
	return n, it.Error()
}
