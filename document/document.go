// Package document implements SynthDB's document store adapter: per-graph
// tables of arbitrary JSON rows, backed by BadgerDB, with a mandatory
// secondary index on "uid" and dotted-path projection/update via gjson and
// sjson.
//
// Grounded on straga-Mimir_lite/nornicdb/pkg/storage/badger.go: one
// BadgerDB per process, single-byte table-kind prefixes composed with a
// per-graph namespace prefix (SynthDB hosts many graphs per process, where
// nornicdb hosts one graph database per process).
package document

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Table names SynthDB's four fixed document tables, matching spec.md §6.
type Table byte

const (
	TableNodes Table = iota + 1
	TableLinks
	TableNodeTypes
	TableLinkTypes
)

const uidIndexPrefix = byte(0xF0)

// graphRegistryPrefix keys a process-durable record of every graph name
// that has ever been created, so a restarted process can rediscover
// them: BadgerDB has no notion of "databases" to enumerate the way the
// original RethinkDB-backed server used r.db_list(), so SynthDB keeps
// its own index instead.
const graphRegistryPrefix = byte(0xF8)

func registryKey(graph string) []byte {
	key := make([]byte, 0, 1+len(graph))
	key = append(key, graphRegistryPrefix)
	key = append(key, []byte(graph)...)
	return key
}

// Store is a BadgerDB-backed document store shared by every graph
// database in the process. Rows are namespaced by graph name so multiple
// graphs can coexist in one Badger instance.
type Store struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// Options configures Store construction, mirroring BadgerOptions from the
// storage engine this is grounded on.
type Options struct {
	DataDir    string
	InMemory   bool
	SyncWrites bool
}

// Open creates (or reopens) a Store at the configured location.
func Open(opts Options) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.DataDir)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("document: open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying BadgerDB handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func rowKey(graph string, tbl Table, primary string) []byte {
	key := make([]byte, 0, 1+len(graph)+1+len(primary))
	key = append(key, byte(tbl))
	key = append(key, []byte(graph)...)
	key = append(key, 0x00)
	key = append(key, []byte(primary)...)
	return key
}

func rowPrefix(graph string, tbl Table) []byte {
	key := make([]byte, 0, 1+len(graph)+1)
	key = append(key, byte(tbl))
	key = append(key, []byte(graph)...)
	key = append(key, 0x00)
	return key
}

func uidKey(graph string, tbl Table, uid string) []byte {
	key := make([]byte, 0, 1+len(graph)+1+1+len(uid))
	key = append(key, uidIndexPrefix)
	key = append(key, byte(tbl))
	key = append(key, []byte(graph)...)
	key = append(key, 0x00)
	key = append(key, []byte(uid)...)
	return key
}

// Insert writes a new JSON row under primary in the given table,
// registering its "uid" field (generating one via google/uuid if the
// document omits it) in the secondary uid index. Returns the row's final
// JSON (with uid populated) and an error if primary already exists.
func (s *Store) Insert(graph string, tbl Table, primary, doc string) (string, error) {
	var final string
	err := s.db.Update(func(txn *badger.Txn) error {
		key := rowKey(graph, tbl, primary)
		if _, err := txn.Get(key); err == nil {
			return fmt.Errorf("document: duplicate primary id %q", primary)
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		uid := gjson.Get(doc, "uid").String()
		if uid == "" {
			uid = uuid.NewString()
			var err error
			doc, err = sjson.Set(doc, "uid", uid)
			if err != nil {
				return fmt.Errorf("document: set uid: %w", err)
			}
		}

		if err := txn.Set(key, []byte(doc)); err != nil {
			return err
		}
		if err := txn.Set(uidKey(graph, tbl, uid), []byte(primary)); err != nil {
			return err
		}
		final = doc
		return nil
	})
	return final, err
}

// Get retrieves a row's raw JSON by primary id.
func (s *Store) Get(graph string, tbl Table, primary string) (string, bool, error) {
	var doc string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(rowKey(graph, tbl, primary))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			doc = string(val)
			return nil
		})
	})
	return doc, doc != "", err
}

// GetByUID resolves a row by its stable uid via the secondary index.
func (s *Store) GetByUID(graph string, tbl Table, uid string) (primary string, doc string, ok bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(uidKey(graph, tbl, uid))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			primary = string(val)
			return nil
		}); err != nil {
			return err
		}

		row, err := txn.Get(rowKey(graph, tbl, primary))
		if err != nil {
			return err
		}
		return row.Value(func(val []byte) error {
			doc = string(val)
			return nil
		})
	})
	ok = doc != ""
	return
}

// Update overwrites the row at primary with doc (which must already carry
// the original uid, per spec.md's "update never changes uid" invariant).
func (s *Store) Update(graph string, tbl Table, primary, doc string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(rowKey(graph, tbl, primary), []byte(doc))
	})
}

// Delete removes a row and its uid index entry.
func (s *Store) Delete(graph string, tbl Table, primary string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(rowKey(graph, tbl, primary))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var doc []byte
		if err := item.Value(func(val []byte) error {
			doc = append([]byte(nil), val...)
			return nil
		}); err != nil {
			return err
		}
		uid := gjson.GetBytes(doc, "uid").String()
		if err := txn.Delete(rowKey(graph, tbl, primary)); err != nil {
			return err
		}
		if uid != "" {
			if err := txn.Delete(uidKey(graph, tbl, uid)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Row pairs a primary key with its raw JSON document, the unit Scan/Filter
// operate on.
type Row struct {
	Primary string
	Doc     string
}

// Scan returns every row in a table, ordered by primary key, for cursor
// operations (get_all/filter/map/...) to iterate over.
func (s *Store) Scan(graph string, tbl Table) ([]Row, error) {
	var rows []Row
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := rowPrefix(graph, tbl)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			primary := bytes.TrimPrefix(item.KeyCopy(nil), prefix)
			var doc string
			if err := item.Value(func(val []byte) error {
				doc = string(val)
				return nil
			}); err != nil {
				return err
			}
			rows = append(rows, Row{Primary: string(primary), Doc: doc})
		}
		return nil
	})
	return rows, err
}

// Count returns the number of rows in a table without materializing them.
func (s *Store) Count(graph string, tbl Table) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := rowPrefix(graph, tbl)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// RegisterGraph records name in the durable graph registry, so a future
// process restart can rediscover it via ListGraphNames.
func (s *Store) RegisterGraph(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(registryKey(name), []byte{1})
	})
}

// UnregisterGraph removes name from the durable graph registry. It does
// not purge the graph's rows; callers that need reclamation should do so
// explicitly, matching Delete's own non-GC policy.
func (s *Store) UnregisterGraph(name string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(registryKey(name))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

// ListGraphNames returns every graph name ever registered, for
// catalog.Bootstrap to rebuild topology from at process startup.
func (s *Store) ListGraphNames() ([]string, error) {
	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte{graphRegistryPrefix}
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			names = append(names, string(key[1:]))
		}
		return nil
	})
	return names, err
}

// Project extracts a dotted-path field from a row's JSON using gjson,
// implementing spec.md §4.A's nested field projection (used by pluck).
func Project(doc, dottedPath string) gjson.Result {
	return gjson.Get(doc, dottedPath)
}

// SetField writes a dotted-path field into a row's JSON using sjson,
// implementing spec.md §4.A's literal-replacement update semantics.
func SetField(doc, dottedPath string, value interface{}) (string, error) {
	return sjson.Set(doc, dottedPath, value)
}
