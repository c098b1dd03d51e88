package inmemdb

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alihaimran285-byte/final-project-sub001/core/school"
)

var (
	nowFunc = time.Now                                      // mockable
	newID   = func() string { return uuid.New().String() } // mockable
)

type (
	// DB holds one ordered, process-local collection per record kind.
	// Nothing is persisted: records live as long as the process.
	DB struct {
		tables map[school.Kind]*recordTable
		mutex  sync.RWMutex
	}

	recordTable struct {
		rows  []school.Record
		mutex sync.RWMutex
	}
)

// Open creates the collections, pre-seeded with seed (which is copied).
func Open(seed map[school.Kind][]school.Record) *DB {
	db := &DB{tables: make(map[school.Kind]*recordTable, len(school.Kinds))}
	for _, kind := range school.Kinds {
		db.tables[kind] = &recordTable{}
	}
	for kind, records := range seed {
		tbl := db.table(kind)
		for _, rec := range records {
			tbl.rows = append(tbl.rows, stamp(rec.Clone(), false))
		}
	}
	return db
}

func (db *DB) table(kind school.Kind) *recordTable {
	db.mutex.RLock()
	tbl, ok := db.tables[kind]
	db.mutex.RUnlock()
	if ok {
		return tbl
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()
	if tbl, ok = db.tables[kind]; !ok {
		tbl = &recordTable{}
		db.tables[kind] = tbl
	}
	return tbl
}

// List returns copies of every record of kind, in insertion order.
func (db *DB) List(kind school.Kind) []school.Record {
	tbl := db.table(kind)
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()
	return school.CloneAll(tbl.rows)
}

// Len returns the size of the kind's collection.
func (db *DB) Len(kind school.Kind) int {
	tbl := db.table(kind)
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()
	return len(tbl.rows)
}

// Append stores a new record made of data, a fresh id and createdAt/updatedAt set to now.
// The generated id and timestamps win over the same keys in data.
func (db *DB) Append(kind school.Kind, data school.Record) school.Record {
	rec := stamp(data.Fields(), true)

	tbl := db.table(kind)
	tbl.mutex.Lock()
	tbl.rows = append(tbl.rows, rec)
	tbl.mutex.Unlock()
	return rec.Clone()
}

// Find returns a copy of the record of kind with the given id.
func (db *DB) Find(kind school.Kind, id string) (school.Record, error) {
	tbl := db.table(kind)
	tbl.mutex.RLock()
	defer tbl.mutex.RUnlock()
	for _, rec := range tbl.rows {
		if rec.ID() == id {
			return rec.Clone(), nil
		}
	}
	return nil, school.ErrNotFound
}

// stamp sets id & timestamps on rec; when force is false, existing values are kept.
func stamp(rec school.Record, force bool) school.Record {
	now := nowFunc().UTC()
	if id := rec.ID(); force || id == "" {
		rec[school.FieldID] = newID()
	} else {
		rec[school.FieldID] = id
	}
	if created := rec.CreatedAt(); force || created.IsZero() {
		rec[school.FieldCreatedAt] = now
	} else {
		rec[school.FieldCreatedAt] = created
	}
	if updated := rec.UpdatedAt(); force || updated.IsZero() {
		rec[school.FieldUpdatedAt] = rec[school.FieldCreatedAt]
	} else {
		rec[school.FieldUpdatedAt] = updated
	}
	return rec
}
