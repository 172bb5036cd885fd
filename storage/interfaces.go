package storage

import "github.com/Tn-Hub-777/rematcher/models"

// Table names known to the store.
const (
	TableBuyers   = "buyers"
	TableListings = "listings"
	TableMatches  = "matches"
)

// RecordStore is the persistence contract the engine consumes. A
// record's id field determines insert-vs-update; bulk operations are
// applied transactionally, all-or-nothing.
type RecordStore interface {
	List(table string) ([]models.Record, error)
	Upsert(table string, rec models.Record) error
	Delete(table, id string) error
	BulkUpsert(table string, recs []models.Record) error
	Clear(table string) error
	Close() error
}
