package models

// PolicyCounter is the per-year policy number sequence. Rows are created
// lazily on first allocation and never deleted; seq only ever increments,
// and it does so through a single atomic upsert.
type PolicyCounter struct {
	Year int   `gorm:"column:year;primaryKey"`
	Seq  int64 `gorm:"column:seq;not null;default:0"`
}
