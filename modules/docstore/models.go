package docstore

import "time"

// designPrefix marks configuration records that never appear in results.
const designPrefix = "_design/"

type documentRow struct {
	Collection string `gorm:"primaryKey;type:text"`
	ID         string `gorm:"primaryKey;type:text"`
	Rev        string `gorm:"not null;type:text"`
	Body       string `gorm:"not null;type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (documentRow) TableName() string {
	return "documents"
}

// viewRow is one materialized (key, value) pair emitted by a view.
type viewRow struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	Collection string `gorm:"not null;type:text;index:idx_view_lookup,priority:1;index:idx_view_doc,priority:1"`
	ViewName   string `gorm:"not null;type:text;index:idx_view_lookup,priority:2"`
	ViewKey    string `gorm:"not null;type:text;index:idx_view_lookup,priority:3"`
	DocID      string `gorm:"not null;type:text;index:idx_view_lookup,priority:4;index:idx_view_doc,priority:2"`
	ViewValue  string `gorm:"not null;type:text"`
}

func (viewRow) TableName() string {
	return "view_rows"
}

// uniqueKey claims a field value for one document within a collection.
type uniqueKey struct {
	Collection string `gorm:"primaryKey;type:text"`
	Field      string `gorm:"primaryKey;type:text"`
	Value      string `gorm:"primaryKey;type:text"`
	DocID      string `gorm:"not null;type:text;index"`
}

func (uniqueKey) TableName() string {
	return "unique_keys"
}

// viewResult is the joined shape returned by view and unique lookups.
type viewResult struct {
	ViewKey   string
	ViewValue string
	DocID     string
	Rev       string
	Body      string
}
