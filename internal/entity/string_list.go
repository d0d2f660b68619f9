package entity

import (
	"database/sql/driver"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// StringList is a list of strings stored as a native TEXT[] on PostgreSQL and as
// the same array literal in a TEXT column elsewhere.
type StringList pq.StringArray

// GormDataType is the dialect-neutral type the schema parser needs for a slice-backed field.
func (StringList) GormDataType() string {
	return "text"
}

// GormDBDataType picks the column type per dialect.
func (StringList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	return (*pq.StringArray)(l).Scan(src)
}
