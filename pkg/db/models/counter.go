package models

import "time"

// Counter backs a named gapless sequence. Rows are created lazily on first
// allocation and only ever incremented inside the allocating transaction.
type Counter struct {
	Name      string    `gorm:"column:name;type:text;primaryKey"`
	Count     int64     `gorm:"column:count;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
