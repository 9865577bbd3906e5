package models

// Tag categorizes feedback items. Names are lowercased on write and unique.
type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:50;unique;not null" json:"name"`
	// UsageCount is not persisted; computed at query time
	UsageCount int `gorm:"->" json:"usage_count"`
}

// TableName specifies the table name for GORM.
func (Tag) TableName() string {
	return "tags"
}
