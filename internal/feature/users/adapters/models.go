package adapters

import "time"

// UserModel is the relational row for a user record. External ids are
// embedded as a JSON column, mirroring the way the record stores keep the
// list inside the user record.
type UserModel struct {
	ID          string `gorm:"primaryKey;size:64"`
	Data        string `gorm:"type:text"`
	ExternalIDs string `gorm:"type:text;not null"`
	CreatedAt   time.Time
}

func (UserModel) TableName() string { return "users" }

// ExternalIDModel is the relational row for a uniqueness index record.
// The canonical external id key is the primary key, so the database's
// uniqueness constraint is the atomic create-only primitive.
type ExternalIDModel struct {
	Key       string `gorm:"primaryKey;size:255"`
	OwnerID   string `gorm:"size:64;not null;index"`
	CreatedAt time.Time
}

func (ExternalIDModel) TableName() string { return "external_ids" }
