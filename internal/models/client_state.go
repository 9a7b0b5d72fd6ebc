package models

import "time"

// ClientState is a key-value row in the local widget state store, the
// counterpart of the single browser-storage entry the web widget keeps.
// Today the only key in use is the session key.
type ClientState struct {
	Key       string `gorm:"primaryKey;size:64"`
	Value     string `gorm:"size:256;not null"`
	UpdatedAt time.Time
}
