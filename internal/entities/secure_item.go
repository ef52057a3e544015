package entities

import "time"

// SecureItem is one encrypted key-value row in the token store. Values are
// AES-256-GCM ciphertext, base64-encoded; keys are the well-known names in
// the tokenstore package.
type SecureItem struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     string    `gorm:"type:text" json:"-"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SecureItem) TableName() string { return "secure_items" }
