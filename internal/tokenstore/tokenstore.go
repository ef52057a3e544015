// Package tokenstore provides encrypted key-value storage for auth material
// using AES-256-GCM encryption.
package tokenstore

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/bookclubhq/bookclub/internal/crypto"
	"github.com/bookclubhq/bookclub/internal/entities"
)

// Well-known keys. All auth material lives under these three entries.
const (
	KeyAccessToken  = "auth.access_token"
	KeyRefreshToken = "auth.refresh_token"
	KeyUserID       = "auth.user_id"
)

const (
	// EnvEncryptionKey is the environment variable for the encryption key
	EnvEncryptionKey = "BOOKCLUB_ENCRYPTION_KEY"

	// DefaultKeyFileName is the default name for the key file
	DefaultKeyFileName = ".bookclub-secure-key"
)

// Store provides encrypted storage for the well-known auth keys.
type Store struct {
	db        *gorm.DB
	encryptor *crypto.Encryptor
	ownsDB    bool
}

// Config holds configuration for the token store
type Config struct {
	// DatabasePath is the path to the SQLite database file
	DatabasePath string

	// EncryptionKey is the base64-encoded 32-byte encryption key.
	// If empty, will try to load from environment or key file.
	EncryptionKey string

	// KeyFilePath is the path to the encryption key file.
	// If empty, defaults to ~/.bookclub-secure-key.
	KeyFilePath string
}

// New creates a new Store with the given configuration.
func New(cfg Config) (*Store, error) {
	key, err := resolveEncryptionKey(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve encryption key: %w", err)
	}

	encryptor, err := crypto.NewEncryptorFromBase64(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create encryptor: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store, err := NewWithDB(db, encryptor)
	if err != nil {
		return nil, err
	}
	store.ownsDB = true
	return store, nil
}

// NewWithDB creates a Store over an already-open database connection.
// The caller retains ownership of the connection.
func NewWithDB(db *gorm.DB, encryptor *crypto.Encryptor) (*Store, error) {
	if err := db.AutoMigrate(&entities.SecureItem{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return &Store{db: db, encryptor: encryptor}, nil
}

// resolveEncryptionKey determines the encryption key from various sources
func resolveEncryptionKey(cfg Config) (string, error) {
	// Priority 1: Explicitly provided key
	if cfg.EncryptionKey != "" {
		return cfg.EncryptionKey, nil
	}

	// Priority 2: Environment variable
	if envKey := os.Getenv(EnvEncryptionKey); envKey != "" {
		return envKey, nil
	}

	// Priority 3: Key file
	keyFilePath := cfg.KeyFilePath
	if keyFilePath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		keyFilePath = filepath.Join(homeDir, DefaultKeyFileName)
	}

	if data, err := os.ReadFile(keyFilePath); err == nil {
		return string(data), nil
	}

	// Generate new key and save it with restricted permissions
	newKey, err := crypto.GenerateKey()
	if err != nil {
		return "", fmt.Errorf("failed to generate encryption key: %w", err)
	}
	if err := os.WriteFile(keyFilePath, []byte(newKey), 0600); err != nil {
		return "", fmt.Errorf("failed to save encryption key to %s: %w", keyFilePath, err)
	}

	return newKey, nil
}

// Set encrypts and stores a value under the given key.
func (s *Store) Set(key, value string) error {
	encrypted, err := s.encryptor.Encrypt(value)
	if err != nil {
		return fmt.Errorf("failed to encrypt value for %s: %w", key, err)
	}

	item := entities.SecureItem{Key: key, Value: encrypted}
	if err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&item).Error; err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Get retrieves and decrypts a value. The second return is false when the
// key has never been stored.
func (s *Store) Get(key string) (string, bool, error) {
	var item entities.SecureItem
	err := s.db.First(&item, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}

	value, err := s.encryptor.Decrypt(item.Value)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt %s: %w", key, err)
	}
	return value, true, nil
}

// Delete removes a single key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if err := s.db.Where("key = ?", key).Delete(&entities.SecureItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Clear removes every stored item. Used on sign-out so a later restore can
// never observe a partial credential set.
func (s *Store) Clear() error {
	if err := s.db.Where("1 = 1").Delete(&entities.SecureItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear secure items: %w", err)
	}
	return nil
}

// Close closes the database connection if this store opened it.
func (s *Store) Close() error {
	if !s.ownsDB {
		return nil
	}
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}

// GetKeyFilePath returns the path to the key file being used
func GetKeyFilePath(customPath string) string {
	if customPath != "" {
		return customPath
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return DefaultKeyFileName
	}
	return filepath.Join(homeDir, DefaultKeyFileName)
}
