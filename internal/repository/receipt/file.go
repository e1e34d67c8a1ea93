package receipt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/toolstand/toolstand/internal/config"
	"github.com/toolstand/toolstand/internal/domain/toolchain"
)

// Filename is the receipt file kept under the install root.
const Filename = "toolstand-receipts.json"

// Repository defines persistence operations for install receipts.
type Repository interface {
	Load(ctx context.Context) (toolchain.Receipts, error)
	Save(ctx context.Context, receipts toolchain.Receipts) error
}

// FileRepository persists install receipts to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON receipt file.
	path string
	// mu protects concurrent access to the receipt file.
	mu sync.Mutex
}

// ErrNotFound is returned when the receipt file does not exist yet.
var ErrNotFound = errors.New("receipts not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// DefaultPath returns the conventional receipt location under the install root.
func DefaultPath(installRoot string) string {
	return filepath.Join(installRoot, Filename)
}

// Load reads the receipts from disk.
func (r *FileRepository) Load(_ context.Context) (toolchain.Receipts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read receipt file: %w", err)
	}

	var receipts toolchain.Receipts
	if err = json.Unmarshal(contents, &receipts); err != nil {
		return nil, fmt.Errorf("decode receipt file: %w", err)
	}

	return receipts, nil
}

// Save writes the receipts to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, receipts toolchain.Receipts) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(receipts, "", "  ")
	if err != nil {
		return fmt.Errorf("encode receipts: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write receipt file: %w", err)
	}

	return nil
}
