// Package filecache persists the published accessory set next to the session
// file.
package filecache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/jrsteele09/smartrent-bridge/accessories"
	"github.com/jrsteele09/smartrent-bridge/sessions/filestore"
)

const FileName = "accessories.json"

var _ accessories.Cache = (*Cache)(nil)

type Cache struct {
	path string
}

// New returns a cache for <storageRoot>/smartrent/accessories.json.
func New(storageRoot string) *Cache {
	return &Cache{path: filepath.Join(storageRoot, filestore.DirName, FileName)}
}

func (c *Cache) Path() string {
	return c.path
}

func (c *Cache) Load() ([]accessories.CachedAccessory, error) {
	b, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read accessory cache: %w", err)
	}
	var out []accessories.CachedAccessory
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode accessory cache %s: %w", c.path, err)
	}
	return out, nil
}

func (c *Cache) Save(list []accessories.CachedAccessory) error {
	if list == nil {
		list = []accessories.CachedAccessory{}
	}
	b, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("encode accessory cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("mkdir accessory cache dir: %w", err)
	}
	if err := atomic.WriteFile(c.path, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write accessory cache: %w", err)
	}
	return nil
}
