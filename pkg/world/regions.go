package world

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/StoreStation/blockcore/pkg/coords"
	"github.com/StoreStation/blockcore/pkg/region"
)

// regionStore lazily opens and caches one *region.Region per RegionCoord
// under a world save directory, following the "region/r.X.Z.mca" naming
// convention. Region files, once opened, stay open for the façade's
// lifetime; Close releases every handle.
type regionStore struct {
	dir         string
	compression region.Compression

	mu   sync.Mutex
	open map[coords.RegionCoord]*region.Region
}

func newRegionStore(dir string, compression region.Compression) *regionStore {
	return &regionStore{
		dir:         dir,
		compression: compression,
		open:        make(map[coords.RegionCoord]*region.Region),
	}
}

func (s *regionStore) get(rc coords.RegionCoord) (*region.Region, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.open[rc]; ok {
		return r, nil
	}
	path := filepath.Join(s.dir, fmt.Sprintf("r.%d.%d.mca", rc.X, rc.Z))
	r, err := region.Open(path, s.compression)
	if err != nil {
		return nil, err
	}
	s.open[rc] = r
	return r, nil
}

// closeAll releases every open region file handle.
func (s *regionStore) closeAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var first error
	for rc, r := range s.open {
		if err := r.Close(); err != nil && first == nil {
			first = err
		}
		delete(s.open, rc)
	}
	return first
}
