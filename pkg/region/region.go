// Package region implements the on-disk region-file codec: a 32x32 grid
// of chunks per file, a location+timestamp header, and
// per-chunk compressed NBT payloads packed into 4096-byte sectors.
package region

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sync"
	"time"

	"github.com/Tnze/go-mc/nbt"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/StoreStation/blockcore/pkg/chunk"
	"github.com/StoreStation/blockcore/pkg/coords"
)

const (
	sectorSize     = 4096
	tableEntries   = 1024
	headerSectors  = 2 // location table + timestamp table
	locationStart  = 0
	timestampStart = sectorSize
)

// Compression identifies the scheme a chunk payload is packed with.
type Compression uint8

const (
	CompressionGzip         Compression = 1
	CompressionZlib         Compression = 2
	CompressionUncompressed Compression = 3
	CompressionLZ4          Compression = 4
	CompressionZstd         Compression = 5
)

// Region is one open 32x32-chunk region file, guarded by a single-writer /
// multi-reader lock.
type Region struct {
	mu   sync.RWMutex
	f    *os.File
	loc  [tableEntries]uint32 // offset_sectors<<8 | sector_count
	ts   [tableEntries]uint32
	free freeMap // sectors in use beyond the header, for first-fit allocation
}

// Open loads an existing region file or creates a new empty one at path.
func Open(path string, compression Compression) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, wrap(KindIoError, err)
	}
	r := &Region{f: f}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, wrap(KindIoError, err)
	}
	if info.Size() == 0 {
		if err := r.writeEmptyHeader(); err != nil {
			f.Close()
			return nil, err
		}
		r.free = newFreeMap()
		return r, nil
	}
	if info.Size() < headerSectors*sectorSize {
		f.Close()
		return nil, wrapf(KindInvalidHeader, "region file %s shorter than its header", path)
	}
	if err := r.readHeader(info.Size()); err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

func (r *Region) writeEmptyHeader() error {
	buf := make([]byte, headerSectors*sectorSize)
	if _, err := r.f.WriteAt(buf, 0); err != nil {
		return wrap(KindIoError, err)
	}
	return nil
}

func (r *Region) readHeader(fileSize int64) error {
	buf := make([]byte, headerSectors*sectorSize)
	if _, err := r.f.ReadAt(buf, 0); err != nil {
		return wrap(KindInvalidHeader, err)
	}
	sectorCount := fileSize / sectorSize
	r.free = newFreeMapWithCapacity(int(sectorCount))

	for i := 0; i < tableEntries; i++ {
		r.loc[i] = binary.BigEndian.Uint32(buf[locationStart+4*i:])
		r.ts[i] = binary.BigEndian.Uint32(buf[timestampStart+4*i:])
		if r.loc[i] == 0 {
			continue
		}
		offset, count := splitLocation(r.loc[i])
		if int64(offset+count) > sectorCount {
			return wrapf(KindRegionInvalid, "entry %d references sectors beyond EOF", i)
		}
		r.free.markUsed(int(offset), int(count))
	}
	return nil
}

func splitLocation(v uint32) (offsetSectors, sectorCount uint32) {
	return v >> 8, v & 0xFF
}

func joinLocation(offsetSectors, sectorCount uint32) uint32 {
	return offsetSectors<<8 | (sectorCount & 0xFF)
}

func tableIndex(localIndex int) int { return localIndex }

// Read decodes the chunk at coord, or a Kind-tagged *Error (ChunkNotExist,
// Compression, ParseError, ...).
func (r *Region) Read(coord coords.ChunkCoord) (*chunk.Chunk, error) {
	_, localIndex := coord.RegionOf()

	r.mu.RLock()
	loc := r.loc[tableIndex(localIndex)]
	r.mu.RUnlock()

	if loc == 0 {
		return nil, wrap(KindChunkNotExist, nil)
	}
	offset, count := splitLocation(loc)

	buf := make([]byte, int(count)*sectorSize)
	if _, err := r.f.ReadAt(buf, int64(offset)*sectorSize); err != nil {
		return nil, wrap(KindIoError, err)
	}

	length := binary.BigEndian.Uint32(buf[:4])
	if length == 0 || int(length) > len(buf)-4 {
		return nil, wrapf(KindParseError, "payload length %d out of range", length)
	}
	compID := Compression(buf[4])
	payload := buf[5 : 4+length]

	raw, err := decompress(compID, payload)
	if err != nil {
		return nil, err
	}

	var nc nbtChunk
	if err := nbt.Unmarshal(raw, &nc); err != nil {
		return nil, wrap(KindParseError, err)
	}
	return decodeChunk(nc), nil
}

// Write encodes c and stores it at its chunk coordinate, choosing the
// smallest free sector run that fits (reusing the existing run in place
// when possible) and updating the location and timestamp tables last, so a
// crash mid-write never leaves a dangling location-table pointer.
func (r *Region) Write(c *chunk.Chunk, compression Compression, now time.Time) error {
	encoded, err := encodeAndCompress(c, compression)
	if err != nil {
		return err
	}
	padded := padTo(encoded, sectorSize)
	sectorsNeeded := len(padded) / sectorSize

	_, localIndex := c.Coord.RegionOf()

	r.mu.Lock()
	defer r.mu.Unlock()

	idx := tableIndex(localIndex)
	prevLoc := r.loc[idx]
	var offset int
	if prevLoc != 0 {
		prevOffset, prevCount := splitLocation(prevLoc)
		if int(prevCount) >= sectorsNeeded {
			offset = int(prevOffset)
			r.free.markFree(int(prevOffset)+sectorsNeeded, int(prevCount)-sectorsNeeded)
		} else {
			r.free.markFree(int(prevOffset), int(prevCount))
			offset = r.free.allocate(sectorsNeeded)
		}
	} else {
		offset = r.free.allocate(sectorsNeeded)
	}

	if _, err := r.f.WriteAt(padded, int64(offset)*sectorSize); err != nil {
		return wrap(KindIoError, err)
	}

	r.loc[idx] = joinLocation(uint32(offset), uint32(sectorsNeeded))
	r.ts[idx] = uint32(now.Unix())
	return r.flushHeaderEntry(idx)
}

// Free zeros the location entry for coord, making its sectors reusable.
func (r *Region) Free(coord coords.ChunkCoord) error {
	_, localIndex := coord.RegionOf()
	idx := tableIndex(localIndex)

	r.mu.Lock()
	defer r.mu.Unlock()

	loc := r.loc[idx]
	if loc == 0 {
		return nil
	}
	offset, count := splitLocation(loc)
	r.free.markFree(int(offset), int(count))
	r.loc[idx] = 0
	r.ts[idx] = 0
	return r.flushHeaderEntry(idx)
}

func (r *Region) flushHeaderEntry(idx int) error {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], r.loc[idx])
	if _, err := r.f.WriteAt(buf[:], int64(locationStart+4*idx)); err != nil {
		return wrap(KindIoError, err)
	}
	binary.BigEndian.PutUint32(buf[:], r.ts[idx])
	if _, err := r.f.WriteAt(buf[:], int64(timestampStart+4*idx)); err != nil {
		return wrap(KindIoError, err)
	}
	return nil
}

// Close flushes and releases the underlying file handle.
func (r *Region) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.f.Close()
}

func padTo(b []byte, multiple int) []byte {
	rem := len(b) % multiple
	if rem == 0 {
		return b
	}
	return append(b, make([]byte, multiple-rem)...)
}

func encodeAndCompress(c *chunk.Chunk, compression Compression) ([]byte, error) {
	nc := encodeChunk(c)
	raw, err := nbt.Marshal(nc)
	if err != nil {
		return nil, wrap(KindParseError, err)
	}

	compressed, err := compress(compression, raw)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 4+1+len(compressed))
	binary.BigEndian.PutUint32(out[:4], uint32(1+len(compressed)))
	out[4] = byte(compression)
	copy(out[5:], compressed)
	return out, nil
}

func compress(c Compression, raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch c {
	case CompressionGzip:
		w := gzip.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, wrap(KindCompression, err)
		}
		if err := w.Close(); err != nil {
			return nil, wrap(KindCompression, err)
		}
	case CompressionZlib:
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, wrap(KindCompression, err)
		}
		if err := w.Close(); err != nil {
			return nil, wrap(KindCompression, err)
		}
	case CompressionUncompressed:
		return raw, nil
	case CompressionLZ4:
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(raw); err != nil {
			return nil, wrap(KindCompression, err)
		}
		if err := w.Close(); err != nil {
			return nil, wrap(KindCompression, err)
		}
	case CompressionZstd:
		w, err := zstd.NewWriter(&buf)
		if err != nil {
			return nil, wrap(KindCompression, err)
		}
		if _, err := w.Write(raw); err != nil {
			return nil, wrap(KindCompression, err)
		}
		if err := w.Close(); err != nil {
			return nil, wrap(KindCompression, err)
		}
	default:
		return nil, wrapf(KindCompression, "unknown compression id %d", c)
	}
	return buf.Bytes(), nil
}

func decompress(c Compression, payload []byte) ([]byte, error) {
	switch c {
	case CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, wrap(KindCompression, err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, wrap(KindCompression, err)
		}
		return out, nil
	case CompressionZlib:
		r, err := zlib.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, wrap(KindCompression, err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, wrap(KindCompression, err)
		}
		return out, nil
	case CompressionUncompressed:
		return payload, nil
	case CompressionLZ4:
		r := lz4.NewReader(bytes.NewReader(payload))
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, wrap(KindCompression, err)
		}
		return out, nil
	case CompressionZstd:
		r, err := zstd.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, wrap(KindCompression, err)
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, wrap(KindCompression, err)
		}
		return out, nil
	default:
		return nil, wrapf(KindCompression, "unknown compression id %d", c)
	}
}
