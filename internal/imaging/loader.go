package imaging

import (
	"container/list"
	"context"
	"fmt"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"os"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WEBP format decoder

	apperrors "github.com/ironsheep/image-analysis-mcp/internal/errors"
)

// Decoder turns image files into PixelBuffers.
//
// Raster formats are decoded in-process. RAW formats are developed through a
// RawConverter. Decoded buffers are kept in an ImageCache so repeated tool
// calls on the same file skip decoding.
//
// Decoder is safe for concurrent use.
type Decoder struct {
	raw   *RawConverter
	cache *ImageCache
}

// NewDecoder creates a decoder. A nil cache disables caching.
func NewDecoder(raw *RawConverter, cache *ImageCache) *Decoder {
	return &Decoder{raw: raw, cache: cache}
}

// Decode loads path into a PixelBuffer.
//
// processRaw=false makes RAW files fail with RAW_PROCESSING_FAILED so callers
// can opt out of the slow development step.
//
// # Errors
//
//   - UNREADABLE_FILE if the file cannot be opened or stat'd
//   - DECODE_ERROR if raster data is corrupt or of an unknown format
//   - RAW_PROCESSING_FAILED for any RAW development failure
func (d *Decoder) Decode(ctx context.Context, path string, processRaw bool) (*PixelBuffer, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewUnreadableFile(path, err)
	}
	key := cacheKey{path: path, processRaw: processRaw}
	stamp := fileStamp{size: stat.Size(), modTime: stat.ModTime()}

	if d.cache != nil {
		if buf, ok := d.cache.get(key, stamp); ok {
			return buf, nil
		}
	}

	var buf *PixelBuffer
	if IsRaw(path) {
		if !processRaw {
			return nil, apperrors.NewRawProcessingFailed(path, fmt.Errorf("RAW processing disabled"))
		}
		if d.raw == nil {
			return nil, apperrors.NewRawProcessingFailed(path, fmt.Errorf("no RAW converter configured"))
		}
		buf, err = d.raw.Decode(ctx, path)
	} else {
		buf, err = decodeRaster(path)
	}
	if err != nil {
		return nil, err
	}

	if d.cache != nil {
		d.cache.put(key, stamp, buf)
	}
	return buf, nil
}

func decodeRaster(path string) (*PixelBuffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewUnreadableFile(path, err)
	}
	defer f.Close()

	img, err := imaging.Decode(f)
	if err != nil {
		return nil, apperrors.NewDecodeError(path, fmt.Errorf("failed to decode image: %w", err))
	}

	buf, err := FromImage(img)
	if err != nil {
		return nil, apperrors.NewDecodeError(path, err)
	}
	return buf, nil
}

type cacheKey struct {
	path       string
	processRaw bool
}

type fileStamp struct {
	size    int64
	modTime time.Time
}

type cacheEntry struct {
	key   cacheKey
	stamp fileStamp
	buf   *PixelBuffer
}

// ImageCache is a bounded LRU of decoded buffers.
//
// An entry is only returned while the file's size and modification time
// match the values recorded when it was stored; a stale entry is dropped on
// lookup. ImageCache is safe for concurrent use.
type ImageCache struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	entries  map[cacheKey]*list.Element
}

// NewImageCache creates a cache holding at most capacity buffers. A capacity
// of zero or less stores nothing.
func NewImageCache(capacity int) *ImageCache {
	return &ImageCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[cacheKey]*list.Element),
	}
}

// get returns the cached buffer for key if its stamp still matches.
func (c *ImageCache) get(key cacheKey, stamp fileStamp) (*PixelBuffer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	entry := el.Value.(*cacheEntry)
	if entry.stamp.size != stamp.size || !entry.stamp.modTime.Equal(stamp.modTime) {
		c.order.Remove(el)
		delete(c.entries, key)
		return nil, false
	}
	c.order.MoveToFront(el)
	return entry.buf, true
}

// put stores buf, evicting the least recently used entry when full.
func (c *ImageCache) put(key cacheKey, stamp fileStamp, buf *PixelBuffer) {
	if c.capacity <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value = &cacheEntry{key: key, stamp: stamp, buf: buf}
		c.order.MoveToFront(el)
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, stamp: stamp, buf: buf})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

// Len returns the number of cached buffers.
func (c *ImageCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Clear removes all cached buffers.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.order.Init()
	c.entries = make(map[cacheKey]*list.Element)
	c.mu.Unlock()
}
