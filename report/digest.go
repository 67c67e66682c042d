package report

import (
	"sort"
	"strings"

	"github.com/minio/highwayhash"
)

// digestKey is fixed rather than random: two runs over the same source
// tree must produce the same digest, so a caller (or a CI step) can diff
// digests across commits instead of diffing full YAML bodies.
var digestKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// Digest returns a stable content hash of the report: same roots, same
// live set, same digest, regardless of the map/slice iteration order that
// produced them (roots are hashed in sorted order). Two reports with
// different digests are guaranteed to differ in substance; equal digests
// mean equal content, barring a 64-bit hash collision.
func (r *Report) Digest() (uint64, error) {
	hash, err := highwayhash.New64(digestKey)
	if err != nil {
		return 0, err
	}

	roots := append([]string(nil), r.Roots...)
	sort.Strings(roots)
	var b strings.Builder
	for _, root := range roots {
		b.WriteString(root)
		b.WriteByte('\n')
	}
	b.WriteByte('\x00')
	for _, fn := range r.Live {
		b.WriteString(fn.Label)
		b.WriteByte('\n')
	}

	if _, err := hash.Write([]byte(b.String())); err != nil {
		return 0, err
	}
	return hash.Sum64(), nil
}
