package hash

import (
	"hash/fnv"
)

// GAV hashes groupId + artifactId + version. Used to detect duplicate
// coordinates in a request without comparing every field.
func GAV(g, a, v string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(g))
	h.Write([]byte("|"))
	h.Write([]byte(a))
	h.Write([]byte("|"))
	h.Write([]byte(v))
	return h.Sum64()
}
