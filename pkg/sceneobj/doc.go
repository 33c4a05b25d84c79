// Package sceneobj encodes one airport's finished mesh -- vertex,
// normal, and texture-coordinate arrays plus grouped point/triangle/
// strip index sets -- to a binary scenery object file.
//
// The legacy consumer's exact magic number and section tags are out of
// scope here (no real consumer binary exists in this exercise); instead
// Encode writes its own stable tagged-record layout, zstd-compressed:
//
//	magic   "GAOB" (4 bytes)
//	version uint32
//	center  3 x float64 (bounding-sphere center, ECEF meters)
//	radius  float64     (bounding-sphere radius, meters)
//	vertex, normal, texcoord arrays (length-prefixed float64 triples/pairs)
//	group count, then per group: material string, kind byte
//	(point/triangle/strip), index count, indices (uint32)
//
// Decode reads the same layout back, so a round trip through Encode/
// Decode reproduces every field byte-for-byte (modulo float64 exactness).
package sceneobj
