package sceneobj

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"
)

const (
	magic   = "GAOB"
	version = uint32(1)
)

// GroupKind distinguishes how a group's indices are consumed by the
// renderer: a flat list of point lights, an index-per-3 triangle list,
// or a triangle strip.
type GroupKind byte

const (
	KindPoints GroupKind = iota
	KindTriangles
	KindStrip
)

// Group is one material-tagged index set -- a light-point cloud
// (KindPoints), a pavement/base/skirt triangle mesh (KindTriangles), or
// a triangle strip (KindStrip).
type Group struct {
	Material string
	Kind     GroupKind
	Indices  []uint32
}

// Object is the complete, elevation-lifted mesh for one airport, ready
// to be written to its bucket path.
type Object struct {
	Center   [3]float64 // bounding-sphere center, ECEF meters
	Radius   float64    // bounding-sphere radius, meters
	Vertices [][3]float64
	Normals  [][3]float64
	TexCoord [][2]float64
	Groups   []Group
}

// Encode writes o to w in the tagged-record layout doc.go describes,
// zstd-compressed.
func Encode(w io.Writer, o Object) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("sceneobj: %w", err)
	}
	defer zw.Close()

	bw := bufio.NewWriter(zw)
	if _, err := bw.WriteString(magic); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, version); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, o.Center); err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, o.Radius); err != nil {
		return err
	}

	if err := writeVec3Array(bw, o.Vertices); err != nil {
		return err
	}
	if err := writeVec3Array(bw, o.Normals); err != nil {
		return err
	}
	if err := writeVec2Array(bw, o.TexCoord); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, uint32(len(o.Groups))); err != nil {
		return err
	}
	for _, g := range o.Groups {
		if err := writeString(bw, g.Material); err != nil {
			return err
		}
		if err := bw.WriteByte(byte(g.Kind)); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, uint32(len(g.Indices))); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, g.Indices); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func writeVec3Array(w io.Writer, vs [][3]float64) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(vs))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, vs)
}

func writeVec2Array(w io.Writer, vs [][2]float64) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(vs))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, vs)
}

// Decode reads an Object back from r, the inverse of Encode.
func Decode(r io.Reader) (Object, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return Object{}, fmt.Errorf("sceneobj: %w", err)
	}
	defer zr.Close()

	var got [4]byte
	if _, err := io.ReadFull(zr, got[:]); err != nil {
		return Object{}, fmt.Errorf("sceneobj: reading magic: %w", err)
	}
	if string(got[:]) != magic {
		return Object{}, fmt.Errorf("sceneobj: bad magic %q", got)
	}
	var ver uint32
	if err := binary.Read(zr, binary.LittleEndian, &ver); err != nil {
		return Object{}, err
	}

	var o Object
	if err := binary.Read(zr, binary.LittleEndian, &o.Center); err != nil {
		return Object{}, err
	}
	if err := binary.Read(zr, binary.LittleEndian, &o.Radius); err != nil {
		return Object{}, err
	}
	var err2 error
	if o.Vertices, err2 = readVec3Array(zr); err2 != nil {
		return Object{}, err2
	}
	if o.Normals, err2 = readVec3Array(zr); err2 != nil {
		return Object{}, err2
	}
	if o.TexCoord, err2 = readVec2Array(zr); err2 != nil {
		return Object{}, err2
	}

	var groupCount uint32
	if err := binary.Read(zr, binary.LittleEndian, &groupCount); err != nil {
		return Object{}, err
	}
	o.Groups = make([]Group, groupCount)
	for i := range o.Groups {
		mat, err := readString(zr)
		if err != nil {
			return Object{}, err
		}
		var kind byte
		if err := binary.Read(zr, binary.LittleEndian, &kind); err != nil {
			return Object{}, err
		}
		var n uint32
		if err := binary.Read(zr, binary.LittleEndian, &n); err != nil {
			return Object{}, err
		}
		indices := make([]uint32, n)
		if err := binary.Read(zr, binary.LittleEndian, indices); err != nil {
			return Object{}, err
		}
		o.Groups[i] = Group{Material: mat, Kind: GroupKind(kind), Indices: indices}
	}
	return o, nil
}

func readString(r io.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func readVec3Array(r io.Reader) ([][3]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	vs := make([][3]float64, n)
	if err := binary.Read(r, binary.LittleEndian, vs); err != nil {
		return nil, err
	}
	return vs, nil
}

func readVec2Array(r io.Reader) ([][2]float64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	vs := make([][2]float64, n)
	if err := binary.Read(r, binary.LittleEndian, vs); err != nil {
		return nil, err
	}
	return vs, nil
}

// BoundingSphere computes the smallest sphere centered at the centroid
// of verts that contains every vertex: the written radius is always
// >= the max center-to-vertex distance.
func BoundingSphere(verts [][3]float64) (center [3]float64, radius float64) {
	if len(verts) == 0 {
		return center, 0
	}
	for _, v := range verts {
		center[0] += v[0]
		center[1] += v[1]
		center[2] += v[2]
	}
	n := float64(len(verts))
	center[0] /= n
	center[1] /= n
	center[2] /= n

	for _, v := range verts {
		dx, dy, dz := v[0]-center[0], v[1]-center[1], v[2]-center[2]
		d := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if d > radius {
			radius = d
		}
	}
	return center, radius
}
