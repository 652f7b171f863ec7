package scene

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"scene-editor/core"
	"scene-editor/math"
)

type objRef struct{ v, vt, vn int }

type objGroup struct {
	name     string
	material string
	tris     [][3]objRef
}

// loadOBJ parses a Wavefront file into one mesh per object or group. The
// diffuse map (map_Kd) of each group's material is loaded when present.
func loadOBJ(path string, log *slog.Logger) ([]*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open obj %q: %w", path, err)
	}
	defer f.Close()

	dir := filepath.Dir(path)
	groups, pools, libs, err := parseOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parse obj %q: %w", path, err)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("no geometry found in %q", path)
	}

	diffuse := map[string]string{}
	for _, lib := range libs {
		maps, err := readMTLDiffuse(filepath.Join(dir, lib))
		if err != nil {
			log.Warn("mtl skipped", "file", lib, "err", err)
			continue
		}
		for k, v := range maps {
			diffuse[k] = v
		}
	}

	images := map[string]*Image{}
	meshes := make([]*Mesh, 0, len(groups))
	for _, g := range groups {
		mesh := &Mesh{Name: g.name, Data: pools.build(g.tris)}
		if file, ok := diffuse[g.material]; ok {
			img, seen := images[file]
			if !seen {
				img, err = LoadImage(filepath.Join(dir, file))
				if err != nil {
					log.Warn("diffuse map skipped", "file", file, "err", err)
				}
				images[file] = img
			}
			mesh.Diffuse = img
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

type objPools struct {
	positions []math.Vec3
	normals   []math.Vec3
	uvs       []math.Vec2
}

func parseOBJ(r io.Reader) ([]objGroup, *objPools, []string, error) {
	pools := &objPools{}
	var groups []objGroup
	var libs []string
	cur := objGroup{name: "default"}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) >= 4 {
				pools.positions = append(pools.positions, parseVec3(fields[1:4]))
			}
		case "vn":
			if len(fields) >= 4 {
				pools.normals = append(pools.normals, parseVec3(fields[1:4]))
			}
		case "vt":
			if len(fields) >= 3 {
				u, _ := strconv.ParseFloat(fields[1], 32)
				v, _ := strconv.ParseFloat(fields[2], 32)
				pools.uvs = append(pools.uvs, math.Vec2{X: float32(u), Y: float32(v)})
			}
		case "o", "g":
			if len(cur.tris) > 0 {
				groups = append(groups, cur)
			}
			cur = objGroup{name: "default", material: cur.material}
			if len(fields) > 1 {
				cur.name = fields[1]
			}
		case "usemtl":
			if len(fields) > 1 {
				cur.material = fields[1]
			}
		case "mtllib":
			libs = append(libs, fields[1:]...)
		case "f":
			if len(fields) < 4 {
				continue
			}
			refs := make([]objRef, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				refs = append(refs, pools.ref(tok))
			}
			// fan triangulation
			for i := 1; i+1 < len(refs); i++ {
				cur.tris = append(cur.tris, [3]objRef{refs[0], refs[i], refs[i+1]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, nil, err
	}
	if len(cur.tris) > 0 {
		groups = append(groups, cur)
	}
	return groups, pools, libs, nil
}

func parseVec3(f []string) math.Vec3 {
	x, _ := strconv.ParseFloat(f[0], 32)
	y, _ := strconv.ParseFloat(f[1], 32)
	z, _ := strconv.ParseFloat(f[2], 32)
	return math.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}
}

// ref parses "v", "v/vt", "v//vn" or "v/vt/vn" into 0-based indices, -1 when
// absent. Negative indices count back from the current end of each pool.
func (p *objPools) ref(tok string) objRef {
	parts := strings.Split(tok, "/")
	idx := func(i, poolLen int) int {
		if i >= len(parts) || parts[i] == "" {
			return -1
		}
		n, err := strconv.Atoi(parts[i])
		switch {
		case err != nil:
			return -1
		case n < 0:
			return poolLen + n
		default:
			return n - 1
		}
	}
	return objRef{
		v:  idx(0, len(p.positions)),
		vt: idx(1, len(p.uvs)),
		vn: idx(2, len(p.normals)),
	}
}

// build deduplicates vertices shared between triangles.
func (p *objPools) build(tris [][3]objRef) core.MeshData {
	var data core.MeshData
	seen := map[objRef]uint32{}
	for _, tri := range tris {
		for _, r := range tri {
			if idx, ok := seen[r]; ok {
				data.Indices = append(data.Indices, idx)
				continue
			}
			v := core.Vertex{Normal: math.Vec3Up}
			if r.v >= 0 && r.v < len(p.positions) {
				v.Position = p.positions[r.v]
			}
			if r.vn >= 0 && r.vn < len(p.normals) {
				v.Normal = p.normals[r.vn]
			}
			if r.vt >= 0 && r.vt < len(p.uvs) {
				v.UV = p.uvs[r.vt]
			}
			idx := uint32(len(data.Vertices))
			data.Vertices = append(data.Vertices, v)
			seen[r] = idx
			data.Indices = append(data.Indices, idx)
		}
	}
	if len(p.normals) == 0 {
		smoothNormals(data)
	}
	return data
}

// smoothNormals writes area-weighted vertex normals.
func smoothNormals(data core.MeshData) {
	acc := make([]math.Vec3, len(data.Vertices))
	for i := 0; i+2 < len(data.Indices); i += 3 {
		a, b, c := data.Indices[i], data.Indices[i+1], data.Indices[i+2]
		p0 := data.Vertices[a].Position
		n := data.Vertices[b].Position.Sub(p0).Cross(data.Vertices[c].Position.Sub(p0))
		acc[a], acc[b], acc[c] = acc[a].Add(n), acc[b].Add(n), acc[c].Add(n)
	}
	for i := range data.Vertices {
		if acc[i] != math.Vec3Zero {
			data.Vertices[i].Normal = acc[i].Normalize()
		}
	}
}

// readMTLDiffuse returns material name -> map_Kd file.
func readMTLDiffuse(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := map[string]string{}
	cur := ""
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "newmtl":
			cur = fields[1]
		case "map_Kd":
			if cur != "" {
				// the file name is the last token; earlier ones are options
				out[cur] = fields[len(fields)-1]
			}
		}
	}
	return out, sc.Err()
}
