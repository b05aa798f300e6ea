package world

import (
	"image/color"

	"github.com/cespare/xxhash/v2"
	"github.com/go-gl/mathgl/mgl32"
)

// InstancedMesh is the external collaborator that owns a GPU instance
// buffer for one instanced-sprite block kind (e.g. grass tufts). Chunks
// reserve and release slots in it as their content changes. Positions are
// world-space, block-center offsets.
type InstancedMesh interface {
	AddInstance(pos mgl32.Vec3) InstanceHandle
	RemoveInstance(h InstanceHandle)
}

// InstanceHandle is an opaque slot reservation returned by InstancedMesh.
type InstanceHandle any

// BlockDef is the registry's record for one registered block kind: either a
// face-based block (Faces holds up to six MaterialIDs, possibly
// NoMaterial) or an instanced-sprite block (InstancedMesh non-nil, all
// Faces set to NoMaterial).
type BlockDef struct {
	Solid         bool
	Opaque        bool
	Faces         [faceCount]MaterialID
	InstancedMesh InstancedMesh
}

// Registry is the flat block/material table consulted by the mesher and by
// picking/overlay code. Block 0 (empty) and block 1 (unknown) are reserved
// and never returned by Add*.
type Registry struct {
	materials []Material
	byName    map[string]MaterialID

	blocks []BlockDef
}

// NewRegistry returns an empty Registry with blocks 0 (empty) and 1
// (unknown) pre-reserved.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]MaterialID),
		blocks: []BlockDef{
			{}, // Empty
			{}, // Unknown
		},
	}
}

// AddMaterialOfColor registers a flat-color material and returns its ID.
func (r *Registry) AddMaterialOfColor(name string, rgba color.RGBA, liquid bool) (MaterialID, error) {
	return r.addMaterial(Material{Name: name, Color: rgba, Liquid: liquid})
}

// AddMaterialOfTexture registers a textured material and returns its ID.
func (r *Registry) AddMaterialOfTexture(name string, tex TextureHandle, rgba color.RGBA, alphaTest bool, liquid bool) (MaterialID, error) {
	return r.addMaterial(Material{
		Name:    name,
		Color:   rgba,
		Liquid:  liquid,
		Texture: &Texture{Handle: tex, AlphaTest: alphaTest},
	})
}

func (r *Registry) addMaterial(m Material) (MaterialID, error) {
	if m.Name == "" {
		return 0, configErrorf("add_material", "material name must not be empty")
	}
	if _, ok := r.byName[m.Name]; ok {
		return 0, configErrorf("add_material", "duplicate material name %q", m.Name)
	}
	m.nameHash = xxhash.Sum64String(m.Name)
	id := MaterialID(len(r.materials))
	r.materials = append(r.materials, m)
	r.byName[m.Name] = id
	return id, nil
}

// MaterialByName looks up a registered material by name.
func (r *Registry) MaterialByName(name string) (MaterialID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Material returns the material registered under id. It panics if id is out
// of range, since material IDs only ever come from this Registry.
func (r *Registry) Material(id MaterialID) Material {
	return r.materials[id]
}

// AddBlock expands a 1/2/3/6-entry material-name shorthand into the six
// face materials and registers a face-based block. Shorthand conventions:
//
//	1 name:  all six faces share the material
//	2 names: [top&bottom, sides]
//	3 names: [top, bottom, sides]
//	6 names: [+x, -x, +y, -y, +z, -z] explicit, in that order
func (r *Registry) AddBlock(materialNames []string, solid bool) (BlockID, error) {
	var faces [faceCount]MaterialID
	switch len(materialNames) {
	case 1:
		id, err := r.resolve(materialNames[0])
		if err != nil {
			return 0, err
		}
		for i := range faces {
			faces[i] = id
		}
	case 2:
		top, err := r.resolve(materialNames[0])
		if err != nil {
			return 0, err
		}
		side, err := r.resolve(materialNames[1])
		if err != nil {
			return 0, err
		}
		faces[FacePosY], faces[FaceNegY] = top, top
		faces[FacePosX], faces[FaceNegX], faces[FacePosZ], faces[FaceNegZ] = side, side, side, side
	case 3:
		top, err := r.resolve(materialNames[0])
		if err != nil {
			return 0, err
		}
		bottom, err := r.resolve(materialNames[1])
		if err != nil {
			return 0, err
		}
		side, err := r.resolve(materialNames[2])
		if err != nil {
			return 0, err
		}
		faces[FacePosY], faces[FaceNegY] = top, bottom
		faces[FacePosX], faces[FaceNegX], faces[FacePosZ], faces[FaceNegZ] = side, side, side, side
	case 6:
		for i, name := range materialNames {
			id, err := r.resolve(name)
			if err != nil {
				return 0, err
			}
			faces[i] = id
		}
	default:
		return 0, configErrorf("add_block", "unexpected material-name count %d (want 1, 2, 3 or 6)", len(materialNames))
	}

	opaque := true
	for _, f := range faces {
		if f == NoMaterial {
			opaque = false
			continue
		}
		if !r.materials[f].opaque() {
			opaque = false
		}
	}

	id := BlockID(len(r.blocks))
	r.blocks = append(r.blocks, BlockDef{Solid: solid, Opaque: opaque, Faces: faces})
	return id, nil
}

// AddBlockMesh registers an instanced-sprite block: one with no face
// materials, rendered instead through an externally-owned InstancedMesh.
func (r *Registry) AddBlockMesh(mesh InstancedMesh, solid bool) (BlockID, error) {
	if mesh == nil {
		return 0, configErrorf("add_block_mesh", "instanced mesh must not be nil")
	}
	var faces [faceCount]MaterialID
	for i := range faces {
		faces[i] = NoMaterial
	}
	id := BlockID(len(r.blocks))
	r.blocks = append(r.blocks, BlockDef{Solid: solid, Opaque: false, Faces: faces, InstancedMesh: mesh})
	return id, nil
}

func (r *Registry) resolve(name string) (MaterialID, error) {
	id, ok := r.byName[name]
	if !ok {
		return 0, configErrorf("add_block", "unknown material %q", name)
	}
	return id, nil
}

// Block returns the definition registered under id. Empty and Unknown both
// resolve to the zero BlockDef (non-solid, non-opaque, no faces).
func (r *Registry) Block(id BlockID) BlockDef {
	if int(id) >= len(r.blocks) {
		return BlockDef{}
	}
	return r.blocks[id]
}
