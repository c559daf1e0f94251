package scene

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"

	"github.com/mirphak/prpexport/utils"
)

// LoadGLTF reads a glTF/glb file and maps it onto the scene model. The page
// of every object defaults to the file's base name.
func LoadGLTF(path string) (*Scene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open gltf %q", path)
	}
	page := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return FromGLTF(doc, filepath.Dir(path), page)
}

// FromGLTF converts an already-parsed document. baseDir resolves image URIs
// that are not embedded in a buffer.
func FromGLTF(doc *gltf.Document, baseDir, page string) (*Scene, error) {
	sc := NewScene(page)

	images := make([]*Image, len(doc.Images))
	for i, gi := range doc.Images {
		img, err := decodeGLTFImage(doc, gi, baseDir)
		if err != nil {
			return nil, err
		}
		images[i] = img
	}

	mats := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		m, err := materialFromGLTF(doc, gm, images)
		if err != nil {
			return nil, err
		}
		mats[i] = m
	}

	for _, node := range doc.Nodes {
		if node.Mesh == nil {
			continue
		}
		gm := doc.Meshes[*node.Mesh]

		mesh := &Mesh{}
		uvSeen := make(map[string]bool)
		matSeen := make(map[*Material]bool)
		for _, prim := range gm.Primitives {
			for attr := range prim.Attributes {
				if strings.HasPrefix(attr, "TEXCOORD_") && !uvSeen[attr] {
					uvSeen[attr] = true
					mesh.UVLayers = append(mesh.UVLayers, UVLayer{Name: attr})
				}
			}
			if prim.Material != nil {
				if m := mats[*prim.Material]; !matSeen[m] {
					matSeen[m] = true
					mesh.Materials = append(mesh.Materials, m)
				}
			}
		}

		name := node.Name
		if name == "" {
			name = gm.Name
		}
		sc.AddObject(&Object{
			Name: name,
			Page: page,
			Location: mgl32.Vec3{
				float32(node.Translation[0]),
				float32(node.Translation[1]),
				float32(node.Translation[2]),
			},
			Mesh: mesh,
		})
	}

	return sc, nil
}

func materialFromGLTF(doc *gltf.Document, gm *gltf.Material, images []*Image) (*Material, error) {
	m := NewMaterial(gm.Name)

	useAlpha := gm.AlphaMode == gltf.AlphaBlend || gm.AlphaMode == gltf.AlphaMask

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			m.DiffuseColor = utils.NewColorFloatA(pbr.BaseColorFactor[:])
		}
		if pbr.BaseColorTexture != nil {
			tex, err := textureFromGLTF(doc, pbr.BaseColorTexture.Index, images, useAlpha)
			if err != nil {
				return nil, errors.Wrapf(err, "material %q", gm.Name)
			}
			slot := NewTextureSlot(tex.Name, tex)
			slot.UVLayer = fmt.Sprintf("TEXCOORD_%d", pbr.BaseColorTexture.TexCoord)
			m.TextureSlots = append(m.TextureSlots, slot)
		}
	}

	if gm.EmissiveTexture != nil {
		tex, err := textureFromGLTF(doc, gm.EmissiveTexture.Index, images, false)
		if err != nil {
			return nil, errors.Wrapf(err, "material %q", gm.Name)
		}
		slot := NewTextureSlot(tex.Name, tex)
		slot.UVLayer = fmt.Sprintf("TEXCOORD_%d", gm.EmissiveTexture.TexCoord)
		slot.Blend = BlendAdd
		m.TextureSlots = append(m.TextureSlots, slot)
	}

	return m, nil
}

func textureFromGLTF(doc *gltf.Document, texIndex uint32, images []*Image, useAlpha bool) (*Texture, error) {
	gt := doc.Textures[texIndex]
	if gt.Source == nil {
		return nil, errors.Errorf("texture %d has no image source", texIndex)
	}
	img := images[*gt.Source]

	name := gt.Name
	if name == "" {
		name = img.Name
	}
	tex := NewTexture(name, TextureImage)
	tex.Image = img
	tex.UseAlpha = useAlpha && img.Channels == 4
	tex.UseMipmap = true

	if gt.Sampler != nil {
		s := doc.Samplers[*gt.Sampler]
		if s.WrapS == gltf.WrapClampToEdge || s.WrapT == gltf.WrapClampToEdge {
			tex.Extension = ExtendClip
		}
		// nearest min filters author away the mip chain
		if s.MinFilter == gltf.MinNearest || s.MinFilter == gltf.MinLinear {
			tex.UseMipmap = false
		}
	}

	return tex, nil
}

func decodeGLTFImage(doc *gltf.Document, gi *gltf.Image, baseDir string) (*Image, error) {
	var data []byte
	switch {
	case gi.BufferView != nil:
		bv := doc.BufferViews[*gi.BufferView]
		buf := doc.Buffers[bv.Buffer]
		if int(bv.ByteOffset+bv.ByteLength) > len(buf.Data) {
			return nil, errors.Errorf("image %q buffer view out of range", gi.Name)
		}
		data = buf.Data[bv.ByteOffset : bv.ByteOffset+bv.ByteLength]
	case gi.URI != "":
		var err error
		data, err = os.ReadFile(filepath.Join(baseDir, gi.URI))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read image %q", gi.URI)
		}
	default:
		return nil, errors.Errorf("image %q has neither buffer view nor uri", gi.Name)
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image %q", gi.Name)
	}

	name := gi.Name
	if name == "" {
		name = gi.URI
	}

	channels := 3
	if hasTranslucentPixel(decoded) {
		channels = 4
	}
	return NewImage(name, decoded, channels, channels == 4), nil
}

func hasTranslucentPixel(img image.Image) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
				return true
			}
		}
	}
	return false
}
