package plasma

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mirphak/prpexport/config"
	"github.com/mirphak/prpexport/utils"
)

// Page file layout (all little-endian):
//   u32 magic, u32 format version, u32 engine version, str page name,
//   u32 object count, then per object: u16 type, str name, u32 payload
//   size, payload bytes. Strings are u16 length + bytes. Key references are
//   u8 presence, u16 type, str name, str location.

const PageMagic uint32 = 0x43505250
const PageFormatVersion uint32 = 2

type pageWriter struct {
	w   io.Writer
	err error
}

func (pw *pageWriter) write(v interface{}) {
	if pw.err == nil {
		pw.err = binary.Write(pw.w, binary.LittleEndian, v)
	}
}

func (pw *pageWriter) u8(v uint8)   { pw.write(v) }
func (pw *pageWriter) u16(v uint16) { pw.write(v) }
func (pw *pageWriter) u32(v uint32) { pw.write(v) }
func (pw *pageWriter) f32(v float32) {
	pw.write(v)
}

func (pw *pageWriter) boolean(v bool) {
	if v {
		pw.u8(1)
	} else {
		pw.u8(0)
	}
}

func (pw *pageWriter) str(s string) {
	pw.u16(uint16(len(s)))
	if pw.err == nil {
		_, pw.err = pw.w.Write([]byte(s))
	}
}

func (pw *pageWriter) bytes(b []byte) {
	pw.u32(uint32(len(b)))
	if pw.err == nil {
		_, pw.err = pw.w.Write(b)
	}
}

func (pw *pageWriter) key(k *Key) {
	if k == nil {
		pw.u8(0)
		return
	}
	pw.u8(1)
	pw.u16(uint16(k.Type))
	pw.str(k.Name)
	pw.str(string(k.Location))
}

func (pw *pageWriter) keys(ks []*Key) {
	pw.u32(uint32(len(ks)))
	for _, k := range ks {
		pw.key(k)
	}
}

func (pw *pageWriter) color(c utils.ColorFloat) {
	for _, v := range c {
		pw.f32(v)
	}
}

func (pw *pageWriter) renderTarget(rt *RenderTarget) {
	pw.u32(rt.Config)
	pw.u32(rt.Flags)
	pw.u32(uint32(rt.Width))
	pw.u32(uint32(rt.Height))
	pw.boolean(rt.Proportional)
	pw.u32(uint32(rt.ViewportLeft))
	pw.u32(uint32(rt.ViewportTop))
	pw.u32(uint32(rt.ViewportRight))
	pw.u32(uint32(rt.ViewportBottom))
	pw.u32(uint32(rt.ZDepth))
}

func (pw *pageWriter) matState(s *MatState) {
	pw.u32(s.Blend)
	pw.u32(s.Clamp)
	pw.u32(s.Shade)
	pw.u32(s.Z)
	pw.u32(s.Misc)
}

func (pw *pageWriter) timeConvert(atc *AnimTimeConvert) {
	pw.u32(atc.Flags)
	pw.f32(atc.Begin)
	pw.f32(atc.End)
	pw.f32(atc.LoopBegin)
	pw.f32(atc.LoopEnd)
}

func (pw *pageWriter) scalarCtl(c *ScalarController) {
	if c == nil {
		pw.u8(0)
		return
	}
	pw.u8(1)
	pw.u32(uint32(len(c.Keys)))
	for _, k := range c.Keys {
		pw.f32(k.Time)
		pw.f32(k.Value)
	}
}

func (pw *pageWriter) matrixCtl(c *Matrix44Controller) {
	if c == nil {
		pw.u8(0)
		return
	}
	pw.u8(1)
	pw.u32(uint32(len(c.Keys)))
	for _, k := range c.Keys {
		pw.f32(k.Time)
		for _, v := range k.Matrix {
			pw.f32(v)
		}
	}
}

func writeObject(pw *pageWriter, obj Object) error {
	switch o := obj.(type) {
	case *Material:
		pw.u32(o.CompFlags)
		pw.keys(o.Layers)
	case *Layer:
		pw.matState(&o.State)
		for _, v := range o.Transform {
			pw.f32(v)
		}
		pw.u32(o.UVWSrc)
		pw.f32(o.Opacity)
		pw.color(o.Preshade)
		pw.color(o.Runtime)
		pw.color(o.Ambient)
		pw.color(o.Specular)
		pw.key(o.Texture)
	case *LayerAnimation:
		pw.matState(&o.State)
		pw.key(o.UnderLay)
		pw.timeConvert(&o.TimeConvert)
		pw.scalarCtl(o.OpacityCtl)
		pw.matrixCtl(o.TransformCtl)
	case *Mipmap:
		pw.u32(uint32(o.Width))
		pw.u32(uint32(o.Height))
		pw.u32(uint32(o.NumLevels))
		pw.u32(uint32(o.Compression))
		pw.u32(o.Config)
		pw.u32(uint32(o.DXT))
		pw.u32(o.Flags)
		pw.u32(uint32(len(o.LevelData)))
		for _, lvl := range o.LevelData {
			pw.bytes(lvl)
		}
	case *DynamicTextMap:
		pw.u32(uint32(o.VisWidth))
		pw.u32(uint32(o.VisHeight))
		pw.boolean(o.HasAlpha)
	case *DynamicEnvMap:
		pw.renderTarget(&o.RenderTarget)
		pw.f32(o.Hither)
		pw.f32(o.Yon)
		pw.f32(o.RefreshRate)
		pw.boolean(o.IncludeCharacters)
		pw.color(o.Color)
		pw.f32(o.FogStart)
		pw.keys(o.VisRegions)
		for _, v := range o.Position {
			pw.f32(v)
		}
		for i := range o.Faces {
			pw.renderTarget(&o.Faces[i])
		}
	case *DynamicCamMap:
		pw.renderTarget(&o.RenderTarget)
		pw.f32(o.Hither)
		pw.f32(o.Yon)
		pw.f32(o.RefreshRate)
		pw.boolean(o.IncludeCharacters)
		pw.color(o.Color)
		pw.f32(o.FogStart)
		pw.keys(o.VisRegions)
		pw.key(o.RootNode)
		pw.key(o.Camera)
		pw.keys(o.TargetNodes)
		pw.keys(o.MatLayers)
		pw.key(o.DisableTexture)
	case *SceneObject, *VisRegion:
		// key-only anchors, empty payload
	default:
		return errors.Errorf("no serializer for object %v", obj.Key())
	}
	return pw.err
}

// WritePage serializes one page's objects.
func WritePage(w io.Writer, loc Location, ver config.PlasmaVersion, objs []Object) error {
	pw := &pageWriter{w: w}
	pw.u32(PageMagic)
	pw.u32(PageFormatVersion)
	pw.u32(uint32(ver))
	pw.str(string(loc))
	pw.u32(uint32(len(objs)))

	for _, obj := range objs {
		k := obj.Key()
		pw.u16(uint16(k.Type))
		pw.str(k.Name)

		var payload bytes.Buffer
		opw := &pageWriter{w: &payload}
		if err := writeObject(opw, obj); err != nil {
			return errors.Wrapf(err, "failed to serialize %v", k)
		}
		pw.bytes(payload.Bytes())
	}
	return pw.err
}

// WritePages writes every location of the registry as "<location>.prp"
// under dir.
func WritePages(dir string, r *Registry, ver config.PlasmaVersion) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create output dir %q", dir)
	}
	for _, loc := range r.Locations() {
		path := filepath.Join(dir, string(loc)+".prp")
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrapf(err, "failed to create page file %q", path)
		}
		if err := WritePage(f, loc, ver, r.ObjectsAt(loc)); err != nil {
			f.Close()
			return errors.Wrapf(err, "failed to write page %q", loc)
		}
		if err := f.Close(); err != nil {
			return errors.Wrapf(err, "failed to close page file %q", path)
		}
	}
	return nil
}
