package web

import (
	"image"
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mirphak/prpexport/exporter/texture"
	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/webutils"
)

var typesByName = map[string]plasma.Type{}

func init() {
	for _, t := range []plasma.Type{
		plasma.TypeSceneObject, plasma.TypeMipmap, plasma.TypeLayer,
		plasma.TypeGMaterial, plasma.TypeLayerAnimation, plasma.TypeDynamicTextMap,
		plasma.TypeDynamicEnvMap, plasma.TypeDynamicCamMap, plasma.TypeVisRegion,
	} {
		typesByName[t.String()] = t
	}
}

type pageInfo struct {
	Name    string `json:"name"`
	Objects int    `json:"objects"`
}

type objectInfo struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func (s *server) handlePages(w http.ResponseWriter, r *http.Request) {
	var pages []pageInfo
	for _, loc := range s.reg.Locations() {
		pages = append(pages, pageInfo{
			Name:    string(loc),
			Objects: len(s.reg.ObjectsAt(loc)),
		})
	}
	webutils.WriteJson(w, pages)
}

func (s *server) handlePageObjects(w http.ResponseWriter, r *http.Request) {
	page := plasma.Location(mux.Vars(r)["page"])
	var objs []objectInfo
	for _, obj := range s.reg.ObjectsAt(page) {
		k := obj.Key()
		objs = append(objs, objectInfo{Type: k.Type.String(), Name: k.Name})
	}
	if objs == nil {
		webutils.WriteNotFound(w, "page "+string(page))
		return
	}
	webutils.WriteJson(w, objs)
}

func (s *server) findObject(r *http.Request) plasma.Object {
	vars := mux.Vars(r)
	t, ok := typesByName[vars["type"]]
	if !ok {
		return nil
	}
	return s.reg.Find(t, vars["name"], plasma.Location(vars["page"]))
}

func (s *server) handleObject(w http.ResponseWriter, r *http.Request) {
	obj := s.findObject(r)
	if obj == nil {
		webutils.WriteNotFound(w, "object")
		return
	}
	webutils.WriteJson(w, obj)
}

func (s *server) handleObjectDump(w http.ResponseWriter, r *http.Request) {
	obj := s.findObject(r)
	if obj == nil {
		webutils.WriteNotFound(w, "object")
		return
	}
	webutils.WriteText(w, spew.Sdump(obj))
}

// handleBitmapPreview re-expands a converted bitmap's base level to PNG.
func (s *server) handleBitmapPreview(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	obj := s.reg.Find(plasma.TypeMipmap, vars["name"], plasma.Location(vars["page"]))
	if obj == nil {
		webutils.WriteNotFound(w, "bitmap "+vars["name"])
		return
	}
	mip := obj.(*plasma.Mipmap)
	if len(mip.LevelData) == 0 {
		webutils.WriteError(w, errors.Errorf("bitmap %q has no level data", vars["name"]))
		return
	}

	img, err := expandBaseLevel(mip)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WritePng(w, img)
}

func expandBaseLevel(mip *plasma.Mipmap) (*image.NRGBA, error) {
	data := mip.LevelData[0]
	switch {
	case mip.Compression == plasma.CompressDirectX && mip.DXT == plasma.DXT1:
		return texture.DecompressDXT1(data, mip.Width, mip.Height), nil
	case mip.Compression == plasma.CompressDirectX && mip.DXT == plasma.DXT5:
		return texture.DecompressDXT5(data, mip.Width, mip.Height), nil
	case mip.Compression == plasma.CompressUncompressed:
		img := image.NewNRGBA(image.Rect(0, 0, mip.Width, mip.Height))
		for i := 0; i+3 < len(data); i += 4 {
			// stored bgra
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = data[i+2], data[i+1], data[i], data[i+3]
		}
		return img, nil
	}
	return nil, errors.Errorf("bitmap has an unpreviewable encoding %d/%d", mip.Compression, mip.DXT)
}
