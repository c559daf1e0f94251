package material

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/scene"
)

// TextureID is the canonical identity and encoding policy of one source
// image. Two IDs are the same texture iff they reference the same image
// with the same calc-alpha choice; use-alpha and mipmap are merged across
// all references instead.
type TextureID struct {
	Image     *scene.Image
	CalcAlpha bool
	UseAlpha  bool
	Mipmap    bool
}

// NewTextureID derives an identity from a texture and/or an explicit image.
// useAlpha, when non-nil, overrides the image's own alpha choice.
func NewTextureID(tex *scene.Texture, img *scene.Image, useAlpha *bool, forceCalcAlpha bool) (TextureID, error) {
	if tex == nil && img == nil {
		return TextureID{}, errors.New("texture identity needs a texture or an image")
	}

	var id TextureID
	if tex != nil {
		if img == nil {
			img = tex.Image
		}
		id.CalcAlpha = tex.UseCalculateAlpha
		id.Mipmap = tex.UseMipmap
	}
	if img == nil {
		return TextureID{}, errors.Errorf("texture %q carries no image", tex.Name)
	}
	id.Image = img

	switch {
	case forceCalcAlpha || id.CalcAlpha:
		id.CalcAlpha = true
		id.UseAlpha = true
	case useAlpha != nil:
		id.UseAlpha = *useAlpha
	default:
		id.UseAlpha = img.Channels == 4 && img.UseAlpha
	}
	return id, nil
}

// Same reports identity equality: image plus calc-alpha only.
func (id TextureID) Same(other TextureID) bool {
	return id.Image == other.Image && id.CalcAlpha == other.CalcAlpha
}

// Merge folds another reference to the same texture into this one: the most
// permissive encoding wins once any consumer asks for it.
func (id TextureID) Merge(other TextureID) TextureID {
	id.UseAlpha = id.UseAlpha || other.UseAlpha
	id.Mipmap = id.Mipmap || other.Mipmap
	return id
}

// Name is the canonical display name: the image name re-suffixed for the
// container format, prefixed when the alpha channel is synthesized.
func (id TextureID) Name() string {
	base := strings.TrimSuffix(id.Image.Name, filepath.Ext(id.Image.Name))
	if id.Mipmap {
		base += ".dds"
	} else {
		base += ".bmp"
	}
	if id.CalcAlpha {
		base = "ALPHAGEN_" + base
	}
	return base
}

type texKey struct {
	image     *scene.Image
	calcAlpha bool
}

// PendingEntry is one deferred texture: the merged identity plus every
// layer consuming it, in first-seen order.
type PendingEntry struct {
	ID     TextureID
	Layers []*plasma.Key
}

// PendingTable defers pixel work until the whole scene's materials are
// converted. Merges are applied to the stored entry, so later lookups
// always observe the merged state.
type PendingTable struct {
	index   map[texKey]*PendingEntry
	entries []*PendingEntry
}

func NewPendingTable() *PendingTable {
	return &PendingTable{index: make(map[texKey]*PendingEntry)}
}

// Add registers a consumer for an identity. Returns true when the identity
// was already pending and got merged.
func (t *PendingTable) Add(id TextureID, layer *plasma.Key) bool {
	k := texKey{image: id.Image, calcAlpha: id.CalcAlpha}
	entry, ok := t.index[k]
	if !ok {
		entry = &PendingEntry{ID: id, Layers: []*plasma.Key{layer}}
		t.index[k] = entry
		t.entries = append(t.entries, entry)
		return false
	}
	entry.ID = entry.ID.Merge(id)
	for _, l := range entry.Layers {
		if l == layer {
			return true
		}
	}
	entry.Layers = append(entry.Layers, layer)
	return true
}

// Entries lists pending textures in first-seen order.
func (t *PendingTable) Entries() []*PendingEntry {
	return t.entries
}

func (t *PendingTable) Len() int {
	return len(t.entries)
}

// Clear drains the table after finalization.
func (t *PendingTable) Clear() {
	t.index = make(map[texKey]*PendingEntry)
	t.entries = nil
}
