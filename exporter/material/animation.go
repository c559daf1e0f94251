package material

import (
	"fmt"
	"strings"

	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/scene"
)

// exportLayerAnimation checks a slot for animation and, when any curve is
// usable, wraps the layer in an animation object that takes its place in the
// material's layer sequence. Curves come from two wells: the material action
// filtered to this slot's data paths, and the texture's own action taken
// whole. Roles attach in a fixed order so output is deterministic.
func (c *Converter) exportLayerAnimation(bm *scene.Material, slot *scene.TextureSlot, idx int, base *plasma.Layer) (plasma.LayerObject, error) {
	var fcurves []*scene.FCurve
	harvest := func(ad *scene.AnimationData, prefix string) *scene.Action {
		if ad == nil || ad.Action == nil {
			return nil
		}
		for _, fc := range ad.Action.FCurves {
			if prefix == "" || strings.HasPrefix(fc.DataPath, prefix) {
				fcurves = append(fcurves, fc)
			}
		}
		return ad.Action
	}
	matAction := harvest(bm.Animation, fmt.Sprintf("texture_slots[%d]", idx))
	texAction := harvest(slot.Texture.Animation, "")
	if len(fcurves) == 0 {
		return base, nil
	}

	var anim *plasma.LayerAnimation
	ensure := func() *plasma.LayerAnimation {
		if anim == nil {
			name := base.Key().Name + "_LayerAnim"
			c.rep.Infof("        exporting layer animation %q", name)
			anim = c.reg.FindOrCreate(plasma.TypeLayerAnimation, name, base.Key().Location, func() plasma.Object {
				return &plasma.LayerAnimation{}
			}).(*plasma.LayerAnimation)
		}
		return anim
	}

	if ctl := c.exportOpacityController(base, fcurves); ctl != nil {
		ensure().OpacityCtl = ctl
	}
	if ctl := c.exportTransformController(slot, fcurves); ctl != nil {
		ensure().TransformCtl = ctl
	}
	if anim == nil {
		// curves exist but none animate a property a layer understands
		return base, nil
	}

	anim.UnderLay = base.Key()

	// the texture's own action wins the timing argument
	action := texAction
	if action == nil {
		action = matAction
	}
	start, end := action.FrameRange()
	atc := &anim.TimeConvert
	atc.Begin = start / c.fps
	atc.End = end / c.fps

	props := slot.Texture.Layer
	if !props.AnimAutoStart {
		atc.Flags |= plasma.ATCStopped
	}
	if props.AnimLoop {
		atc.Flags |= plasma.ATCLoop
		atc.LoopBegin, atc.LoopEnd = atc.Begin, atc.End
		if props.LoopBegin != 0 || props.LoopEnd != 0 {
			atc.LoopBegin = props.LoopBegin / c.fps
			atc.LoopEnd = props.LoopEnd / c.fps
		}
	}
	return anim, nil
}

// exportOpacityController bakes the opacity curve. An animated opacity
// forces alpha blending on the underlying layer even if it starts at full.
func (c *Converter) exportOpacityController(base *plasma.Layer, fcurves []*scene.FCurve) *plasma.ScalarController {
	for _, fc := range fcurves {
		if !strings.HasSuffix(fc.DataPath, "plasma_layer.opacity") {
			continue
		}
		ctl := c.anim.ScalarController(fc)
		if ctl == nil {
			return nil
		}
		base.State.Blend |= plasma.BlendAlpha
		for i := range ctl.Keys {
			ctl.Keys[i].Value /= 100
		}
		return ctl
	}
	return nil
}

// exportTransformController bakes offset and scale curves into a matrix
// track, holding unanimated axes at the slot's authored transform.
func (c *Converter) exportTransformController(slot *scene.TextureSlot, fcurves []*scene.FCurve) *plasma.Matrix44Controller {
	var pos, scl []*scene.FCurve
	for _, fc := range fcurves {
		switch {
		case strings.HasSuffix(fc.DataPath, "offset"):
			pos = append(pos, fc)
		case strings.HasSuffix(fc.DataPath, "scale"):
			scl = append(scl, fc)
		}
	}
	return c.anim.Matrix44Controller(pos, scl, slot.Offset, slot.Scale)
}
