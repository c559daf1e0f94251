// Package exporter ties the conversion services into one session: it walks
// the scene, converts every object's materials, finalizes deferred textures
// and serializes the touched pages.
package exporter

import (
	"github.com/mirphak/prpexport/config"
	"github.com/mirphak/prpexport/exporter/material"
	"github.com/mirphak/prpexport/plasma"
	"github.com/mirphak/prpexport/report"
	"github.com/mirphak/prpexport/scene"
)

// Session is one end-to-end export of a scene.
type Session struct {
	Scene    *scene.Scene
	Settings *config.Settings
	Registry *plasma.Registry
	Report   *report.Reporter
	Material *material.Converter
}

func NewSession(sc *scene.Scene, settings *config.Settings, rep *report.Reporter) *Session {
	reg := plasma.NewRegistry()
	return &Session{
		Scene:    sc,
		Settings: settings,
		Registry: reg,
		Report:   rep,
		Material: material.NewConverter(sc, reg, rep, settings.PlasmaVersion(), pageResolver{settings.TexturesPage}),
	}
}

// pageResolver herds bitmaps into the configured shared page, or leaves
// them beside their consumers when none is set.
type pageResolver struct {
	texturesPage string
}

func (p pageResolver) TexturePage(owner plasma.Location) plasma.Location {
	if p.texturesPage != "" {
		return plasma.Location(p.texturesPage)
	}
	return owner
}

// Run converts the whole scene. The first fatal error aborts the session;
// warnings accumulate in the reporter.
func (s *Session) Run() error {
	s.Report.Infof("exporting scene %q for %s", s.Scene.Name, s.Settings.PlasmaVersion())

	for _, bo := range s.Scene.Objects {
		if bo.Mesh == nil {
			continue
		}
		for _, bm := range bo.Mesh.Materials {
			var err error
			if bo.Modifiers.WaveSet.Enabled {
				_, err = s.Material.ExportWavesetMaterial(bo, bm)
			} else {
				_, err = s.Material.ExportMaterial(bo, bm)
			}
			if err != nil {
				return err
			}
		}
	}

	if err := s.Material.Finalize(); err != nil {
		return err
	}
	if err := s.Registry.Verify(); err != nil {
		return err
	}

	s.Report.Infof("export finished: %d objects in %d pages, %d warnings",
		s.Registry.Len(), len(s.Registry.Locations()), s.Report.Warnings())
	return nil
}

// WritePages serializes every touched page under dir.
func (s *Session) WritePages(dir string) error {
	return plasma.WritePages(dir, s.Registry, s.Settings.PlasmaVersion())
}
