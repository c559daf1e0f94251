package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/mirphak/prpexport/config"
	"github.com/mirphak/prpexport/exporter"
	"github.com/mirphak/prpexport/report"
	"github.com/mirphak/prpexport/scene"
	"github.com/mirphak/prpexport/web"
)

func main() {
	var scenePath, settingsPath, version, texturesPage, out, addr string
	var dump bool
	flag.StringVar(&scenePath, "scene", "", "glTF scene to export")
	flag.StringVar(&settingsPath, "settings", "", "yaml settings file")
	flag.StringVar(&version, "version", "", "target engine version override (prime, pots, moul)")
	flag.StringVar(&texturesPage, "textures-page", "", "shared page name for converted bitmaps override")
	flag.StringVar(&out, "out", "", "output directory override for page files")
	flag.StringVar(&addr, "listen", "", "serve a preview of the exported pages on this address")
	flag.BoolVar(&dump, "dump", false, "dump every exported object to stdout")
	flag.Parse()

	if scenePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	settings := config.DefaultSettings()
	if settingsPath != "" {
		var err error
		settings, err = config.LoadSettings(settingsPath)
		if err != nil {
			log.Fatalf("Failed to load settings: %v", err)
		}
	}
	if version != "" {
		settings.Version = version
	}
	if texturesPage != "" {
		settings.TexturesPage = texturesPage
	}
	if out != "" {
		settings.OutputDir = out
	}
	if err := settings.Validate(); err != nil {
		log.Fatalf("Bad settings: %v", err)
	}

	logger := report.NewLogger(settings.LogLevel, report.DefaultFileConfig(settings.LogFile))
	defer logger.Sync()
	rep := report.New(logger)

	sc, err := scene.LoadGLTF(scenePath)
	if err != nil {
		rep.Errorf("Failed to load scene: %v", err)
		os.Exit(1)
	}

	session := exporter.NewSession(sc, settings, rep)
	if err := session.Run(); err != nil {
		if report.IsExportError(err) {
			rep.Errorf("Export failed: %v", err)
		} else {
			rep.Errorf("Internal error: %v", err)
		}
		os.Exit(1)
	}

	if err := session.WritePages(settings.OutputDir); err != nil {
		rep.Errorf("Failed to write pages: %v", err)
		os.Exit(1)
	}

	if dump {
		for _, loc := range session.Registry.Locations() {
			fmt.Printf("== page %s\n", loc)
			for _, obj := range session.Registry.ObjectsAt(loc) {
				spew.Dump(obj)
			}
		}
	}

	if addr != "" {
		if err := web.StartServer(addr, session.Registry, rep); err != nil {
			rep.Errorf("Preview server failed: %v", err)
			os.Exit(1)
		}
	}
}
