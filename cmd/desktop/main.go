package main

import (
	"embed"
	"excaliapp/desktop"
	"flag"

	"github.com/sirupsen/logrus"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	dataDir := flag.String("data", "", "Directory holding the drawings (default: user data dir).")
	logLevel := flag.String("loglevel", "info", "The log level (debug, info, warn, error).")
	flag.Parse()

	level, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	dir := *dataDir
	if dir == "" {
		if dir, err = desktop.UserDataDir(); err != nil {
			logrus.Fatalf("Failed to resolve data directory: %v", err)
		}
	}

	app, err := desktop.NewApp(dir)
	if err != nil {
		logrus.Fatal(err)
	}
	logrus.WithField("dir", app.Dir()).Info("Storing drawings")

	err = wails.Run(&options.App{
		Title:  "excaliapp",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup:  app.Startup,
		OnShutdown: app.Shutdown,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logrus.Fatal(err)
	}
}
