package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	sceneName := flag.String("scene", "playground", "scene name in prefabs/scenes (or a path to a .yaml file)")
	workers := flag.Int("workers", -1, "worker goroutines for the engine (-1 keeps the scene setting)")
	substeps := flag.Int("substeps", 0, "high resolution sub-steps per frame (0 keeps the scene setting)")
	watch := flag.Bool("watch", false, "reload the scene when scene or script files change")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("dotengine - " + *sceneName)

	game, err := NewGame(Options{
		Scene:    *sceneName,
		Workers:  *workers,
		Substeps: *substeps,
		Watch:    *watch,
	})
	if err != nil {
		log.Fatal(err)
	}

	err = ebiten.RunGame(game)
	game.Close()
	if err != nil {
		log.Fatal(err)
	}
}
