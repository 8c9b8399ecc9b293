package main

import (
	"os"

	"invaders/emu"
)

func main() {
	cli := parseArgs(os.Args[1:], emu.ConfigPath())

	switch cli.mode {
	case runMode:
		os.Exit(runMain(cli.Run))
	case romInfosMode:
		romInfosMain(cli.RomInfos)
	case configMode:
		configMain(cli.Config)
	case versionMode:
		versionMain()
	}
}
