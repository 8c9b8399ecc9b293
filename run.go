package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"runtime/pprof"

	"github.com/BurntSushi/toml"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/veandco/go-sdl2/sdl"

	"invaders/emu"
	"invaders/emu/log"
	"invaders/rom"
)

// applyFlags overrides cfg with the values set on the command line.
func applyFlags(args Run, cfg *emu.Config) {
	if args.Samples != "" {
		cfg.Audio.SamplesDir = args.Samples
	}
	if args.Scale != 0 {
		cfg.Video.Scale = args.Scale
	}
	if args.Monitor >= 0 {
		cfg.Video.Monitor = args.Monitor
	}
	if args.NoOverlay {
		cfg.Video.Overlay = false
	}
	if args.NoAudio {
		cfg.Audio.DisableAudio = true
	}
	if args.RecordAudio != "" {
		cfg.Audio.RecordPath = args.RecordAudio
	}
	if args.Strict {
		cfg.Emulation.StrictOpcodes = true
	}
	if args.ProtectROM {
		cfg.Emulation.ProtectROM = true
	}
	cfg.Check()
}

// runMain runs the emulator with the given rom and returns the process exit
// code.
func runMain(args Run) int {
	cfg := emu.LoadConfigOrDefault(args.Config)
	applyFlags(args, &cfg)

	rom, err := rom.Open(args.RomPath)
	checkf(err, "failed to load ROM")

	if args.Statsview != "" {
		startStatsview(args.Statsview)
	}

	if args.CPUProfile != "" {
		f, err := os.Create(args.CPUProfile)
		checkf(err, "failed to create cpu profile file")
		checkf(pprof.StartCPUProfile(f), "failed to start cpu profile")
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
			fmt.Println("CPU profile written to", args.CPUProfile)
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var exitcode int
	sdl.Main(func() {
		if err := emu.Launch(ctx, rom, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "emulator error: %v\n", err)
			exitcode = 1
		}
		sdl.Do(sdl.Quit)
	})
	return exitcode
}

func startStatsview(addr string) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()
	log.ModEmu.InfoZ("Stats server started").
		String("url", "http://"+addr+"/debug/statsview").
		End()
}

func romInfosMain(args RomInfos) {
	rom, err := rom.Open(args.RomPath)
	checkf(err, "failed to load ROM")

	if args.JSON {
		checkf(rom.WriteJSON(os.Stdout), "failed to write JSON")
		fmt.Println()
		return
	}
	rom.PrintInfos(os.Stdout)
}

func configMain(args Config) {
	path := args.Path
	if path == "" {
		path = emu.ConfigPath()
	}

	if args.Write {
		if _, err := os.Stat(path); err == nil {
			fatalf("%s already exists", path)
		}
		checkf(emu.SaveConfig(emu.DefaultConfig(), path), "failed to write configuration")
		fmt.Println("configuration written to", path)
		return
	}

	cfg := emu.LoadConfigOrDefault(path)
	fmt.Printf("# %s\n", path)
	checkf(toml.NewEncoder(os.Stdout).Encode(cfg), "failed to encode configuration")
}

func versionMain() {
	version := "(devel)"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" {
		version = bi.Main.Version
	}
	fmt.Println("invaders", version)
}
