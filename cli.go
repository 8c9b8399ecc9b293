package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"invaders/emu/log"
)

type mode byte

const (
	runMode      mode = iota // Run a ROM
	romInfosMode             // Show ROM infos
	configMode               // Show or write the configuration
	versionMode              // Show version
)

type (
	CLI struct {
		Run      Run      `cmd:"" help:"Run ROM in emulator. (default command)" default:"withargs"`
		RomInfos RomInfos `cmd:"" help:"Show ROM infos." name:"rom-infos"`
		Config   Config   `cmd:"" help:"Show the configuration, or write the default one."`
		Version  Version  `cmd:"" help:"Show version."`

		Log logModMask `help:"${log_help}" placeholder:"mod0,mod1,..."`

		mode mode
	}

	Run struct {
		RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" type:"path"`

		Config      string `name:"config" help:"Configuration file. (default: ${default_config})" type:"path"`
		Samples     string `name:"samples" help:"Directory containing sound samples, 0.wav to 9.wav." type:"path"`
		Scale       int    `name:"scale" help:"Window scale factor."`
		Monitor     int32  `name:"monitor" help:"Monitor index to use." default:"-1"`
		NoOverlay   bool   `name:"no-overlay" help:"Disable the color overlay."`
		NoAudio     bool   `name:"no-audio" help:"Disable audio output."`
		RecordAudio string `name:"record-audio" help:"Record audio output to a wav file." type:"path"`
		Strict      bool   `name:"strict" help:"Stop on undocumented opcodes."`
		ProtectROM  bool   `name:"protect-rom" help:"Ignore CPU writes to ROM."`
		CPUProfile  string `name:"cpuprofile" help:"${cpuprofile_help}" type:"path"`
		Statsview   string `name:"statsview" help:"${statsview_help}" placeholder:"HOST:PORT"`
	}

	RomInfos struct {
		RomPath string `arg:"" name:"/path/to/rom" type:"path"`
		JSON    bool   `name:"json" help:"Output JSON."`
	}

	Config struct {
		Path  string `name:"path" help:"Configuration file. (default: ${default_config})" type:"path"`
		Write bool   `name:"write" help:"Write the default configuration, if the file doesn't exist."`
	}

	Version struct{}
)

var vars = kong.Vars{
	"rompath_help":    "ROM file, or directory containing the invaders.[efgh] split set.",
	"cpuprofile_help": "Write CPU profile to file.",
	"statsview_help":  "Serve runtime statistics at http://HOST:PORT/debug/statsview.",
	"log_help":        "Enable logging for specified modules.",
}

func parseArgs(args []string, defaultConfig string) CLI {
	var cfg CLI
	parser, err := kong.New(&cfg,
		kong.Name("invaders"),
		kong.Description("Space Invaders arcade emulator."),
		kong.UsageOnError(),
		kong.Help(printHelp),
		vars,
		kong.Vars{"default_config": defaultConfig})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args)
	checkf(err, "failed to parse command line")
	checkf(ctx.Error, "failed to parse command line")

	switch ctx.Command() {
	case "rom-infos </path/to/rom>":
		cfg.mode = romInfosMode
	case "config":
		cfg.mode = configMode
	case "version":
		cfg.mode = versionMode
	default:
		cfg.mode = runMode
	}
	return cfg
}

func printHelp(options kong.HelpOptions, ctx *kong.Context) error {
	if err := kong.DefaultHelpPrinter(options, ctx); err != nil {
		return err
	}
	if strings.HasPrefix(ctx.Command(), "run") {
		loggingHelp := `
Log modules:
  The --log flag accepts a comma-separated list of modules.

  Valid log modules are:
%s

  As a special case, the following values are accepted:
    - no                     Disable all logging.
    - all                    Enable all logs.
`
		var strs []string
		for _, m := range log.ModuleNames() {
			strs = append(strs, "    - "+m)
		}

		fmt.Fprintf(os.Stderr, loggingHelp, strings.Join(strs, "\n"))
	}

	return nil
}

type logModMask log.ModuleMask

// Decode decodes a comma-separated list of module names into a module mask.
//
// Implements kong.MapperValue interface.
func (lm logModMask) Decode(ctx *kong.DecodeContext) error {
	nolog := false
	allLogs := false

	tok := ctx.Scan.Pop()
	for _, v := range strings.Split(tok.Value.(string), ",") {
		switch v {
		case "all":
			allLogs = true
		case "no":
			nolog = true
		default:
			mod, ok := log.ModuleByName(v)
			if !ok {
				return fmt.Errorf("unknown log module %s", v)
			}
			lm |= logModMask(mod.Mask())
		}
	}

	if nolog {
		if allLogs {
			return fmt.Errorf("cannot use 'all' and 'no' together")
		}
		if lm != 0 {
			return fmt.Errorf("cannot combine 'no' with other log modules")
		}
		log.Disable()
		return nil
	}

	if allLogs {
		lm = logModMask(log.ModuleMaskAll)
	}

	log.EnableDebugModules(log.ModuleMask(lm))
	return nil
}

func checkf(err error, format string, args ...any) {
	if err == nil {
		return
	}
	fatalf(format+".\n"+err.Error(), args...)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal error:")
	fmt.Fprintf(os.Stderr, "\n\t%s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
