package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aiemassfiria/huawei-oled-hijack-ng/cmd/oled/console"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/cmd/oled/run"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/cmd/oled/subcmd"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/state"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/internal/tele"
	"github.com/aiemassfiria/huawei-oled-hijack-ng/log2"
)

var log = log2.NewStderr(log2.LDebug)

var BuildVersion string = "unknown" // set by ldflags -X

var modules = []subcmd.Mod{
	console.Mod,
	run.Mod,
}

func main() {
	cmdline := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	flagConfig := cmdline.String("config", "oled.hcl", "")
	flagVersion := cmdline.Bool("version", false, "print build version and exit")
	cmdline.Usage = func() {
		fmt.Fprintf(cmdline.Output(), "Usage: %s [option] command\n", os.Args[0])
		fmt.Fprintf(cmdline.Output(), "Commands:\n")
		for _, m := range modules {
			fmt.Fprintf(cmdline.Output(), "  %s\n", m.Name)
		}
		fmt.Fprintf(cmdline.Output(), "Options:\n")
		cmdline.PrintDefaults()
	}
	_ = cmdline.Parse(os.Args[1:])

	if *flagVersion {
		fmt.Printf("oled %s\n", BuildVersion)
		os.Exit(0)
	}

	command := cmdline.Arg(0)
	if command == "" {
		command = run.Mod.Name
	}
	mod, err := subcmd.Parse(command, modules)
	if err != nil {
		cmdline.Usage()
		log.Fatal(err)
	}

	if subcmd.SdNotify("start") {
		// under systemd assume journal logging, remove timestamp
		log.SetFlags(log2.LServiceFlags)
	} else {
		log.SetFlags(log2.LInteractiveFlags)
	}

	log.Infof("oled version=%s starting command=%s", BuildVersion, mod.Name)
	config := state.MustReadConfig(log, state.NewOsFullReader(), *flagConfig)
	ctx, g := state.NewContext(log, tele.New())
	g.BuildVersion = BuildVersion
	if err := mod.Main(ctx, config); err != nil {
		g.Fatal(err)
	}
}
