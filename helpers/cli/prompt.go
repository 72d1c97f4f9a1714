// Package cli is interactive console shared by developer subcommands.
package cli

import (
	"bytes"
	"io/ioutil"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/c-bata/go-prompt"
	"github.com/mattn/go-isatty"
)

// MainLoop reads commands from terminal with completion, or line by line from piped stdin.
// Returns when input ends. First signal calls interrupt, nil interrupt exits process.
func MainLoop(tag string, exec func(line string), complete func(d prompt.Document) []prompt.Suggest, interrupt func()) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		for range signalCh {
			if interrupt == nil {
				os.Exit(1)
			}
			interrupt()
			interrupt = nil
		}
	}()

	if isatty.IsTerminal(os.Stdin.Fd()) {
		prompt.New(exec, complete,
			prompt.OptionPrefix(tag+"> "),
			prompt.OptionTitle(tag),
		).Run()
	} else {
		stdinAll, err := ioutil.ReadAll(os.Stdin)
		if err != nil {
			log.Fatal(err)
		}
		linesb := bytes.Split(stdinAll, []byte{'\n'})
		for _, lineb := range linesb {
			line := string(bytes.TrimSpace(lineb))
			if line != "" {
				exec(line)
			}
		}
	}
}
