package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli"

	"github.com/quanta-labs/quanta-go/cli/statetool"
	"github.com/quanta-labs/quanta-go/pkg/config"
)

func versionPrinter(c *cli.Context) {
	_, _ = fmt.Fprintf(c.App.Writer, "QuantaGo\nVersion: %s\nGoVersion: %s\n",
		config.Version,
		runtime.Version(),
	)
}

// New creates a QuantaGo instance of [cli.App] with all commands included.
func New() *cli.App {
	cli.VersionPrinter = versionPrinter
	ctl := cli.NewApp()
	ctl.Name = "quanta-go"
	ctl.Version = config.Version
	ctl.Usage = "Global-state trie storage for Quanta"
	ctl.ErrWriter = os.Stdout

	ctl.Commands = append(ctl.Commands, statetool.NewCommands()...)
	return ctl
}
