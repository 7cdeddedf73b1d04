package main

import (
	"github.com/alecthomas/kong"
)

var cliStruct struct {
	Commands
}

func main() {
	ctx := kong.Parse(&cliStruct,
		kong.Name("reconcile"),
		kong.Description("A semi-automatic ledger reconciliation engine."),
		kong.UsageOnError(),
		kong.Bind(&cliStruct.Globals),
	)

	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
