// orec is the Ore toolchain driver: `new` scaffolds a project, `build`
// (the default action) parses and checks it. Subcommand routing is
// github.com/urfave/cli/v2; --dump-ast pretty-prints each parsed module with
// github.com/sanity-io/litter before the checker runs. Diagnostics are
// written uncolored by diag.Write; github.com/fatih/color colors only the
// driver's own status lines.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sanity-io/litter"
	"github.com/urfave/cli/v2"

	"orelang/internal/diag"
	"orelang/internal/llvmtarget"
	"orelang/internal/loader"
)

func main() {
	app := &cli.App{
		Name:  "orec",
		Usage: "the Ore compiler front end",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "dump-ast", Usage: "pretty-print each module's AST before checking"},
		},
		Commands: []*cli.Command{
			{
				Name:      "new",
				Usage:     "scaffold a new Ore project",
				ArgsUsage: "<dir>",
				Action:    newAction,
			},
			{
				Name:   "build",
				Usage:  "parse and check the project in the current directory",
				Action: buildAction,
			},
		},
		Action: buildAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func newAction(c *cli.Context) error {
	dir := "."
	if c.NArg() > 0 {
		dir = c.Args().Get(0)
	}
	if err := loader.InitPackage(dir); err != nil {
		return err
	}
	fmt.Println(color.GreenString("initialized Ore project in %s", dir))
	return nil
}

func buildAction(c *cli.Context) error {
	dir := "."
	if c.NArg() > 0 {
		dir = c.Args().Get(0)
	}

	res, bag, err := loader.Build(dir)
	if err != nil {
		return err
	}

	if c.Bool("dump-ast") && res != nil {
		for _, mod := range res.Modules {
			fmt.Println(color.CyanString("=== module %s ===", mod.Name))
			litter.Dump(mod)
		}
	}

	if bag != nil && bag.HasErrors() {
		diag.Write(os.Stderr, bag)
		return cli.Exit(color.RedString("build failed: %d diagnostic(s)", len(bag.Items)), 1)
	}

	if res != nil && res.Program != nil {
		llvmtarget.Declare(res.Program)
	}

	fmt.Println(color.GreenString("build ok"))
	return nil
}
