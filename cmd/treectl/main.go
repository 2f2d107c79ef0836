package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero"

func main() {
	app := cli.NewApp()
	app.Name = "treectl"
	app.Usage = "talk to a running rbtreed"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "localhost:50051",
			Usage:  " rbtreed `HOST:PORT`",
			EnvVar: "RBTREE_CONNECT",
		},
		cli.DurationFlag{
			Name:  "timeout, t",
			Value: 5 * time.Second,
			Usage: " per call timeout",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "insert",
			Usage:     "insert one or more keys",
			ArgsUsage: "KEY...",
			Action:    runInsert,
		},
		{
			Name:      "erase",
			Usage:     "erase one node per key",
			ArgsUsage: "KEY...",
			Action:    runErase,
		},
		{
			Name:      "find",
			Usage:     "check whether a key is present",
			ArgsUsage: "KEY",
			Action:    runFind,
		},
		{
			Name:   "min",
			Usage:  "print the smallest key",
			Action: runMin,
		},
		{
			Name:   "max",
			Usage:  "print the largest key",
			Action: runMax,
		},
		{
			Name:  "export",
			Usage: "print keys in ascending order",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "limit, l",
					Value: 0,
					Usage: " at most `COUNT` keys, 0 for all",
				},
			},
			Action: runExport,
		},
		{
			Name:   "stats",
			Usage:  "print size, height and sequence",
			Action: runStats,
		},
		{
			Name:   "verify",
			Usage:  "run the invariant check on the server",
			Action: runVerify,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
