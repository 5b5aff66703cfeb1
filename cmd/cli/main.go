// PROPRIETARY AND CONFIDENTIAL
//
// Unauthorized copying of this file via any medium is strictly prohibited.
//
// Copyright (c) 2021-2022 Iterable, Inc. All rights reserved.

package main

import (
	"bufio"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/Iterable/firehose-iterable/cmd"
)

func main() {
	app := cli.NewApp()
	app.Name = cmd.AppName
	app.Version = cmd.AppVersion
	app.Usage = "Replays queued wire messages from stdin or a file"
	app.Copyright = "(c) 2021-2022 Iterable, Inc."
	app.Compiled = time.Now()

	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "file, f",
			Usage: "Read newline delimited messages from `FILE` instead of stdin",
		},
	}

	app.Action = func(c *cli.Context) error {
		input := os.Stdin
		if filename := c.String("file"); filename != "" {
			f, err := os.Open(filename)
			if err != nil {
				return err
			}
			defer f.Close()
			input = f
		}

		scanner := bufio.NewScanner(input)
		scanner.Buffer(make([]byte, 1024*1024), 10*1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}
			if err := cmd.ServerlessRequestHandler(line); err != nil {
				log.Error(err)
			}
		}
		if scanner.Err() != nil {
			log.Error(scanner.Err())
			return scanner.Err()
		}

		return nil
	}

	app.Run(os.Args)
}
