// Copyright 2020-2021 Dolthub, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	goblin "github.com/ikuehne/data-goblin"
	"github.com/ikuehne/data-goblin/datalog"
	"github.com/ikuehne/data-goblin/repl"
)

func main() {
	app := &cli.App{
		Name:  "data-goblin",
		Usage: "a persistent Datalog engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "directory holding one file per relation",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a YAML config file",
			},
			&cli.DurationFlag{
				Name:  "flush-interval",
				Usage: "period of the background write-back thread",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	if c.Bool("verbose") {
		logger.SetLevel(logrus.DebugLevel)
	}
	entry := logrus.NewEntry(logger)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	cfg.Logger = entry

	engine, err := goblin.New(cfg)
	if err != nil {
		return err
	}

	ctx := datalog.NewContext(context.Background(), datalog.WithLogger(entry))
	runErr := repl.New(engine, os.Stdin, os.Stdout).Run(ctx)
	if cerr := engine.Close(); runErr == nil {
		runErr = cerr
	}
	return runErr
}

// loadConfig resolves the configuration: flags override the config
// file, which overrides the environment, which overrides the defaults.
func loadConfig(c *cli.Context) (*goblin.Config, error) {
	cfg := goblin.DefaultConfig()
	if path := c.String("config"); path != "" {
		loaded, err := goblin.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if dir := c.String("data-dir"); dir != "" {
		cfg.DataDir = dir
	}
	if interval := c.Duration("flush-interval"); interval > time.Duration(0) {
		cfg.FlushInterval = interval
	}
	return cfg, nil
}
