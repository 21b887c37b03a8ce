/*
Copyright 2024 FeedChain Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/feedchain/feedchain"
	"github.com/feedchain/feedchain/config"
	"github.com/feedchain/feedchain/database"
	"github.com/feedchain/feedchain/internal/notification"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CLI wraps the root cobra command.
type CLI struct {
	cmd *cobra.Command
}

// feedchainInstance holds what preRun builds for the subcommands.
type feedchainInstance struct {
	feedchain  *feedchain.FeedChain
	cnf        *config.Configuration
	configFile string
}

func recoverPanic() {
	if rec := recover(); rec != nil {
		logrus.Error(rec)
		os.Exit(1)
	}
}

// preRun loads the configuration and builds the service before any
// subcommand runs.
func preRun(app *feedchainInstance) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := config.InitConfig(app.configFile)
		if err != nil {
			log.Fatal("error loading config: ", err)
		}

		cnf, err := config.Fetch()
		if err != nil {
			return err
		}

		newFeedChain, err := setupFeedChain(cnf)
		if err != nil {
			notification.NotifyError(err)
			log.Fatal(err)
		}

		app.feedchain = newFeedChain
		app.cnf = cnf
		return nil
	}
}

func setupFeedChain(cfg *config.Configuration) (*feedchain.FeedChain, error) {
	db, err := database.NewDataSource(cfg)
	if err != nil {
		return nil, fmt.Errorf("error getting datasource: %v", err)
	}

	newFeedChain, err := feedchain.NewFeedChain(db)
	if err != nil {
		return nil, fmt.Errorf("error creating feedchain: %v", err)
	}
	return newFeedChain, nil
}

func NewCLI() *CLI {
	app := &feedchainInstance{}

	var rootCmd = &cobra.Command{
		Use:   "feedchain",
		Short: "Surplus food claim and distribution service",
		Run:   func(cmd *cobra.Command, args []string) {},
	}

	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "./feedchain.json", "Configuration file for feedchain")
	rootCmd.PersistentPreRunE = preRun(app)

	rootCmd.AddCommand(serverCommands(app))
	rootCmd.AddCommand(migrateCommands(app))
	rootCmd.AddCommand(tokenCommands(app))
	rootCmd.AddCommand(configCommands(app))

	return &CLI{cmd: rootCmd}
}

func (c CLI) executeCLI() {
	if err := c.cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func main() {
	defer recoverPanic()

	cli := NewCLI()
	cli.executeCLI()
}
