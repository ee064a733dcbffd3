package main

import (
	"fmt"
	"os"

	"github.com/mwantia/tierd/cmd/tierd/cli"
	"github.com/mwantia/tierd/cmd/tierd/cli/client"
	"github.com/mwantia/tierd/cmd/tierd/cli/server"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	info := cli.VersionInfo{
		Version: version,
		Commit:  commit,
	}
	root := cli.NewRootCommand(info)

	root.AddCommand(cli.NewVersionCommand(info))

	root.AddCommand(server.NewAgentCommand())
	root.AddCommand(server.NewConfigCommand())
	root.AddCommand(server.NewDatabaseCommand())

	root.AddCommand(client.NewScanCommand())
	root.AddCommand(client.NewTiersCommand())
	root.AddCommand(client.NewDisksCommand())

	if err := root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
