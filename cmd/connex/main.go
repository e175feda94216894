// Command connex runs the contacts API server and its terminal client.
//
// @title        Connex API
// @version      1.0
// @description  Contact management API.
// @host         localhost:5000
// @BasePath     /
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for connex.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Serve   ServeCmd         `cmd:"" help:"Run the contacts API server."`
	Tui     TuiCmd           `cmd:"" help:"Open the interactive contact manager."`
	List    ListCmd          `cmd:"" help:"Print contacts as a table."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("connex"),
		kong.Description("Contact management API and terminal client."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
