package cmd

import (
	"github.com/alecthomas/kong"

	"github.com/jimezsa/jobsweep/internal/models"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `help:"Print version."`

	Version      VersionCmd  `cmd:"" help:"Print version."`
	Config       ConfigCmd   `cmd:"" help:"Manage configuration."`
	Search       SearchCmd   `cmd:"" help:"Search job boards and reconcile the results."`
	Indeed       BoardCmd    `cmd:"" name:"indeed" help:"Search Indeed only."`
	Glassdoor    BoardCmd    `cmd:"" name:"glassdoor" help:"Search Glassdoor only."`
	Google       BoardCmd    `cmd:"" name:"google" help:"Search Google Jobs only."`
	ZipRecruiter BoardCmd    `cmd:"" name:"ziprecruiter" help:"Search ZipRecruiter only."`
	LinkedIn     BoardCmd    `cmd:"" name:"linkedin" help:"Search LinkedIn only."`
	Schedule     ScheduleCmd `cmd:"" help:"Run searches on a cron schedule."`
	Seen         SeenCmd     `cmd:"" help:"Seen posting utilities."`
	Proxies      ProxiesCmd  `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{
		Indeed:       BoardCmd{Board: models.BoardIndeed},
		Glassdoor:    BoardCmd{Board: models.BoardGlassdoor},
		Google:       BoardCmd{Board: models.BoardGoogle},
		ZipRecruiter: BoardCmd{Board: models.BoardZipRecruiter},
		LinkedIn:     BoardCmd{Board: models.BoardLinkedIn},
	}
}
