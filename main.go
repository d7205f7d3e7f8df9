package main

import (
	// Embedded zone data so bookings work on hosts without /usr/share/zoneinfo.
	_ "time/tzdata"

	"github.com/teemow/invitebooker/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
