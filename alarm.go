// Package alarm holds build identity for the alarm daemon
package alarm

const Name = "alarmd"

// Version is overridden at link time with -ldflags "-X"
var Version = "dev"
