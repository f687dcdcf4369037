package ver

import (
	"fmt"
	"runtime"
	"strings"
)

var (
	// NAME .
	NAME = "yafuse"
	// VERSION .
	VERSION = "unknown"
	// REVISION .
	REVISION = "HEAD"
	// BUILTAT .
	BUILTAT = "now"
)

// Version returns the multi-line build report printed by `yafuse version`.
func Version() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", NAME)
	fmt.Fprintf(&b, "Version:        %s\n", VERSION)
	fmt.Fprintf(&b, "Git hash:       %s\n", REVISION)
	fmt.Fprintf(&b, "Built:          %s\n", BUILTAT)
	fmt.Fprintf(&b, "Golang version: %s\n", runtime.Version())
	fmt.Fprintf(&b, "OS/Arch:        %s/%s\n", runtime.GOOS, runtime.GOARCH)
	return b.String()
}

// Short .
func Short() string {
	return fmt.Sprintf("%s %s (%s)", NAME, VERSION, REVISION)
}
