package main

import (
	"flag"
	"os"

	"github.com/kode4food/alarm/internal/mcp"
)

func main() {
	daemon := flag.String(
		"daemon",
		"http://localhost:8080",
		"Alarm daemon base URL",
	)
	flag.Parse()

	server := mcp.NewServer(*daemon, nil)
	if err := server.Run(); err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}
