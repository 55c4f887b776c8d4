package main

import (
	"flag"
	"log"

	"github.com/On-Jun9/NamePipe/internal/web"
)

var (
	version = "dev" // set by ldflags during build
)

func main() {
	addr := flag.String("addr", "localhost:8080", "HTTP server address")
	dataDir := flag.String("data-dir", "", "directory for presets, history and logs (default ~/.namepipe)")
	flag.Parse()

	server := web.NewServer()
	server.SetVersion(version)
	if *dataDir != "" {
		server.SetDataDir(*dataDir)
	}

	if err := server.Start(*addr); err != nil {
		log.Fatal(err)
	}
}
