package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"

	"github.com/joinby-app/qr-gateway/internal/app"
	"github.com/joinby-app/qr-gateway/internal/config"
	"github.com/joinby-app/qr-gateway/internal/logger"
)

var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

func writeHeapProfile(path string) {
	f, err := os.Create(path)
	if err == nil {
		runtime.GC()
		pprof.WriteHeapProfile(f)
		_ = f.Close()
	}
}

func main() {
	logger.InitLogger()

	cfg := config.NewConfig()

	application := app.NewApp(cfg)

	if *memprofile != "" {
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-c
			writeHeapProfile(*memprofile)
			application.Stop()
			os.Exit(0)
		}()
	}

	if err := application.Run(); err != nil {
		application.Stop()
		if *memprofile != "" {
			writeHeapProfile(*memprofile)
		}
		log.Fatalf("Error running application: %v", err)
	}
}
