package main

import (
	"bytes"
	"log"
	"os"

	"odata_batch/internal/batch"
	"odata_batch/internal/bootstrap"
	"odata_batch/internal/config"
	"odata_batch/internal/dispatch"
	"odata_batch/internal/inspect"
	"odata_batch/internal/version"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	conf, err := config.MustLoad()
	if err != nil {
		log.Fatalf("Failed to load configuration: %s", err)
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			log.SetFlags(0)
			log.Println(version.GetVersion())
			return
		case "inspect":
			os.Exit(runInspect(conf, os.Args[2:]))
		}
	}

	app, err := bootstrap.New(conf, dispatch.NewDescriber())
	if err != nil {
		log.Fatalf("Failed to bootstrap: %s", err)
	}
	if err = app.Run(); err != nil {
		log.Fatalf("Service stopped: %s", err)
	}
}

func runInspect(conf config.Config, args []string) int {
	if len(args) < 1 || len(args) > 2 {
		log.Printf("usage: %s inspect <file> [content-type]", os.Args[0])
		return 2
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		log.Printf("Failed to read batch file: %s", err)
		return 1
	}

	var contentType string
	if len(args) == 2 {
		contentType = args[1]
	} else if contentType, err = inspect.DefaultContentType(data); err != nil {
		log.Printf("Failed to derive content type from %s: %s", args[0], err)
		return 1
	}

	inspector := inspect.New(os.Stdout, conf.NoColor())
	err = inspector.Run(bytes.NewReader(data), contentType, batch.Options{
		Strict:     conf.Strict(),
		BaseURI:    conf.BaseURI(),
		PathPrefix: conf.PathPrefix(),
		BufferSize: conf.BufferSize(),
	})
	if err != nil {
		return 1
	}
	return 0
}
