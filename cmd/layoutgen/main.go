package main

import (
	"flag"
	"log"

	"github.com/danmuck/packctl/internal/config"
	"github.com/danmuck/packctl/internal/layout"
)

func main() {
	kind := flag.String("kind", "layout", "template kind: server|layout")
	output := flag.String("output", "", "output path for the template")
	validate := flag.Bool("validate", false, "validate an existing file instead of writing")
	input := flag.String("input", "", "path for validation (defaults to per-kind path)")
	force := flag.Bool("force", false, "overwrite an existing file")
	flag.Parse()

	if *validate {
		path := *input
		if path == "" {
			switch *kind {
			case "server":
				path = "cmd/packd/config.toml"
			case "layout":
				path = "layouts/telemetry.toml"
			default:
				log.Fatalf("unknown kind: %s", *kind)
			}
		}

		switch *kind {
		case "server":
			if _, err := config.LoadServerConfig(path); err != nil {
				log.Fatal(err)
			}
		case "layout":
			if _, err := layout.Load(path); err != nil {
				log.Fatal(err)
			}
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
		log.Printf("Validated %s file at %s", *kind, path)
		return
	}

	target := *output
	if target == "" {
		switch *kind {
		case "server":
			target = "cmd/packd/config.toml"
		case "layout":
			target = "layouts/telemetry.toml"
		default:
			log.Fatalf("unknown kind: %s", *kind)
		}
	}

	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote %s template to %s", *kind, target)
}
