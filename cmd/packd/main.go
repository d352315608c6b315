package main

import (
	"flag"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/packctl/internal/config"
	"github.com/danmuck/packctl/internal/layout"
	"github.com/danmuck/packctl/internal/logging"
	"github.com/danmuck/packctl/internal/observability"
	"github.com/danmuck/packctl/internal/server"
)

func main() {
	cfgPath := flag.String("config", "cmd/packd/config.toml", "path to packd config")
	flag.Parse()

	logging.ConfigureRuntime()

	cfg, err := config.LoadServerConfig(*cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	observability.InitLogger(cfg.Name)

	s := server.Appear(cfg.Name, cfg.Addr, cfg.CorsOrigins)
	for _, path := range cfg.Layouts {
		l, err := layout.Load(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("load layout")
		}
		if err := s.RegisterLayout(l); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("register layout")
		}
		log.Info().
			Str("layout", l.Name()).
			Uint("bits", l.Width()).
			Msg("layout registered")
	}

	if err := s.Serve(); err != nil {
		log.Fatal().Err(err).Msg("serve")
	}
}
