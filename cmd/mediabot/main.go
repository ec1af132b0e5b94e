package main

import (
	"log"

	corecmd "github.com/m3rciful/mediabot/core/cmd"
	"github.com/m3rciful/mediabot/core/logger"
	"github.com/m3rciful/mediabot/internal/app"
)

func main() {
	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return app.LoadConfig(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*app.Config)
			if !ok {
				log.Fatalf("unexpected config type %T", cfg)
			}
			if err := logger.InitLogger(appCfg.CoreConfig()); err != nil {
				return nil, err
			}
			return app.New(appCfg)
		},
	})
	if err != nil {
		log.Fatalf("mediabot: %v", err)
	}
}
