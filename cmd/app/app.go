package main

import (
	"os"

	"github.com/DRSN-tech/feedconv/internal/app"
	config "github.com/DRSN-tech/feedconv/internal/cfg"
	"github.com/DRSN-tech/feedconv/pkg/logger"
)

//	@title			feedconv API
//	@version		1.0
//	@description	Конвертер XML-фидов поставщиков в CSV и шлюз команд BaseLinker.
//	@BasePath		/api/v1

// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
func main() {
	log := logger.NewSlogLogger()

	cfg, err := config.Load(log)
	if err != nil {
		log.Errorf(err, "failed to load config")
		os.Exit(1)
	}

	application, err := app.NewApp(cfg, log)
	if err != nil {
		log.Errorf(err, "failed to initialize app")
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		os.Exit(1)
	}
}
