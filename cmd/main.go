package main

import (
	"csystem-sip/cmd/bootstrap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	pflag.String("config", ".env", "path to the env file")
	pflag.Bool("migrate", false, "apply database migrations and exit")
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		logrus.Fatalf("Failed to bind flags: %v", err)
	}

	if viper.GetBool("migrate") {
		if err := bootstrap.MigrateOnly(viper.GetString("config")); err != nil {
			logrus.Fatalf("Failed to migrate: %v", err)
		}
		return
	}

	// Initialize application with all dependencies
	app, err := bootstrap.New(viper.GetString("config"))
	if err != nil {
		logrus.Fatalf("Failed to initialize application: %v", err)
	}

	// Run the application
	app.Run()
}
