package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-extras/cobraflags"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"

	"employee-directory/internal/config"
	"employee-directory/internal/database"
	"employee-directory/internal/employee"
	"employee-directory/internal/metrics"
	"employee-directory/internal/server"
)

const (
	configFlag = "config"
	portFlag   = "port"
)

var rootFlags = map[string]cobraflags.Flag{
	configFlag: &cobraflags.StringFlag{
		Name:  configFlag,
		Value: "",
		Usage: "Path to a YAML config file; environment variables override it",
	},
	portFlag: &cobraflags.StringFlag{
		Name:  portFlag,
		Value: "",
		Usage: "HTTP port, overrides HTTP_PORT",
	},
}

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "employee-directory",
		Short:        "Employee directory REST API",
		SilenceUsage: true,
		RunE:         serve,
	}
	cobraflags.RegisterMap(cmd, rootFlags)
	return cmd
}

func serve(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(rootFlags[configFlag].GetString())
	if err != nil {
		log.Errorf("config error: %v", err)
		return err
	}
	if port := rootFlags[portFlag].GetString(); port != "" {
		cfg.HTTPPort = port
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Errorf("database error: %v", err)
		return err
	}

	app := server.New(server.Deps{
		Employees:   employee.NewRepository(db),
		DB:          db,
		Metrics:     metrics.New(),
		CORSOrigins: cfg.CORSOrigins,
		AccessLog:   true,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Errorf("shutdown: %v", err)
		}
	}()

	log.Infof("server listening on port %s", cfg.HTTPPort)
	return app.Listen(":" + cfg.HTTPPort)
}
