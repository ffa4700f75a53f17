package cmd

import (
	"context"
	"fmt"

	"github.com/prometheus/common/version"
	"github.com/spf13/cobra"

	"github.com/drogue-iot/octoprint-transcoder/internal/common"
	"github.com/drogue-iot/octoprint-transcoder/internal/config"
	"github.com/drogue-iot/octoprint-transcoder/internal/factory"
	"github.com/drogue-iot/octoprint-transcoder/internal/log"
	"github.com/drogue-iot/octoprint-transcoder/internal/processing"
	"github.com/drogue-iot/octoprint-transcoder/pkg/pipeline"
)

var conf *config.Config

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Receive cloud events over http and answer the transcoded event",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		conf, err = config.Parse(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to parse config %s: %w", cfgFile, err)
		}

		// Init logger
		err = log.Init(conf.Logs)
		if err != nil {
			return fmt.Errorf("failed to init logger: %w", err)
		}

		logger := log.Logger()

		// Dump generic information
		logger.Info("Starting octoprint transcoder",
			"version", version.Info(),
			"buildContext", version.BuildContext(),
		)
		logger.Info("Using config", "config", fmt.Sprintf("%+v", *conf))

		return nil
	},
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.Logger()

		// Set max procs based on cpu limits
		err := common.SetMaxProcs()
		if err != nil {
			logger.Error(err, "failed to set max procs")

			return
		}

		// Set max memory
		err = common.SetMemLimit()
		if err != nil {
			logger.Error(err, "failed to set mem limit")

			return
		}

		// Listen to sigterm and interrupt signals
		ctx := common.SetupSignalHandler(context.Background())

		// Create pipeline
		registry := factory.CreateRegistry()

		proc, err := factory.DecorateProcessing(processing.NewMain(), registry)
		if err != nil {
			logger.Error(err, "failed to create processing")

			return
		}

		errProc, err := factory.DecorateErrorProcessing(logger, registry)
		if err != nil {
			logger.Error(err, "failed to create error processing")

			return
		}

		handler := pipeline.NewCloudEventHandler(proc, errProc).WithLogger(logger)

		// Start servers
		err = common.RunServers(ctx, conf.GracefulDuration,
			factory.CreateServer(*conf, handler, logger),
			factory.CreatePrometheusServer(conf.Metrics, registry),
		)
		if err != nil {
			logger.Error(err, "servers stopped with error")

			return
		}

		logger.V(2).Info("Processing stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
