package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/knot-cloud/storage-go/internal/config"
	"github.com/knot-cloud/storage-go/internal/export"
	"github.com/knot-cloud/storage-go/internal/logger"
	"github.com/knot-cloud/storage-go/internal/output"
	"github.com/knot-cloud/storage-go/internal/version"
	"github.com/knot-cloud/storage-go/network"
	"github.com/knot-cloud/storage-go/storage"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(os.Stdout, os.Stderr)
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knot-storage",
		Short: "Read device data from the KNoT cloud storage service",
		Long: `knot-storage queries the KNoT cloud data storage service.

The service is configured with environment variables:
  KNOT_STORAGE_TOKEN      access token (required)
  KNOT_STORAGE_PROTOCOL   http or https (default https)
  KNOT_STORAGE_HOSTNAME   default storage.knot.cloud
  KNOT_STORAGE_PORT       default 443
  KNOT_STORAGE_PATHNAME   base path, default empty
  KNOT_STORAGE_TIMEOUT    request timeout, default 10s
  LOG_LEVEL               debug, info, warn, error (default info)
  ENVIRONMENT             dev, test, staging, prod (default dev)`,
		Version:      version.Get().String(),
		SilenceUsage: true,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.AddCommand(newDataCmd(stdout, stderr))
	return cmd
}

type dataFlags struct {
	device     string
	sensor     int
	startDate  string
	finishDate string
	order      int
	orderBy    string
	skip       int
	take       int
	all        bool
	pageSize   int
	limit      int
	rps        float64
	color      bool
}

func newDataCmd(stdout, stderr io.Writer) *cobra.Command {
	var f dataFlags

	cmd := &cobra.Command{
		Use:   "data",
		Short: "List data records",
		Long: `List the data sent by devices.

Examples:
  knot-storage data --take 10
  knot-storage data --device 0643ca1462f94b79 --start-date 2019-03-18T14:42:03.192Z
  knot-storage data --device 0643ca1462f94b79 --sensor 2 --all --page-size 500`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sensor") && f.device == "" {
				return errors.New("--sensor requires --device")
			}

			cfg, err := config.NewConfig()
			if err != nil {
				return err
			}
			log := logger.InitLogger(stderr, cfg.Level(), cfg.Environment)

			client, err := storage.New(cfg.Storage(log))
			if err != nil {
				log.Error("invalid storage configuration", slog.String("error", err.Error()))
				return err
			}

			err = runData(cmd.Context(), cmd, client, f, stdout, log)
			var storageErr *network.Error
			if errors.As(err, &storageErr) {
				log.Error("storage request failed",
					slog.Int("code", storageErr.Code),
					slog.String("message", storageErr.Message),
				)
			} else if err != nil {
				log.Error("data command failed", slog.String("error", err.Error()))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&f.device, "device", "", "list the data of this device id")
	cmd.Flags().IntVar(&f.sensor, "sensor", 0, "list the data of this sensor id (requires --device)")
	cmd.Flags().StringVar(&f.startDate, "start-date", "", "only data sent at or after this ISO date")
	cmd.Flags().StringVar(&f.finishDate, "finish-date", "", "only data sent at or before this ISO date")
	cmd.Flags().IntVar(&f.order, "order", 1, "sort order: 1 ascending, -1 descending")
	cmd.Flags().StringVar(&f.orderBy, "order-by", "", "field used to sort the data, e.g. timestamp")
	cmd.Flags().IntVar(&f.skip, "skip", 0, "number of records to skip")
	cmd.Flags().IntVar(&f.take, "take", 0, "maximum number of records to return")
	cmd.Flags().BoolVar(&f.all, "all", false, "read every page of the listing")
	cmd.Flags().IntVar(&f.pageSize, "page-size", export.DefaultPageSize, "records per request with --all")
	cmd.Flags().IntVar(&f.limit, "limit", 0, "stop after this many records with --all (0 for no limit)")
	cmd.Flags().Float64Var(&f.rps, "rps", 5, "maximum requests per second with --all (0 for no limit)")
	cmd.Flags().BoolVar(&f.color, "color", false, "highlight the json output")

	return cmd
}

// buildQuery returns the query parameters for the flags set on the command line
func buildQuery(cmd *cobra.Command, f dataFlags) network.Query {
	query := network.Query{}
	flags := cmd.Flags()

	if flags.Changed("start-date") {
		query["startDate"] = f.startDate
	}
	if flags.Changed("finish-date") {
		query["finishDate"] = f.finishDate
	}
	if flags.Changed("order") {
		query["order"] = f.order
	}
	if flags.Changed("order-by") {
		query["orderBy"] = f.orderBy
	}
	if flags.Changed("skip") {
		query["skip"] = f.skip
	}
	if flags.Changed("take") {
		query["take"] = f.take
	}
	return query
}

func runData(ctx context.Context, cmd *cobra.Command, client *storage.Client, f dataFlags, stdout io.Writer, log *slog.Logger) error {
	var list export.ListFunc
	switch {
	case cmd.Flags().Changed("sensor"):
		list = func(ctx context.Context, q network.Query) ([]storage.Data, error) {
			return client.ListDataBySensor(ctx, f.device, f.sensor, q)
		}
	case f.device != "":
		list = func(ctx context.Context, q network.Query) ([]storage.Data, error) {
			return client.ListDataByDevice(ctx, f.device, q)
		}
	default:
		list = client.ListData
	}

	query := buildQuery(cmd, f)
	opts := output.Options{Color: f.color}

	if !f.all {
		data, err := list(ctx, query)
		if err != nil {
			return err
		}
		log.Debug("listed data", slog.Int("records", len(data)))
		if data == nil {
			data = []storage.Data{}
		}
		return output.JSON(stdout, data, opts)
	}

	data := []storage.Data{}
	n, err := export.Run(ctx, list, query, export.Options{
		PageSize:          f.pageSize,
		Limit:             f.limit,
		RequestsPerSecond: f.rps,
		Logger:            log,
	}, func(d storage.Data) error {
		data = append(data, d)
		return nil
	})
	if err != nil {
		return err
	}
	log.Debug("exported data", slog.Int("records", n))
	return output.JSON(stdout, data, opts)
}
