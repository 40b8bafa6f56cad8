package main

import (
	"encoding/json"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/photon-storage/go-common/log"

	"github.com/photon-storage/sth-explorer/client"
	"github.com/photon-storage/sth-explorer/cmd"
	"github.com/photon-storage/sth-explorer/cmd/runtime/version"
	"github.com/photon-storage/sth-explorer/sth"
)

var (
	endpointFlag = &cli.StringFlag{
		Name:    "endpoint",
		Usage:   "The sth explorer API endpoint",
		Value:   "http://localhost:8080/sth/v1",
		EnvVars: []string{"STH_EXPLORER_ENDPOINT"},
	}

	logIDFlag = &cli.StringFlag{
		Name:     "log-id",
		Usage:    "Base64 log identifier, padding optional",
		Required: true,
	}

	optionalLogIDFlag = &cli.StringFlag{
		Name:  "log-id",
		Usage: "Base64 log identifier, all logs when omitted",
	}

	treeSizeFlag = &cli.Uint64Flag{
		Name:     "tree-size",
		Usage:    "Tree size of the observed STH",
		Required: true,
	}

	rootHashFlag = &cli.StringFlag{
		Name:     "root-hash",
		Usage:    "Root hash of the observed STH",
		Required: true,
	}

	timestampFlag = &cli.Uint64Flag{
		Name:  "timestamp",
		Usage: "STH timestamp in epoch milliseconds, defaults to now",
	}

	monitorIDFlag = &cli.StringFlag{
		Name:     "monitor-id",
		Usage:    "Identifier of the reporting monitor",
		Required: true,
		EnvVars:  []string{"STH_MONITOR_ID"},
	}
)

func main() {
	app := cli.App{
		Name:    "sthctl",
		Usage:   "submit and query tree head attestations",
		Version: version.Get(),
		Flags:   append([]cli.Flag{endpointFlag}, cmd.LogFlags...),
		Before:  cmd.InitLog,
		Commands: []*cli.Command{
			{
				Name:   "submit",
				Usage:  "Submit an observed STH",
				Flags:  []cli.Flag{logIDFlag, treeSizeFlag, rootHashFlag, timestampFlag, monitorIDFlag},
				Action: submit,
			},
			{
				Name:   "latest",
				Usage:  "Show the latest stored STH of a log",
				Flags:  []cli.Flag{logIDFlag},
				Action: latest,
			},
			{
				Name:   "consistency",
				Usage:  "Check monitors agree on the latest STHs",
				Flags:  []cli.Flag{optionalLogIDFlag},
				Action: consistency,
			},
			{
				Name:   "stats",
				Usage:  "Print the ingestion statistics report",
				Action: stats,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("running sthctl failed", "error", err)
		os.Exit(1)
	}
}

func newClient(ctx *cli.Context) *client.Client {
	return client.New(ctx.String(endpointFlag.Name))
}

func submit(ctx *cli.Context) error {
	logID := ctx.String(logIDFlag.Name)
	treeSize := ctx.Uint64(treeSizeFlag.Name)
	rootHash := ctx.String(rootHashFlag.Name)
	monitorID := ctx.String(monitorIDFlag.Name)
	ts := ctx.Uint64(timestampFlag.Name)
	if !ctx.IsSet(timestampFlag.Name) {
		ts = uint64(time.Now().UnixMilli())
	}

	res, err := newClient(ctx).Submit(ctx.Context, &sth.Submission{
		LogID:     &logID,
		TreeSize:  &treeSize,
		RootHash:  &rootHash,
		Timestamp: &ts,
		MonitorID: &monitorID,
	})
	if err != nil {
		return err
	}

	log.Info("sth submitted",
		"id", res.ID,
		"log_id", res.LogID,
		"new", res.New,
	)
	return printJSON(res)
}

func latest(ctx *cli.Context) error {
	l, err := newClient(ctx).Latest(ctx.Context, ctx.String(logIDFlag.Name))
	if err != nil {
		return err
	}

	return printJSON(l)
}

func consistency(ctx *cli.Context) error {
	r, err := newClient(ctx).Consistency(ctx.Context, ctx.String(optionalLogIDFlag.Name))
	if err != nil {
		return err
	}

	if !r.Consistent {
		log.Warn("inconsistent logs found")
	}
	return printJSON(r)
}

func stats(ctx *cli.Context) error {
	r, err := newClient(ctx).Stats(ctx.Context)
	if err != nil {
		return err
	}

	return printJSON(r)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
