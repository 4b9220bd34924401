// Command mevinspect runs the trace-classification pipeline over a single
// transaction or a block range, pricing and persisting the result.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/mev-inspect-go/mevinspect/abiregistry"
	"github.com/mev-inspect-go/mevinspect/evaluate"
	"github.com/mev-inspect-go/mevinspect/pipeline"
	"github.com/mev-inspect-go/mevinspect/price"
	"github.com/mev-inspect-go/mevinspect/store"
	"github.com/mev-inspect-go/mevinspect/store/pebblestore"
	"github.com/mev-inspect-go/mevinspect/trace"
	"github.com/mev-inspect-go/mevinspect/tracesource"
)

// Exit codes, fixed by the specification.
const (
	exitConfigError        = 1
	exitUnreachableSource  = 2
	exitPersistentStoreErr = 3
	exitMalformedTrace     = 4
)

func main() {
	app := &cli.App{
		Name:  "mevinspect",
		Usage: "classify and price MEV activity in Ethereum transactions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "trace source JSON-RPC URL", EnvVars: []string{"MEVINSPECT_URL"}},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML oracle/router configuration path"},
			&cli.StringFlag{Name: "db", Aliases: []string{"d"}, Usage: "pebble database directory", Value: "./mevinspect-db"},
			&cli.StringFlag{Name: "table", Aliases: []string{"D"}, Usage: "table-namespace override"},
			&cli.BoolFlag{Name: "reset", Aliases: []string{"r"}, Usage: "drop and recreate the persistent store before running"},
			&cli.BoolFlag{Name: "overwrite", Aliases: []string{"o"}, Usage: "overwrite rows already persisted for a given transaction"},
		},
		Commands: []*cli.Command{
			{
				Name:      "tx",
				Usage:     "inspect a single transaction",
				ArgsUsage: "<hash>",
				Action:    runTx,
			},
			{
				Name:      "blocks",
				Usage:     "inspect every transaction in a block range",
				ArgsUsage: "<from> <to>",
				Action:    runBlocks,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error("mevinspect: fatal", "err", err)
		os.Exit(exitCodeFor(err))
	}
}

func exitCodeFor(err error) int {
	switch {
	case errors.Is(err, errConfig):
		return exitConfigError
	case errors.Is(err, tracesource.ErrUnreachable):
		return exitUnreachableSource
	case errors.Is(err, store.ErrStorage):
		return exitPersistentStoreErr
	case errors.Is(err, trace.ErrMalformedTrace):
		return exitMalformedTrace
	default:
		return exitConfigError
	}
}

var errConfig = errors.New("mevinspect: configuration error")

// env bundles everything a command run needs, built once from the
// global flags and torn down when the command returns.
type env struct {
	source    tracesource.Source
	registry  *abiregistry.Registry
	oracle    price.Oracle
	processor *pipeline.Processor
	repo      *store.Repository
	closeDB   func() error
	weth      common.Address
	overwrite bool
}

func newEnv(c *cli.Context) (*env, error) {
	url := c.String("url")
	if url == "" {
		return nil, fmt.Errorf("%w: -u/--url is required", errConfig)
	}

	cfg, err := loadOracleConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errConfig, err)
	}
	weth := common.HexToAddress(cfg.WETH)

	ctx := context.Background()
	rpcSource, err := tracesource.Dial(ctx, url)
	if err != nil {
		return nil, err
	}

	registry, err := abiregistry.New()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errConfig, err)
	}

	var router price.RouterCaller
	if cfg.Router != "" {
		router = price.NewRateLimitedRouterCaller(
			price.NewEthRouterCaller(rpcSource.EthClient(), common.HexToAddress(cfg.Router)),
			cfg.RequestsPerSec,
		)
	} else {
		log.Warn("mevinspect: no router configured, every non-WETH quote will fail gracefully as unpriced")
	}
	oracleCfg := price.Config{
		WETH:            weth,
		StablecoinPairs: cfg.stablecoinPairs(),
		CacheSize:       cfg.CacheSize,
		MaxAttempts:     cfg.MaxAttempts,
		RetryBackoff:    cfg.RetryBackoff,
	}
	oracle := price.NewAMMOracle(router, oracleCfg)

	dbPath := c.String("db")
	if c.Bool("reset") {
		if err := os.RemoveAll(dbPath); err != nil {
			return nil, fmt.Errorf("%w: reset db: %v", errConfig, err)
		}
	}
	pdb, err := pebblestore.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrStorage, err)
	}
	var kv store.KeyValueStore = pdb
	kv = store.WithPrefix(kv, c.String("table"))
	repo := store.NewRepository(kv)

	return &env{
		source:    rpcSource,
		registry:  registry,
		oracle:    oracle,
		processor: pipeline.New(registry, oracle, weth),
		repo:      repo,
		closeDB:   pdb.Close,
		weth:      weth,
		overwrite: c.Bool("overwrite"),
	}, nil
}

func (e *env) Close() {
	if closer, ok := e.source.(*tracesource.RPCSource); ok {
		closer.Close()
	}
	_ = e.closeDB()
}

func runTx(c *cli.Context) error {
	if c.NArg() < 1 {
		return fmt.Errorf("%w: tx requires a transaction hash", errConfig)
	}
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.Close()

	return e.processHash(c.Context, common.HexToHash(c.Args().Get(0)))
}

func runBlocks(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("%w: blocks requires <from> <to>", errConfig)
	}
	from, err := strconv.ParseUint(c.Args().Get(0), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid from block: %v", errConfig, err)
	}
	to, err := strconv.ParseUint(c.Args().Get(1), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid to block: %v", errConfig, err)
	}
	if to < from {
		return fmt.Errorf("%w: to block precedes from block", errConfig)
	}

	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.Close()

	for block := from; block <= to; block++ {
		hashes, err := e.hashesInBlock(c.Context, block)
		if err != nil {
			return err
		}
		for _, hash := range hashes {
			if err := e.processHash(c.Context, hash); err != nil {
				return err
			}
		}
	}
	return nil
}

// hashesInBlock asks the trace source's underlying RPC client for the
// transaction hashes in block; Fixture-backed sources (tests) never
// reach this path.
func (e *env) hashesInBlock(ctx context.Context, block uint64) ([]trace.Hash, error) {
	rpcSource, ok := e.source.(*tracesource.RPCSource)
	if !ok {
		return nil, fmt.Errorf("%w: blocks command requires a live RPC source", errConfig)
	}
	return rpcSource.TransactionHashesInBlock(ctx, block)
}

func (e *env) processHash(ctx context.Context, hash trace.Hash) error {
	log.Info("mevinspect: fetching transaction", "hash", hash)

	if !e.overwrite {
		if _, err := e.repo.Get(hash.Hex()); err == nil {
			log.Info("mevinspect: already persisted, skipping (pass -o to overwrite)", "hash", hash)
			return nil
		}
	}

	tx, err := e.source.Trace(ctx, hash)
	if err != nil {
		return err
	}

	insp, err := trace.Build(tx.Frames, tx.Logs, trace.TxMeta{Hash: hash, Block: tx.Block})
	if err != nil {
		return err
	}
	insp.Sender = tx.From

	insp, err = e.processor.Process(ctx, insp)
	if err != nil {
		return err
	}

	eval, err := evaluate.Evaluate(ctx, insp, tx.GasUsed, tx.GasPrice, e.oracle, e.weth)
	if err != nil {
		return err
	}

	row := toInspectionRow(insp, eval)
	if err := e.repo.Upsert(row); err != nil {
		return err
	}

	log.Info("mevinspect: done", "hash", hash, "profit", eval.Profit, "unprofitable", eval.Unprofitable)
	return nil
}
