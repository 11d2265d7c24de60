// Command coreevm runs a single piece of EVM bytecode against an in-memory
// account database and prints the result.
//
// Usage:
//
//	coreevm --code 0x6001600101600055 [flags]
//
// Flags:
//
//	--code       Hex-encoded init/runtime bytecode to execute (required)
//	--input      Hex-encoded calldata
//	--caller     Hex address of the calling account
//	--to         Hex address the code is deployed at
//	--value      Wei transferred with the call
//	--gas        Gas limit for the call (default: 10000000)
//	--gasprice   Gas price, for the GASPRICE opcode
//	--chainid    Chain ID, for the CHAINID opcode
//	--blocknum   Block number, for NUMBER/BLOCKHASH
//	--blocktime  Block timestamp, for TIMESTAMP
//	--basefee    Block base fee, for BASEFEE
//	--verbosity  Log level 0-5 (default: 3)
//	--metrics    Enable Prometheus metrics collection
//	--version    Print version and exit
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/coreevm/coreevm/core/types"
	"github.com/coreevm/coreevm/core/vm"
	applog "github.com/coreevm/coreevm/pkg/log"
)

var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run is the actual entry point, returning an exit code. It accepts CLI
// arguments without the program name so it can be exercised from a test.
func run(args []string) int {
	cfg, exit, code := parseFlags(args)
	if exit {
		return code
	}

	lvl := verbosityToLevel(cfg.Verbosity)
	logger := applog.New(lvl)
	applog.SetDefault(logger)
	engineLog := logger.Module("coreevm")

	if err := cfg.Validate(); err != nil {
		engineLog.Error("invalid configuration", "err", err)
		return 1
	}

	caller := common.HexToAddress(cfg.Caller)
	to := common.HexToAddress(cfg.To)
	code_ := common.FromHex(cfg.Code)
	input := common.FromHex(cfg.Input)

	statedb := vm.NewMemoryStateDB()
	statedb.CreateAccount(caller)
	statedb.AddBalance(caller, uint256.NewInt(1<<62))
	statedb.CreateAccount(to)
	statedb.SetCode(to, code_)

	blockCtx := vm.BlockContext{
		GetHash:     func(uint64) types.Hash { return types.Hash{} },
		Coinbase:    types.Address{},
		BlockNumber: cfg.BlockNum,
		Time:        cfg.BlockTime,
		GasLimit:    cfg.GasLimit,
		BaseFee:     uint256.NewInt(cfg.BaseFee),
	}
	txCtx := vm.TxContext{
		Origin:   caller,
		GasPrice: uint256.NewInt(cfg.GasPrice),
		ChainID:  cfg.ChainID,
	}

	vmConfig := vm.Config{}
	if cfg.Metrics {
		vmConfig.Metrics = vm.NewMetrics(prometheus.NewRegistry())
		engineLog.Info("metrics collection enabled")
	}

	evm := vm.NewEVM(blockCtx, txCtx, statedb, vmConfig)
	evm.PreWarmAccessList(caller, &to, nil)

	engineLog.Info("executing",
		"caller", caller,
		"to", to,
		"gas", cfg.GasLimit,
		"codelen", len(code_),
	)

	ret, gasLeft, err := evm.Call(caller, to, input, cfg.GasLimit, cfg.valueWord(), false)

	fmt.Printf("return:   0x%x\n", ret)
	fmt.Printf("gas used: %d\n", cfg.GasLimit-gasLeft)
	fmt.Printf("gas left: %d\n", gasLeft)
	if err != nil {
		fmt.Printf("error:    %v\n", err)
		return 1
	}
	for _, l := range statedb.Logs() {
		fmt.Printf("log: address=%x topics=%x data=0x%x\n", l.Address, l.Topics, l.Data)
	}
	return 0
}

func verbosityToLevel(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelError + 4
	case v == 1:
		return slog.LevelError
	case v == 2:
		return slog.LevelWarn
	case v == 3:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// parseFlags parses CLI arguments into a Config. It returns the config,
// whether the caller should exit immediately, and the exit code to use.
func parseFlags(args []string) (Config, bool, int) {
	cfg := DefaultConfig()
	fs := newCustomFlagSet("coreevm")

	showVersion := fs.Bool("version", false, "print version and exit")
	fs.StringVar(&cfg.Code, "code", cfg.Code, "hex-encoded bytecode to execute")
	fs.StringVar(&cfg.Input, "input", cfg.Input, "hex-encoded calldata")
	fs.StringVar(&cfg.Caller, "caller", cfg.Caller, "hex address of the calling account")
	fs.StringVar(&cfg.To, "to", cfg.To, "hex address the code is deployed at")
	fs.Uint64Var(&cfg.Value, "value", cfg.Value, "wei transferred with the call")
	fs.Uint64Var(&cfg.GasLimit, "gas", cfg.GasLimit, "gas limit for the call")
	fs.Uint64Var(&cfg.GasPrice, "gasprice", cfg.GasPrice, "gas price")
	fs.Uint64Var(&cfg.ChainID, "chainid", cfg.ChainID, "chain id")
	fs.Uint64Var(&cfg.BlockNum, "blocknum", cfg.BlockNum, "block number")
	fs.Uint64Var(&cfg.BlockTime, "blocktime", cfg.BlockTime, "block timestamp")
	fs.Uint64Var(&cfg.BaseFee, "basefee", cfg.BaseFee, "block base fee")
	fs.IntVar(&cfg.Verbosity, "verbosity", cfg.Verbosity, "log level 0-5 (0=silent, 4 and 5=debug)")
	fs.BoolVar(&cfg.Metrics, "metrics", cfg.Metrics, "enable metrics collection")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cfg, true, 2
	}

	if *showVersion {
		fmt.Printf("coreevm %s (commit %s)\n", version, commit)
		return cfg, true, 0
	}

	return cfg, false, 0
}
