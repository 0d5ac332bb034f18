// Package statetool provides CLI commands for inspecting and updating
// the global-state trie.
package statetool

import (
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"github.com/quanta-labs/quanta-go/cli/options"
	"github.com/quanta-labs/quanta-go/pkg/core/state"
	"github.com/quanta-labs/quanta-go/pkg/core/storage"
	"github.com/quanta-labs/quanta-go/pkg/core/trie"
	"github.com/quanta-labs/quanta-go/pkg/encoding/bytesrepr"
	"github.com/quanta-labs/quanta-go/pkg/util"
)

var (
	rootFlag = cli.StringFlag{
		Name:  "root, r",
		Usage: "hex-encoded root digest of the trie version to work on",
	}
	keyFlag = cli.StringFlag{
		Name:  "key, k",
		Usage: "formatted state key, e.g. account-hash-<hex> or uref-<hex>-<rights>",
	}
)

// NewCommands returns the 'state' command.
func NewCommands() []cli.Command {
	cfgFlags := []cli.Flag{options.Config, options.Debug}
	return []cli.Command{{
		Name:  "state",
		Usage: "work with the global-state trie",
		Subcommands: []cli.Command{
			{
				Name:   "init",
				Usage:  "store the empty trie and print its root digest",
				Action: initState,
				Flags:  cfgFlags,
			},
			{
				Name:   "get",
				Usage:  "look a key up in a given trie version",
				Action: getValue,
				Flags:  append([]cli.Flag{rootFlag, keyFlag}, cfgFlags...),
			},
			{
				Name:   "put",
				Usage:  "write a value under a key, printing the new root digest",
				Action: putValue,
				Flags: append([]cli.Flag{
					rootFlag,
					keyFlag,
					cli.StringFlag{
						Name:  "value, v",
						Usage: "value to store",
					},
					cli.StringFlag{
						Name:  "type, t",
						Usage: "value type, one of: string, u64",
						Value: "string",
					},
				}, cfgFlags...),
			},
			{
				Name:   "dump",
				Usage:  "list all key-value pairs of a trie version",
				Action: dumpState,
				Flags:  append([]cli.Flag{rootFlag}, cfgFlags...),
			},
		},
	}}
}

// openTrie builds the trie stack from the configuration in ctx. The
// returned closer releases the backing store.
func openTrie(ctx *cli.Context) (*trie.Trie, *zap.Logger, func(), error) {
	cfg, err := options.GetConfigFromContext(ctx)
	if err != nil {
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	log, err := options.HandleLoggingParams(ctx.Bool("debug"), cfg.ApplicationConfiguration)
	if err != nil {
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	db, err := storage.NewStore(cfg.ApplicationConfiguration.DBConfiguration)
	if err != nil {
		return nil, nil, nil, cli.NewExitError(fmt.Errorf("opening store: %w", err), 1)
	}
	s, err := trie.NewStore(db, cfg.ApplicationConfiguration.TrieCacheSize, log)
	if err != nil {
		_ = db.Close()
		return nil, nil, nil, cli.NewExitError(err, 1)
	}
	closer := func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close the store", zap.Error(err))
		}
	}
	return trie.New(s), log, closer, nil
}

func rootFromContext(ctx *cli.Context) (util.Digest, error) {
	d, err := util.DigestDecodeString(ctx.String("root"))
	if err != nil {
		return d, cli.NewExitError(fmt.Errorf("invalid root digest: %w", err), 1)
	}
	return d, nil
}

func keyFromContext(ctx *cli.Context) (state.Key, error) {
	k, err := state.ParseKey(ctx.String("key"))
	if err != nil {
		return k, cli.NewExitError(err, 1)
	}
	return k, nil
}

func initState(ctx *cli.Context) error {
	t, log, closer, err := openTrie(ctx)
	if err != nil {
		return err
	}
	defer closer()
	root, err := t.EmptyRoot()
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log.Info("empty trie stored", zap.Stringer("root", root))
	fmt.Fprintln(ctx.App.Writer, root.String())
	return nil
}

func getValue(ctx *cli.Context) error {
	t, _, closer, err := openTrie(ctx)
	if err != nil {
		return err
	}
	defer closer()
	root, err := rootFromContext(ctx)
	if err != nil {
		return err
	}
	key, err := keyFromContext(ctx)
	if err != nil {
		return err
	}
	value, err := t.Get(root, key)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if value == nil {
		return cli.NewExitError("key not found", 1)
	}
	fmt.Fprintln(ctx.App.Writer, formatStoredValue(*value))
	return nil
}

func putValue(ctx *cli.Context) error {
	t, log, closer, err := openTrie(ctx)
	if err != nil {
		return err
	}
	defer closer()
	root, err := rootFromContext(ctx)
	if err != nil {
		return err
	}
	key, err := keyFromContext(ctx)
	if err != nil {
		return err
	}
	var cl state.CLValue
	switch typ := ctx.String("type"); typ {
	case "string":
		cl = state.CLValueFromString(ctx.String("value"))
	case "u64":
		u, err := strconv.ParseUint(ctx.String("value"), 10, 64)
		if err != nil {
			return cli.NewExitError(fmt.Errorf("invalid u64 value: %w", err), 1)
		}
		cl = state.CLValueFromU64(u)
	default:
		return cli.NewExitError(fmt.Errorf("unsupported value type %q", typ), 1)
	}
	newRoot, err := t.Put(root, key, *state.NewCLStoredValue(cl))
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	log.Info("value stored",
		zap.Stringer("key", key),
		zap.Stringer("root", newRoot))
	fmt.Fprintln(ctx.App.Writer, newRoot.String())
	return nil
}

func dumpState(ctx *cli.Context) error {
	t, _, closer, err := openTrie(ctx)
	if err != nil {
		return err
	}
	defer closer()
	root, err := rootFromContext(ctx)
	if err != nil {
		return err
	}
	count := 0
	err = t.Walk(root, func(k state.Key, v state.StoredValue) error {
		count++
		_, err := fmt.Fprintf(ctx.App.Writer, "%s\t%s\n", k, formatStoredValue(v))
		return err
	})
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	fmt.Fprintf(ctx.App.Writer, "%d entries\n", count)
	return nil
}

// formatStoredValue renders a stored value for display, keeping unparsed
// payloads as hex.
func formatStoredValue(v state.StoredValue) string {
	switch v.Type {
	case state.CLValueT:
		return formatCLValue(*v.CLValue)
	case state.AccountT:
		return fmt.Sprintf("account %s", v.Account.Hash)
	case state.ContractT:
		return fmt.Sprintf("contract package=%x protocol=%s",
			v.Contract.PackageHash, v.Contract.Protocol)
	case state.ContractPackageT:
		return fmt.Sprintf("contract-package versions=%d", len(v.ContractPackage.Versions))
	default:
		return "unknown"
	}
}

func formatCLValue(v state.CLValue) string {
	switch v.Type.Tag {
	case state.CLString:
		if s, err := v.ToString(); err == nil {
			return strconv.Quote(s)
		}
	case state.CLU64:
		if u, err := v.ToU64(); err == nil {
			return strconv.FormatUint(u, 10)
		}
	case state.CLBool:
		if b, err := v.ToBool(); err == nil {
			return strconv.FormatBool(b)
		}
	case state.CLKey:
		if k, err := v.ToKey(); err == nil {
			return k.String()
		}
	}
	data, err := bytesrepr.Marshal(v)
	if err != nil {
		return "malformed value"
	}
	return "0x" + hex.EncodeToString(data)
}
