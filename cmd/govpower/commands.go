package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/prophouse/govpower-sdk/common/utils"
	"github.com/prophouse/govpower-sdk/govpower"
	"github.com/prophouse/govpower-sdk/starknet"
	"github.com/prophouse/govpower-sdk/strategy"
)

func newRootCmd() *cobra.Command {
	var (
		configPath     string
		strategiesPath string
		account        string
		timestamp      uint64
		keepZero       bool
	)
	root := &cobra.Command{
		Use:           "govpower",
		Short:         "Inspect governance power strategies",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "govpower.json", "chain config file")

	withStrategies := func(cmd *cobra.Command, what string) {
		cmd.Flags().StringVar(&strategiesPath, "strategies", "", "JSON file with a list of "+what)
		_ = cmd.MarkFlagRequired("strategies")
	}
	withAccount := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&account, "account", "", "L1 account address")
		cmd.Flags().Uint64Var(&timestamp, "timestamp", 0, "snapshot timestamp")
		_ = cmd.MarkFlagRequired("account")
	}
	open := func() (*govpower.Manager, error) {
		cfg, err := govpower.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		return govpower.New(cfg)
	}
	parseAccount := func() (common.Address, error) {
		if !common.IsHexAddress(account) {
			return common.Address{}, fmt.Errorf("invalid account %q", account)
		}
		return common.HexToAddress(account), nil
	}

	list := &cobra.Command{
		Use:   "strategies",
		Short: "List the strategies configured for the chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			return renderHandlers(cmd.OutOrStdout(), m.Handlers())
		},
	}

	params := &cobra.Command{
		Use:   "params",
		Short: "Derive the params registering each strategy config",
		RunE: func(cmd *cobra.Command, args []string) error {
			var configs []strategy.Config
			if err := readJSONFile(strategiesPath, &configs); err != nil {
				return err
			}
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			var rows []govpower.AddressAndParams
			for _, c := range configs {
				r, err := m.StrategyAddressAndParams(cmd.Context(), c)
				if err != nil {
					return err
				}
				rows = append(rows, r)
			}
			renderParams(cmd.OutOrStdout(), configs, rows)
			return nil
		},
	}
	withStrategies(params, "strategy configs")

	power := &cobra.Command{
		Use:   "power",
		Short: "Compute the voting power of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := parseAccount()
			if err != nil {
				return err
			}
			var configs []strategy.Config
			if err := readJSONFile(strategiesPath, &configs); err != nil {
				return err
			}
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			var opts []govpower.PowerOption
			if keepZero {
				opts = append(opts, govpower.WithZeroPower())
			}
			powers, err := m.PowerForStrategies(cmd.Context(), acc, timestamp, configs, opts...)
			if err != nil {
				return err
			}
			renderPowers(cmd.OutOrStdout(), powers)
			return nil
		},
	}
	withStrategies(power, "strategy configs")
	withAccount(power)
	power.Flags().BoolVar(&keepZero, "all", false, "also list strategies giving no power")

	userParams := &cobra.Command{
		Use:   "user-params",
		Short: "Derive the params an account submits for registered strategies",
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := parseAccount()
			if err != nil {
				return err
			}
			var registered []strategy.WithID
			if err := readJSONFile(strategiesPath, &registered); err != nil {
				return err
			}
			m, err := open()
			if err != nil {
				return err
			}
			defer m.Close()
			res, err := m.UserParamsForStrategies(cmd.Context(), acc, timestamp, registered)
			if err != nil {
				return err
			}
			calls, err := m.PreCallsForStrategies(cmd.Context(), acc, timestamp, registered)
			if err != nil {
				return err
			}
			renderUserParams(cmd.OutOrStdout(), res, calls)
			return nil
		},
	}
	withStrategies(userParams, "registered strategies ({id, address})")
	withAccount(userParams)

	root.AddCommand(list, params, power, userParams)
	return root
}

func readJSONFile(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetOutputMirror(w)
	return t
}

func renderHandlers(w io.Writer, handlers []strategy.Handler) error {
	t := newTable(w)
	t.AppendHeader(table.Row{"type", "address", "short", "decimal", "pre-calls"})
	for _, h := range handlers {
		forms, err := utils.AddressForms(h.Address())
		if err != nil {
			return err
		}
		_, pre := h.(strategy.PreCaller)
		t.AppendRow(table.Row{h.Type(), forms[0], forms[1], forms[2], pre})
	}
	t.Render()
	return nil
}

func renderParams(w io.Writer, configs []strategy.Config, rows []govpower.AddressAndParams) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "type", "strategy", "params"})
	for i, r := range rows {
		t.AppendRow(table.Row{i, configs[i].StrategyType, r.Address, strings.Join(r.Params, "\n")})
	}
	t.Render()
}

func renderPowers(w io.Writer, powers []govpower.Power) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "type", "strategy", "power"})
	total := new(big.Int)
	for i, p := range powers {
		t.AppendRow(table.Row{i, p.Config.StrategyType, p.Address, p.GovPower.String()})
		total.Add(total, p.GovPower)
	}
	t.AppendFooter(table.Row{"", "", "total", total.String()})
	t.Render()
}

func renderUserParams(w io.Writer, res []govpower.UserParams, calls []starknet.Call) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "id", "strategy", "params"})
	for i, r := range res {
		t.AppendRow(table.Row{i, r.Strategy.ID, r.Strategy.Address, len(r.Params)})
	}
	t.Render()
	if len(calls) == 0 {
		return
	}
	c := newTable(w)
	c.AppendHeader(table.Row{"#", "contract", "entrypoint", "calldata"})
	for i, call := range calls {
		c.AppendRow(table.Row{i, call.ContractAddress, call.Entrypoint, len(call.Calldata)})
	}
	c.Render()
}
