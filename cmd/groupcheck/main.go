// Command groupcheck runs the non-uniform group reduction conformance suite
// against a configured device and reports pass/fail/skip per combination.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wavelane/groupcheck/groups"
	"github.com/wavelane/groupcheck/runtime"
	"github.com/wavelane/groupcheck/verify"
)

var (
	flagBackend       string
	flagKind          string
	flagSubGroupSize  int
	flagWorkGroupSize int
	flagDisable       []string
)

func main() {
	root := &cobra.Command{
		Use:           "groupcheck",
		Short:         "Conformance harness for non-uniform group reductions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List group kinds, partition strategies, and value types",
		RunE:  runList,
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the conformance suite",
		RunE:  runSuite,
	}
	runCmd.Flags().StringVar(&flagBackend, "backend", "",
		"device backend (default: $"+runtime.BackendEnvVar+" or host)")
	runCmd.Flags().StringVar(&flagKind, "kind", "", "run only the named group kind")
	runCmd.Flags().IntVar(&flagSubGroupSize, "sub-group-size", 0, "sub-group width (0 = backend default)")
	runCmd.Flags().IntVar(&flagWorkGroupSize, "work-group-size", 0, "work-group size (0 = backend default)")
	runCmd.Flags().StringSliceVar(&flagDisable, "disable", nil,
		"capabilities to report unsupported (forces skips)")

	root.AddCommand(listCmd, runCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "groupcheck: %v\n", err)
		os.Exit(1)
	}
}

func runList(cmd *cobra.Command, args []string) error {
	for _, h := range groups.All() {
		fmt.Printf("%s (%d test cases)\n", h.Name(), h.NumTestCases())
		for tc := 0; tc < h.NumTestCases(); tc++ {
			fmt.Printf("  %d: %s\n", tc, h.TestCaseName(tc))
		}
	}
	fmt.Printf("value types: %v\n", verify.ValueTypes())
	return nil
}

func runSuite(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg := runtime.Config{
		WorkGroupSize: flagWorkGroupSize,
		SubGroupSize:  flagSubGroupSize,
	}
	for _, name := range flagDisable {
		c, err := capabilityByName(name)
		if err != nil {
			return err
		}
		cfg.Disable = append(cfg.Disable, c)
	}

	var device *runtime.Device
	if flagBackend == "" {
		device, err = runtime.NewDefault(cfg)
	} else {
		device, err = runtime.New(flagBackend, cfg)
	}
	if err != nil {
		return err
	}
	logger.Info("device ready",
		zap.String("backend", device.Name()),
		zap.String("mode", device.Mode()),
		zap.Int("work_group_size", device.MaxWorkGroupSize()),
		zap.Int("sub_group_size", device.SubGroupSize()))

	var reports []verify.Report
	if flagKind == "" {
		reports = verify.RunSuite(device)
	} else {
		h, err := groups.ByName(flagKind)
		if err != nil {
			return err
		}
		reports = verify.RunKind(device.NewQueue(), h)
	}

	var passed, failed, skipped int
	for _, rep := range reports {
		fields := []zap.Field{
			zap.String("group", rep.Group),
			zap.String("value_type", rep.ValueType),
			zap.Stringer("shape", rep.Shape),
			zap.Stringer("outcome", rep.Outcome),
		}
		switch rep.Outcome {
		case verify.Passed:
			passed++
			logger.Info("report", fields...)
		case verify.Skipped:
			skipped++
			logger.Info("report", append(fields, zap.String("reason", rep.SkipReason))...)
		case verify.Failed:
			failed++
			if rep.Err != nil {
				fields = append(fields, zap.Error(rep.Err))
			}
			logger.Error("report", fields...)
			for _, c := range rep.FailedChecks() {
				fmt.Printf("FAILED: %s\n", c)
			}
		}
	}

	fmt.Printf("%d passed, %d failed, %d skipped\n", passed, failed, skipped)
	if failed > 0 {
		os.Exit(1)
	}
	return nil
}

func capabilityByName(name string) (runtime.Capability, error) {
	for _, c := range runtime.AllCapabilities() {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", name)
}
