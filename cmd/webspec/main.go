// Command webspec runs the specification façade against a suite manifest:
// loading a compiled module set, wiring the foreign registry, and either
// verifying a proposition against a trace fixture or describing every
// entry point's status.
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tjweir/quickstrom/pkg/bundle"
	"github.com/tjweir/quickstrom/pkg/config"
	"github.com/tjweir/quickstrom/pkg/eval"
	"github.com/tjweir/quickstrom/pkg/facade"
	"github.com/tjweir/quickstrom/pkg/foreign"
	"github.com/tjweir/quickstrom/pkg/foreign/stdlib"
	"github.com/tjweir/quickstrom/pkg/ir"
	"github.com/tjweir/quickstrom/pkg/program"
	"github.com/tjweir/quickstrom/pkg/temporal"
	"github.com/tjweir/quickstrom/pkg/trace"
)

const cliVersion = "webspec 0.0.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "webspec",
		Short:   "Evaluate LTL DOM-property specifications against observed traces",
		Version: cliVersion,
	}
	root.AddCommand(newVerifyCmd(), newDescribeCmd())
	return root
}

func newVerifyCmd() *cobra.Command {
	var manifestPath, suiteName string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a suite's proposition against its trace fixture",
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := uuid.NewString()

			f, t, err := loadFacade(manifestPath, suiteName)
			if err != nil {
				return fmt.Errorf("run %s: %w", runID, err)
			}
			verdict, evalErr := f.Verify(t)
			if evalErr != nil {
				fmt.Fprintln(cmd.OutOrStdout(), facade.PrettyPrint(manifestPath, evalErr))
				os.Exit(2)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), verdict)
			return nil
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "suite.yml", "path to the suite manifest")
	cmd.Flags().StringVarP(&suiteName, "suite", "s", "", "suite name from the manifest to run")
	return cmd
}

func newDescribeCmd() *cobra.Command {
	var manifestPath, suiteName string
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Report the status of every entry point, without stopping at the first failure",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, t, err := loadFacade(manifestPath, suiteName)
			if err != nil {
				return err
			}
			if err := f.Describe(t); err != nil {
				fmt.Fprintln(cmd.OutOrStdout(), err)
				os.Exit(2)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all entry points resolved cleanly")
			return nil
		},
	}
	cmd.Flags().StringVarP(&manifestPath, "manifest", "m", "suite.yml", "path to the suite manifest")
	cmd.Flags().StringVarP(&suiteName, "suite", "s", "", "suite name from the manifest to run")
	return cmd
}

func loadFacade(manifestPath, suiteName string) (*facade.Facade, trace.Trace, error) {
	manifest, err := config.Load(manifestPath)
	if err != nil {
		return nil, nil, err
	}

	modulePaths := manifest.Modules
	if manifest.Bundle != nil {
		dest := manifest.Name + "-bundle"
		if err := bundle.Fetch(manifest.Bundle, dest); err != nil {
			return nil, nil, err
		}
		bundled, err := bundle.ModulePaths(dest)
		if err != nil {
			return nil, nil, err
		}
		modulePaths = append(modulePaths, bundled...)
	}

	var modules []*ir.Module
	for _, path := range modulePaths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("reading module %s: %w", path, err)
		}
		mod, err := program.LoadJSON(data)
		if err != nil {
			return nil, nil, fmt.Errorf("loading module %s: %w", path, err)
		}
		modules = append(modules, mod)
	}

	prog := &program.Program{Modules: modules, Main: manifest.MainModule}

	registry := foreign.NewRegistry(stdlib.Primitives()...)
	env, err := prog.Environment(registry)
	if err != nil {
		return nil, nil, fmt.Errorf("building environment: %w", err)
	}

	driver := temporal.New()
	ev := eval.New(driver)
	registry.BindEvaluator(ev)

	f := facade.New(ev, env, manifest.MainModule, registry)

	suite := selectSuite(manifest, suiteName)
	if suite == nil {
		return f, trace.Trace{}, nil
	}
	traceData, err := os.ReadFile(suite.Trace)
	if err != nil {
		return nil, nil, fmt.Errorf("reading trace fixture %s: %w", suite.Trace, err)
	}
	t, err := program.LoadTraceJSON(traceData)
	if err != nil {
		return nil, nil, err
	}
	return f, t, nil
}

func selectSuite(manifest *config.Manifest, name string) *config.SuiteSpec {
	if name != "" {
		return manifest.Suites[name]
	}
	for _, s := range manifest.Suites {
		return s
	}
	return nil
}
