package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xyzen-dev/agentgraph/agentfactory"
	"github.com/xyzen-dev/agentgraph/compile"
	"github.com/xyzen-dev/agentgraph/ir"
	"github.com/xyzen-dev/agentgraph/model"
	"github.com/xyzen-dev/agentgraph/registry"
	"github.com/xyzen-dev/agentgraph/registry/builtin"
	"github.com/xyzen-dev/agentgraph/runtime"
	"github.com/xyzen-dev/agentgraph/tool"
	"github.com/xyzen-dev/agentgraph/upgrader"
)

// newRunCmd upgrades (when -f is given), compiles, and runs a graph config
// to completion, printing the final state as JSON. With no -f it runs the
// default react builtin, which is how the CLI doubles as a smoke test for
// the whole pipeline.
func newRunCmd() *cobra.Command {
	var provider, modelName, systemPrompt, prompt string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a graph config to completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			var stored *ir.GraphConfig
			if configPath != "" {
				raw, err := loadConfigBytes(configPath)
				if err != nil {
					return err
				}
				result, err := upgrader.Upgrade(raw)
				if err != nil {
					return err
				}
				stored = &result.Config
			}

			resolved := agentfactory.Resolve(stored, systemPrompt)

			reg := registry.NewRegistry()
			var builtins []compile.Component
			builtins = append(builtins, builtin.ReAct())
			builtins = append(builtins, builtin.DeepResearch()...)
			reg.EnsureRegistered(builtins)

			tools := map[string]tool.Tool{}
			httpTool := tool.NewHTTPTool()
			tools[httpTool.Name()] = httpTool

			metrics := runtime.NewMetrics(nil)
			engine := runtime.NewEngine(runtime.Options{Metrics: metrics})

			g, err := compile.Compile(resolved, compile.Options{
				LLMFactory: buildLLMFactory(provider, modelName),
				Tools:      tools,
				Components: reg,
				Runner:     engine,
			})
			if err != nil {
				return err
			}

			initial := ir.State{}
			if prompt != "" {
				initial[ir.MessagesPath] = []ir.Message{{Role: model.RoleUser, Content: prompt}}
			}

			final, err := engine.Run(cmd.Context(), g, initial)
			out, marshalErr := json.MarshalIndent(final, "", "  ")
			if marshalErr == nil {
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
			}
			if err != nil {
				return err
			}
			for _, w := range reg.Warnings() {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: resolving %q: %s\n", w.Key, w.Message)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "mock", "Chat model provider: anthropic, openai, google, or mock")
	cmd.Flags().StringVar(&modelName, "model", "", "Model name override (defaults to the provider's default)")
	cmd.Flags().StringVar(&systemPrompt, "system-prompt", "", "System prompt layered over the graph's own node prompts")
	cmd.Flags().StringVar(&prompt, "prompt", "", "Seed user message for the run")
	return cmd
}
