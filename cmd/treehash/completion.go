package treehash

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/treehash/treehash/internal/digest"
	"github.com/treehash/treehash/internal/engine"
)

func init() {
	cmd := &cobra.Command{
		Use:       "completion bash|zsh|fish|powershell",
		Short:     "Generate shell completion scripts",
		Long:      "Generate a completion script. Besides commands and flags it completes mode names, digest algorithms, log levels and CI providers.",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(_ *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return rootCmd.GenBashCompletionV2(os.Stdout, true)
			case "zsh":
				return rootCmd.GenZshCompletion(os.Stdout)
			case "fish":
				return rootCmd.GenFishCompletion(os.Stdout, true)
			default:
				return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
		Example: `  treehash completion bash > /etc/bash_completion.d/treehash
  treehash completion zsh > "${fpath[1]}/_treehash"`,
	}
	rootCmd.AddCommand(cmd)
}

// fixedValues completes a flag from a static list of "value\tdescription"
// entries, filtered by the typed prefix.
func fixedValues(values ...string) cobra.CompletionFunc {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		var out []string
		for _, v := range values {
			if strings.HasPrefix(strings.ToLower(v), strings.ToLower(toComplete)) {
				out = append(out, v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

func modeValues() []string {
	var out []string
	for m := engine.ModeVerify; m <= engine.ModeUpdateModified; m++ {
		out = append(out, m.String())
	}
	sort.Strings(out)
	return out
}

func algorithmValues() []string {
	var out []string
	for _, name := range digest.Names() {
		out = append(out, name+"\t"+digest.Describe(digest.Algorithm(name)))
	}
	return out
}

// registerFlagCompletions wires value completion for the root command's
// enumerated flags. It must run after the flags are defined.
func registerFlagCompletions() {
	for flag, fn := range map[string]cobra.CompletionFunc{
		"mode":       fixedValues(modeValues()...),
		"hash-alg":   fixedValues(algorithmValues()...),
		"loglevel":   fixedValues("q\tquiet", "e\terrors and unsuccessful files", "w\twarnings (default)", "a\tall"),
		"log-format": fixedValues("text", "json"),
	} {
		_ = rootCmd.RegisterFlagCompletionFunc(flag, fn)
	}
}
