package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/evidence-cli/internal/classify"
	"github.com/sells-group/evidence-cli/internal/urlnorm"
)

var (
	classifyTitle    string
	classifySiteName string
)

// classifyResult is the YAML shape printed by the classify command.
type classifyResult struct {
	URL      string `yaml:"url"`
	Domain   string `yaml:"domain"`
	Kind     string `yaml:"kind"`
	Rule     string `yaml:"rule"`
	Label    string `yaml:"label"`
	Notes    string `yaml:"notes"`
	Excluded bool   `yaml:"excluded"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify <url>",
	Short: "Show how a single URL would be filtered and classified",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res := explainURL(args[0], classifyTitle, classifySiteName, filterPolicy())

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return eris.Wrap(err, "encode classification")
		}
		return enc.Close()
	},
}

func init() {
	classifyCmd.Flags().StringVar(&classifyTitle, "title", "", "page title signal")
	classifyCmd.Flags().StringVar(&classifySiteName, "site-name", "", "og:site_name signal")
	rootCmd.AddCommand(classifyCmd)
}

// filterPolicy builds the exclusion policy from config, or the defaults
// when no config is loaded.
func filterPolicy() *urlnorm.Policy {
	if cfg == nil {
		return urlnorm.DefaultPolicy()
	}
	return urlnorm.NewPolicy(cfg.Filter.BannedHosts, cfg.Filter.HardExcludes, cfg.Filter.ExcludePaths)
}

func explainURL(rawURL, title, siteName string, policy *urlnorm.Policy) classifyResult {
	canonical := urlnorm.Canonicalize(rawURL)
	domain := urlnorm.Domain(canonical)
	res := classifyResult{
		URL:      canonical,
		Domain:   domain,
		Excluded: policy.IsExcluded(canonical),
	}

	rule, ok := classify.Match(classify.NewSignals(canonical, title, siteName))
	if !ok {
		return res
	}
	res.Kind = string(rule.Kind)
	res.Rule = rule.Name
	res.Label = classify.SelectLabel(rule.Kind, title, canonical)
	res.Notes = classify.ShortNotes(rule.Kind, domain)
	return res
}
