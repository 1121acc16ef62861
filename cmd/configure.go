// SPDX-License-Identifier: GPL-3.0-only
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bascanada/smartsearch/pkg/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactive wizard to generate a configuration file",
	Long: `Launch an interactive wizard to describe the keys of your search bar.

This command will guide you through declaring the searchable keys, where
their values and the recent searches come from, and generate a ready-to-use
config file.

Example:
  smartsearch configure
  smartsearch configure -c /path/to/config.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runConfigWizard(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// Value sources offered by the wizard
const (
	sourceStatic = "static"
	sourceRemote = "remote"

	recentLocal  = "local"
	recentRemote = "remote"
	recentNone   = "none"
)

// wizardAnswers is everything the wizard asks for
type wizardAnswers struct {
	Source      string
	RemoteURL   string
	AuthHeader  string
	AuthValue   string
	Recent      string
	SaveScope   string
	FuzzyKeys   bool
	StartFromEx bool
	Tags        []wizardTag
}

type wizardTag struct {
	Key         string
	Kind        string
	Description string
	Values      string
}

func runConfigWizard(cfgPath string) error {
	var (
		answers wizardAnswers
		confirm bool
	)

	// Welcome message
	fmt.Println("🔎 Welcome to smartsearch configuration wizard!")
	fmt.Println()

	// 1. Sources
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where do the values of your keys come from?").
				Description("Static values are listed in the config, a remote API is queried as you type").
				Options(
					huh.NewOption("Listed in the config", sourceStatic),
					huh.NewOption("Remote API (GET /tags/{key}/values)", sourceRemote),
				).
				Value(&answers.Source),

			huh.NewSelect[string]().
				Title("Where are recent searches kept?").
				Options(
					huh.NewOption("Local file (~/.smartsearch/recent.yaml)", recentLocal),
					huh.NewOption("Remote API (/recent-searches)", recentRemote),
					huh.NewOption("Nowhere", recentNone),
				).
				Value(&answers.Recent),

			huh.NewConfirm().
				Title("Match keys fuzzily?").
				Description("\"lvl\" would suggest \"level\"").
				Value(&answers.FuzzyKeys),

			huh.NewConfirm().
				Title("Start from the example event keys?").
				Description("level, environment, release, user, url, count, handled, timestamp").
				Value(&answers.StartFromEx),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	if answers.Source == sourceRemote || answers.Recent == recentRemote {
		if err := configureRemote(&answers); err != nil {
			return err
		}
	}
	if answers.Recent != recentNone {
		answers.SaveScope = "events"
		if err := huh.NewInput().
			Title("Scope of the saved searches").
			Description("Searches of different bars are kept apart by scope").
			Value(&answers.SaveScope).
			Run(); err != nil {
			return err
		}
	}

	// 2. Keys
	for {
		addMore := len(answers.Tags) == 0 && !answers.StartFromEx
		if !addMore {
			if err := huh.NewConfirm().
				Title("Add a key?").
				Value(&addMore).
				Run(); err != nil {
				return err
			}
		}
		if !addMore {
			break
		}

		tag, err := configureTag(answers.Source)
		if err != nil {
			return err
		}
		answers.Tags = append(answers.Tags, tag)
	}

	cfg, err := buildWizardConfig(answers)
	if err != nil {
		return err
	}

	// 3. Preview Configuration
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to generate YAML: %w", err)
	}

	fmt.Println("\n" + strings.Repeat("─", 60))
	fmt.Println("📝 Generated Configuration:")
	fmt.Println(strings.Repeat("─", 60))
	fmt.Println(string(out))
	fmt.Println(strings.Repeat("─", 60) + "\n")

	// 4. Confirm and Save
	targetPath, err := config.ResolvePath(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to locate the config file: %w", err)
	}

	confirmForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Description(fmt.Sprintf("Target: %s", targetPath)).
				Affirmative("Yes, save it!").
				Negative("No, cancel").
				Value(&confirm),
		),
	)
	if err := confirmForm.Run(); err != nil {
		return err
	}

	if !confirm {
		fmt.Println("❌ Configuration not saved. Run 'smartsearch configure' again when ready.")
		return nil
	}

	// Check if config already exists and merge if needed
	if existing, _, err := config.Load(targetPath); err == nil {
		fmt.Printf("\n📝 Updating existing configuration file: %s\n", targetPath)
		cfg = mergeConfig(existing, cfg)
	} else if errors.Is(err, config.ErrConfigNotFound) {
		fmt.Printf("\n📄 Creating new configuration file: %s\n", targetPath)
	} else {
		return fmt.Errorf("existing config cannot be merged: %w", err)
	}

	if err := config.Write(targetPath, cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	// Success message with next steps
	fmt.Printf("\n✅ Configuration saved to %s\n\n", targetPath)
	fmt.Println("🎉 You're all set! Try it now:")
	fmt.Println("   smartsearch tui")
	fmt.Println("   smartsearch suggest 'level:'")
	return nil
}

func configureRemote(answers *wizardAnswers) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("API URL").
				Description("Base URL serving /tags/{key}/values, /releases and /recent-searches").
				Placeholder("https://search.example.com/api").
				Value(&answers.RemoteURL).
				Validate(func(str string) error {
					if strings.TrimSpace(str) == "" {
						return fmt.Errorf("URL cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Authentication header (optional)").
				Placeholder("Authorization").
				Value(&answers.AuthHeader),
			huh.NewInput().
				Title("Header value (optional)").
				Placeholder("Bearer ...").
				EchoMode(huh.EchoModePassword).
				Value(&answers.AuthValue),
		),
	).Run()
}

func configureTag(source string) (wizardTag, error) {
	tag := wizardTag{Kind: "string"}

	fields := []huh.Field{
		huh.NewInput().
			Title("Key").
			Description("Typed before the colon, e.g. level in level:error").
			Value(&tag.Key).
			Validate(validateTagKey),
		huh.NewSelect[string]().
			Title("Kind of value").
			Options(
				huh.NewOption("Text", "string"),
				huh.NewOption("Number", "number"),
				huh.NewOption("Boolean", "boolean"),
				huh.NewOption("Date", "date"),
			).
			Value(&tag.Kind),
		huh.NewInput().
			Title("Description (optional)").
			Value(&tag.Description),
	}
	valuesTitle := "Values (comma separated)"
	if source == sourceRemote {
		valuesTitle = "Values always suggested (comma separated, optional)"
	}
	fields = append(fields, huh.NewInput().
		Title(valuesTitle).
		Placeholder("error, warning, info").
		Value(&tag.Values))

	err := huh.NewForm(huh.NewGroup(fields...)).Run()
	return tag, err
}

func validateTagKey(str string) error {
	if strings.TrimSpace(str) == "" {
		return fmt.Errorf("key cannot be empty")
	}
	for _, r := range str {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '.' || r == '-') {
			return fmt.Errorf("key can only contain letters, digits, '_', '.' and '-'")
		}
	}
	return nil
}

// buildWizardConfig turns the answers into a validated config.
func buildWizardConfig(answers wizardAnswers) (*config.Config, error) {
	cfg := &config.Config{Tags: map[string]config.TagConfig{}}
	if answers.StartFromEx {
		cfg = config.Default()
	}
	cfg.FuzzyKeys = answers.FuzzyKeys
	cfg.SaveScope = answers.SaveScope
	cfg.DisplayRecentSearches = answers.Recent != recentNone

	if answers.RemoteURL != "" {
		cfg.Remote = &config.Remote{URL: strings.TrimSpace(answers.RemoteURL)}
		if answers.AuthHeader != "" {
			cfg.Remote.Headers = map[string]string{answers.AuthHeader: answers.AuthValue}
		}
	}

	switch answers.Recent {
	case recentLocal:
		if cfg.Recent == nil {
			cfg.Recent = &config.Recent{}
		}
	default:
		cfg.Recent = nil
	}

	for _, tag := range answers.Tags {
		tc := config.TagConfig{
			Description: tag.Description,
			Values:      splitValues(tag.Values),
		}
		if tag.Kind != "string" {
			tc.Kind = tag.Kind
		}
		// without a remote API the listed values are all there is
		tc.Predefined = answers.Source != sourceRemote && len(tc.Values) > 0
		cfg.Tags[strings.TrimSpace(tag.Key)] = tc
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfig keeps the existing settings and adds the new keys over them.
func mergeConfig(existing, generated *config.Config) *config.Config {
	if existing.Tags == nil {
		existing.Tags = map[string]config.TagConfig{}
	}
	for k, v := range generated.Tags {
		existing.Tags[k] = v
	}
	if generated.Remote != nil {
		existing.Remote = generated.Remote
	}
	if generated.Recent != nil {
		existing.Recent = generated.Recent
	}
	if generated.SaveScope != "" {
		existing.SaveScope = generated.SaveScope
	}
	existing.FuzzyKeys = existing.FuzzyKeys || generated.FuzzyKeys
	return existing
}

func splitValues(s string) []string {
	var values []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
