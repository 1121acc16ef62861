package config

// Default is used when no config file exists. It describes the tags of a
// typical event search so the bar is usable out of the box.
func Default() *Config {
	return &Config{
		MaxQueryLength:        400,
		MaxSearchItems:        10,
		DisplayRecentSearches: true,
		Normalize:             NormalizeLower,
		SaveScope:             "events",
		Debounce:              "300ms",
		DocsURL:               "https://github.com/bascanada/smartsearch#search-syntax",
		Recent:                &Recent{Max: 20},
		Tags: map[string]TagConfig{
			"level": {
				Description: "Severity of the event",
				Values:      []string{"fatal", "error", "warning", "info", "debug"},
			},
			"environment": {
				Description: "Deployment environment",
				Values:      []string{"production", "staging", "development"},
			},
			"release": {
				Description: "Version the event was seen in",
				Predefined:  true,
			},
			"user": {
				Description: "User email or id",
				Predefined:  true,
			},
			"url": {
				Description: "Request URL",
				Predefined:  true,
			},
			"count": {
				Description: "Number of occurrences",
				Kind:        "number",
			},
			"handled": {
				Description: "Whether the error was handled",
				Kind:        "boolean",
			},
			"timestamp": {
				Description: "When the event happened",
				Kind:        "date",
			},
		},
	}
}
