package config

const (
	defaultCatalogDir      = "~/.local/share/stlcat/catalog"
	defaultVocabDir        = "~/.config/stlcat/vocab"
	defaultChangeSetDir    = "~/.local/share/stlcat/changesets"
	defaultLogDir          = "~/.local/share/stlcat/logs"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultMinTokenLength  = 2
	defaultReferenceMM     = 1750
	defaultScaleTolerance  = 40
	defaultScoreBaseline   = 1.0
	defaultScoreIncrement  = 0.5
	defaultWarningPenalty  = 0.25
	defaultMatchMinScore   = 2.0
	defaultMatchMinDelta   = 1.0
	defaultStrongWeight    = 2.0
	defaultWeakWeight      = 0.5
	defaultPromoteMinCount = 5
	defaultWorkers         = 4
	defaultBatchSize       = 256
)

func defaultSeparators() []string {
	return []string{" ", "-", "_", ".", ",", "+", "(", ")", "[", "]", "{", "}"}
}

func defaultStopwords() []string {
	return []string{
		"the", "of", "and", "for", "with",
		"stl", "obj", "lys", "chitubox", "zip", "rar",
		"files", "file", "final", "new",
	}
}

func defaultAllowedDenominators() []int {
	return []int{6, 7, 8, 9, 10, 12}
}

func defaultSuspectDenominators() []int {
	return []int{3, 4, 100}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			CatalogDir:   defaultCatalogDir,
			VocabDir:     defaultVocabDir,
			ChangeSetDir: defaultChangeSetDir,
			LogDir:       defaultLogDir,
		},
		Tokenizer: Tokenizer{
			Separators:     defaultSeparators(),
			Stopwords:      defaultStopwords(),
			MinTokenLength: defaultMinTokenLength,
		},
		Scale: Scale{
			AllowedDenominators: defaultAllowedDenominators(),
			SuspectDenominators: defaultSuspectDenominators(),
			ReferenceHeightMM:   defaultReferenceMM,
			TolerancePct:        defaultScaleTolerance,
		},
		Scoring: Scoring{
			Baseline:       defaultScoreBaseline,
			MatchIncrement: defaultScoreIncrement,
			WarningPenalty: defaultWarningPenalty,
		},
		Matcher: Matcher{
			MinScore:     defaultMatchMinScore,
			MinDelta:     defaultMatchMinDelta,
			StrongWeight: defaultStrongWeight,
			WeakWeight:   defaultWeakWeight,
			KitRollup:    true,
		},
		Residual: Residual{
			PromoteMinCount: defaultPromoteMinCount,
		},
		Pipeline: Pipeline{
			Workers:   defaultWorkers,
			BatchSize: defaultBatchSize,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
