package config

const (
	defaultVoicesDir     = "~/voices"
	defaultLogDir        = "~/.local/share/autovo/logs"
	defaultWeiduBinary   = "weidu"
	defaultLanguage      = "en_us"
	defaultLookupTimeout = 60
	defaultVoxBinary     = "voxcpm"
	defaultVoxTimeout    = 3600
	defaultSteps         = 15
	defaultCFGMin        = 1.7
	defaultCFGMax        = 1.7
	defaultBaselineCFG   = 1.8
	defaultSeedGroupSize = 20
	defaultFadeMS        = 10
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
)

func defaultPronunciationFixes() []PronunciationFix {
	return []PronunciationFix{
		{From: "TOO", To: "too"},
		{From: "DEAD", To: "dead"},
		{From: "morte", To: "mort"},
		{From: "WHO", To: "who"},
		{From: "Pharod", To: "Fah-rod"},
		{From: "Ysgard", To: "izgard"},
		{From: "DOES", To: "does"},
		{From: "ye", To: "ya"},
		{From: "MOST", To: "most"},
	}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			VoicesDir: defaultVoicesDir,
			LogDir:    defaultLogDir,
		},
		Decompiler: Decompiler{
			Binary:         defaultWeiduBinary,
			Language:       defaultLanguage,
			CleanupSources: true,
			LookupTimeout:  defaultLookupTimeout,
		},
		Synthesis: Synthesis{
			Binary:        defaultVoxBinary,
			Timeout:       defaultVoxTimeout,
			Steps:         defaultSteps,
			CFGMin:        defaultCFGMin,
			CFGMax:        defaultCFGMax,
			BaselineCFG:   defaultBaselineCFG,
			SeedGroupSize: defaultSeedGroupSize,
			Normalize:     true,
			Denoise:       true,
		},
		Generation: Generation{
			RespectExistingVO:  true,
			AskOnExisting:      true,
			DedupAcrossTable:   true,
			NarrationStitch:    true,
			FadeInMS:           defaultFadeMS,
			FadeOutMS:          defaultFadeMS,
			PronunciationFixes: defaultPronunciationFixes(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
