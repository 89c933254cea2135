package stage

// Stage names as they appear in the progress log
const (
	NameSearch       = "search"
	NamePrioritize   = "prioritize_sources"
	NameSynthesize   = "synthesize"
	NameEnrichImages = "enrich_images"
	NameFormatOutput = "format_output"
)
