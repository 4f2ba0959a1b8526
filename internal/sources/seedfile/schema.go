package seedfile

// Config is the top-level structure of the seed file: a plain list of
// video URLs or bare identifiers to preload into the collection.
type Config struct {
	Videos []string `yaml:"videos"`
}
