package config

type StoreCfg struct {
	// Path is the location of the store's database file. The parent
	// directory must exist and be writable.
	Path string `yaml:"path"`

	// NoSync skips fsync on store commits. Faster, at the cost of losing
	// the most recent writes on a crash. Expired entries are re-pruned at
	// startup either way.
	NoSync bool `yaml:"no_sync"`
}

func (cfg *StoreCfg) Enabled() bool {
	return cfg != nil
}
