package config

// Load builds a Config from the defaults, the YAML file at path (if not
// empty) and the environment, including the variables of dotenvPath.
//
// The result is not validated: callers apply command-line overrides first
// and then call Validate.
func Load(path, dotenvPath string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	lookup, err := EnvLookup(dotenvPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}
