// Package config provides bot profile loading and caching.
//
// The config package handles:
//   - Loading bot profiles from JSON files
//   - Profile shape validation with silent strategy clamping
//   - Default profile resolution
//   - Profile discovery and listing
//
// Profile Format:
//
// Profiles are stored as JSON files in the configs directory. Each profile
// defines:
//   - The engine artifact to load (path, disabled flag, load timeout)
//   - The search strategy (kind, heuristic, depth, probability)
//   - Driver loop timing (tick, confirm, and error delays, stuck threshold)
//   - Simulator settings for offline play (seed, move failure rate)
//
// Available Profiles:
//
// The shipped configs directory carries three setups:
//   - default: builtin-compatible stock timing for everyday runs
//   - blitz: short delays and shallow search for fast games
//   - patient: long confirmation windows and deep search
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load a specific profile
//	profile, err := manager.Load("blitz")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get the default profile
//	profile = manager.GetDefault()
//
//	// List available profiles
//	infos, err := manager.List()
//
// Resolution:
//
// The default profile is default.json when present, otherwise the first
// loadable profile in the directory, otherwise an embedded minimal profile
// running the builtin heuristic. A missing directory is not an error, so a
// fresh checkout runs without any setup.
package config
