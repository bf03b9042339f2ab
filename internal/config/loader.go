/*
 * loader.go, part of dockeval.
 *
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 */

package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix of all settings.
const envPrefix = "DOCKEVAL"

// newViper builds a viper instance reading YAML files, with DOCKEVAL_ environment
// overrides where nested keys like "dock.timeout" map to DOCKEVAL_DOCK_TIMEOUT.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)
	return v
}

// setDefaults registers every key, which viper needs to look the
// environment up for it on Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("result_root", DefaultResultRoot)
	v.SetDefault("exp_name", DefaultExpName)
	v.SetDefault("protein_root", DefaultProteinRoot)
	v.SetDefault("ref_root", DefaultRefRoot)
	v.SetDefault("exhaustiveness", DefaultExhaustiveness)
	v.SetDefault("workers", DefaultWorkers)
	v.SetDefault("modes", DefaultModes())
	v.SetDefault("layout", LayoutFlat)
	v.SetDefault("manifest", DefaultManifest)
	v.SetDefault("max_matches", DefaultMaxMatches)
	v.SetDefault("dock.vina_command", DefaultVinaCommand)
	v.SetDefault("dock.obabel_command", DefaultObabelCommand)
	v.SetDefault("dock.timeout", "0s")
	v.SetDefault("dock.size_factor", DefaultSizeFactor)
	v.SetDefault("dock.buffer", DefaultBuffer)
	v.SetDefault("dock.seed", 0)
	v.SetDefault("dock.cpu", DefaultDockCPU)
	v.SetDefault("dock.tmp_dir", "")
	v.SetDefault("dock.keep_work_dir", false)
	v.SetDefault("dataset.root", "")
	v.SetDefault("dataset.split_file", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output_paths", []string{"stderr"})
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"result_root":    "result_root",
	"exp_name":       "exp_name",
	"protein_root":   "protein_root",
	"ref_root":       "ref_root",
	"exhaustiveness": "exhaustiveness",
	"workers":        "workers",
	"layout":         "layout",
	"log_level":      "log.level",
	"timeout":        "dock.timeout",
}

// Load builds the configuration from, in decreasing priority, the flags that were set,
// DOCKEVAL_* environment variables, the YAML file at configPath (if not empty) and the defaults.
// flags may be nil.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "config: failed to read config file %q", configPath)
		}
	}
	if flags != nil {
		for name, key := range FlagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.Wrapf(err, "config: binding flag %s", name)
			}
		}
	}
	return unmarshalAndFinalize(v)
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "config: failed to unmarshal configuration")
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config: validation failed")
	}
	return cfg, nil
}
