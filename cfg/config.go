// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfg

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the root of frostbite's runtime configuration, bound from
// flags, a YAML file and FROSTBITE_-prefixed environment variables by
// cmd/root.go, the same layered viper setup the teacher uses for its
// mount config.
type Config struct {
	Image ImageConfig `yaml:"image"`

	Process ProcessConfig `yaml:"process"`

	Logging LoggingConfig `yaml:"logging"`

	Metrics MetricsConfig `yaml:"metrics"`

	Debug DebugConfig `yaml:"debug"`
}

// ImageConfig names the disk image the FAT16 root directory is read
// from.
type ImageConfig struct {
	Path string `yaml:"path"`
}

// ProcessConfig sizes the fixed tables component E/C allocate at boot.
type ProcessConfig struct {
	MaxProcs         int `yaml:"max-procs"`
	MaxOpenFiles     int `yaml:"max-open-files"`
	MaxFdsPerProcess int `yaml:"max-fds-per-process"`
}

// LoggingConfig configures internal/logger.
type LoggingConfig struct {
	Severity LogSeverity `yaml:"severity"`
	Format   LogFormat   `yaml:"format"`
	FilePath ResolvedPath `yaml:"file-path"`
}

// MetricsConfig configures the Prometheus listener cmd/run.go starts
// alongside the kernel.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Address string `yaml:"address"`
}

// DebugConfig mirrors the teacher's debug knobs, retargeted from fuse
// invariant checks to the kernel's own CheckInvariants.
type DebugConfig struct {
	ExitOnInvariantViolation bool `yaml:"exit-on-invariant-violation"`
}

func BindFlags(flagSet *pflag.FlagSet) error {
	var err error

	flagSet.StringP("image", "i", "", "Path to the FAT16 disk image to boot from.")
	if err = viper.BindPFlag("image.path", flagSet.Lookup("image")); err != nil {
		return err
	}

	flagSet.IntP("max-procs", "", DefaultMaxProcs, "Size of the fixed process table, including idle.")
	if err = viper.BindPFlag("process.max-procs", flagSet.Lookup("max-procs")); err != nil {
		return err
	}

	flagSet.IntP("max-open-files", "", DefaultMaxOpenFiles, "Size of the global open-file table.")
	if err = viper.BindPFlag("process.max-open-files", flagSet.Lookup("max-open-files")); err != nil {
		return err
	}

	flagSet.IntP("max-fds-per-process", "", DefaultMaxFdsPerProcess, "Size of each process's descriptor table.")
	if err = viper.BindPFlag("process.max-fds-per-process", flagSet.Lookup("max-fds-per-process")); err != nil {
		return err
	}

	flagSet.StringP("log-severity", "", INFO, "Minimum log severity: TRACE, DEBUG, INFO, WARNING, ERROR, OFF.")
	if err = viper.BindPFlag("logging.severity", flagSet.Lookup("log-severity")); err != nil {
		return err
	}

	flagSet.StringP("log-format", "", "text", "Log encoding: text or json.")
	if err = viper.BindPFlag("logging.format", flagSet.Lookup("log-format")); err != nil {
		return err
	}

	flagSet.StringP("log-file", "", "", "Path to a log file. Empty means stderr.")
	if err = viper.BindPFlag("logging.file-path", flagSet.Lookup("log-file")); err != nil {
		return err
	}

	flagSet.BoolP("metrics", "", false, "Serve Prometheus metrics.")
	if err = viper.BindPFlag("metrics.enabled", flagSet.Lookup("metrics")); err != nil {
		return err
	}

	flagSet.StringP("metrics-address", "", ":9090", "Address the metrics HTTP server listens on.")
	if err = viper.BindPFlag("metrics.address", flagSet.Lookup("metrics-address")); err != nil {
		return err
	}

	flagSet.BoolP("debug-invariants", "", false, "Panic when an internal kernel invariant is violated.")
	if err = viper.BindPFlag("debug.exit-on-invariant-violation", flagSet.Lookup("debug-invariants")); err != nil {
		return err
	}

	return nil
}
