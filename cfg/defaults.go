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

// GetDefaultLoggingConfig returns the configuration used before a
// config file has been parsed, so early startup logging is never nil.
func GetDefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Severity: INFO,
		Format:   "text",
	}
}

// GetDefaultConfig returns a Config with every field set to its
// flag-equivalent default, for callers (tests, `frostbite run` without
// a config file) that want a ready-to-use Config without going through
// viper.
func GetDefaultConfig() Config {
	return Config{
		Process: ProcessConfig{
			MaxProcs:         DefaultMaxProcs,
			MaxOpenFiles:     DefaultMaxOpenFiles,
			MaxFdsPerProcess: DefaultMaxFdsPerProcess,
		},
		Logging: GetDefaultLoggingConfig(),
		Metrics: MetricsConfig{Address: ":9090"},
	}
}
