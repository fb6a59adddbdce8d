// Copyright 2024 Google LLC
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
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// LogSeverity is the datatype for the logging.severity param: one of
// TRACE/DEBUG/INFO/WARNING/ERROR/OFF.
type LogSeverity string

func (s *LogSeverity) UnmarshalText(text []byte) error {
	v := strings.ToUpper(string(text))
	allowed := []string{TRACE, DEBUG, INFO, WARNING, ERROR, OFF}
	if !slices.Contains(allowed, v) {
		return fmt.Errorf("invalid log severity %q, must be one of %v", string(text), allowed)
	}
	*s = LogSeverity(v)
	return nil
}

func (s LogSeverity) MarshalText() ([]byte, error) {
	return []byte(string(s)), nil
}

// LogFormat is the datatype for logging.format: text or json.
type LogFormat string

func (f *LogFormat) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	if v != "text" && v != "json" {
		return fmt.Errorf("invalid log format %q, must be \"text\" or \"json\"", string(text))
	}
	*f = LogFormat(v)
	return nil
}

func (f LogFormat) MarshalText() ([]byte, error) {
	return []byte(string(f)), nil
}

// ResolvedPath is a path that has had a leading "~" expanded to the
// user's home directory at decode time, the same convention the
// teacher's util.GetResolvedPath applies to its own path-valued flags.
type ResolvedPath string

func resolvePath(p string) (string, error) {
	if p == "" || p[0] != '~' {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", p, err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

func (r *ResolvedPath) UnmarshalText(text []byte) error {
	resolved, err := resolvePath(string(text))
	if err != nil {
		return err
	}
	*r = ResolvedPath(resolved)
	return nil
}

func (r ResolvedPath) MarshalText() ([]byte, error) {
	return []byte(string(r)), nil
}
