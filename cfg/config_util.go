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

import "fmt"

// Validate rejects configurations the kernel cannot boot with: every
// fixed table must have room for at least the reserved slots spec.md
// requires (idle at process slot 0, init at pid 1).
func Validate(c *Config) error {
	if c.Image.Path == "" {
		return fmt.Errorf("cfg: image.path is required")
	}
	if c.Process.MaxProcs < 2 {
		return fmt.Errorf("cfg: process.max-procs must be >= 2 (idle + init)")
	}
	if c.Process.MaxOpenFiles < 1 {
		return fmt.Errorf("cfg: process.max-open-files must be >= 1")
	}
	if c.Process.MaxFdsPerProcess < 1 {
		return fmt.Errorf("cfg: process.max-fds-per-process must be >= 1")
	}
	return nil
}
