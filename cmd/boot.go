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

package cmd

import (
	"fmt"
	"os"

	"github.com/amoldhamale1105/frostbite/cfg"
	"github.com/amoldhamale1105/frostbite/internal/fat16"
	"github.com/amoldhamale1105/frostbite/internal/kernel"
	"github.com/amoldhamale1105/frostbite/internal/logger"
	"github.com/amoldhamale1105/frostbite/internal/metrics"
	"github.com/amoldhamale1105/frostbite/internal/simhal"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sys/unix"
)

// bootKernel opens the configured disk image and constructs a Kernel
// wired to the simulated HAL, the same assembly NewKernel's caller
// (main.go in the original kernel) performs at boot.
func bootKernel(c *cfg.Config) (*kernel.Kernel, *os.File, error) {
	logger.Init(logger.Config{
		Format:   string(c.Logging.Format),
		Severity: string(c.Logging.Severity),
		FilePath: string(c.Logging.FilePath),
	})

	img, err := os.Open(c.Image.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening disk image: %w", err)
	}

	fs, err := fat16.Open(img)
	if err != nil {
		img.Close()
		return nil, nil, fmt.Errorf("reading FAT16 filesystem: %w", err)
	}

	warnIfOpenFileTableExceedsRlimit(c.Process.MaxOpenFiles)

	k, err := kernel.NewKernel(kernel.Options{
		FileSource:       fs,
		PageAllocator:    simhal.NewAllocator(),
		AddrSpaces:       simhal.NewFactory(),
		CtxSwitch:        simhal.NewSwitcher(),
		Metrics:          metrics.New(prometheus.NewRegistry()),
		MaxProcs:         c.Process.MaxProcs,
		MaxOpenFiles:     c.Process.MaxOpenFiles,
		MaxFdsPerProcess: c.Process.MaxFdsPerProcess,
	})
	if err != nil {
		img.Close()
		return nil, nil, fmt.Errorf("booting kernel: %w", err)
	}
	return k, img, nil
}

// warnIfOpenFileTableExceedsRlimit checks the host process's own
// RLIMIT_NOFILE before sizing the simulated open-file table, the same
// check the teacher performs before it starts handing out FUSE file
// handles.
func warnIfOpenFileTableExceedsRlimit(maxOpenFiles int) {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		logger.Debugf("rlimit: could not query RLIMIT_NOFILE: %v", err)
		return
	}
	if uint64(maxOpenFiles) > rlimit.Cur {
		logger.Warnf("process.max-open-files=%d exceeds this host's RLIMIT_NOFILE soft limit %d",
			maxOpenFiles, rlimit.Cur)
	}
}
