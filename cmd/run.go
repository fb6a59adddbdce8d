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
	"net/http"

	"github.com/amoldhamale1105/frostbite/cfg"
	"github.com/amoldhamale1105/frostbite/internal/kernel"
	"github.com/amoldhamale1105/frostbite/internal/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot a FAT16 disk image and drive its process lifecycle to shutdown",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(&RuntimeConfig)
	},
}

func run(c *cfg.Config) error {
	k, img, err := bootKernel(c)
	if err != nil {
		return err
	}
	defer img.Close()

	if c.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if err := http.ListenAndServe(c.Metrics.Address, mux); err != nil {
				logger.Warnf("metrics server stopped: %v", err)
			}
		}()
		logger.Infof("serving metrics on %s/metrics", c.Metrics.Address)
	}

	k.Tick() // dispatch init, the only process on the ready queue at boot

	if err := runDemoWorkload(k); err != nil {
		logger.Warnf("demo workload: %v", err)
	}

	k.Kill(-1, kernel.SIGTERM)
	for i := 0; i < len(k.Processes.Slots())+1 && !k.Shutdown; i++ {
		k.Yield()
	}

	if c.Debug.ExitOnInvariantViolation {
		k.CheckInvariants()
	}

	for _, pid := range k.ActiveProcs() {
		data, _ := k.ProcData(pid)
		fmt.Printf("pid=%d ppid=%d state=%s name=%q\n", data.Pid, data.Ppid, data.State, data.Name)
	}
	if k.Shutdown {
		logger.Infof("shutdown complete, idle is running with the power-off flag set")
	}
	return nil
}

// runDemoWorkload exercises fork/exec/wait the way init's own shell
// loop would: spawn one child, have it exec a second image if the
// disk provides one, then reap it. There is no real EL0 instruction
// stream in this simulation, so the child's own "work" is simulated by
// exiting immediately after its image is staged.
func runDemoWorkload(k *kernel.Kernel) error {
	childPid, err := k.Fork()
	if err != nil {
		return fmt.Errorf("fork: %w", err)
	}
	logger.Infof("forked pid=%d", childPid)

	k.Yield() // dispatch the child

	if k.Current.Pid == childPid {
		if execErr := k.Exec("CHILD.BIN", []string{"CHILD.BIN"}); execErr != nil {
			logger.Debugf("exec CHILD.BIN: %v (continuing without it)", execErr)
		}
		k.Exit(k.Current, 0, false)
	}

	var status int32
	reaped := k.Wait(-1, &status, 0)
	if reaped < 0 {
		return fmt.Errorf("wait: no child to reap")
	}
	logger.Infof("reaped pid=%d status=%#x", reaped, status)
	return nil
}
