// Licensed to LinDB under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. LinDB licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package main

import (
	"fmt"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/lindb/common/pkg/logger"
)

var autoMaxProcsLogger = logger.GetLogger("Demo", "AutoMaxProcs")

// initAutoMaxProcs sets GOMAXPROCS from the cgroup CPU quota, the way a
// LinDB daemon does at startup before sizing any worker pool off
// runtime.NumCPU(). sched.defaultMaxThreads does not read the adjusted
// value: it counts logical CPUs through gopsutil.
func initAutoMaxProcs() {
	if _, err := maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		autoMaxProcsLogger.Info(fmt.Sprintf(format, args...))
	})); err != nil {
		autoMaxProcsLogger.Warn("failed to set GOMAXPROCS from cgroup quota", logger.Error(err))
	}
}
