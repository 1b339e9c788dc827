// Copyright (c) 2026 Lerian Studio. All rights reserved.
// Use of this source code is governed by the Elastic License 2.0
// that can be found in the LICENSE file.

package main

import (
	libCommons "github.com/LerianStudio/lib-commons/v3/commons"

	"github.com/LerianStudio/pagehost/internal/bootstrap"
)

func main() {
	libCommons.InitLocalEnvConfig()
	bootstrap.InitServers().Run()
}
