// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtmq

import "github.com/sugawarayuuta/sonnet"

// DumpJSON encodes the [Namespace.Snapshot] of every live queue as JSON,
// for export through a status or diagnostics endpoint.
func (ns *Namespace) DumpJSON() ([]byte, error) {
	snap := ns.Snapshot()
	if snap == nil {
		snap = []QueueStat{}
	}
	return sonnet.Marshal(snap)
}
