package runner

import (
	"context"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// runningCommands returns the command lines of the current user's
// processes. Processes that cannot be inspected are skipped.
func runningCommands(ctx context.Context) (map[string]bool, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	uid := int32(os.Getuid())
	out := make(map[string]bool, len(procs))
	for _, p := range procs {
		if uids, err := p.UidsWithContext(ctx); err == nil && len(uids) > 0 && uids[0] != uid {
			continue
		}
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil || cmdline == "" {
			continue
		}
		out[strings.TrimSpace(cmdline)] = true
	}
	return out, nil
}
