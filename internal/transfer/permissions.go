package transfer

import (
	"fmt"
	"os"
)

// ApplyPermissions sets mode on path when it is non-zero, then hands the
// path to uid/gid. A negative id leaves that half of the ownership alone.
func ApplyPermissions(path string, mode os.FileMode, uid, gid int) error {
	if mode != 0 {
		if err := os.Chmod(path, mode); err != nil {
			return fmt.Errorf("chmod %s to %o: %w", path, mode, err)
		}
	}

	if uid < 0 && gid < 0 {
		return nil
	}
	if err := os.Chown(path, max(uid, -1), max(gid, -1)); err != nil {
		if euid := os.Geteuid(); euid != 0 {
			return fmt.Errorf("chown %s to %d:%d as uid %d: %w", path, uid, gid, euid, err)
		}
		return fmt.Errorf("chown %s: %w", path, err)
	}
	return nil
}
