package transfer

import (
	"errors"
	"fmt"

	"github.com/Nomadcxx/teamsort/internal/config"
)

// OptionsFromConfig maps the [permissions] section onto TransferOptions.
// Settings that cannot be resolved are left at their defaults and reported
// together in the returned error, so callers may warn and carry on.
func OptionsFromConfig(cfg *config.Config) (TransferOptions, error) {
	opts := DefaultOptions()
	if cfg == nil {
		return opts, nil
	}

	perms := cfg.Permissions
	var errs []error

	if perms.WantsOwnership() {
		uid, err := perms.ResolveUID()
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("permissions.user %q: %w", perms.User, err))
		case uid >= 0:
			opts.TargetUID = uid
		}

		gid, err := perms.ResolveGID()
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("permissions.group %q: %w", perms.Group, err))
		case gid >= 0:
			opts.TargetGID = gid
		}
	}

	if perms.WantsMode() {
		if mode, err := perms.ParseFileMode(); err != nil {
			errs = append(errs, fmt.Errorf("permissions.file_mode %q: %w", perms.FileMode, err))
		} else if mode != 0 {
			opts.FileMode = mode
		}
		if mode, err := perms.ParseDirMode(); err != nil {
			errs = append(errs, fmt.Errorf("permissions.dir_mode %q: %w", perms.DirMode, err))
		} else if mode != 0 {
			opts.DirMode = mode
		}
	}

	return opts, errors.Join(errs...)
}
