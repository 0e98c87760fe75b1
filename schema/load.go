package schema

import (
	"path"
	"strings"

	osfs "github.com/gopherfs/fs/io/os"
	"github.com/gostdlib/base/context"
	perrors "github.com/pkg/errors"
	"go.uber.org/zap"
)

// Load reads the schema file at p. Files ending in .yaml or .yml are parsed with
// ParseYAML(), everything else with ParseText(). Use WithFS() to read from something
// other than the local file system.
func Load(ctx context.Context, p string, opts ...Option) (*Schema, error) {
	s := New(opts...)
	if s.fsys == nil {
		fsys, err := osfs.New()
		if err != nil {
			return nil, perrors.Wrap(err, "schema: cannot access the local file system")
		}
		s.fsys = fsys
	}

	b, err := s.fsys.ReadFile(p)
	if err != nil {
		return nil, perrors.Wrapf(err, "schema: cannot read %s", p)
	}

	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		err = s.parseYAML(b)
	default:
		err = s.parseText(ctx, string(b))
	}
	if err != nil {
		return nil, perrors.Wrapf(err, "schema: %s", p)
	}
	s.log.Info("schema loaded", zap.String("path", p), zap.Strings("definitions", s.Names()))
	return s, nil
}
