package demo

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/bashbuiltins/pkg/builtin"
	"github.com/thoreinstein/bashbuiltins/pkg/options"
)

var filesizeDef = builtin.Definition{
	Metadata: builtin.Metadata{
		Name:     "filesize",
		ShortDoc: "filesize [-k|-m] [file ...]",
		LongDoc: `
			Display file sizes.

			Options:
			  -k	Display size in kilobytes.
			  -m	Display size in megabytes.

			Exit Status:
			Returns 0 if all files can be read; non-zero otherwise.
		`,
	},
	Create: func() builtin.Builtin { return builtin.Func(filesize) },
}

var filesizeSpec = options.MustSpec(
	options.Flag('k', int64(1<<10)),
	options.Flag('m', int64(1<<20)),
)

func filesize(args *builtin.Args) error {
	scale := int64(1)
	for s, err := range builtin.Options(args, filesizeSpec) {
		if err != nil {
			return err
		}
		scale = s
	}

	var result error
	for _, path := range args.Paths() {
		info, err := os.Stat(path)
		if err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				err = pathErr.Err
			}
			args.Warnf("%s: %v", path, err)
			result = builtin.ExitCode(1)
			continue
		}
		if _, err := fmt.Fprintf(args.Stdout(), "%d\t%s\n", info.Size()/scale, path); err != nil {
			return err
		}
	}
	return result
}
