// quiltcat reassembles chunk files into a single output file.
//
// Usage:
//
//	quiltcat -o out.bin part.0 part.4096 part.8192
//	quiltcat -o out.bin 0:head.bin 4096:tail.bin
//
// Each argument names one chunk and the offset it belongs at, either as
// OFFSET:FILE or as a file whose name ends in ".OFFSET". Without -o the
// tool only reports coverage and gaps, which is handy to decide what to
// fetch next.
package main

import (
	"os"
	"strconv"
	"strings"

	"github.com/codegangsta/cli"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/dacapoday/quilt"
)

func main() {
	app := cli.NewApp()
	app.Name = "quiltcat"
	app.Usage = "reassemble chunk files into one buffer"
	app.ArgsUsage = "[OFFSET:FILE|FILE.OFFSET]..."
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "output, o",
			Usage: "write the assembled bytes to `FILE`",
		},
		cli.BoolFlag{
			Name:  "force, f",
			Usage: "write the output even when gaps remain",
		},
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: "log every placed chunk",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("quiltcat: %v", err)
	}
}

func run(ctx *cli.Context) error {
	if ctx.Bool("verbose") {
		log.SetLevel(log.DebugLevel)
	}
	if ctx.NArg() == 0 {
		return errors.New("no chunks given")
	}

	var q quilt.Quilt
	for _, arg := range ctx.Args() {
		off, path, err := parseChunk(arg)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "read chunk %s", path)
		}

		if err := q.PutAt(off, data); err != nil {
			return errors.Wrapf(err, "place chunk %s at offset %d", path, off)
		}

		log.WithFields(log.Fields{
			"chunk":  path,
			"offset": off,
			"size":   len(data),
		}).Debug("placed chunk")
	}

	report(&q)

	if !q.Complete() && !ctx.Bool("force") {
		return errors.New("buffer has gaps (use --force to write anyway)")
	}

	if out := ctx.String("output"); out != "" {
		return writeOutput(&q, out)
	}

	return nil
}

// parseChunk extracts the target offset from a chunk argument.
// "4096:part.bin" takes priority; "part.4096" is the fallback scheme.
func parseChunk(arg string) (off int64, path string, err error) {
	if lead, rest, ok := strings.Cut(arg, ":"); ok {
		if off, err := strconv.ParseInt(lead, 10, 64); err == nil && off >= 0 {
			return off, rest, nil
		}
	}

	if dot := strings.LastIndexByte(arg, '.'); dot >= 0 {
		if off, err := strconv.ParseInt(arg[dot+1:], 10, 64); err == nil && off >= 0 {
			return off, arg, nil
		}
	}

	return 0, "", errors.Errorf("cannot tell the offset of %q (use OFFSET:FILE)", arg)
}

func report(q *quilt.Quilt) {
	log.WithFields(log.Fields{
		"written": humanize.IBytes(uint64(q.BytesWritten())),
		"total":   humanize.IBytes(uint64(q.Size())),
		"ranges":  len(q.Ranges()),
	}).Info("coverage")

	missing := color.New(color.FgYellow, color.Bold)
	for gap := range q.Gaps() {
		missing.Fprintf(os.Stderr, "missing %v (%s)\n", gap, humanize.IBytes(uint64(gap.Len())))
	}
}

func writeOutput(q *quilt.Quilt, path string) error {
	fd, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}

	if _, err := q.WriteTo(fd); err != nil {
		fd.Close()
		return errors.Wrap(err, "write output")
	}

	if err := fd.Close(); err != nil {
		return errors.Wrap(err, "close output")
	}

	log.WithFields(log.Fields{
		"path": path,
		"size": humanize.IBytes(uint64(q.Size())),
	}).Info("wrote output")
	return nil
}
