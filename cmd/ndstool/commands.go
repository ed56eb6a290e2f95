package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/config"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/dump"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/extract"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/mount"
	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/report"
)

func exactArgs(args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("expected %s, got %d arguments", usage, len(args))
	}
	return nil
}

var infoCommand = command{
	summary: "print the cartridge header",
	usage:   "<rom>",
	run: func(e *env, args []string) error {
		if err := exactArgs(args, 1, "<rom>"); err != nil {
			return err
		}
		img, err := e.load(args[0])
		if err != nil {
			return err
		}
		return report.Header(os.Stdout, img.header, img.rom)
	},
}

var treeCommand = command{
	summary: "list every file and directory",
	usage:   "<rom>",
	run: func(e *env, args []string) error {
		if err := exactArgs(args, 1, "<rom>"); err != nil {
			return err
		}
		img, err := e.load(args[0])
		if err != nil {
			return err
		}
		files, err := img.header.ReadFiles(img.rom)
		if err != nil {
			return err
		}
		return report.Tree(os.Stdout, files)
	},
}

var dumpCommand = command{
	summary: "write the header, name table and allocation table as documents",
	usage:   "[--format yaml|json|cbor] [--output dir] <rom>",
	flags: func(fs *pflag.FlagSet, cfg *config.Config) {
		fs.StringVarP(&cfg.Dump.Format, "format", "f", cfg.Dump.Format, "yaml, json or cbor")
		fs.StringVarP(&cfg.Dump.Output, "output", "o", cfg.Dump.Output, "write header, fnt and fat files into this directory instead of stdout")
	},
	run: func(e *env, args []string) error {
		if err := exactArgs(args, 1, "<rom>"); err != nil {
			return err
		}
		format, err := dump.ParseFormat(e.cfg.Dump.Format)
		if err != nil {
			return err
		}
		img, err := e.load(args[0])
		if err != nil {
			return err
		}
		files, err := img.header.ReadFiles(img.rom)
		if err != nil {
			return err
		}

		dir := e.cfg.Dump.Output
		if dir == "" {
			return dump.Encode(os.Stdout, format, dump.Image(img.header, files))
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
		docs := []struct {
			name string
			doc  any
		}{
			{"header", dump.Header(img.header)},
			{"fnt", dump.FNT(files.FNT)},
			{"fat", dump.FAT(files.FAT)},
		}
		for _, d := range docs {
			path := filepath.Join(dir, d.name+format.Ext())
			if err := writeDoc(path, format, d.doc); err != nil {
				return err
			}
			e.logger.Info("wrote document", "path", path)
		}
		return nil
	},
}

func writeDoc(path string, format dump.Format, doc any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dump.Encode(f, format, doc); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

var extractCommand = command{
	summary: "extract the file system to a directory",
	usage:   "[--output dir] [--overwrite] [--manifest] [--system] <rom>",
	flags: func(fs *pflag.FlagSet, cfg *config.Config) {
		fs.StringVarP(&cfg.Extract.Output, "output", "o", cfg.Extract.Output, "output directory")
		fs.BoolVar(&cfg.Extract.Overwrite, "overwrite", cfg.Extract.Overwrite, "replace existing files")
		fs.BoolVar(&cfg.Extract.Manifest, "manifest", cfg.Extract.Manifest, "write "+extract.ManifestName+" with BLAKE3 digests")
		fs.BoolVar(&cfg.Extract.System, "system", cfg.Extract.System, "also write header, ARM binaries, overlay tables and banner")
	},
	run: func(e *env, args []string) error {
		if err := exactArgs(args, 1, "<rom>"); err != nil {
			return err
		}
		img, err := e.load(args[0])
		if err != nil {
			return err
		}
		files, err := img.header.ReadFiles(img.rom)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := extract.Extract(ctx, files, img.header, extract.Options{
			Output:    e.cfg.Extract.Output,
			Overwrite: e.cfg.Extract.Overwrite,
			Manifest:  e.cfg.Extract.Manifest,
			System:    e.cfg.Extract.System,
			Logger:    e.logger,
		})
		if err != nil {
			return err
		}
		e.logger.Info("extracted",
			"output", e.cfg.Extract.Output,
			"files", summary.Files,
			"directories", summary.Directories,
			"bytes", summary.Bytes,
			"skipped", summary.Skipped,
			"max_file_id", summary.MaxFileID,
		)
		return nil
	},
}

var mountCommand = command{
	summary: "mount the file system read-only over FUSE",
	usage:   "[--allow-other] <rom> <mountpoint>",
	flags: func(fs *pflag.FlagSet, cfg *config.Config) {
		fs.BoolVar(&cfg.Mount.AllowOther, "allow-other", cfg.Mount.AllowOther, "let other users access the mount")
	},
	run: func(e *env, args []string) error {
		if err := exactArgs(args, 2, "<rom> <mountpoint>"); err != nil {
			return err
		}
		img, err := e.load(args[0])
		if err != nil {
			return err
		}
		files, err := img.header.ReadFiles(img.rom)
		if err != nil {
			return err
		}

		server, err := mount.Mount(mount.Options{
			Mountpoint: args[1],
			Files:      files,
			Name:       img.header.GameCode().AsStringLossy(),
			AllowOther: e.cfg.Mount.AllowOther,
			Logger:     e.logger,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			if err := server.Unmount(); err != nil {
				e.logger.Error("unmount failed", "error", err)
			}
		}()
		server.Wait()
		return nil
	},
}
