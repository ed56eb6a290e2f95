// Package mount serves the files of an image as a read-only FUSE
// filesystem. File contents are read straight from the image buffer.
package mount

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/FabianRolfMatthiasNoll/ndsfs/internal/nitrofs"
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory where the filesystem is mounted. It is
	// created if it does not exist.
	Mountpoint string

	// Files is the image to serve.
	Files *nitrofs.Files

	// Name is reported as the filesystem name, typically the game code.
	Name string

	// AllowOther permits other users to access the mount. Requires
	// user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Logger receives diagnostic messages. If nil, nothing is logged.
	Logger *slog.Logger
}

// Entry is one node of the mounted tree.
type Entry struct {
	// Path is the '/'-joined safe name components.
	Path string
	ID   uint16
	Dir  bool
	Data []byte
}

// Layout lists what Mount will serve, in walk order. Entries with unsafe
// names, duplicate paths or unreadable data are logged and left out.
func Layout(files *nitrofs.Files, logger *slog.Logger) []Entry {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	var entries []Entry
	seen := make(map[string]bool)
	for p, id := range files.FNT.All() {
		parts, err := p.SafeComponents()
		if err != nil {
			logger.Warn("not serving entry", "path", p.String(), "id", id, "error", err)
			continue
		}
		name := path.Join(parts...)
		if seen[name] {
			logger.Warn("not serving duplicate entry", "path", name, "id", id)
			continue
		}
		seen[name] = true

		if nitrofs.IsDirectoryID(id) {
			entries = append(entries, Entry{Path: name, ID: id, Dir: true})
			continue
		}
		data, err := files.File(id)
		if err != nil {
			logger.Warn("not serving file", "path", name, "id", id, "error", err)
			continue
		}
		entries = append(entries, Entry{Path: name, ID: id, Data: data})
	}
	return entries
}

// Mount mounts the image at the configured mountpoint. The caller must
// call Unmount on the returned Server when done.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("mountpoint is required")
	}
	if options.Files == nil {
		return nil, fmt.Errorf("files are required")
	}
	if options.Name == "" {
		options.Name = "ndsfs"
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("creating mountpoint %s: %w", options.Mountpoint, err)
	}

	root := &rootNode{entries: Layout(options.Files, options.Logger)}

	// The image never changes, so the kernel may cache freely.
	timeout := time.Hour
	server, err := gofuse.Mount(options.Mountpoint, root, &gofuse.Options{
		EntryTimeout:    &timeout,
		AttrTimeout:     &timeout,
		NegativeTimeout: &timeout,
		MountOptions: fuse.MountOptions{
			FsName:     options.Name,
			Name:       "ndsfs",
			AllowOther: options.AllowOther,
			Options:    []string{"ro"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("mounting FUSE filesystem at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("image mounted", "mountpoint", options.Mountpoint, "entries", len(root.entries))
	return server, nil
}

// inode numbers: 1 is the root, everything else is its walk ID offset by 2.
func inode(id uint16) uint64 { return uint64(id) + 2 }

type rootNode struct {
	dirNode
	entries []Entry
}

var _ gofuse.InodeEmbedder = (*rootNode)(nil)
var _ gofuse.NodeOnAdder = (*rootNode)(nil)

func (r *rootNode) OnAdd(ctx context.Context) {
	for _, e := range r.entries {
		dir, base := path.Split(e.Path)
		parent := walkTo(r.EmbeddedInode(), dir)
		if parent == nil {
			continue
		}

		var child *gofuse.Inode
		if e.Dir {
			child = parent.NewPersistentInode(ctx, &dirNode{}, gofuse.StableAttr{Mode: syscall.S_IFDIR, Ino: inode(e.ID)})
		} else {
			child = parent.NewPersistentInode(ctx, &fileNode{data: e.Data}, gofuse.StableAttr{Mode: syscall.S_IFREG, Ino: inode(e.ID)})
		}
		parent.AddChild(base, child, false)
	}
}

// walkTo follows a relative directory path from n. Directories are
// always added before their contents.
func walkTo(n *gofuse.Inode, dir string) *gofuse.Inode {
	dir = strings.Trim(dir, "/")
	if dir == "" {
		return n
	}
	for _, name := range strings.Split(dir, "/") {
		if n = n.GetChild(name); n == nil {
			return nil
		}
	}
	return n
}

type dirNode struct {
	gofuse.Inode
}

var _ gofuse.NodeGetattrer = (*dirNode)(nil)

func (d *dirNode) Getattr(ctx context.Context, fh gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = syscall.S_IFDIR | 0o555
	return 0
}

// fileNode serves one file from the image buffer.
type fileNode struct {
	gofuse.Inode
	data []byte
}

var _ gofuse.NodeGetattrer = (*fileNode)(nil)
var _ gofuse.NodeOpener = (*fileNode)(nil)
var _ gofuse.NodeReader = (*fileNode)(nil)

func (f *fileNode) Getattr(ctx context.Context, fh gofuse.FileHandle, out *fuse.AttrOut) syscall.Errno {
	out.Mode = syscall.S_IFREG | 0o444
	out.Size = uint64(len(f.data))
	return 0
}

func (f *fileNode) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if flags&(syscall.O_WRONLY|syscall.O_RDWR|syscall.O_TRUNC|syscall.O_APPEND) != 0 {
		return nil, 0, syscall.EROFS
	}
	return nil, fuse.FOPEN_KEEP_CACHE, 0
}

func (f *fileNode) Read(ctx context.Context, fh gofuse.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	if off < 0 {
		return nil, syscall.EINVAL
	}
	if off >= int64(len(f.data)) {
		return fuse.ReadResultData(nil), 0
	}
	end := min(off+int64(len(dest)), int64(len(f.data)))
	return fuse.ReadResultData(f.data[off:end]), 0
}
