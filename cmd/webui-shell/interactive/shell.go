// Package interactive provides the interactive command-line interface
// for the navigation list shell.
package interactive

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/cros-webui/webui-go/pkg/capability"
	"github.com/cros-webui/webui-go/pkg/log"
	"github.com/cros-webui/webui-go/pkg/navlist"
	"github.com/cros-webui/webui-go/pkg/observable"
	"github.com/cros-webui/webui-go/pkg/printer"
	"github.com/cros-webui/webui-go/pkg/shortcut"
	"github.com/cros-webui/webui-go/pkg/volume"
)

// Deps are the components the shell drives.
type Deps struct {
	Volumes   *volume.Manager
	Shortcuts *shortcut.List
	Model     *navlist.Model

	// Printers is optional. Printer commands report an error without it.
	Printers *printer.Store

	// Logger receives capability errors. Nil discards them.
	Logger log.Logger
}

// Shell handles interactive mode for webui-shell.
type Shell struct {
	deps Deps
	out  io.Writer
	rl   *readline.Instance
	subs []*observable.Subscription

	// Resolution timeout for the resolve command.
	timeout time.Duration
}

// New creates a shell reading commands from the terminal.
func New(deps Deps) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "webui> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	s := newShell(deps, rl.Stdout())
	s.rl = rl
	return s, nil
}

// NewWithWriter creates a shell without a terminal. Commands are fed through
// Exec and all output goes to w.
func NewWithWriter(deps Deps, w io.Writer) *Shell {
	return newShell(deps, w)
}

func newShell(deps Deps, w io.Writer) *Shell {
	deps.Logger = log.OrNoop(deps.Logger)
	s := &Shell{
		deps:    deps,
		out:     &lockedWriter{w: w},
		timeout: 10 * time.Second,
	}
	s.subs = append(s.subs, deps.Model.Subscribe(s.handleListEvent))
	if deps.Printers != nil {
		s.subs = append(s.subs, deps.Printers.Subscribe(s.handlePrinterEvent))
	}
	return s
}

// lockedWriter serializes writes from event handlers and commands.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// Stdout returns a writer that coordinates with the readline input.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Stderr returns a writer for diagnostics.
func (s *Shell) Stderr() io.Writer {
	if s.rl != nil {
		return s.rl.Stderr()
	}
	return s.out
}

// Close stops printing events and releases the terminal.
func (s *Shell) Close() {
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	s.subs = nil
	if s.rl != nil {
		s.rl.Close()
	}
}

// Run starts the interactive command loop.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.Close()

	s.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := s.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			fmt.Fprintln(s.out, "Exiting...")
			cancel()
			return
		}

		if quit := s.Exec(ctx, line); quit {
			cancel()
			return
		}
	}
}

// Exec runs one command line. Returns true when the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		s.printHelp()
	case "ls", "list":
		s.cmdList()
	case "volumes", "v":
		s.cmdVolumes()
	case "mount":
		s.cmdMount(args)
	case "unmount", "umount":
		s.cmdUnmount(args)
	case "error":
		s.cmdError(args)
	case "pin":
		s.cmdPin(ctx, args)
	case "unpin":
		s.cmdUnpin(ctx, args)
	case "resolve", "r":
		s.cmdResolve(ctx, args)
	case "printers", "p":
		s.cmdPrinters()
	case "caps":
		s.cmdCaps(args)
	case "dump":
		s.cmdDump(args)
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
Navigation List Commands:
  List:
    ls                          - Show the navigation list
    resolve <index|path>        - Resolve an item's entry

  Volumes:
    volumes                     - Show mounted volumes
    mount <id> <path> [type] [label]
                                - Mount a volume
    unmount <id>                - Unmount a volume
    error <id> [message]        - Set or clear a volume error

  Shortcuts:
    pin <path>                  - Pin a folder
    unpin <path>                - Unpin a folder

  Printers:
    printers                    - Show discovered printers
    caps <printer-id>           - Show a printer's capabilities
    caps <file> <format>        - Load capabilities from a descriptor file
    dump <printer-id> <enc>     - Encode a printer's capabilities (json, yaml, cbor)

  quit                          - Exit`)
}

func (s *Shell) cmdList() {
	items := s.deps.Model.Items()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "(empty)")
		return
	}
	volumes := s.deps.Model.VolumeCount()
	for i, it := range items {
		if i == volumes {
			fmt.Fprintln(s.out, "  --")
		}
		fmt.Fprintf(s.out, "  %2d  %-8s %-20s %s%s\n", i, it.Kind(), it.Label(), it.Path(), itemState(it))
	}
}

func itemState(it *navlist.Item) string {
	switch {
	case it.Pending():
		return "  (resolving)"
	case it.Entry() == nil:
		return "  (unresolved)"
	default:
		return ""
	}
}

func (s *Shell) cmdVolumes() {
	vols := s.deps.Volumes.Items()
	if len(vols) == 0 {
		fmt.Fprintln(s.out, "No volumes mounted")
		return
	}
	for _, v := range vols {
		status := "mounted"
		if !v.IsMounted() {
			status = "error: " + v.Error
		}
		fmt.Fprintf(s.out, "  %-16s %-10s %-20s %s [%s]\n", v.VolumeID, v.Type, v.Label, v.MountPath, status)
	}
}

func (s *Shell) cmdMount(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: mount <id> <path> [type] [label]")
		return
	}
	info := volume.Info{VolumeID: args[0], MountPath: args[1], Type: volume.TypeRemovable, Label: args[0]}
	if len(args) > 2 {
		t, err := volume.ParseType(args[2])
		if err != nil {
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		info.Type = t
	}
	if len(args) > 3 {
		info.Label = strings.Join(args[3:], " ")
	}
	if _, err := s.deps.Volumes.Mount(info); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Mounted %s at %s\n", info.VolumeID, info.MountPath)
}

func (s *Shell) cmdUnmount(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: unmount <id>")
		return
	}
	if err := s.deps.Volumes.Unmount(args[0]); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Unmounted %s\n", args[0])
}

func (s *Shell) cmdError(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: error <id> [message]")
		return
	}
	msg := strings.Join(args[1:], " ")
	if err := s.deps.Volumes.SetError(args[0], msg); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if msg == "" {
		fmt.Fprintf(s.out, "Cleared error on %s\n", args[0])
	} else {
		fmt.Fprintf(s.out, "Set error on %s\n", args[0])
	}
}

func (s *Shell) cmdPin(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: pin <path>")
		return
	}
	if err := s.deps.Shortcuts.Add(ctx, args[0]); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Pinned %s\n", args[0])
}

func (s *Shell) cmdUnpin(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: unpin <path>")
		return
	}
	if err := s.deps.Shortcuts.Remove(ctx, args[0]); err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Unpinned %s\n", args[0])
}

func (s *Shell) cmdResolve(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: resolve <index|path>")
		return
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		idx = s.deps.Model.IndexOf(args[0])
	}
	it := s.deps.Model.Item(idx)
	if it == nil {
		fmt.Fprintf(s.out, "No item: %s\n", args[0])
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	entry, err := it.Resolve(ctx)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	kind := "file"
	if entry.IsDir {
		kind = "dir"
	}
	fmt.Fprintf(s.out, "%s: %s %s on %s, modified %s\n",
		entry.Path, kind, entry.Name, entry.VolumeID, entry.ModTime.Format(time.RFC3339))
}

func (s *Shell) cmdPrinters() {
	if s.deps.Printers == nil {
		fmt.Fprintln(s.out, "Printer discovery is disabled")
		return
	}
	dests := s.deps.Printers.Items()
	if len(dests) == 0 {
		fmt.Fprintln(s.out, "No printers found")
		return
	}
	for _, d := range dests {
		fmt.Fprintf(s.out, "  %-24s %-28s %-4s %s:%d %s\n",
			d.ID, d.DisplayName, d.Format, d.Host, d.Port, strings.Join(d.Addresses, ","))
		if d.Location != "" {
			fmt.Fprintf(s.out, "  %-24s location: %s\n", "", d.Location)
		}
	}
}

func (s *Shell) cmdCaps(args []string) {
	switch len(args) {
	case 1:
		d, ok := s.lookupPrinter(args[0])
		if !ok {
			return
		}
		s.printCaps(d.Capabilities)
	case 2:
		caps, err := s.loadDescriptor(args[0], args[1])
		if err != nil {
			s.deps.Logger.Log(log.Event{
				Timestamp: time.Now(),
				ModelID:   s.deps.Model.ID(),
				Layer:     log.LayerCapability,
				Category:  log.CategoryError,
				Error: &log.ErrorEventData{
					Layer:   log.LayerCapability,
					Message: err.Error(),
					Path:    args[0],
					Context: "load descriptor",
				},
			})
			fmt.Fprintf(s.out, "Error: %v\n", err)
			return
		}
		s.printCaps(caps)
	default:
		fmt.Fprintln(s.out, "Usage: caps <printer-id> | caps <file> <format>")
	}
}

func (s *Shell) loadDescriptor(path, format string) (*capability.CloudCapabilities, error) {
	f, err := capability.ParseFormat(format)
	if err != nil {
		return nil, err
	}
	enc, err := capability.EncodingForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return capability.Parse(data, enc, f)
}

func (s *Shell) cmdDump(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(s.out, "Usage: dump <printer-id> <json|yaml|cbor>")
		return
	}
	d, ok := s.lookupPrinter(args[0])
	if !ok {
		return
	}
	enc, err := capability.ParseEncoding(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	data, err := capability.Encode(d.Capabilities, enc, d.Format)
	if err != nil {
		fmt.Fprintf(s.out, "Error: %v\n", err)
		return
	}
	if enc == capability.EncodingCBOR {
		fmt.Fprintln(s.out, hex.EncodeToString(data))
		return
	}
	fmt.Fprintln(s.out, strings.TrimRight(string(data), "\n"))
}

func (s *Shell) lookupPrinter(id string) (*printer.Destination, bool) {
	if s.deps.Printers == nil {
		fmt.Fprintln(s.out, "Printer discovery is disabled")
		return nil, false
	}
	d, ok := s.deps.Printers.Get(id)
	if !ok {
		fmt.Fprintf(s.out, "No printer: %s\n", id)
	}
	return d, ok
}

func (s *Shell) printCaps(caps *capability.CloudCapabilities) {
	if len(caps.All()) == 0 {
		fmt.Fprintln(s.out, "No capabilities")
		return
	}
	if c := caps.Collate(); c != nil {
		fmt.Fprintf(s.out, "  collate  %-12s on=%s off=%s default=%s\n",
			c.ID(), c.CollateOption(), c.NoCollateOption(), onOff(c.IsCollateDefault()))
	}
	if c := caps.Color(); c != nil {
		fmt.Fprintf(s.out, "  color    %-12s color=%s bw=%s default=%s\n",
			c.ID(), c.ColorOption(), c.BWOption(), pick(c.IsColorDefault(), "color", "bw"))
	}
	if c := caps.Copies(); c != nil {
		fmt.Fprintf(s.out, "  copies   %s\n", c.ID())
	}
	if c := caps.Duplex(); c != nil {
		fmt.Fprintf(s.out, "  duplex   %-12s simplex=%s long-edge=%s default=%s\n",
			c.ID(), c.SimplexOption(), c.LongEdgeOption(), pick(c.IsDuplexDefault(), "long-edge", "simplex"))
	}
}

func onOff(b bool) string { return pick(b, "on", "off") }

func pick(b bool, yes, no string) string {
	if b {
		return yes
	}
	return no
}

func (s *Shell) handleListEvent(ev observable.Permuted[*navlist.Item]) {
	if ev.IsIdentity() {
		return
	}
	fmt.Fprintf(s.out, "[list] %v -> %d items (+%d -%d)\n", ev.Permutation, ev.NewLength, ev.Added(), ev.Removed())
}

func (s *Shell) handlePrinterEvent(ev observable.Permuted[*printer.Destination]) {
	if ev.IsIdentity() {
		return
	}
	fmt.Fprintf(s.out, "[printers] %d found (+%d -%d)\n", ev.NewLength, ev.Added(), ev.Removed())
}
