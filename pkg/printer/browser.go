package printer

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// mDNS service parameters.
const (
	ServiceTypeIPP = "_ipp._tcp"
	Domain         = "local."
)

// BrowserConfig configures browsing.
type BrowserConfig struct {
	// Service is the mDNS service type. Default: _ipp._tcp.
	Service string

	// Interface restricts browsing to one network interface.
	// Empty string means all interfaces.
	Interface string

	// Timeout bounds a browse when the caller's context has no deadline.
	// Zero means browse until the context is cancelled.
	Timeout time.Duration
}

// DefaultBrowserConfig returns the default browser configuration.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{Service: ServiceTypeIPP}
}

// ServiceEntry is a resolved mDNS service instance.
type ServiceEntry struct {
	Instance string
	Host     string
	Port     uint16
	Text     []string
	Addrs    []string
}

// ToDestination decodes the entry. Returns an error if the TXT record does
// not describe a usable printer.
func (e *ServiceEntry) ToDestination() (*Destination, error) {
	dest, err := DecodeIPPTXT(e.Instance, StringsToTXTRecords(e.Text))
	if err != nil {
		return nil, err
	}
	dest.Host = e.Host
	dest.Port = e.Port
	dest.Addresses = append([]string(nil), e.Addrs...)
	return dest, nil
}

func entryFromZeroconf(entry *zeroconf.ServiceEntry) ServiceEntry {
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return ServiceEntry{
		Instance: entry.Instance,
		Host:     entry.HostName,
		Port:     uint16(entry.Port),
		Text:     entry.Text,
		Addrs:    addrs,
	}
}

// Browser discovers IPP printers using zeroconf.
type Browser struct {
	config BrowserConfig
	logger *slog.Logger

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// NewBrowser creates a browser. A nil logger discards output.
func NewBrowser(config BrowserConfig, logger *slog.Logger) *Browser {
	if config.Service == "" {
		config.Service = ServiceTypeIPP
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Browser{config: config, logger: logger}
}

// Browse searches for printers. A destination is sent on added when its
// instance is first seen and again, as a new value, when an address from
// another interface is merged in. The instance name is sent on removed when
// its last address goes away. Both channels are closed when browsing ends.
func (b *Browser) Browse(ctx context.Context) (added <-chan *Destination, removed <-chan string, err error) {
	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); !ok && b.config.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, b.config.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	b.mu.Lock()
	b.cancels = append(b.cancels, cancel)
	b.mu.Unlock()

	entries := make(chan *zeroconf.ServiceEntry)
	gone := make(chan *zeroconf.ServiceEntry)
	found := make(chan ServiceEntry)
	lost := make(chan ServiceEntry)

	go func() {
		defer close(found)
		defer close(lost)
		for {
			select {
			case e, ok := <-entries:
				if !ok {
					return
				}
				select {
				case found <- entryFromZeroconf(e):
				case <-ctx.Done():
					return
				}
			case e, ok := <-gone:
				if !ok {
					gone = nil
					continue
				}
				select {
				case lost <- entryFromZeroconf(e):
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make(chan *Destination)
	outRemoved := make(chan string)
	go func() {
		defer close(out)
		defer close(outRemoved)
		aggregate(ctx, found, lost, out, outRemoved, b.logger)
	}()

	go func() {
		if err := zeroconf.Browse(ctx, b.config.Service, Domain, entries, gone, b.browserOptions()...); err != nil {
			b.logger.Warn("mdns browse failed", "service", b.config.Service, "error", err)
			cancel()
		}
	}()

	return out, outRemoved, nil
}

// Stop cancels all running browses.
func (b *Browser) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, cancel := range b.cancels {
		cancel()
	}
	b.cancels = nil
}

func (b *Browser) browserOptions() []zeroconf.ClientOption {
	var opts []zeroconf.ClientOption
	if b.config.Interface != "" {
		iface, err := net.InterfaceByName(b.config.Interface)
		if err == nil {
			opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*iface}))
		} else {
			b.logger.Warn("unknown interface, browsing on all", "interface", b.config.Interface, "error", err)
		}
	}
	return opts
}

// aggregate folds service entries into destinations keyed by instance name.
// Values sent on added are never modified afterwards. It returns when found
// is closed or ctx is done.
func aggregate(ctx context.Context, found, lost <-chan ServiceEntry, added chan<- *Destination, removed chan<- string, logger *slog.Logger) {
	known := make(map[string]*Destination)

	send := func(dest *Destination) bool {
		select {
		case added <- dest:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		select {
		case entry, ok := <-found:
			if !ok {
				return
			}
			existing, ok := known[entry.Instance]
			if !ok {
				dest, err := entry.ToDestination()
				if err != nil {
					logger.Debug("skipping service", "instance", entry.Instance, "error", err)
					continue
				}
				known[entry.Instance] = dest
				if !send(dest) {
					return
				}
				continue
			}
			merged := mergeAddresses(existing.Addresses, entry.Addrs)
			if len(merged) == len(existing.Addresses) {
				continue
			}
			updated := *existing
			updated.Addresses = merged
			known[entry.Instance] = &updated
			if !send(&updated) {
				return
			}

		case entry, ok := <-lost:
			if !ok {
				lost = nil
				continue
			}
			existing, ok := known[entry.Instance]
			if !ok {
				continue
			}
			remaining := removeAddresses(existing.Addresses, entry.Addrs)
			if len(remaining) > 0 {
				updated := *existing
				updated.Addresses = remaining
				known[entry.Instance] = &updated
				continue
			}
			delete(known, entry.Instance)
			select {
			case removed <- entry.Instance:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// mergeAddresses returns existing plus the addresses in added it does not
// contain yet. existing is not modified.
func mergeAddresses(existing, added []string) []string {
	out := append([]string(nil), existing...)
	seen := make(map[string]bool, len(existing))
	for _, addr := range existing {
		seen[addr] = true
	}
	for _, addr := range added {
		if !seen[addr] {
			out = append(out, addr)
			seen[addr] = true
		}
	}
	return out
}

// removeAddresses drops the given addresses from the list.
func removeAddresses(addresses, drop []string) []string {
	toRemove := make(map[string]bool, len(drop))
	for _, addr := range drop {
		toRemove[addr] = true
	}
	result := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		if !toRemove[addr] {
			result = append(result, addr)
		}
	}
	return result
}
