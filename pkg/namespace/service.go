package namespace

import (
	"context"
	"strings"
	"time"

	"github.com/marmos91/attachfs/internal/logger"
	"github.com/marmos91/attachfs/pkg/attachment"
	"github.com/marmos91/attachfs/pkg/content"
	"github.com/marmos91/attachfs/pkg/metrics"
)

// Config contains the namespace policy knobs, read-only to this core.
type Config struct {
	// MountPoint is the literal path prefix under which the namespace is
	// exposed. Resolve strips it; the server root's only child is its
	// first segment.
	MountPoint string `mapstructure:"mount_point"`

	// BlockPublic denies all access to unauthenticated, non-observing
	// actors regardless of per-channel policy.
	BlockPublic bool `mapstructure:"block_public"`

	// MaxFileSize is the absolute per-file ceiling in bytes; 0 disables
	// the check.
	MaxFileSize int64 `mapstructure:"max_file_size"`

	// TierLimits maps a channel service tier to its account-wide upload
	// ceiling in bytes.
	TierLimits map[string]int64 `mapstructure:"tier_limits"`
}

// DefaultMountPoint is used when no mount point is configured.
const DefaultMountPoint = "/attach"

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.MountPoint == "" {
		c.MountPoint = DefaultMountPoint
	}
}

// Service bundles the namespace components and hands out directory nodes.
//
// All actual semantics live in the Resolver, Gate, Accountant, and the
// node types; the service wires them to the stores and the ambient stack.
type Service struct {
	config     Config
	records    attachment.RecordStore
	channels   attachment.ChannelDirectory
	store      content.Store
	resolver   *Resolver
	gate       *Gate
	accountant *Accountant
	log        *logger.Logger
	metrics    metrics.NamespaceMetrics
}

// NewService creates the namespace service over the given stores.
//
// log may be nil (discarded output) and nsMetrics may be nil (no-op).
func NewService(
	config Config,
	records attachment.RecordStore,
	channels attachment.ChannelDirectory,
	store content.Store,
	log *logger.Logger,
	nsMetrics metrics.NamespaceMetrics,
) *Service {
	config.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	if nsMetrics == nil {
		nsMetrics = metrics.NewNoopNamespaceMetrics()
	}

	return &Service{
		config:     config,
		records:    records,
		channels:   channels,
		store:      store,
		resolver:   NewResolver(records, channels, log),
		gate:       NewGate(config.BlockPublic),
		accountant: NewAccountant(records, store, config.TierLimits),
		log:        log.With("component", "namespace"),
		metrics:    nsMetrics,
	}
}

// Accountant exposes the quota accountant for callers that need usage
// figures outside a directory operation.
func (s *Service) Accountant() *Accountant {
	return s.accountant
}

// Resolve walks a mount-rooted logical path and returns the directory
// node for its terminal folder.
//
// The mount prefix is stripped before resolution. As a side effect the
// actor's owner fields are populated from the resolved channel.
func (s *Service) Resolve(ctx context.Context, actor *Actor, path string) (*Directory, error) {
	start := time.Now()

	resolved, err := s.resolver.Resolve(ctx, actor, s.stripMount(path))
	s.metrics.RecordOperation("Resolve", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	return &Directory{service: s, actor: actor, resolved: resolved}, nil
}

// Root returns the server root: a synthetic directory whose only legal
// child is the mount-point segment, which yields a fresh root context.
func (s *Service) Root(actor *Actor) *Directory {
	return &Directory{service: s, actor: actor, serverRoot: true}
}

// mountSegment returns the first segment of the mount point ("attach"
// for "/attach").
func (s *Service) mountSegment() string {
	segments := splitPath(s.config.MountPoint)
	if len(segments) == 0 {
		return ""
	}
	return segments[0]
}

// stripMount removes the configured mount prefix from a logical path.
func (s *Service) stripMount(path string) string {
	mount := strings.TrimSuffix(s.config.MountPoint, "/")
	if mount == "" {
		return path
	}
	if path == mount {
		return ""
	}
	if rest, found := strings.CutPrefix(path, mount+"/"); found {
		return rest
	}
	return path
}
