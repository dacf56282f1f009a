// Package options holds the functional-option surface shared by the
// reader (filesystem.Open) and writer (Writer.Write) entry points.
package options

import (
	"github.com/go-logr/logr"

	"github.com/arcfract/iso9660kit/pkg/consts"
)

// DescriptorPolicy selects which volume descriptor a reader resolves
// paths against.
type DescriptorPolicy int

const (
	// PolicyAny prefers Primary-with-SUSP, then Supplementary, then
	// Enhanced, then Primary without SUSP.
	PolicyAny DescriptorPolicy = iota
	PolicyPrimary
	PolicySupplementary
	PolicyEnhanced
)

// PathTableMode selects whether path resolution walks directory
// records or the path table.
type PathTableMode int

const (
	// TraverseRecords resolves paths by walking directory records.
	TraverseRecords PathTableMode = iota
	// TraversePathTable resolves paths via the L-path table.
	TraversePathTable
)

// ProgressCallback reports byte-level progress for long operations.
type ProgressCallback func(
	currentFilename string,
	bytesTransferred int64,
	totalBytes int64,
	currentFileNumber int,
	totalFileCount int,
)

// Options is the unified configuration object for both Open and
// Writer.Write. Reader-only and writer-only fields are simply ignored by
// whichever side doesn't care about them.
type Options struct {
	// Shared / reader-oriented.
	Logger           logr.Logger
	ParseOnOpen      bool
	StripVersionInfo bool
	Policy           DescriptorPolicy
	PathTableMode    PathTableMode
	ProgressCallback ProgressCallback

	// Writer-oriented (§6 "Writer options").
	VolumeIdentifier          string
	BlockSize                 int
	IncludeSupplementary      bool
	IncludeEnhanced           bool
	EnableSUSP                bool
	CreateOptionalPathTables  bool
	DefaultUID                uint32
	DefaultGID                uint32
}

// Option mutates an Options value.
type Option func(*Options)

// Default returns the baseline Options: used by both Open and
// Writer.Write before the caller's Option values are applied.
func Default() *Options {
	return &Options{
		Logger:                   logr.Discard(),
		ParseOnOpen:              true,
		StripVersionInfo:         false,
		Policy:                   PolicyAny,
		PathTableMode:            TraverseRecords,
		BlockSize:                consts.ISO9660_SECTOR_SIZE,
		IncludeSupplementary:     true,
		IncludeEnhanced:          false,
		EnableSUSP:               true,
		CreateOptionalPathTables: false,
		DefaultUID:               0,
		DefaultGID:               0,
	}
}

// Apply folds a slice of Option values onto a fresh Default().
func Apply(opts ...Option) *Options {
	o := Default()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logr.Logger used for diagnostic output. The
// default is logr.Discard() — silent unless a caller wires a sink.
func WithLogger(logger logr.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithProgress stores a progress callback on Options. No read or
// write operation in this module invokes it.
func WithProgress(callback ProgressCallback) Option {
	return func(o *Options) {
		o.ProgressCallback = callback
	}
}

// WithParseOnOpen sets the ParseOnOpen flag. Open does not consult
// it: Open always discovers and classifies the volume descriptor set,
// and the package has no separate Parse step.
func WithParseOnOpen(parseOnOpen bool) Option {
	return func(o *Options) {
		o.ParseOnOpen = parseOnOpen
	}
}

// WithStripVersionInfo sets whether path lookup ignores a trailing
// ";version" suffix when matching a requested name against directory
// entries. The names reported in FSEntry values keep their suffix.
func WithStripVersionInfo(enabled bool) Option {
	return func(o *Options) {
		o.StripVersionInfo = enabled
	}
}

// WithDescriptorPolicy selects which descriptor a reader resolves
// paths against.
func WithDescriptorPolicy(policy DescriptorPolicy) Option {
	return func(o *Options) {
		o.Policy = policy
	}
}

// WithPathTableMode selects whether path resolution walks directory
// records or the path table.
func WithPathTableMode(mode PathTableMode) Option {
	return func(o *Options) {
		o.PathTableMode = mode
	}
}

// WithVolumeIdentifier sets the required Primary volume identifier
// (a D-string) used by the writer.
func WithVolumeIdentifier(id string) Option {
	return func(o *Options) {
		o.VolumeIdentifier = id
	}
}

// WithBlockSize sets the block size the writer lays the image out in;
// Emit rejects a medium whose sector size differs from it.
func WithBlockSize(size int) Option {
	return func(o *Options) {
		o.BlockSize = size
	}
}

// WithSupplementary toggles emission of a Joliet Supplementary Volume
// Descriptor.
func WithSupplementary(enabled bool) Option {
	return func(o *Options) {
		o.IncludeSupplementary = enabled
	}
}

// WithEnhanced toggles emission of an Enhanced (version-2) Volume
// Descriptor.
func WithEnhanced(enabled bool) Option {
	return func(o *Options) {
		o.IncludeEnhanced = enabled
	}
}

// WithSUSP toggles SUSP/Rock Ridge trailer synthesis on the Primary
// descriptor's directory records.
func WithSUSP(enabled bool) Option {
	return func(o *Options) {
		o.EnableSUSP = enabled
	}
}

// WithOptionalPathTables toggles emission of path tables beyond the
// mandatory L/M pair. Currently a Non-goal; reserved for future use.
func WithOptionalPathTables(enabled bool) Option {
	return func(o *Options) {
		o.CreateOptionalPathTables = enabled
	}
}

// WithDefaultOwnership sets the uid/gid recorded in synthesized PX
// entries when a node's metadata doesn't specify one.
func WithDefaultOwnership(uid, gid uint32) Option {
	return func(o *Options) {
		o.DefaultUID = uid
		o.DefaultGID = gid
	}
}
