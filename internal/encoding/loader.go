package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/example/quicktoken/internal/vocab"
)

// LoaderOptions configures a Loader. The zero value is usable: the cache
// lives under the user cache directory and tables are fetched on demand.
type LoaderOptions struct {
	// CacheDir is where verified rank tables are stored, content-addressed
	// by checksum. Empty selects vocab.DefaultCacheDir.
	CacheDir string
	// Client is used for table fetches. Empty selects http.DefaultClient.
	Client *http.Client
	// Offline forbids network fetches; only previously cached tables load.
	Offline bool
	// Fallback is a base encoding name used when a model is unknown.
	// Empty means unknown models fail with UnknownModelError.
	Fallback string
	// Logger receives load progress. Empty selects slog.Default.
	Logger *slog.Logger
}

// Loader resolves model names to encodings, acquiring and verifying rank
// tables as needed. Encodings it returns are immutable; the loader itself
// holds no mutable state and is safe for concurrent use.
type Loader struct {
	cacheDir string
	client   *http.Client
	offline  bool
	fallback string
	logger   *slog.Logger
}

// NewLoader validates opts and builds a Loader.
func NewLoader(opts LoaderOptions) (*Loader, error) {
	if opts.Fallback != "" && !IsEncodingName(opts.Fallback) {
		return nil, fmt.Errorf("unknown fallback encoding %q (supported: %v)", opts.Fallback, Names())
	}

	cacheDir := opts.CacheDir
	if cacheDir == "" {
		dir, err := vocab.DefaultCacheDir()
		if err != nil {
			return nil, fmt.Errorf("resolve cache dir: %w", err)
		}
		cacheDir = dir
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Loader{
		cacheDir: cacheDir,
		client:   client,
		offline:  opts.Offline,
		fallback: opts.Fallback,
		logger:   logger,
	}, nil
}

// Load resolves a model name through the alias table and loads its base
// encoding. An unknown model fails with UnknownModelError unless a fallback
// encoding was configured.
func (l *Loader) Load(ctx context.Context, model string) (*Encoding, error) {
	name, ok := EncodingNameForModel(model)
	if !ok {
		if l.fallback == "" {
			return nil, &UnknownModelError{Model: model}
		}
		l.logger.Warn("model not recognized, using fallback encoding",
			"model", model, "encoding", l.fallback)
		name = l.fallback
	}
	return l.LoadEncoding(ctx, name)
}

// LoadEncoding loads a base encoding by identifier, fetching and verifying
// its rank table if it is not already cached.
func (l *Loader) LoadEncoding(ctx context.Context, name string) (*Encoding, error) {
	def, ok := definitions[name]
	if !ok {
		return nil, &UnknownModelError{Model: name}
	}

	ranks, err := vocab.Ranks(ctx, vocab.FetchOptions{
		URL:      def.url,
		SHA256:   def.sha256,
		CacheDir: l.cacheDir,
		Client:   l.client,
		Offline:  l.offline,
		Logger:   l.logger,
	})
	if err != nil {
		return nil, &VocabLoadError{Encoding: name, Err: err}
	}

	enc, err := New(name, def.pattern, ranks, def.specials)
	if err != nil {
		return nil, &VocabLoadError{Encoding: name, Err: err}
	}

	l.logger.Debug("encoding loaded", "encoding", name, "tokens", enc.NumTokens())
	return enc, nil
}
