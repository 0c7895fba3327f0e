// Package fetch retrieves published table files into a local cache.
//
// Sources are resolved with hashicorp/go-getter, so a table may live at an
// http(s) URL, a local path, or anything else go-getter detects. A cached
// copy always wins; with Offline set, a cache miss is an error instead of a
// download. Fetching happens before any parsing so failures surface early.
package fetch

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter"
	"go.uber.org/zap"

	"github.com/teranos/ionclm/errors"
	"github.com/teranos/ionclm/logger"
	"github.com/teranos/ionclm/version"
)

// Ref names one table file of a publication.
type Ref struct {
	// Name is the cache file name, e.g. "jenkins2005.tb1.ascii".
	Name string
	// URL is where the table is published. Empty means cache-only.
	URL string
}

// Fetcher materializes Refs under a cache directory.
type Fetcher struct {
	CacheDir string
	Offline  bool
	logger   *zap.SugaredLogger
	getters  map[string]getter.Getter
}

// New creates a Fetcher rooted at cacheDir.
func New(cacheDir string, offline bool, logger *zap.SugaredLogger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Fetcher{
		CacheDir: cacheDir,
		Offline:  offline,
		logger:   logger,
		getters:  getter.Getters,
	}
}

// WithHTTPClient downloads http and https sources through client.
func (f *Fetcher) WithHTTPClient(client *http.Client) *Fetcher {
	getters := make(map[string]getter.Getter, len(f.getters))
	for scheme, g := range f.getters {
		getters[scheme] = g
	}
	httpGetter := &getter.HttpGetter{
		Client: client,
		Header: http.Header{"User-Agent": []string{version.Get().UserAgent()}},
	}
	getters["http"] = httpGetter
	getters["https"] = httpGetter
	f.getters = getters
	return f
}

// Path returns where ref is cached.
func (f *Fetcher) Path(ref Ref) string {
	return filepath.Join(f.CacheDir, ref.Name)
}

// Fetch returns the local path of ref, downloading it on a cache miss.
func (f *Fetcher) Fetch(ctx context.Context, ref Ref) (string, error) {
	if ref.Name == "" || strings.ContainsAny(ref.Name, `/\`) {
		return "", errors.Newf("invalid table name %q", ref.Name)
	}
	dst := f.Path(ref)
	if info, err := os.Stat(dst); err == nil && !info.IsDir() && info.Size() > 0 {
		f.logger.Debugw("Table cache hit", logger.FieldTable, ref.Name, logger.FieldPath, dst)
		return dst, nil
	}

	if f.Offline || ref.URL == "" {
		err := errors.NewNotFoundError("table %s is not cached in %s", ref.Name, f.CacheDir)
		if ref.URL != "" {
			return "", errors.WithHintf(err, "disable cache.offline or download %s manually", ref.URL)
		}
		return "", errors.WithHint(err, "this table has no published URL; place the file in the cache directory")
	}

	if err := os.MkdirAll(f.CacheDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create cache directory %s", f.CacheDir)
	}

	src, err := detect(ref.URL)
	if err != nil {
		return "", err
	}

	f.logger.Infow("Grabbing table file", logger.FieldTable, ref.Name, logger.FieldURL, ref.URL, "detected", src)

	// Only a completed download is renamed into place.
	tmp := dst + ".part"
	client := &getter.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     tmp,
		Mode:    getter.ClientModeFile,
		Getters: f.getters,
	}
	if err := client.Get(); err != nil {
		os.Remove(tmp)
		return "", errors.Wrapf(err, "failed to fetch %s", ref.URL)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", errors.Wrapf(err, "failed to move %s into cache", ref.Name)
	}

	f.logger.Infow("Fetch completed", logger.FieldTable, ref.Name, logger.FieldPath, dst)
	return dst, nil
}

// Read fetches ref and returns its contents.
func (f *Fetcher) Read(ctx context.Context, ref Ref) (string, error) {
	path, err := f.Fetch(ctx, ref)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}
	return string(data), nil
}

// ReadAll reads every ref in order, stopping at the first failure.
func (f *Fetcher) ReadAll(ctx context.Context, refs []Ref) (map[string]string, error) {
	out := make(map[string]string, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := f.Read(ctx, ref)
		if err != nil {
			return nil, err
		}
		out[ref.Name] = text
	}
	return out, nil
}

// IsRemote reports whether src resolves to a non-file source.
func IsRemote(src string) bool {
	detected, err := detect(src)
	if err != nil {
		return false
	}
	u, err := url.Parse(detected)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Scheme != "file"
}

func detect(src string) (string, error) {
	pwd, err := os.Getwd()
	if err != nil {
		pwd = "."
	}
	detected, err := getter.Detect(src, pwd, getter.Detectors)
	if err != nil {
		return "", errors.Wrapf(err, "failed to detect source type of %s", src)
	}
	return detected, nil
}
