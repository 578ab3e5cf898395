package storage

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/levenlabs/go-lflag"

	"github.com/tariffkit/tariffkit/pkg/log"
	"github.com/tariffkit/tariffkit/pkg/profile"
	"github.com/tariffkit/tariffkit/pkg/tariff"
	"github.com/tariffkit/tariffkit/pkg/types"
)

// FilesystemStore implements Store on a data directory with tariffs/ (JSON
// documents, items-wrapped) and profiles/ (interval CSVs) subdirectories.
// The file name minus its extension is the ID.
type FilesystemStore struct {
	dir string
}

// configuredFilesystem sets up the filesystem provider. It registers flags
// for configuration.
func configuredFilesystem() *FilesystemStore {
	dir := lflag.String("data-dir", "./data", "Directory holding tariffs/ and profiles/")

	f := &FilesystemStore{}

	lflag.Do(func() {
		f.dir = *dir
	})

	return f
}

// NewFilesystemStore returns a store rooted at dir, creating the layout if
// needed. Used directly by the CLI and tests; the server goes through
// Configured.
func NewFilesystemStore(dir string) (*FilesystemStore, error) {
	f := &FilesystemStore{dir: dir}
	if err := f.Init(context.Background()); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks if the provider is properly configured.
func (f *FilesystemStore) Validate() error {
	if f.dir == "" {
		return fmt.Errorf("data-dir cannot be empty")
	}
	return nil
}

// Init creates the directory layout.
func (f *FilesystemStore) Init(ctx context.Context) error {
	for _, sub := range []string{f.tariffsDir(), f.profilesDir()} {
		if err := os.MkdirAll(sub, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", sub, err)
		}
	}
	log.Ctx(ctx).Debug("filesystem store initialized", "dir", f.dir)
	return nil
}

// Close is a no-op; the store holds no open handles between calls.
func (f *FilesystemStore) Close() error { return nil }

func (f *FilesystemStore) tariffsDir() string  { return filepath.Join(f.dir, "tariffs") }
func (f *FilesystemStore) profilesDir() string { return filepath.Join(f.dir, "profiles") }

// validID rejects IDs that could escape the data directory.
var validID = regexp.MustCompile(`^[\w][\w.\-]*$`)

func checkID(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("invalid id %q", id)
	}
	return nil
}

// ListTariffs returns metadata for every stored tariff, sorted by file
// name. Unreadable documents are skipped with a warning rather than
// failing the whole listing.
func (f *FilesystemStore) ListTariffs(ctx context.Context) ([]TariffInfo, error) {
	entries, err := os.ReadDir(f.tariffsDir())
	if err != nil {
		return nil, fmt.Errorf("reading tariffs dir: %w", err)
	}
	infos := make([]TariffInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		id := strings.TrimSuffix(entry.Name(), ".json")
		t, err := tariff.Load(filepath.Join(f.tariffsDir(), entry.Name()))
		if err != nil {
			log.Ctx(ctx).Warn("skipping unreadable tariff", "id", id, "error", err)
			continue
		}
		infos = append(infos, TariffInfo{
			ID:       id,
			Utility:  t.Utility,
			RateName: t.Name,
			Sector:   t.Sector,
		})
	}
	return infos, nil
}

func (f *FilesystemStore) GetTariff(ctx context.Context, id string) (*types.Tariff, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	path := filepath.Join(f.tariffsDir(), id+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrTariffNotFound
	}
	return tariff.Load(path)
}

func (f *FilesystemStore) SaveTariff(ctx context.Context, id string, t *types.Tariff) error {
	if err := checkID(id); err != nil {
		return err
	}
	data, err := tariff.Wrap(t)
	if err != nil {
		return err
	}
	path := filepath.Join(f.tariffsDir(), id+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing tariff %s: %w", id, err)
	}
	log.Ctx(ctx).Info("saved tariff", "id", id)
	return nil
}

func (f *FilesystemStore) ListProfiles(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(f.profilesDir())
	if err != nil {
		return nil, fmt.Errorf("reading profiles dir: %w", err)
	}
	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".csv") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".csv"))
	}
	return ids, nil
}

func (f *FilesystemStore) GetProfile(ctx context.Context, id string) (*profile.Profile, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	path := filepath.Join(f.profilesDir(), id+".csv")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, ErrProfileNotFound
	}
	return profile.Load(path)
}

func (f *FilesystemStore) SaveProfile(ctx context.Context, id string, p *profile.Profile) error {
	if err := checkID(id); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := p.WriteCSV(&buf); err != nil {
		return err
	}
	path := filepath.Join(f.profilesDir(), id+".csv")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing profile %s: %w", id, err)
	}
	return nil
}

var nonWord = regexp.MustCompile(`[^\w]+`)

// TariffID derives a clean store ID from a tariff's utility and rate name,
// the way exported documents are conventionally named.
func TariffID(t *types.Tariff) string {
	utility := t.Utility
	if utility == "" {
		utility = "Unknown"
	}
	name := t.Name
	if name == "" {
		name = "Unknown"
	}
	clean := func(s string) string {
		s = nonWord.ReplaceAllString(s, "_")
		return strings.Trim(s, "_")
	}
	return clean(utility) + "_" + clean(name)
}
