package knowledge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hoteleiro/concierge/internal/config"
	"github.com/hoteleiro/concierge/internal/doccache"
	"github.com/hoteleiro/concierge/internal/extract"
	"github.com/hoteleiro/concierge/internal/models"
	"github.com/hoteleiro/concierge/internal/storage"
	"github.com/hoteleiro/concierge/pkg/utils"
)

// Progress tracks cumulative document counters across an entire load,
// never reset between categories.
type Progress struct {
	mu     sync.Mutex
	total  int
	loaded int
	failed int
}

func (p *Progress) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total, p.loaded, p.failed = 0, 0, 0
}

func (p *Progress) addTotal(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total += n
}

func (p *Progress) markLoaded() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded++
}

func (p *Progress) markFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed++
}

// Counts returns the current total, loaded, and failed document counters.
func (p *Progress) Counts() (total, loaded, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total, p.loaded, p.failed
}

// Loader builds the knowledge base: discovers document names per category,
// fetches them in bounded batches, extracts text, and caches the results.
type Loader struct {
	fetcher   Fetcher
	discovery Discovery
	fallback  Discovery
	cache     *doccache.Cache
	extractor *extract.Extractor
	store     storage.Store
	config    *config.KnowledgeConfig
	logger    *zap.Logger
	progress  *Progress

	mu       sync.RWMutex
	manifest *Manifest

	now func() time.Time
}

// NewLoader creates a loader over the given manifest and collaborators.
func NewLoader(manifest *Manifest, fetcher Fetcher, extension string, cache *doccache.Cache,
	store storage.Store, cfg *config.KnowledgeConfig, logger *zap.Logger) *Loader {
	return &Loader{
		fetcher:   fetcher,
		discovery: NewListingDiscovery(fetcher, extension),
		fallback:  ManifestDiscovery{},
		cache:     cache,
		extractor: extract.NewExtractor(cfg.MaxContentChars),
		store:     store,
		config:    cfg,
		logger:    logger,
		progress:  &Progress{},
		manifest:  manifest,
		now:       time.Now,
	}
}

// Progress exposes the cumulative load counters.
func (l *Loader) Progress() *Progress {
	return l.progress
}

// SetManifest swaps the manifest used by subsequent loads.
func (l *Loader) SetManifest(m *Manifest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.manifest = m
}

func (l *Loader) currentManifest() *Manifest {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.manifest
}

// Load returns the knowledge base, restoring a stored snapshot when one is
// fresh enough, otherwise loading from the portal. On a portal load that
// yields nothing, a stale snapshot of any age is served and flagged degraded.
func (l *Loader) Load(ctx context.Context) (kb *models.KnowledgeBase, degraded bool, err error) {
	maxAge := time.Duration(l.config.CacheHours) * time.Hour
	if snapshot, savedAt, loadErr := l.store.LoadSnapshot(ctx); loadErr == nil {
		if snapshot.CountDocuments() > 0 && l.now().Sub(savedAt) <= maxAge {
			l.logger.Info("knowledge base restored from snapshot",
				zap.Int("documents", snapshot.CountDocuments()),
				zap.Time("saved_at", savedAt))
			return snapshot, false, nil
		}
	}
	return l.Reload(ctx)
}

// Reload always loads from the portal, ignoring snapshot freshness. When
// every category fails, it falls back to a stored snapshot of any age and
// reports degraded mode; with no snapshot either, an empty knowledge base
// is returned.
func (l *Loader) Reload(ctx context.Context) (*models.KnowledgeBase, bool, error) {
	manifest := l.currentManifest()
	l.progress.reset()

	categories := make([][]*models.DocumentRecord, len(manifest.Categories))
	var wg sync.WaitGroup
	for i, cat := range manifest.Categories {
		wg.Add(1)
		go func(i int, cat ManifestCategory) {
			defer wg.Done()
			categories[i] = l.LoadCategory(ctx, cat)
		}(i, cat)
	}
	wg.Wait()

	// Assemble in manifest order regardless of which category finished first.
	kb := models.NewKnowledgeBase()
	for _, docs := range categories {
		for _, doc := range docs {
			kb.Add(doc)
		}
	}

	total, loaded, failed := l.progress.Counts()
	if kb.CountDocuments() == 0 {
		l.logger.Warn("portal load produced no documents",
			zap.Int("total", total), zap.Int("failed", failed))
		if snapshot, savedAt, err := l.store.LoadSnapshot(ctx); err == nil && snapshot.CountDocuments() > 0 {
			l.logger.Warn("serving stale snapshot in degraded mode", zap.Time("saved_at", savedAt))
			return snapshot, true, nil
		}
		return kb, false, nil
	}

	if err := l.store.SaveSnapshot(ctx, kb, l.now()); err != nil {
		l.logger.Warn("failed to save knowledge snapshot", zap.Error(err))
	}
	l.logger.Info("knowledge base loaded from portal",
		zap.Int("documents", loaded), zap.Int("failed", failed))
	return kb, false, nil
}

// LoadCategory discovers and fetches one category's documents in batches.
// Individual document failures are counted and logged, never propagated:
// the returned slice holds whatever loaded, discovery order preserved.
func (l *Loader) LoadCategory(ctx context.Context, cat ManifestCategory) []*models.DocumentRecord {
	names, err := l.discovery.Discover(ctx, cat)
	if err != nil {
		l.logger.Debug("directory listing unavailable, using manifest file list",
			zap.String("category", cat.Name), zap.Error(err))
		names, err = l.fallback.Discover(ctx, cat)
		if err != nil {
			l.logger.Warn("category discovery failed", zap.String("category", cat.Name), zap.Error(err))
			return nil
		}
	}
	l.progress.addTotal(len(names))

	batchSize := l.config.BatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	records := make([]*models.DocumentRecord, len(names))
	for start := 0; start < len(names); start += batchSize {
		end := start + batchSize
		if end > len(names) {
			end = len(names)
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rec, err := l.loadDocument(ctx, cat, names[i])
				if err != nil {
					l.progress.markFailed()
					l.logger.Warn("document load failed",
						zap.String("category", cat.Name),
						zap.String("file", names[i]),
						zap.Error(err))
					return
				}
				records[i] = rec
				l.progress.markLoaded()
			}(i)
		}
		wg.Wait()
	}

	docs := make([]*models.DocumentRecord, 0, len(records))
	for _, rec := range records {
		if rec != nil {
			docs = append(docs, rec)
		}
	}
	return docs
}

// loadDocument returns the cached record or fetches, extracts, and caches it.
func (l *Loader) loadDocument(ctx context.Context, cat ManifestCategory, name string) (*models.DocumentRecord, error) {
	path := cat.Folder + "/" + name
	if rec, ok := l.cache.Get(path); ok {
		return rec, nil
	}

	body, status, lastModified, err := l.fetcher.Fetch(ctx, path)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", path, status)
	}

	text := l.extractor.Text(body)
	if len([]rune(text)) < l.config.MinDocumentChars {
		return nil, fmt.Errorf("extract %s: only %d chars, below minimum %d",
			path, len([]rune(text)), l.config.MinDocumentChars)
	}
	if lastModified.IsZero() {
		lastModified = l.now()
	}

	rec := &models.DocumentRecord{
		Name:          name,
		Title:         utils.HumanizeFilename(name),
		Content:       text,
		Path:          path,
		Category:      cat.Name,
		FileSizeChars: len([]rune(text)),
		LastModified:  lastModified,
		Keywords:      extract.Keywords(text, l.config.MaxKeywords),
	}
	l.cache.Set(path, rec)
	return rec, nil
}
