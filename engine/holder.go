package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rushteam/coursekit/catalog"
	"github.com/rushteam/coursekit/core"
	"github.com/rushteam/coursekit/pkg/logging"
	"github.com/rushteam/coursekit/pkg/metrics"
)

// LoadFunc 从数据源读取完整目录。
type LoadFunc func(ctx context.Context) ([]*core.Course, *catalog.Report, error)

// FileLoader 返回从 CSV 文件加载目录的 LoadFunc。
func FileLoader(path string) LoadFunc {
	return func(context.Context) ([]*core.Course, *catalog.Report, error) {
		return catalog.LoadFile(path)
	}
}

// Holder 发布当前快照：构建 → 冻结 → 发布。
//
// 新快照在旁路完整构建后才原子替换，读者要么看到旧快照，要么看到新快照。
// Reload 与 Publish 由互斥锁串行化；读路径（Current）无锁。
type Holder struct {
	load    LoadFunc
	opts    BuildOptions
	current atomic.Pointer[Snapshot]
	reload  sync.Mutex
	version uint64
}

// NewHolder 创建 Holder，不会立即加载。
func NewHolder(load LoadFunc, opts BuildOptions) *Holder {
	return &Holder{load: load, opts: opts}
}

// Current 返回当前快照；尚未加载时返回 nil。
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}

// Snapshot 返回当前快照，尚未加载时返回 core.ErrNoSnapshot。
func (h *Holder) Snapshot() (*Snapshot, error) {
	snap := h.current.Load()
	if snap == nil {
		return nil, core.ErrNoSnapshot
	}
	return snap, nil
}

// Reload 重新读取数据源并构建新快照。失败时保留旧快照继续服务，并返回错误。
func (h *Holder) Reload(ctx context.Context) (*Snapshot, error) {
	h.reload.Lock()
	defer h.reload.Unlock()

	start := time.Now()
	courses, report, err := h.load(ctx)
	if err != nil {
		metrics.SnapshotReloads.WithLabelValues("error").Inc()
		return nil, err
	}

	opts := h.opts
	opts.Report = report
	snap, err := Build(ctx, h.version+1, courses, opts)
	if err != nil {
		metrics.SnapshotReloads.WithLabelValues("error").Inc()
		return nil, err
	}
	h.publish(snap)

	elapsed := time.Since(start)
	metrics.SnapshotBuildDuration.Observe(elapsed.Seconds())
	metrics.SnapshotReloads.WithLabelValues("ok").Inc()

	ev := logging.Info().
		Uint64("version", snap.Version()).
		Int("courses", snap.Len()).
		Int("vocabulary", snap.VocabularySize()).
		Int64("matrix_bytes", snap.MatrixBytes()).
		Dur("elapsed", elapsed)
	if report != nil {
		ev = ev.Int("skipped_rows", report.SkippedRows).Interface("malformed", report.Malformed)
	}
	ev.Msg("snapshot published")

	return snap, nil
}

// Publish 发布一个外部构建好的快照（测试或自定义数据源使用），与 Reload 互斥。
func (h *Holder) Publish(snap *Snapshot) {
	h.reload.Lock()
	defer h.reload.Unlock()
	h.publish(snap)
}

// publish 调用方需持有 h.reload。
func (h *Holder) publish(snap *Snapshot) {
	if snap.Version() > h.version {
		h.version = snap.Version()
	}
	h.current.Store(snap)

	metrics.CatalogCourses.Set(float64(snap.Len()))
	metrics.VocabularySize.Set(float64(snap.VocabularySize()))
	metrics.MatrixBytes.Set(float64(snap.MatrixBytes()))
}
