package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"CardSync/internal/config"
	"CardSync/internal/model"
	"CardSync/internal/utils/httpclient"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// AssetStatus 单张卡图的下载状态（只向前流转，不回退）
type AssetStatus string

const (
	StatusMissing     AssetStatus = "missing"     // 未下载
	StatusDownloading AssetStatus = "downloading" // 下载中
	StatusPresent     AssetStatus = "present"     // 已落盘（含跳过的已存在文件）
	StatusFailed      AssetStatus = "failed"      // 下载失败
)

// Pair 下载任务单元：(卡牌ID, 卡图URL)
type Pair struct {
	ID  int64
	URL string
}

// Report 下载汇总报告（worker间共享，加锁合并）
type Report struct {
	mu       sync.Mutex
	statuses map[int64]AssetStatus
	skipped  map[int64]bool
}

func newReport() *Report {
	return &Report{
		statuses: make(map[int64]AssetStatus),
		skipped:  make(map[int64]bool),
	}
}

func (r *Report) set(id int64, status AssetStatus, skip bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses[id] = status
	if skip {
		r.skipped[id] = true
	}
}

func (r *Report) collect(want AssetStatus, skip bool) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for id, st := range r.statuses {
		if st == want && r.skipped[id] == skip {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Succeeded 本次真正下载成功的ID列表（升序）
func (r *Report) Succeeded() []int64 { return r.collect(StatusPresent, false) }

// Skipped 因文件已存在而跳过的ID列表（升序）
func (r *Report) Skipped() []int64 { return r.collect(StatusPresent, true) }

// Failed 下载失败的ID列表（升序），供调用方决定是否重提
func (r *Report) Failed() []int64 { return r.collect(StatusFailed, false) }

// Counts 各结果计数：成功/跳过/失败
func (r *Report) Counts() (succeeded, skipped, failed int) {
	return len(r.Succeeded()), len(r.Skipped()), len(r.Failed())
}

// Downloader 卡图并发下载器
type Downloader struct {
	cfg        *config.AssetsConfig
	httpClient *http.Client
	logger     *logrus.Logger
}

// New 创建下载器
func New(cfg *config.AssetsConfig, logger *logrus.Logger) *Downloader {
	return &Downloader{
		cfg: cfg,
		httpClient: httpclient.New(httpclient.Options{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		}, logger),
		logger: logger,
	}
}

// PathFor 卡图最终落盘路径：destDir/{id}.jpg
func PathFor(destDir string, id int64) string {
	return filepath.Join(destDir, fmt.Sprintf("%d.jpg", id))
}

// DownloadAll 并发下载全部卡图。已存在的文件直接跳过（不发起网络请求，跨进程重跑可恢复）；
// 单张失败只记入报告，不中断其余任务。destDir为空时用配置目录，workers<=0时用配置并发数。
func (d *Downloader) DownloadAll(ctx context.Context, pairs []Pair, destDir string, workers int) (*Report, error) {
	if destDir == "" {
		destDir = d.cfg.Dir
	}
	if workers <= 0 {
		workers = d.cfg.Workers
	}
	if workers <= 0 {
		workers = 8 // 配置也未给并发数时兜底，SetLimit(0)会让所有任务永久阻塞
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建卡图目录失败: %w: %v", model.ErrIO, err)
	}

	report := newReport()
	g := &errgroup.Group{}
	g.SetLimit(workers)

	for _, pair := range pairs {
		// 整体取消后不再调度新任务，在途任务在各自边界自行退出
		if ctx.Err() != nil {
			break
		}
		p := pair
		g.Go(func() error {
			dst := PathFor(destDir, p.ID)
			if _, err := os.Stat(dst); err == nil {
				report.set(p.ID, StatusPresent, true)
				return nil
			}
			report.set(p.ID, StatusDownloading, false)
			if err := d.downloadOne(ctx, p, dst); err != nil {
				// 单张失败隔离：一条坏URL不能拖垮其余N-1张
				d.logger.Warnf("卡图%d下载失败: %v", p.ID, err)
				report.set(p.ID, StatusFailed, false)
				return nil
			}
			report.set(p.ID, StatusPresent, false)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// downloadOne 下载单张卡图：先写临时文件，完整落盘并flush后原子rename到最终路径。
// 中途崩溃或取消最多留下残留的临时文件，最终路径上绝不出现截断文件。
func (d *Downloader) downloadOne(ctx context.Context, p Pair, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("构造请求失败: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: 状态码%d", model.ErrNetwork, resp.StatusCode)
	}

	tmp := dst + ".part"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}

	// 完整字节流落盘后才rename到最终路径
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", model.ErrIO, err)
	}
	return nil
}
