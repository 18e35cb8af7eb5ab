package archive

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"CardSync/internal/model"

	"github.com/klauspost/compress/zstd"
)

// countingWriter 统计压缩后写入的字节数
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// WriteArchive 将全量目录流式序列化并经zstd压缩写入单个归档文件，
// 返回压缩后写入的字节数。序列化结果不在内存中整体物化，内存占用
// 由压缩器内部窗口决定，与目录规模无关。失败时目标文件状态不确定，
// 需要原子性的调用方应自行先写临时路径再rename。
func WriteArchive(cards []*model.RemoteCard, path string) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("创建归档文件失败: %w: %v", model.ErrIO, err)
	}
	defer f.Close()

	counter := &countingWriter{w: f}
	enc, err := zstd.NewWriter(counter, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return 0, fmt.Errorf("创建zstd压缩器失败: %w", err)
	}

	if err := json.NewEncoder(enc).Encode(cards); err != nil {
		enc.Close()
		return counter.n, fmt.Errorf("归档序列化失败: %w: %v", model.ErrSerialization, err)
	}
	if err := enc.Close(); err != nil {
		return counter.n, fmt.Errorf("压缩流关闭失败: %w: %v", model.ErrIO, err)
	}
	if err := f.Sync(); err != nil {
		return counter.n, fmt.Errorf("归档落盘失败: %w: %v", model.ErrIO, err)
	}
	return counter.n, nil
}

// ReadArchive 读取归档文件：先解压再反序列化，还原完整目录序列
func ReadArchive(path string) ([]*model.RemoteCard, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开归档文件失败: %w: %v", model.ErrIO, err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("创建zstd解压器失败: %w", err)
	}
	defer dec.Close()

	var cards []*model.RemoteCard
	if err := json.NewDecoder(dec).Decode(&cards); err != nil {
		return nil, fmt.Errorf("归档反序列化失败: %w: %v", model.ErrSerialization, err)
	}
	return cards, nil
}

// SplitPerCard 逐卡拆分：每张卡写一个紧凑JSON到 outDir/{id}.json，
// 已存在的文件直接跳过（与卡图下载器同样的幂等约定，中断后可续跑），
// 返回本次实际写入的文件数。写入量小且相互独立，单线程即可。
func SplitPerCard(cards []*model.RemoteCard, outDir string) (int, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, fmt.Errorf("创建拆分目录失败: %w: %v", model.ErrIO, err)
	}

	written := 0
	for _, card := range cards {
		path := filepath.Join(outDir, fmt.Sprintf("%d.json", card.ID))
		if _, err := os.Stat(path); err == nil {
			continue // 续跑时跳过已写入的卡
		}
		data, err := json.Marshal(card)
		if err != nil {
			return written, fmt.Errorf("卡牌%d序列化失败: %w: %v", card.ID, model.ErrSerialization, err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return written, fmt.Errorf("卡牌%d写入失败: %w: %v", card.ID, model.ErrIO, err)
		}
		written++
	}
	return written, nil
}
