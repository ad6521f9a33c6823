package connectors

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"geo-signals/internal/geo"
)

// DefaultFiles：GEOMETRY_DIR 下各图层的默认文件名
var DefaultFiles = map[Layer]string{
	LayerStates:         "estados.geojson",
	LayerMunicipalities: "municipios.geojson",
	LayerSectors:        "setores.geojson",
	LayerCustom:         "custom.geojson",
}

// 文档注释：本地文件几何来源
// 背景：离线部署或命令行场景从目录读取预先下载的 GeoJSON；行政区过滤交由多边形构建器完成。
// 约束：文件不存在视为空图层（非错误）；每次扫描重新读取，不缓存。
type FileSource struct {
	Path string
}

// NewFileSource：dir 为空时返回 nil
func NewFileSource(dir string, layer Layer) *FileSource {
	if dir == "" {
		return nil
	}
	name, ok := DefaultFiles[layer]
	if !ok {
		return nil
	}
	return &FileSource{Path: filepath.Join(dir, name)}
}

func (f *FileSource) Name() string { return "file:" + filepath.Base(f.Path) }

func (f *FileSource) Fetch(ctx context.Context, _ Request) (geo.FeatureCollection, error) {
	if err := ctx.Err(); err != nil {
		return geo.Empty(), err
	}
	fc, err := geo.LoadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return geo.Empty(), nil
	}
	return fc, err
}

// 文档注释：静态来源
// 背景：命令行直接传入文件、测试注入固定集合时使用。
type StaticSource struct {
	Label      string
	Collection geo.FeatureCollection
	Err        error
}

func (s *StaticSource) Name() string { return s.Label }

func (s *StaticSource) Fetch(ctx context.Context, _ Request) (geo.FeatureCollection, error) {
	if s.Err != nil {
		return geo.Empty(), s.Err
	}
	if err := ctx.Err(); err != nil {
		return geo.Empty(), err
	}
	return s.Collection, nil
}

// exists：路径存在且为普通文件
func exists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && st.Mode().IsRegular()
}
