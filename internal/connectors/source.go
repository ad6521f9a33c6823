// 包 connectors：外部几何图层来源（HTTP / 本地文件）与扫描中心解析
package connectors

import (
	"context"
	"errors"

	"geo-signals/internal/geo"
	"geo-signals/internal/signals"
)

var (
	// ErrStatus：上游返回非 2xx
	ErrStatus = errors.New("geometry source: unexpected status")
	// ErrLayerDisabled：图层未配置来源
	ErrLayerDisabled = errors.New("geometry source: layer disabled")
)

// Layer：编排器可请求的图层
type Layer string

const (
	LayerStates         Layer = "states"
	LayerMunicipalities Layer = "municipalities"
	LayerSectors        Layer = "sectors"
	LayerCustom         Layer = "custom"
)

// AllLayers：固定的拉取与构建顺序（州 → 市 → 网格 → 自定义）
var AllLayers = []Layer{LayerStates, LayerMunicipalities, LayerSectors, LayerCustom}

// Kind：图层到多边形种类
func (l Layer) Kind() signals.Kind {
	switch l {
	case LayerStates:
		return signals.KindState
	case LayerMunicipalities:
		return signals.KindMunicipality
	case LayerSectors:
		return signals.KindSector
	}
	return signals.KindCustom
}

// Request：单次拉取的过滤条件（纯数字行政区编码，可为空）
type Request struct {
	Layer       Layer
	UF          string
	MunicipioID string
}

// 文档注释：几何来源接口
// 背景：州/市/网格边界由外部连接器提供（统计局 API、对象存储或本地文件），编排器只依赖此接口。
// 约束：失败返回错误，由编排器将该图层视为缺失；实现不得重试，超时由 ctx 控制。
type GeometrySource interface {
	Name() string
	Fetch(ctx context.Context, req Request) (geo.FeatureCollection, error)
}

// namedFetcher：组合来源实现，拉取时同时报告实际提供数据的来源名
type namedFetcher interface {
	FetchNamed(ctx context.Context, req Request) (geo.FeatureCollection, string, error)
}

// 文档注释：拉取并返回实际来源名
// 背景：REAL 标注必须指向数据真正来自的来源；组合来源的 Name 只代表首选项，不能直接用于标注。
func FetchFrom(ctx context.Context, src GeometrySource, req Request) (geo.FeatureCollection, string, error) {
	if nf, ok := src.(namedFetcher); ok {
		return nf.FetchNamed(ctx, req)
	}
	fc, err := src.Fetch(ctx, req)
	return fc, src.Name(), err
}

// 文档注释：多来源组合
// 背景：同一图层可同时配置 HTTP、对象存储与本地文件；按顺序使用第一个成功且非空的结果。
// 约束：全部失败时返回最后一个错误；全部为空时返回空集合与 nil。
type FirstOf []GeometrySource

func (f FirstOf) Name() string {
	if len(f) == 0 {
		return "none"
	}
	return f[0].Name()
}

func (f FirstOf) Fetch(ctx context.Context, req Request) (geo.FeatureCollection, error) {
	fc, _, err := f.FetchNamed(ctx, req)
	return fc, err
}

// FetchNamed：返回胜出来源的名称；全部为空时名称为首选项
func (f FirstOf) FetchNamed(ctx context.Context, req Request) (geo.FeatureCollection, string, error) {
	if len(f) == 0 {
		return geo.Empty(), f.Name(), ErrLayerDisabled
	}
	var lastErr error
	for _, s := range f {
		fc, name, err := FetchFrom(ctx, s, req)
		if err != nil {
			lastErr = err
			continue
		}
		if len(fc.Features) > 0 {
			return fc, name, nil
		}
	}
	if lastErr != nil {
		return geo.Empty(), f.Name(), lastErr
	}
	return geo.Empty(), f.Name(), nil
}
