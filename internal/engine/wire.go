package engine

import (
	"fmt"

	"geo-signals/internal/config"
	"geo-signals/internal/connectors"
	"geo-signals/internal/hotspots"
	"geo-signals/internal/logger"
	"geo-signals/internal/numeric"
	"geo-signals/internal/utils"
)

// 文档注释：按配置组装图层来源
// 背景：同一图层可同时配置 URL 模板、对象存储与本地目录；顺序为 HTTP、对象存储、文件，按 FirstOf 取第一个非空结果。
// 约束：均未配置的图层不拉取，也不产生 layer_unavailable 警告；对象存储参数非法时返回错误。
func SourcesFromConfig(cfg config.Config) (map[connectors.Layer]connectors.GeometrySource, error) {
	s3, err := utils.OpenObjectStore(cfg.GeometryStore)
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}
	urls := map[connectors.Layer]string{
		connectors.LayerStates:         cfg.StatesURL,
		connectors.LayerMunicipalities: cfg.MunicipalitiesURL,
		connectors.LayerSectors:        cfg.SectorsURL,
	}
	out := map[connectors.Layer]connectors.GeometrySource{}
	for _, l := range connectors.AllLayers {
		var list connectors.FirstOf
		if u := urls[l]; u != "" {
			list = append(list, connectors.NewHTTPSource("http_"+string(l), u, cfg.FetchTimeout))
		}
		if obj := connectors.NewObjectSource(s3, cfg.GeometryStore.Bucket, cfg.GeometryStore.KeyTemplate); obj != nil {
			list = append(list, obj)
		}
		if fs := connectors.NewFileSource(cfg.GeometryDir, l); fs != nil {
			list = append(list, fs)
		}
		if len(list) > 0 {
			out[l] = list
		}
	}
	return out, nil
}

// 文档注释：按配置构造编排器
// 返回：编排器与释放函数（关闭 GeoIP 库）；别名表或中心点表无法读取时返回错误。
func FromConfig(cfg config.Config) (*Orchestrator, func() error, error) {
	aliases, err := numeric.LoadAliases(cfg.AliasTablePath)
	if err != nil {
		return nil, nil, err
	}
	center, err := connectors.NewCenterResolver(cfg.CentroidsPath, cfg.GeoIPCityPath)
	if err != nil {
		return nil, nil, fmt.Errorf("center resolver: %w", err)
	}
	var backend *hotspots.Backend
	if cfg.HotspotBackendURL != "" {
		backend = hotspots.NewBackend(cfg.HotspotBackendURL, cfg.FetchTimeout, cfg.HotspotLimit, false)
	}
	sources, err := SourcesFromConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	o := New(Options{
		Policy:       RealOnlyPolicy{RealOnly: cfg.RealOnly},
		Sources:      sources,
		Aliases:      &aliases,
		Center:       center,
		Backend:      backend,
		HotspotLimit: cfg.HotspotLimit,
		LayerTimeout: cfg.FetchTimeout,
	})
	logger.L().Info("engine_ready",
		"real_only", cfg.RealOnly,
		"layers", len(sources),
		"providers", o.ProviderNames(),
		"alias_version", aliases.Version,
	)
	return o, center.Close, nil
}
