// 命令行入口：基于简报文件与本地 GeoJSON 执行一次扫描，结果以 JSON 输出
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"geo-signals/internal/briefing"
	"geo-signals/internal/choropleth"
	"geo-signals/internal/config"
	"geo-signals/internal/connectors"
	"geo-signals/internal/engine"
	"geo-signals/internal/geo"
	"geo-signals/internal/logger"
	"geo-signals/internal/numeric"
	"geo-signals/internal/signals"
	"geo-signals/internal/version"
)

type options struct {
	briefingPath string
	layers       map[connectors.Layer]*string
	geometryDir  string
	aliasesPath  string
	centroids    string
	realOnly     bool
	legend       string
	pretty       bool
	timeout      time.Duration
}

type output struct {
	Envelope *signals.Envelope `json:"envelope"`
	Legend   *choropleth.Legend `json:"legend,omitempty"`
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	cfg := config.FromEnv()
	o := &options{layers: map[connectors.Layer]*string{}}
	cmd := &cobra.Command{
		Use:           "signals-scan",
		Short:         "Compose geographic signals for a briefing from local GeoJSON layers",
		Version:       version.Commit,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), o, stdout)
		},
	}
	f := cmd.Flags()
	f.StringVarP(&o.briefingPath, "briefing", "b", "", "briefing JSON file (required)")
	for _, l := range connectors.AllLayers {
		o.layers[l] = f.String(string(l), "", "GeoJSON file for the "+string(l)+" layer")
	}
	f.StringVar(&o.geometryDir, "geometry-dir", cfg.GeometryDir, "directory with estados/municipios/setores/custom.geojson")
	f.StringVar(&o.aliasesPath, "aliases", cfg.AliasTablePath, "YAML property alias table")
	f.StringVar(&o.centroids, "centroids", cfg.CentroidsPath, "JSON city centroid table")
	f.BoolVar(&o.realOnly, "real-only", cfg.RealOnly, "emit only REAL-provenance signals")
	f.StringVar(&o.legend, "legend", "", "also compute a choropleth legend for this polygon attribute")
	f.BoolVar(&o.pretty, "pretty", false, "indent JSON output")
	f.DurationVar(&o.timeout, "timeout", cfg.FetchTimeout, "per-layer load timeout")
	_ = cmd.MarkFlagRequired("briefing")
	return cmd
}

func run(ctx context.Context, o *options, stdout io.Writer) error {
	raw, err := os.ReadFile(o.briefingPath)
	if err != nil {
		return fmt.Errorf("read briefing: %w", err)
	}
	var br briefing.Briefing
	if err := json.Unmarshal(raw, &br); err != nil {
		return fmt.Errorf("parse briefing: %w", err)
	}
	if err := briefing.Validate(br); err != nil {
		return err
	}
	aliases, err := numeric.LoadAliases(o.aliasesPath)
	if err != nil {
		return err
	}
	center, err := connectors.NewCenterResolver(o.centroids, "")
	if err != nil {
		return err
	}
	defer center.Close()

	sources := map[connectors.Layer]connectors.GeometrySource{}
	for _, l := range connectors.AllLayers {
		var list connectors.FirstOf
		if p := *o.layers[l]; p != "" {
			fc, err := geo.LoadFile(p)
			if err != nil {
				return fmt.Errorf("load %s: %w", l, err)
			}
			list = append(list, &connectors.StaticSource{Label: "file:" + p, Collection: fc})
		}
		if fs := connectors.NewFileSource(o.geometryDir, l); fs != nil {
			list = append(list, fs)
		}
		if len(list) > 0 {
			sources[l] = list
		}
	}

	eng := engine.New(engine.Options{
		Policy:       engine.RealOnlyPolicy{RealOnly: o.realOnly},
		Sources:      sources,
		Aliases:      &aliases,
		Center:       center,
		LayerTimeout: o.timeout,
	})
	env := eng.Scan(ctx, br, "")
	env.ScanID = uuid.NewString()

	out := output{Envelope: env}
	if o.legend != "" {
		lg := choropleth.BuildLegend(env.Polygons, choropleth.Attribute(o.legend), choropleth.DefaultPalette, choropleth.FallbackColor)
		out.Legend = &lg
	}
	enc := json.NewEncoder(stdout)
	if o.pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(out)
}

func main() {
	cfg := config.Load()
	logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
