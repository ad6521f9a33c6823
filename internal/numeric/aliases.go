package numeric

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 文档注释：属性别名表（带版本）
// 背景：各提供方（IBGE 网格、普查汇总、自建图层）字段命名不一致，统一以别名列表按序查找。
// 约束：列表顺序即优先级；文件覆盖时仅替换非空列表，其余沿用默认表。
type AliasTable struct {
	Version          int      `yaml:"version"`
	ID               []string `yaml:"id"`
	Name             []string `yaml:"name"`
	Population       []string `yaml:"population"`
	Income           []string `yaml:"income"`
	StateCode        []string `yaml:"stateCode"`
	MunicipalityCode []string `yaml:"municipalityCode"`
	SectorCode       []string `yaml:"sectorCode"`
}

// DefaultAliases：内置别名表 v1
func DefaultAliases() AliasTable {
	return AliasTable{
		Version:          1,
		ID:               []string{"id", "CD_SETOR", "CD_MUN", "CD_UF", "codarea", "geocodigo", "GEOCODIGO"},
		Name:             []string{"name", "nome", "NM_SETOR", "NM_BAIRRO", "NM_MUN", "NM_UF", "NOME"},
		Population:       []string{"population", "populacao", "POPULACAO", "pop", "POP", "v0001", "V0001", "total_pessoas"},
		Income:           []string{"income", "renda", "renda_media", "RENDA_MEDIA", "rendimento_medio", "v005", "V005"},
		StateCode:        []string{"CD_UF", "cd_uf", "codigo_uf", "uf_code", "codarea"},
		MunicipalityCode: []string{"CD_MUN", "cd_mun", "municipio_id", "cod_ibge", "codarea"},
		SectorCode:       []string{"CD_SETOR", "cd_setor", "setor_id", "geocodigo"},
	}
}

// LoadAliases：从 YAML 文件读取别名表并与默认表合并；path 为空时返回默认表
func LoadAliases(path string) (AliasTable, error) {
	def := DefaultAliases()
	if path == "" {
		return def, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return def, fmt.Errorf("read alias table %s: %w", path, err)
	}
	var t AliasTable
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return def, fmt.Errorf("parse alias table %s: %w", path, err)
	}
	return mergeAliases(def, t), nil
}

func mergeAliases(base, o AliasTable) AliasTable {
	if o.Version > 0 {
		base.Version = o.Version
	}
	pick := func(dst *[]string, src []string) {
		if len(src) > 0 {
			*dst = src
		}
	}
	pick(&base.ID, o.ID)
	pick(&base.Name, o.Name)
	pick(&base.Population, o.Population)
	pick(&base.Income, o.Income)
	pick(&base.StateCode, o.StateCode)
	pick(&base.MunicipalityCode, o.MunicipalityCode)
	pick(&base.SectorCode, o.SectorCode)
	return base
}
