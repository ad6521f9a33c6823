package weighting

import "github.com/cespare/xxhash/v2"

// jitterSteps：哈希映射到区间时的离散步数
const jitterSteps = 10000

// 文档注释：种子确定性抖动
// 背景：受众估算与排序需要“看起来随机”但可复现的扰动；相同种子永远得到相同结果，不依赖时钟或真随机数。
// 约束：哈希算法固定为 xxhash64（Sum64String），结果落在 [min,max]；min>max 时两者互换。
func SeededJitter(seed string, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}
	h := xxhash.Sum64String(seed)
	frac := float64(h%(jitterSteps+1)) / jitterSteps
	return min + frac*(max-min)
}

// SeedHash：种子的稳定非负整数哈希
func SeedHash(seed string) uint64 { return xxhash.Sum64String(seed) }
