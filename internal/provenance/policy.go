package provenance

// 文档注释：Real-Only 策略
// 背景：进程启动时读取一次并注入编排器；叶子函数不读取环境变量。
// 约束：RealOnly 为 true 时任何 DERIVED 记录都不应被构造，调用方据 AllowsDerived 直接分支返回空结果。
type Policy struct {
	RealOnly bool
}

func (p Policy) AllowsDerived() bool { return !p.RealOnly }
